package param

import (
	"regexp"
	"strings"

	openschema "github.com/reoring/openschema"
	"github.com/reoring/openschema/dsl"
	"github.com/reoring/openschema/spec"
)

var pathVar = regexp.MustCompile(`\{([^{}/]+)\}`)

// PathParameter binds the variables of a route template such as
// /users/{id}. Every variable is required.
type PathParameter struct {
	template string
	names    []string
	model    *dsl.Model
	bindings []*binding
}

// Path declares the variables of template. Variables missing from schemas
// are plain strings; schemas naming a variable the template lacks are an
// error.
func Path(template string, schemas map[string]dsl.Schema) (*PathParameter, error) {
	if !strings.HasPrefix(template, "/") {
		return nil, openschema.NewConfigError("param.Path", "path %q must start with /", template)
	}
	var names []string
	var fields []dsl.FieldDef
	seen := map[string]bool{}
	for _, m := range pathVar.FindAllStringSubmatch(template, -1) {
		name := m[1]
		if seen[name] {
			return nil, openschema.NewConfigError("param.Path", "variable %q repeats in %q", name, template)
		}
		seen[name] = true
		s, ok := schemas[name]
		if !ok {
			s = dsl.String()
		}
		names = append(names, name)
		fields = append(fields, dsl.F(name, s))
	}
	for name := range schemas {
		if !seen[name] {
			return nil, openschema.NewConfigError("param.Path", "%q is not a variable of %q", name, template)
		}
	}

	def, err := dsl.FromFields("PathParameters", fields...)
	if err != nil {
		return nil, err
	}
	m, err := def.New(dsl.AllRequired())
	if err != nil {
		return nil, err
	}
	bindings, err := bindAll(openschema.InPath, m)
	if err != nil {
		return nil, err
	}
	return &PathParameter{template: template, names: names, model: m, bindings: bindings}, nil
}

// Template returns the route template.
func (p *PathParameter) Template() string { return p.template }

// Names lists the variables in template order.
func (p *PathParameter) Names() []string { return append([]string(nil), p.names...) }

// Parse deserializes the matched route variables.
func (p *PathParameter) Parse(vars map[string]string) (map[string]any, error) {
	return parseWith(p.model, p.bindings, MapValues(vars))
}

func (p *PathParameter) Fragment(c *spec.Collection) map[string]any {
	return fragmentOf(c, p.model, p.bindings)
}
