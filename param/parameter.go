package param

import (
	openschema "github.com/reoring/openschema"
	"github.com/reoring/openschema/dsl"
	"github.com/reoring/openschema/spec"
)

// Parameter binds the query, header or cookie data of a request to the
// fields of a model.
type Parameter struct {
	loc      openschema.Location
	model    *dsl.Model
	bindings []*binding
}

// Query binds query string fields.
func Query(m *dsl.Model) (*Parameter, error) { return newParameter(openschema.InQuery, m) }

// Header binds header fields. Aliases are matched case-insensitively.
func Header(m *dsl.Model) (*Parameter, error) { return newParameter(openschema.InHeader, m) }

// Cookie binds cookie fields.
func Cookie(m *dsl.Model) (*Parameter, error) { return newParameter(openschema.InCookie, m) }

// Must panics when a constructor fails. It is meant for package-level
// declarations.
func Must[P any](p P, err error) P {
	if err != nil {
		panic(err)
	}
	return p
}

func newParameter(loc openschema.Location, m *dsl.Model) (*Parameter, error) {
	if m == nil {
		return nil, openschema.NewConfigError("param", "%s parameters need a model", loc)
	}
	bindings, err := bindAll(loc, m)
	if err != nil {
		return nil, err
	}
	return &Parameter{loc: loc, model: m, bindings: bindings}, nil
}

func bindAll(loc openschema.Location, m *dsl.Model) ([]*binding, error) {
	fields := m.Fields()
	out := make([]*binding, 0, len(fields))
	for _, f := range fields {
		b, err := newBinding(loc, f)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

// Location reports where the parameter reads from.
func (p *Parameter) Location() openschema.Location { return p.loc }

// Model returns the bound model.
func (p *Parameter) Model() *dsl.Model { return p.model }

// Parse reshapes data per field style and deserializes it through the model.
func (p *Parameter) Parse(data Values) (map[string]any, error) {
	return parseWith(p.model, p.bindings, data)
}

// Fragment renders {"parameters": [...]}, one entry per field.
func (p *Parameter) Fragment(c *spec.Collection) map[string]any {
	return fragmentOf(c, p.model, p.bindings)
}

func parseWith(m *dsl.Model, bindings []*binding, data Values) (map[string]any, error) {
	raw := make(map[string]any, len(bindings))
	for _, b := range bindings {
		if v, ok := b.extract(data); ok {
			raw[b.alias()] = v
		}
	}
	out, err := m.Deserialize(raw)
	if err != nil {
		return nil, err
	}
	res, _ := out.(map[string]any)
	return res, nil
}

func fragmentOf(c *spec.Collection, m *dsl.Model, bindings []*binding) map[string]any {
	params := make([]any, 0, len(bindings))
	for _, b := range bindings {
		required := b.loc == openschema.InPath || m.FieldRequired(b.field)
		params = append(params, b.spec(c, required))
	}
	return map[string]any{"parameters": params}
}

func (b *binding) spec(c *spec.Collection, required bool) map[string]any {
	meta := b.field.Meta()
	out := map[string]any{
		"name":        meta.Alias(),
		"in":          string(b.loc),
		"required":    spec.True(required),
		"description": spec.Str(meta.Description()),
		"schema":      b.field.ToSpec(c, spec.Options{NeedRequired: true}),
		"style":       b.style.Name,
		"explode":     b.style.Explode,
		"deprecated":  spec.True(meta.Deprecated()),
	}
	if b.loc == openschema.InQuery {
		out["allowEmptyValue"] = spec.True(meta.AllowBlank())
	}
	if examples := meta.Examples(); len(examples) > 0 {
		named := make(map[string]any, len(examples))
		for name, v := range examples {
			named[name] = map[string]any{"value": v}
		}
		out["examples"] = named
	} else if ex := meta.Example(); !openschema.IsEmpty(ex) && ex != nil {
		out["example"] = ex
	}
	return out
}
