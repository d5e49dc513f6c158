package dsl

import (
	"runtime"
	"strings"

	openschema "github.com/reoring/openschema"
	"github.com/reoring/openschema/logger"
)

type objectBuilder struct {
	name       string
	pkg        string
	doc        string
	schemaName string
	parents    []*ModelDef
	fields     []FieldDef
	unknown    *openschema.UnknownPolicy
	component  bool
	validators []openschema.Validator
	err        error
}

// FieldDef pairs a field name with its schema.
type FieldDef struct {
	Name   string
	Schema Schema
}

// F is shorthand for FieldDef{name, s}.
func F(name string, s Schema) FieldDef { return FieldDef{Name: name, Schema: s} }

// Object starts a model declaration. The calling package and name form the
// component id, so two models named alike in different packages stay apart.
// Models register as components by default.
func Object(name string) *objectBuilder {
	return &objectBuilder{name: name, pkg: callerPackage(2), component: true}
}

func callerPackage(skip int) string {
	pc, _, _, ok := runtime.Caller(skip)
	if !ok {
		return ""
	}
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return ""
	}
	name := fn.Name()
	slash := strings.LastIndex(name, "/")
	if dot := strings.Index(name[slash+1:], "."); dot >= 0 {
		return name[:slash+1+dot]
	}
	return name
}

// Doc sets the component description.
func (b *objectBuilder) Doc(s string) *objectBuilder {
	b.doc = s
	return b
}

// SchemaName overrides the component title.
func (b *objectBuilder) SchemaName(s string) *objectBuilder {
	b.schemaName = s
	return b
}

// Extends inherits the fields of parents. Earlier parents win over later
// ones; fields declared on this builder override inherited ones in place.
func (b *objectBuilder) Extends(parents ...*ModelDef) *objectBuilder {
	for _, p := range parents {
		if p == nil {
			b.fail("Extends", "nil parent")
			continue
		}
		b.parents = append(b.parents, p)
	}
	return b
}

// Field declares a field. The schema is copied, so one value can back
// several fields.
func (b *objectBuilder) Field(name string, s Schema) *objectBuilder {
	switch {
	case name == "":
		b.fail("Field", "empty field name")
	case s == nil:
		b.fail("Field", "field %q has no schema", name)
	default:
		for _, have := range b.fields {
			if have.Name == name {
				b.fail("Field", "field %q declared twice", name)
				return b
			}
		}
		b.fields = append(b.fields, FieldDef{Name: name, Schema: s})
	}
	return b
}

// Unknown sets how undeclared input keys are handled. Without it the
// package default applies when an instance is created.
func (b *objectBuilder) Unknown(p openschema.UnknownPolicy) *objectBuilder {
	b.unknown = &p
	return b
}

// Component controls registration under components.schemas. Inline models
// are expanded at every use.
func (b *objectBuilder) Component(v bool) *objectBuilder {
	b.component = v
	return b
}

// Validate adds model-level validators. They see the deserialized mapping
// and run only once every field passed.
func (b *objectBuilder) Validate(vs ...openschema.Validator) *objectBuilder {
	b.validators = append(b.validators, vs...)
	return b
}

func (b *objectBuilder) fail(op, format string, args ...any) {
	if b.err == nil {
		b.err = openschema.NewConfigError("Object("+b.name+")."+op, format, args...)
	}
}

// Build resolves inheritance and binds every field.
func (b *objectBuilder) Build() (*ModelDef, error) {
	if b.err == nil && b.name == "" {
		b.fail("Build", "model name is required")
	}
	if b.err != nil {
		logger.L().Error().Err(b.err).Str("model", b.name).Msg("invalid model declaration")
		return nil, b.err
	}
	d := &ModelDef{
		name:       b.name,
		pkg:        b.pkg,
		doc:        b.doc,
		schemaName: b.schemaName,
		component:  b.component,
		unknown:    b.unknown,
		validators: append([]openschema.Validator(nil), b.validators...),
		index:      map[string]int{},
	}
	for _, p := range b.parents {
		for _, f := range p.fields {
			if _, ok := d.index[f.Meta().Name()]; !ok {
				d.add(f.Clone())
			}
		}
		if d.unknown == nil && p.unknown != nil {
			u := *p.unknown
			d.unknown = &u
		}
		d.validators = append(d.validators, p.validators...)
	}
	for _, fd := range b.fields {
		f := fd.Schema.Clone()
		f.Meta().bind(fd.Name)
		if i, ok := d.index[fd.Name]; ok {
			d.fields[i] = f
			continue
		}
		d.add(f)
	}
	aliases := map[string]string{}
	for _, f := range d.fields {
		fb := f.Meta()
		if other, dup := aliases[fb.Alias()]; dup {
			err := openschema.NewConfigError("Object("+b.name+").Build", "fields %q and %q share the alias %q", other, fb.Name(), fb.Alias())
			logger.L().Error().Err(err).Str("model", b.name).Msg("invalid model declaration")
			return nil, err
		}
		aliases[fb.Alias()] = fb.Name()
	}
	return d, nil
}

// MustBuild is like Build but panics on a declaration error.
func (b *objectBuilder) MustBuild() *ModelDef {
	d, err := b.Build()
	if err != nil {
		panic(err)
	}
	return d
}

// FromFields declares an anonymous, inline model from fields in order.
func FromFields(name string, fields ...FieldDef) (*ModelDef, error) {
	b := &objectBuilder{name: name}
	for _, fd := range fields {
		b.Field(fd.Name, fd.Schema)
	}
	return b.Build()
}
