package dsl

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"

	openschema "github.com/reoring/openschema"
	"github.com/reoring/openschema/i18n"
	"github.com/reoring/openschema/rules"
	"github.com/reoring/openschema/spec"
)

// ModelDef is a built model declaration. Instances created by New carry
// their own copies of the fields plus per-use options.
type ModelDef struct {
	name       string
	pkg        string
	doc        string
	schemaName string
	component  bool
	unknown    *openschema.UnknownPolicy
	validators []openschema.Validator

	fields []Schema
	index  map[string]int
}

func (d *ModelDef) add(f Schema) {
	d.index[f.Meta().Name()] = len(d.fields)
	d.fields = append(d.fields, f)
}

func (d *ModelDef) Name() string      { return d.name }
func (d *ModelDef) Doc() string       { return d.doc }
func (d *ModelDef) IsComponent() bool { return d.component }

// FieldNames lists field names in declaration order.
func (d *ModelDef) FieldNames() []string {
	out := make([]string, len(d.fields))
	for i, f := range d.fields {
		out[i] = f.Meta().Name()
	}
	return out
}

// Field returns a copy of the named field.
func (d *ModelDef) Field(name string) (Schema, bool) {
	i, ok := d.index[name]
	if !ok {
		return nil, false
	}
	return d.fields[i].Clone(), true
}

// ComponentID is the first 8 hex digits of md5(package path), a dot, and
// the model name.
func (d *ModelDef) ComponentID() string {
	sum := md5.Sum([]byte(d.pkg))
	return hex.EncodeToString(sum[:])[:8] + "." + d.name
}

// New creates a model schema. Besides the common options it accepts
// RequiredFields, AllRequired and UnknownFields.
func (d *ModelDef) New(opts ...Option) (*Model, error) {
	st := newSettings(newBase(d.name, TypeObject, ""), opts)
	m := &Model{Base: st.Base, def: d, allRequired: st.allRequired}
	if len(st.requiredFields) > 0 {
		m.requiredSet = make(map[string]struct{}, len(st.requiredFields))
		for _, n := range st.requiredFields {
			if _, ok := d.index[n]; !ok {
				return nil, openschema.NewConfigError(d.name+".New", "required field %q is not declared", n)
			}
			m.requiredSet[n] = struct{}{}
		}
	}
	switch {
	case st.unknown != nil:
		m.unknown = *st.unknown
	case d.unknown != nil:
		m.unknown = *d.unknown
	default:
		m.unknown = unknownDefault()
	}
	m.fields = make([]Schema, len(d.fields))
	for i, f := range d.fields {
		m.fields[i] = f.Clone()
	}
	m.finish(d.validators...)
	return m, nil
}

// MustNew is like New but panics on a configuration error.
func (d *ModelDef) MustNew(opts ...Option) *Model {
	m, err := d.New(opts...)
	if err != nil {
		panic(err)
	}
	return m
}

// Partial derives an inline model holding a subset of the fields. include
// and exclude are mutually exclusive; both empty keeps every field.
func (d *ModelDef) Partial(include, exclude []string) (*ModelDef, error) {
	if len(include) > 0 && len(exclude) > 0 {
		return nil, openschema.NewConfigError(d.name+".Partial", "include and exclude are mutually exclusive")
	}
	keep := func(string) bool { return true }
	switch {
	case len(include) > 0:
		set := toSet(include)
		keep = func(n string) bool {
			_, ok := set[n]
			return ok
		}
	case len(exclude) > 0:
		set := toSet(exclude)
		keep = func(n string) bool {
			_, ok := set[n]
			return !ok
		}
	}
	p := &ModelDef{name: d.name, pkg: d.pkg, doc: d.doc, unknown: d.unknown, validators: d.validators, index: map[string]int{}}
	for _, f := range d.fields {
		if keep(f.Meta().Name()) {
			p.add(f.Clone())
		}
	}
	return p, nil
}

func toSet(names []string) map[string]struct{} {
	m := make(map[string]struct{}, len(names))
	for _, n := range names {
		m[n] = struct{}{}
	}
	return m
}

// Model is a schema over a mapping of named fields.
type Model struct {
	Base
	def         *ModelDef
	fields      []Schema
	requiredSet map[string]struct{}
	allRequired bool
	unknown     openschema.UnknownPolicy
}

func (m *Model) Def() *ModelDef                    { return m.def }
func (m *Model) Unknown() openschema.UnknownPolicy { return m.unknown }

// Fields returns the instance's fields in declaration order.
func (m *Model) Fields() []Schema { return append([]Schema(nil), m.fields...) }

// FieldRequired reports whether f must be present in input, after the
// instance's RequiredFields and AllRequired options.
func (m *Model) FieldRequired(f Schema) bool {
	if m.allRequired {
		return true
	}
	if m.requiredSet != nil {
		_, ok := m.requiredSet[f.Meta().Name()]
		return ok
	}
	return f.Meta().Required()
}

func (m *Model) Meta() *Base { return &m.Base }

func (m *Model) Clone() Schema {
	c := *m
	c.Base = m.Base.clone()
	c.fields = make([]Schema, len(m.fields))
	for i, f := range m.fields {
		c.fields[i] = f.Clone()
	}
	return &c
}

func (m *Model) Deserialize(v any) (any, error) { return m.deserialize(v, m.coerce) }

func (m *Model) coerce(v any) (any, error) {
	es, ok := entries(v)
	if !ok {
		return nil, invalid(i18n.CodeNotDict)
	}
	raw := make(map[string]any, len(es))
	for _, e := range es {
		raw[e.text] = e.value
	}
	out := map[string]any{}
	errs := openschema.NewValidationError()
	for _, f := range m.fields {
		b := f.Meta()
		if b.readOnly {
			continue
		}
		val, present := raw[b.alias]
		if present {
			delete(raw, b.alias)
		}
		blank := present && !b.allowBlank && val == ""
		if !present || blank {
			if m.FieldRequired(f) {
				code := i18n.CodeRequired
				if blank {
					code = i18n.CodeBlank
				}
				errs.SetItem(b.alias, openschema.NewValidationError(i18n.T(code, nil)))
			}
			if def, ok := b.Default(); ok {
				out[b.attr] = def
			}
			continue
		}
		got, err := f.Deserialize(val)
		if err != nil {
			errs.SetItem(b.alias, rules.AsValidation(err))
			continue
		}
		out[b.attr] = got
	}
	for _, e := range es {
		if _, left := raw[e.text]; !left {
			continue
		}
		switch m.unknown {
		case openschema.UnknownInclude:
			out[e.text] = e.value
		case openschema.UnknownError:
			errs.SetItem(e.text, openschema.NewValidationError(i18n.T(i18n.CodeUnknownField, nil)))
		}
	}
	if errs.NonEmpty() {
		return nil, errs
	}
	return out, nil
}

func (m *Model) Serialize(v any) (any, error) { return m.serialize(v, m.toWire) }

func (m *Model) toWire(v any) (any, error) {
	out := make(map[string]any, len(m.fields))
	for _, f := range m.fields {
		b := f.Meta()
		if b.writeOnly {
			continue
		}
		val, ok, err := fieldValue(b, v)
		if err != nil {
			return nil, &openschema.SerializationError{Schema: m.kind, Field: b.attr, Err: err}
		}
		if !ok {
			if b.fallback == nil {
				return nil, &openschema.SerializationError{Schema: m.kind, Field: b.attr, Err: fmt.Errorf("missing attribute %q", b.attr)}
			}
			val = b.fallback(openschema.Empty)
			if openschema.IsEmpty(val) {
				continue
			}
		}
		wire, err := f.Serialize(val)
		if err != nil {
			return nil, &openschema.SerializationError{Schema: m.kind, Field: b.attr, Err: err}
		}
		out[b.alias] = wire
	}
	return out, nil
}

func fieldValue(b *Base, obj any) (any, bool, error) {
	if b.getter != nil {
		v, err := b.getter(obj)
		return v, err == nil, err
	}
	v, ok := openschema.Lookup(obj, b.attr)
	return v, ok, nil
}

// ToSpec inlines the model, or registers it as a component and returns a
// reference. Required fields and nullability depend on the instance, so a
// component carries neither; the reference site adds them through allOf.
func (m *Model) ToSpec(c *spec.Collection, opt spec.Options) any {
	if !m.def.component && opt.SchemaID == "" {
		frag := m.properties(c, opt)
		desc := m.description
		if desc == "" {
			desc = m.def.doc
		}
		frag["description"] = spec.Str(desc)
		return frag
	}

	id := opt.SchemaID
	if id == "" {
		id = m.def.ComponentID()
	}
	if c.Reserve(id) {
		frag := m.properties(c, opt)
		title := m.def.schemaName
		if title == "" {
			title = m.def.name
		}
		frag["title"] = title
		frag["description"] = spec.Str(m.def.doc)
		if opt.SchemaID == "" {
			delete(frag, "required")
			delete(frag, "nullable")
		}
		c.Register(id, frag)
	}
	composite := map[string]any{"nullable": spec.True(m.nullable)}
	if required := m.requiredAliases(); opt.NeedRequired && len(required) > 0 {
		composite["required"] = required
	}
	composite, _ = spec.Clean(composite).(map[string]any)
	if len(composite) > 0 || m.description != "" {
		return map[string]any{
			"allOf":       []any{spec.Ref(id), composite},
			"description": spec.Str(m.description),
		}
	}
	return spec.Ref(id)
}

func (m *Model) requiredAliases() []string {
	var out []string
	for _, f := range m.fields {
		if m.FieldRequired(f) {
			out = append(out, f.Meta().alias)
		}
	}
	return out
}

func (m *Model) properties(c *spec.Collection, opt spec.Options) map[string]any {
	frag := m.specFragment(m)
	child := spec.Options{NeedRequired: opt.NeedRequired}
	props := make(map[string]any, len(m.fields))
	for _, f := range m.fields {
		props[f.Meta().alias] = f.ToSpec(c, child)
	}
	frag["properties"] = props
	if required := m.requiredAliases(); opt.NeedRequired && len(required) > 0 {
		frag["required"] = required
	}
	return frag
}
