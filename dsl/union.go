package dsl

import (
	"fmt"
	"sort"

	openschema "github.com/reoring/openschema"
	"github.com/reoring/openschema/i18n"
	"github.com/reoring/openschema/rules"
	"github.com/reoring/openschema/spec"
)

const (
	unionOneOf = "oneOf"
	unionAnyOf = "anyOf"
)

// Discriminator selects a union branch from the value of one property.
type Discriminator struct {
	Property string
	Mapping  map[string]Schema
}

// Discriminate routes union values by property instead of trying every branch.
func Discriminate(property string, mapping map[string]Schema) Option {
	return func(st *settings) { st.discriminator = &Discriminator{Property: property, Mapping: mapping} }
}

// UnionSchema is a OneOf or AnyOf over alternative schemas.
type UnionSchema struct {
	Base
	mode    string
	schemas []Schema
	disc    *Discriminator
}

// OneOf accepts a value matching exactly one of schemas.
func OneOf(schemas []Schema, opts ...Option) *UnionSchema {
	return newUnion("OneOf", unionOneOf, schemas, opts)
}

// AnyOf accepts a value matching any of schemas; the first match wins.
func AnyOf(schemas []Schema, opts ...Option) *UnionSchema {
	return newUnion("AnyOf", unionAnyOf, schemas, opts)
}

func newUnion(kind, mode string, schemas []Schema, opts []Option) *UnionSchema {
	if len(schemas) == 0 {
		configPanic(openschema.NewConfigError(kind, "at least one schema is required"))
	}
	st := newSettings(newBase(kind, "", ""), opts)
	s := &UnionSchema{Base: st.Base, mode: mode, schemas: append([]Schema(nil), schemas...), disc: st.discriminator}
	if s.disc != nil && (s.disc.Property == "" || len(s.disc.Mapping) == 0) {
		configPanic(openschema.NewConfigError(kind, "discriminator needs a property and a mapping"))
	}
	s.finish()
	return s
}

// Schemas returns the alternatives.
func (s *UnionSchema) Schemas() []Schema { return append([]Schema(nil), s.schemas...) }

func (s *UnionSchema) Meta() *Base { return &s.Base }

func (s *UnionSchema) Clone() Schema {
	c := *s
	c.Base = s.Base.clone()
	c.schemas = make([]Schema, len(s.schemas))
	for i, sc := range s.schemas {
		c.schemas[i] = sc.Clone()
	}
	if s.disc != nil {
		d := Discriminator{Property: s.disc.Property, Mapping: make(map[string]Schema, len(s.disc.Mapping))}
		for k, sc := range s.disc.Mapping {
			d.Mapping[k] = sc.Clone()
		}
		c.disc = &d
	}
	return &c
}

// pick returns the discriminated branch for v.
func (s *UnionSchema) pick(v any) (Schema, error) {
	prop, ok := openschema.Lookup(v, s.disc.Property)
	if !ok {
		return nil, openschema.NewValidationError(i18n.T(i18n.CodeDiscriminatorMissing, map[string]string{"property": s.disc.Property}))
	}
	key, isString := prop.(string)
	if !isString {
		key = fmt.Sprint(prop)
	}
	sc, ok := s.disc.Mapping[key]
	if !ok {
		return nil, openschema.NewValidationError(i18n.T(i18n.CodeDiscriminatorUnknown, map[string]string{"property": s.disc.Property, "value": fmt.Sprintf("%q", key)}))
	}
	return sc, nil
}

func (s *UnionSchema) Deserialize(v any) (any, error) { return s.deserialize(v, s.coerce) }

func (s *UnionSchema) coerce(v any) (any, error) {
	if s.disc != nil {
		sc, err := s.pick(v)
		if err != nil {
			return nil, err
		}
		return sc.Deserialize(v)
	}
	var (
		out     any
		matched bool
	)
	for _, sc := range s.schemas {
		got, err := sc.Deserialize(v)
		if err != nil {
			if _, isValidation := openschema.AsValidationError(err); isValidation {
				continue
			}
			return nil, rules.AsValidation(err)
		}
		if s.mode == unionAnyOf {
			return got, nil
		}
		if matched {
			return nil, invalid(i18n.CodeOneOfMultiple)
		}
		out, matched = got, true
	}
	if !matched {
		return nil, invalid(i18n.CodeNoneMatched)
	}
	return out, nil
}

func (s *UnionSchema) Serialize(v any) (any, error) {
	return s.serialize(v, func(v any) (any, error) {
		if s.disc != nil {
			sc, err := s.pick(v)
			if err != nil {
				return nil, err
			}
			return sc.Serialize(v)
		}
		var last error
		for _, sc := range s.schemas {
			out, err := sc.Serialize(v)
			if err == nil {
				return out, nil
			}
			last = err
		}
		return nil, last
	})
}

func (s *UnionSchema) ToSpec(c *spec.Collection, opt spec.Options) any {
	m := s.specFragment(s)
	alts := make([]any, len(s.schemas))
	for i, sc := range s.schemas {
		alts[i] = sc.ToSpec(c, opt)
	}
	m[s.mode] = alts
	if s.disc != nil {
		m["discriminator"] = s.discriminatorSpec(c, opt)
	}
	return m
}

// discriminatorSpec maps each value to the reference of its branch.
// Branches that are not components have no reference and are left out of
// the mapping.
func (s *UnionSchema) discriminatorSpec(c *spec.Collection, opt spec.Options) map[string]any {
	keys := make([]string, 0, len(s.disc.Mapping))
	for k := range s.disc.Mapping {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	mapping := map[string]any{}
	for _, k := range keys {
		if ref := refOf(s.disc.Mapping[k].ToSpec(c, opt)); ref != "" {
			mapping[k] = ref
		}
	}
	return map[string]any{"propertyName": s.disc.Property, "mapping": mapping}
}

func refOf(frag any) string {
	m, ok := frag.(map[string]any)
	if !ok {
		return ""
	}
	if ref, ok := m["$ref"].(string); ok {
		return ref
	}
	if all, ok := m["allOf"].([]any); ok && len(all) > 0 {
		return refOf(all[0])
	}
	return ""
}
