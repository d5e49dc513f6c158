package dsl

import (
	"fmt"
	"reflect"
	"sort"

	openschema "github.com/reoring/openschema"
	"github.com/reoring/openschema/i18n"
	"github.com/reoring/openschema/rules"
	"github.com/reoring/openschema/spec"
)

// DictSchema validates mappings with a key schema (String by default) and a
// value schema (Any by default). Output maps are keyed by the text of the
// deserialized key.
type DictSchema struct {
	Base
	keys     Schema
	values   Schema
	minProps int
	maxProps int
}

// Dict returns a mapping whose values follow values. Use Keys to validate keys.
func Dict(values Schema, opts ...Option) *DictSchema {
	if values == nil {
		values = Any()
	}
	st := newSettings(newBase("Dict", TypeObject, ""), opts)
	keys := st.keys
	if keys == nil {
		keys = String(AllowBlank())
	}
	s := &DictSchema{Base: st.Base, keys: keys, values: values, minProps: st.minProps, maxProps: st.maxProps}
	var kv []openschema.Validator
	if s.minProps >= 0 || s.maxProps >= 0 {
		kv = append(kv, rules.Length(s.minProps, s.maxProps))
	}
	s.finish(kv...)
	return s
}

func (s *DictSchema) KeySchema() Schema   { return s.keys }
func (s *DictSchema) ValueSchema() Schema { return s.values }

func (s *DictSchema) Meta() *Base { return &s.Base }

func (s *DictSchema) Clone() Schema {
	c := *s
	c.Base = s.Base.clone()
	c.keys = s.keys.Clone()
	c.values = s.values.Clone()
	return &c
}

type entry struct {
	key   any
	text  string
	value any
}

// entries lists a map's pairs ordered by key text so errors and output are
// deterministic.
func entries(v any) ([]entry, bool) {
	if m, ok := v.(map[string]any); ok {
		out := make([]entry, 0, len(m))
		for k, val := range m {
			out = append(out, entry{key: k, text: k, value: val})
		}
		sort.Slice(out, func(i, j int) bool { return out[i].text < out[j].text })
		return out, true
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Map {
		return nil, false
	}
	out := make([]entry, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		k := iter.Key().Interface()
		out = append(out, entry{key: k, text: fmt.Sprint(k), value: iter.Value().Interface()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].text < out[j].text })
	return out, true
}

func (s *DictSchema) Deserialize(v any) (any, error) { return s.deserialize(v, s.coerce) }

func (s *DictSchema) coerce(v any) (any, error) {
	es, ok := entries(v)
	if !ok {
		return nil, invalid(i18n.CodeNotDict)
	}
	out := make(map[string]any, len(es))
	errs := openschema.NewValidationError()
	for _, e := range es {
		k, err := s.keys.Deserialize(e.key)
		if err != nil {
			errs.SetItem(e.text, prefixed(rules.AsValidation(err), i18n.CodeKeyPrefix, e.text))
			continue
		}
		val, err := s.values.Deserialize(e.value)
		if err != nil {
			errs.SetItem(e.text, prefixed(rules.AsValidation(err), i18n.CodeValuePrefix, e.text))
			continue
		}
		out[fmt.Sprint(k)] = val
	}
	if errs.NonEmpty() {
		return nil, errs
	}
	return out, nil
}

// prefixed marks leaf messages as key or value failures. Nested trees are
// returned unchanged since their paths already locate the failure.
func prefixed(ve *openschema.ValidationError, code, key string) *openschema.ValidationError {
	if len(ve.Keys()) > 0 {
		return ve
	}
	prefix := i18n.T(code, map[string]string{"key": key})
	msgs := ve.Messages()
	for i, m := range msgs {
		msgs[i] = prefix + m
	}
	return openschema.NewValidationError(msgs...)
}

func (s *DictSchema) Serialize(v any) (any, error) {
	return s.serialize(v, func(v any) (any, error) {
		es, ok := entries(v)
		if !ok {
			return nil, fmt.Errorf("cannot convert %T to a mapping", v)
		}
		out := make(map[string]any, len(es))
		for _, e := range es {
			k, err := s.keys.Serialize(e.key)
			if err != nil {
				return nil, err
			}
			val, err := s.values.Serialize(e.value)
			if err != nil {
				return nil, err
			}
			out[fmt.Sprint(k)] = val
		}
		return out, nil
	})
}

func (s *DictSchema) ToSpec(c *spec.Collection, opt spec.Options) any {
	m := s.specFragment(s)
	m["additionalProperties"] = s.values.ToSpec(c, opt)
	if s.minProps >= 0 {
		m["minProperties"] = s.minProps
	}
	if s.maxProps >= 0 {
		m["maxProperties"] = s.maxProps
	}
	return m
}
