package dsl

import (
	"fmt"
	"reflect"

	openschema "github.com/reoring/openschema"
	"github.com/reoring/openschema/i18n"
	"github.com/reoring/openschema/rules"
	"github.com/reoring/openschema/spec"
)

// ListSchema validates slices and arrays element by element. Element
// failures are collected under their index instead of stopping at the first.
type ListSchema struct {
	Base
	item     Schema
	minItems int
	maxItems int
	unique   bool
}

// List returns a list of item. A nil item accepts any element.
func List(item Schema, opts ...Option) *ListSchema {
	if item == nil {
		item = Any()
	}
	st := newSettings(newBase("List", TypeArray, ""), opts)
	s := &ListSchema{Base: st.Base, item: item, minItems: st.minItems, maxItems: st.maxItems, unique: st.uniqueItems}
	var kv []openschema.Validator
	if s.minItems >= 0 || s.maxItems >= 0 {
		kv = append(kv, rules.Length(s.minItems, s.maxItems))
	}
	if s.unique {
		kv = append(kv, rules.Unique())
	}
	s.finish(kv...)
	return s
}

// Item returns the element schema.
func (s *ListSchema) Item() Schema { return s.item }

func (s *ListSchema) Meta() *Base { return &s.Base }

func (s *ListSchema) Clone() Schema {
	c := *s
	c.Base = s.Base.clone()
	c.item = s.item.Clone()
	return &c
}

func (s *ListSchema) Deserialize(v any) (any, error) { return s.deserialize(v, s.coerce) }

func (s *ListSchema) coerce(v any) (any, error) {
	rv, ok := listValue(v)
	if !ok {
		return nil, invalid(i18n.CodeNotIterable)
	}
	out := make([]any, rv.Len())
	errs := openschema.NewValidationError()
	for i := range out {
		item, err := s.item.Deserialize(rv.Index(i).Interface())
		if err != nil {
			errs.SetItem(i, rules.AsValidation(err))
			continue
		}
		out[i] = item
	}
	if errs.NonEmpty() {
		return nil, errs
	}
	return out, nil
}

func listValue(v any) (reflect.Value, bool) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return rv, true
	}
	return reflect.Value{}, false
}

func (s *ListSchema) Serialize(v any) (any, error) {
	return s.serialize(v, func(v any) (any, error) {
		rv, ok := listValue(v)
		if !ok {
			return nil, fmt.Errorf("cannot iterate over %T", v)
		}
		out := make([]any, rv.Len())
		for i := range out {
			item, err := s.item.Serialize(rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			out[i] = item
		}
		return out, nil
	})
}

func (s *ListSchema) ToSpec(c *spec.Collection, opt spec.Options) any {
	m := s.specFragment(s)
	m["items"] = s.item.ToSpec(c, opt)
	if s.minItems >= 0 {
		m["minItems"] = s.minItems
	}
	if s.maxItems >= 0 {
		m["maxItems"] = s.maxItems
	}
	m["uniqueItems"] = spec.True(s.unique)
	return m
}
