package dsl

import (
	"sync"

	openschema "github.com/reoring/openschema"
	"github.com/reoring/openschema/spec"
)

// LazySchema defers building its target until first use, which lets a model
// refer to itself or to a model declared later. The wrapper's own options
// (nullability, validators, hooks, fallback) run around the target.
type LazySchema struct {
	Base
	ref *lazyRef
}

type lazyRef struct {
	once sync.Once
	fn   func() Schema
	s    Schema
}

func (r *lazyRef) get() Schema {
	r.once.Do(func() { r.s = r.fn() })
	return r.s
}

// Lazy wraps fn, which is called once.
func Lazy(fn func() Schema, opts ...Option) *LazySchema {
	if fn == nil {
		configPanic(openschema.NewConfigError("Lazy", "nil schema producer"))
	}
	st := newSettings(newBase("Lazy", "", ""), opts)
	s := &LazySchema{Base: st.Base, ref: &lazyRef{fn: fn}}
	s.finish()
	return s
}

// Target resolves and returns the wrapped schema.
func (s *LazySchema) Target() Schema { return s.ref.get() }

func (s *LazySchema) Meta() *Base { return &s.Base }

func (s *LazySchema) Clone() Schema {
	c := *s
	c.Base = s.Base.clone()
	return &c
}

func (s *LazySchema) Deserialize(v any) (any, error) {
	return s.deserialize(v, func(v any) (any, error) { return s.Target().Deserialize(v) })
}

func (s *LazySchema) Serialize(v any) (any, error) {
	return s.serialize(v, func(v any) (any, error) { return s.Target().Serialize(v) })
}

// ToSpec renders the target; the wrapper's own options ride next to it in
// an allOf, as a model reference does.
func (s *LazySchema) ToSpec(c *spec.Collection, opt spec.Options) any {
	frag := s.Target().ToSpec(c, opt)
	own, _ := spec.Clean(s.specFragment(s)).(map[string]any)
	delete(own, "description")
	if len(own) == 0 && s.description == "" {
		return frag
	}
	allOf := []any{frag}
	if len(own) > 0 {
		allOf = append(allOf, own)
	}
	return map[string]any{
		"allOf":       allOf,
		"description": spec.Str(s.description),
	}
}
