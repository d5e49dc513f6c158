package dsl

import (
	"maps"
	"reflect"
	"slices"

	openschema "github.com/reoring/openschema"
	"github.com/reoring/openschema/i18n"
	"github.com/reoring/openschema/logger"
	"github.com/reoring/openschema/rules"
	"github.com/reoring/openschema/spec"
)

// Schema is a typed data declaration. Deserialize turns untrusted input into
// validated values and fails with *openschema.ValidationError; Serialize
// turns domain values into wire-safe values and fails with
// *openschema.SerializationError; ToSpec projects the declaration into an
// OpenAPI schema fragment.
type Schema interface {
	Deserialize(v any) (any, error)
	Serialize(v any) (any, error)
	ToSpec(c *spec.Collection, opt spec.Options) any
	Meta() *Base
	Clone() Schema
}

// OpenAPI data types.
const (
	TypeString  = "string"
	TypeInteger = "integer"
	TypeNumber  = "number"
	TypeBoolean = "boolean"
	TypeArray   = "array"
	TypeObject  = "object"
)

// Transform is a pre- or post-processing hook.
type Transform func(v any) (any, error)

// Base holds the options shared by every schema kind.
type Base struct {
	kind       string
	dataType   string
	dataFormat string

	name       string
	alias      string
	attr       string
	required   *bool
	nullable   bool
	def        any
	readOnly   bool
	writeOnly  bool
	allowBlank bool
	deprecated bool

	choices    []any
	validators []openschema.Validator

	description string
	example     any
	examples    map[string]any
	style       *openschema.Style
	fallback    func(any) any
	getter      func(any) (any, error)

	serializePre    Transform
	serializePost   Transform
	deserializePre  Transform
	deserializePost Transform
}

func newBase(kind, dataType, dataFormat string) Base {
	return Base{kind: kind, dataType: dataType, dataFormat: dataFormat, def: openschema.Empty, example: openschema.Empty}
}

// Kind names the schema kind, for example "Integer" or a model name.
func (b *Base) Kind() string { return b.kind }

// DataType returns the OpenAPI type.
func (b *Base) DataType() string { return b.dataType }

// DataFormat returns the OpenAPI format.
func (b *Base) DataFormat() string { return b.dataFormat }

// Name returns the declared field name, empty for standalone schemas.
func (b *Base) Name() string { return b.name }

// Alias returns the wire key.
func (b *Base) Alias() string { return b.alias }

// Attr returns the internal key.
func (b *Base) Attr() string { return b.attr }

// Required reports the field's own required flag. Without an explicit
// setting a field is required unless it has a default.
func (b *Base) Required() bool {
	if b.required != nil {
		return *b.required
	}
	return openschema.IsEmpty(b.def)
}

func (b *Base) Nullable() bool   { return b.nullable }
func (b *Base) ReadOnly() bool   { return b.readOnly }
func (b *Base) WriteOnly() bool  { return b.writeOnly }
func (b *Base) AllowBlank() bool { return b.allowBlank }
func (b *Base) Deprecated() bool { return b.deprecated }
func (b *Base) Choices() []any   { return slices.Clone(b.choices) }

// Description returns the OpenAPI description.
func (b *Base) Description() string { return b.description }

// Example returns the declared example, or openschema.Empty.
func (b *Base) Example() any { return b.example }

// Examples returns named examples used by parameter objects.
func (b *Base) Examples() map[string]any { return maps.Clone(b.examples) }

// Style returns the parameter style, or nil when the location default applies.
func (b *Base) Style() *openschema.Style { return b.style }

// HasDefault reports whether a default is configured.
func (b *Base) HasDefault() bool { return !openschema.IsEmpty(b.def) }

// Default evaluates the default, calling it when it is a producer.
func (b *Base) Default() (any, bool) {
	if openschema.IsEmpty(b.def) {
		return nil, false
	}
	if fn, ok := b.def.(func() any); ok {
		return fn(), true
	}
	return b.def, true
}

// bind attaches the field name; alias and attr fall back to it.
func (b *Base) bind(name string) {
	b.name = name
	if b.alias == "" {
		b.alias = name
	}
	if b.attr == "" {
		b.attr = name
	}
}

func (b Base) clone() Base {
	c := b
	c.choices = slices.Clone(b.choices)
	c.validators = slices.Clone(b.validators)
	c.examples = maps.Clone(b.examples)
	if b.required != nil {
		r := *b.required
		c.required = &r
	}
	if b.style != nil {
		s := *b.style
		c.style = &s
	}
	return c
}

// finish installs kind validators ahead of the choice check and the
// caller's own validators.
func (b *Base) finish(kindValidators ...openschema.Validator) {
	vs := make([]openschema.Validator, 0, len(kindValidators)+len(b.validators)+1)
	vs = append(vs, kindValidators...)
	if len(b.choices) > 0 {
		vs = append(vs, rules.OneOf(b.choices...))
	}
	b.validators = append(vs, b.validators...)
}

// deserialize runs the shared pipeline: null check, preprocess, coercion,
// every validator (aggregated), postprocess.
func (b *Base) deserialize(v any, coerce func(any) (any, error)) (any, error) {
	if isNil(v) {
		if b.nullable {
			return nil, nil
		}
		return nil, openschema.NewValidationError(i18n.T(i18n.CodeNull, nil))
	}
	var err error
	if b.deserializePre != nil {
		if v, err = b.deserializePre(v); err != nil {
			return nil, rules.AsValidation(err)
		}
	}
	out, err := coerce(v)
	if err != nil {
		return nil, rules.AsValidation(err)
	}
	if err := b.validate(out); err != nil {
		return nil, err
	}
	if b.deserializePost != nil {
		if out, err = b.deserializePost(out); err != nil {
			return nil, rules.AsValidation(err)
		}
	}
	return out, nil
}

func (b *Base) validate(v any) error {
	agg := openschema.NewValidationError()
	for _, fn := range b.validators {
		agg.Merge(rules.AsValidation(fn(v)))
	}
	if agg.NonEmpty() {
		return agg
	}
	return nil
}

// serialize runs the shared pipeline: null check, preprocess, conversion,
// fallback on failure, postprocess.
func (b *Base) serialize(v any, conv func(any) (any, error)) (any, error) {
	out, err := b.convert(v, conv)
	if err != nil {
		if b.fallback == nil {
			return nil, err
		}
		logger.L().Debug().Str("schema", b.kind).Str("field", b.name).Err(err).Msg("serialization fallback used")
		out = b.fallback(v)
	} else if isNil(v) {
		return nil, nil
	}
	if b.serializePost != nil {
		if out, err = b.serializePost(out); err != nil {
			return nil, b.serializationError(err)
		}
	}
	return out, nil
}

func (b *Base) convert(v any, conv func(any) (any, error)) (any, error) {
	if isNil(v) {
		if b.nullable {
			return nil, nil
		}
		return nil, b.serializationError(openschema.ErrNotNullable)
	}
	var err error
	if b.serializePre != nil {
		if v, err = b.serializePre(v); err != nil {
			return nil, b.serializationError(err)
		}
	}
	out, err := conv(v)
	if err != nil {
		return nil, b.serializationError(err)
	}
	return out, nil
}

func (b *Base) serializationError(err error) error {
	if _, ok := err.(*openschema.SerializationError); ok {
		return err
	}
	return &openschema.SerializationError{Schema: b.kind, Err: err}
}

// specFragment renders the options shared by every kind. self serializes
// the default into its wire form.
func (b *Base) specFragment(self Schema) map[string]any {
	m := map[string]any{
		"type":        spec.Str(b.dataType),
		"format":      spec.Str(b.dataFormat),
		"description": spec.Str(b.description),
		"nullable":    spec.True(b.nullable),
		"readOnly":    spec.True(b.readOnly),
		"writeOnly":   spec.True(b.writeOnly),
		"deprecated":  spec.True(b.deprecated),
	}
	if len(b.choices) > 0 {
		m["enum"] = slices.Clone(b.choices)
	}
	if !openschema.IsEmpty(b.example) {
		m["example"] = b.example
	}
	if _, producer := b.def.(func() any); !producer && b.HasDefault() && b.def != nil {
		if wire, err := self.Serialize(b.def); err == nil {
			m["default"] = wire
		}
	}
	return m
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}
