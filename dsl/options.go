package dsl

import (
	openschema "github.com/reoring/openschema"
	"github.com/reoring/openschema/rules"
)

// Option configures a schema at construction time. Options that do not
// apply to a kind are ignored by it.
type Option func(*settings)

type settings struct {
	Base

	strip      bool
	whitespace *bool
	minLength  int
	maxLength  int
	pattern    any

	bounds     rules.Bounds
	multipleOf *float64

	minItems    int
	maxItems    int
	uniqueItems bool

	minProps int
	maxProps int
	keys     Schema

	layout    string
	outLayout string
	withTZ    *bool

	requiredFields []string
	allRequired    bool
	unknown        *openschema.UnknownPolicy

	discriminator *Discriminator
}

func newSettings(b Base, opts []Option) *settings {
	st := &settings{Base: b, minLength: -1, maxLength: -1, minItems: -1, maxItems: -1, minProps: -1, maxProps: -1}
	for _, o := range opts {
		if o != nil {
			o(st)
		}
	}
	return st
}

// Alias sets the wire key of a field.
func Alias(s string) Option { return func(st *settings) { st.alias = s } }

// Attr sets the internal key of a field.
func Attr(s string) Option { return func(st *settings) { st.attr = s } }

// Required overrides the derived required flag.
func Required(v bool) Option { return func(st *settings) { st.required = &v } }

// Nullable allows nil in both directions.
func Nullable(v bool) Option { return func(st *settings) { st.nullable = v } }

// Default sets a value, or a func() any producer, used when the field is absent.
func Default(v any) Option { return func(st *settings) { st.def = v } }

// ReadOnly hides the field from input.
func ReadOnly() Option { return func(st *settings) { st.readOnly = true } }

// WriteOnly hides the field from output.
func WriteOnly() Option { return func(st *settings) { st.writeOnly = true } }

// AllowBlank accepts "" as a present value.
func AllowBlank() Option { return func(st *settings) { st.allowBlank = true } }

// Deprecated marks the schema deprecated in the document.
func Deprecated() Option { return func(st *settings) { st.deprecated = true } }

// Choices restricts values to a fixed set, emitted as enum.
func Choices(vs ...any) Option {
	return func(st *settings) { st.choices = append(st.choices, vs...) }
}

// Validators appends custom validators, run after the kind's own.
func Validators(vs ...openschema.Validator) Option {
	return func(st *settings) { st.validators = append(st.validators, vs...) }
}

// Description sets the document description.
func Description(s string) Option { return func(st *settings) { st.description = s } }

// Example sets the document example.
func Example(v any) Option { return func(st *settings) { st.example = v } }

// Examples sets named examples, used by parameter objects.
func Examples(m map[string]any) Option { return func(st *settings) { st.examples = m } }

// Format overrides the OpenAPI format, for example "email".
func Format(f string) Option { return func(st *settings) { st.dataFormat = f } }

// WithStyle sets the parameter style used when the schema is bound to a
// query, header, cookie or path parameter.
func WithStyle(name string, explode bool) Option {
	return func(st *settings) {
		s := openschema.NewStyle(name, explode)
		st.style = &s
	}
}

// Fallback replaces a failed serialization with fn(original). Returning
// openschema.Empty from a model field's fallback omits the field.
func Fallback(fn func(any) any) Option { return func(st *settings) { st.fallback = fn } }

// Getter computes a model field's output from the whole source object
// instead of looking up its attribute.
func Getter(fn func(obj any) (any, error)) Option { return func(st *settings) { st.getter = fn } }

// SerializePreprocess runs before conversion on output.
func SerializePreprocess(fn Transform) Option { return func(st *settings) { st.serializePre = fn } }

// SerializePostprocess runs after conversion on output.
func SerializePostprocess(fn Transform) Option { return func(st *settings) { st.serializePost = fn } }

// DeserializePreprocess runs before coercion on input.
func DeserializePreprocess(fn Transform) Option { return func(st *settings) { st.deserializePre = fn } }

// DeserializePostprocess runs after validation on input.
func DeserializePostprocess(fn Transform) Option {
	return func(st *settings) { st.deserializePost = fn }
}

// Strip trims surrounding whitespace from strings before validation.
func Strip() Option { return func(st *settings) { st.strip = true } }

// Whitespace controls whether empty or whitespace-only strings are
// accepted. It defaults to the AllowBlank setting.
func Whitespace(v bool) Option { return func(st *settings) { st.whitespace = &v } }

func MinLength(n int) Option { return func(st *settings) { st.minLength = n } }
func MaxLength(n int) Option { return func(st *settings) { st.maxLength = n } }

// Pattern takes a pattern string or a *regexp.Regexp; values must contain a match.
func Pattern(p any) Option { return func(st *settings) { st.pattern = p } }

func Gt(v float64) Option  { return func(st *settings) { st.bounds.Gt = &v } }
func Gte(v float64) Option { return func(st *settings) { st.bounds.Gte = &v } }
func Lt(v float64) Option  { return func(st *settings) { st.bounds.Lt = &v } }
func Lte(v float64) Option { return func(st *settings) { st.bounds.Lte = &v } }

// MultipleOf requires numbers to be an exact decimal multiple of m.
func MultipleOf(m float64) Option { return func(st *settings) { st.multipleOf = &m } }

func MinItems(n int) Option { return func(st *settings) { st.minItems = n } }
func MaxItems(n int) Option { return func(st *settings) { st.maxItems = n } }

// UniqueItems rejects lists holding the same item twice.
func UniqueItems() Option { return func(st *settings) { st.uniqueItems = true } }

func MinProperties(n int) Option { return func(st *settings) { st.minProps = n } }
func MaxProperties(n int) Option { return func(st *settings) { st.maxProps = n } }

// Keys sets the schema applied to dict keys (String by default).
func Keys(s Schema) Option { return func(st *settings) { st.keys = s } }

// Layout sets the Go time layout used to parse dates and datetimes.
func Layout(l string) Option { return func(st *settings) { st.layout = l } }

// OutputLayout sets the Go time layout used to format dates and datetimes.
func OutputLayout(l string) Option { return func(st *settings) { st.outLayout = l } }

// WithTimezone requires aware (true) or naive (false) datetimes.
// Without it the package default applies; see SetDefaultWithTimezone.
func WithTimezone(v bool) Option { return func(st *settings) { st.withTZ = &v } }

// RequiredFields makes exactly the named fields of a model instance required,
// overriding each field's own flag.
func RequiredFields(names ...string) Option {
	return func(st *settings) { st.requiredFields = append(st.requiredFields, names...) }
}

// AllRequired makes every field of a model instance required.
func AllRequired() Option { return func(st *settings) { st.allRequired = true } }

// UnknownFields overrides the unknown-key policy of a model instance.
func UnknownFields(p openschema.UnknownPolicy) Option {
	return func(st *settings) { st.unknown = &p }
}

func configPanic(err error) {
	if err != nil {
		panic(err)
	}
}
