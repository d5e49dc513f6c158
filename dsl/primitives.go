package dsl

import (
	"encoding"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	openschema "github.com/reoring/openschema"
	"github.com/reoring/openschema/i18n"
	"github.com/reoring/openschema/rules"
	"github.com/reoring/openschema/spec"
)

func invalid(code string) error { return openschema.NewValidationError(i18n.T(code, nil)) }

// ---- String / Password ----

// StringSchema accepts only string input; it never stringifies other types.
type StringSchema struct {
	Base
	strip      bool
	whitespace bool
	minLength  int
	maxLength  int
	pattern    string
}

// String returns a string schema. Empty and whitespace-only strings are
// rejected unless AllowBlank or Whitespace(true) is set.
func String(opts ...Option) *StringSchema {
	return newString(newSettings(newBase("String", TypeString, ""), opts))
}

// Password is a write-only String with format "password".
func Password(opts ...Option) *StringSchema {
	b := newBase("Password", TypeString, "password")
	b.writeOnly = true
	return newString(newSettings(b, opts))
}

func newString(st *settings) *StringSchema {
	s := &StringSchema{Base: st.Base, strip: st.strip, whitespace: st.allowBlank, minLength: st.minLength, maxLength: st.maxLength}
	if st.whitespace != nil {
		s.whitespace = *st.whitespace
	}
	var kv []openschema.Validator
	if s.minLength >= 0 || s.maxLength >= 0 {
		kv = append(kv, rules.Length(s.minLength, s.maxLength))
	}
	if st.pattern != nil {
		v, err := rules.Pattern(st.pattern)
		configPanic(err)
		s.pattern = patternText(st.pattern)
		kv = append(kv, v)
	}
	s.finish(kv...)
	return s
}

func patternText(p any) string {
	if st, ok := p.(fmt.Stringer); ok {
		return st.String()
	}
	return fmt.Sprint(p)
}

// numberText is the json.Number shape of decoders that keep numbers as
// text; such values are numbers, not strings.
type numberText interface {
	Float64() (float64, error)
	Int64() (int64, error)
}

func (s *StringSchema) Meta() *Base { return &s.Base }

func (s *StringSchema) Clone() Schema {
	c := *s
	c.Base = s.Base.clone()
	return &c
}

func (s *StringSchema) Deserialize(v any) (any, error) { return s.deserialize(v, s.coerce) }

func (s *StringSchema) coerce(v any) (any, error) {
	str, ok := v.(string)
	if !ok {
		if _, num := v.(numberText); num {
			return nil, invalid(i18n.CodeNotString)
		}
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.String {
			return nil, invalid(i18n.CodeNotString)
		}
		str = rv.String()
	}
	if s.strip {
		str = strings.TrimSpace(str)
	}
	if !s.whitespace && strings.TrimSpace(str) == "" {
		return nil, invalid(i18n.CodeWhitespace)
	}
	return str, nil
}

func (s *StringSchema) Serialize(v any) (any, error) { return s.serialize(v, stringify) }

func stringify(v any) (any, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case []byte:
		return string(x), nil
	case fmt.Stringer:
		return x.String(), nil
	case encoding.TextMarshaler:
		b, err := x.MarshalText()
		return string(b), err
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.String {
		return rv.String(), nil
	}
	return fmt.Sprint(v), nil
}

func (s *StringSchema) ToSpec(*spec.Collection, spec.Options) any {
	m := s.specFragment(s)
	if s.minLength >= 0 {
		m["minLength"] = s.minLength
	}
	if s.maxLength >= 0 {
		m["maxLength"] = s.maxLength
	}
	m["pattern"] = spec.Str(s.pattern)
	return m
}

// ---- Integer / Float ----

type number struct {
	bounds     rules.Bounds
	multipleOf *float64
}

func newNumber(st *settings) (number, []openschema.Validator) {
	n := number{bounds: st.bounds, multipleOf: st.multipleOf}
	var kv []openschema.Validator
	if !n.bounds.IsZero() {
		v, err := rules.RangeOf(n.bounds)
		configPanic(err)
		kv = append(kv, v)
	}
	if n.multipleOf != nil {
		v, err := rules.MultipleOf(*n.multipleOf)
		configPanic(err)
		kv = append(kv, v)
	}
	return n, kv
}

func (n number) spec(m map[string]any) {
	b := n.bounds
	switch {
	case b.Lt != nil:
		m["maximum"], m["exclusiveMaximum"] = *b.Lt, true
	case b.Lte != nil:
		m["maximum"] = *b.Lte
	}
	switch {
	case b.Gt != nil:
		m["minimum"], m["exclusiveMinimum"] = *b.Gt, true
	case b.Gte != nil:
		m["minimum"] = *b.Gte
	}
	if n.multipleOf != nil {
		m["multipleOf"] = *n.multipleOf
	}
}

// IntegerSchema accepts any value whose float form is a whole number:
// 1, 1.0 and "1.0" pass, "1.5" does not. It yields int.
type IntegerSchema struct {
	Base
	number
}

func Integer(opts ...Option) *IntegerSchema {
	st := newSettings(newBase("Integer", TypeInteger, ""), opts)
	n, kv := newNumber(st)
	s := &IntegerSchema{Base: st.Base, number: n}
	s.finish(kv...)
	return s
}

func (s *IntegerSchema) Meta() *Base { return &s.Base }

func (s *IntegerSchema) Clone() Schema {
	c := *s
	c.Base = s.Base.clone()
	return &c
}

func (s *IntegerSchema) Deserialize(v any) (any, error) { return s.deserialize(v, coerceInt) }

func coerceInt(v any) (any, error) {
	switch x := v.(type) {
	case int:
		return x, nil
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	case json.Number:
		return parseInt(x.String())
	case decimal.Decimal:
		if !x.IsInteger() {
			return nil, invalid(i18n.CodeNotInteger)
		}
		return int(x.IntPart()), nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		if rv.Uint() > math.MaxInt {
			return nil, invalid(i18n.CodeNotInteger)
		}
		return int(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return wholeFloat(rv.Float())
	case reflect.String:
		return parseInt(strings.TrimSpace(rv.String()))
	}
	return nil, invalid(i18n.CodeNotInteger)
}

func parseInt(s string) (any, error) {
	if i, err := strconv.ParseInt(s, 10, 0); err == nil {
		return int(i), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, invalid(i18n.CodeNotInteger)
	}
	return wholeFloat(f)
}

func wholeFloat(f float64) (any, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || f >= math.MaxInt64 || f < math.MinInt64 {
		return nil, invalid(i18n.CodeNotInteger)
	}
	return int(f), nil
}

func (s *IntegerSchema) Serialize(v any) (any, error) { return s.serialize(v, toInt) }

func toInt(v any) (any, error) {
	switch x := v.(type) {
	case int:
		return x, nil
	case string:
		return strconv.Atoi(strings.TrimSpace(x))
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	}
	if f, ok := rules.ToFloat(v); ok {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("cannot convert %v to integer", f)
		}
		return int(f), nil
	}
	return nil, fmt.Errorf("cannot convert %T to integer", v)
}

func (s *IntegerSchema) ToSpec(*spec.Collection, spec.Options) any {
	m := s.specFragment(s)
	s.number.spec(m)
	return m
}

// FloatSchema converts numbers and numeric strings to float64. NaN and
// infinities are rejected since they have no JSON form.
type FloatSchema struct {
	Base
	number
}

func Float(opts ...Option) *FloatSchema {
	st := newSettings(newBase("Float", TypeNumber, "float"), opts)
	n, kv := newNumber(st)
	s := &FloatSchema{Base: st.Base, number: n}
	s.finish(kv...)
	return s
}

func (s *FloatSchema) Meta() *Base { return &s.Base }

func (s *FloatSchema) Clone() Schema {
	c := *s
	c.Base = s.Base.clone()
	return &c
}

func (s *FloatSchema) Deserialize(v any) (any, error) {
	return s.deserialize(v, func(v any) (any, error) {
		f, err := toFloat(v)
		if err != nil {
			return nil, invalid(i18n.CodeNotFloat)
		}
		return f, nil
	})
}

func (s *FloatSchema) Serialize(v any) (any, error) {
	return s.serialize(v, func(v any) (any, error) { return toFloat(v) })
}

func toFloat(v any) (float64, error) {
	var f float64
	switch x := v.(type) {
	case bool:
		if x {
			f = 1
		}
	case string:
		var err error
		if f, err = strconv.ParseFloat(strings.TrimSpace(x), 64); err != nil {
			return 0, err
		}
	default:
		var ok bool
		if f, ok = rules.ToFloat(v); !ok {
			return 0, fmt.Errorf("cannot convert %T to float", v)
		}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("non-finite float %v", f)
	}
	return f, nil
}

func (s *FloatSchema) ToSpec(*spec.Collection, spec.Options) any {
	m := s.specFragment(s)
	s.number.spec(m)
	return m
}

// ---- Boolean ----

// BooleanSchema accepts exactly true, false, 1, 0, "1", "0", "true",
// "false", "True" and "False".
type BooleanSchema struct{ Base }

func Boolean(opts ...Option) *BooleanSchema {
	st := newSettings(newBase("Boolean", TypeBoolean, ""), opts)
	s := &BooleanSchema{Base: st.Base}
	s.finish()
	return s
}

func (s *BooleanSchema) Meta() *Base { return &s.Base }

func (s *BooleanSchema) Clone() Schema {
	c := *s
	c.Base = s.Base.clone()
	return &c
}

func (s *BooleanSchema) Deserialize(v any) (any, error) {
	return s.deserialize(v, func(v any) (any, error) {
		if b, ok := lookupBool(v); ok {
			return b, nil
		}
		return nil, invalid(i18n.CodeNotBoolean)
	})
}

func lookupBool(v any) (bool, bool) {
	switch x := v.(type) {
	case bool:
		return x, true
	case string:
		switch x {
		case "1", "true", "True":
			return true, true
		case "0", "false", "False":
			return false, true
		}
		return false, false
	}
	if f, ok := rules.ToFloat(v); ok {
		switch f {
		case 1:
			return true, true
		case 0:
			return false, true
		}
	}
	return false, false
}

func (s *BooleanSchema) Serialize(v any) (any, error) {
	return s.serialize(v, func(v any) (any, error) {
		if b, ok := lookupBool(v); ok {
			return b, nil
		}
		return !reflect.ValueOf(v).IsZero(), nil
	})
}

func (s *BooleanSchema) ToSpec(*spec.Collection, spec.Options) any { return s.specFragment(s) }

// ---- Any ----

// AnySchema passes values through unchanged. It is nullable by default.
type AnySchema struct{ Base }

func Any(opts ...Option) *AnySchema {
	b := newBase("Any", "", "")
	b.nullable = true
	st := newSettings(b, opts)
	s := &AnySchema{Base: st.Base}
	s.finish()
	return s
}

func (s *AnySchema) Meta() *Base { return &s.Base }

func (s *AnySchema) Clone() Schema {
	c := *s
	c.Base = s.Base.clone()
	return &c
}

func (s *AnySchema) Deserialize(v any) (any, error) { return s.deserialize(v, passthrough) }
func (s *AnySchema) Serialize(v any) (any, error)   { return s.serialize(v, passthrough) }

func passthrough(v any) (any, error) { return v, nil }

// ToSpec returns a protected fragment: an empty schema still means "any value".
func (s *AnySchema) ToSpec(*spec.Collection, spec.Options) any {
	return spec.Protect{Value: s.specFragment(s)}
}

// ---- UUID ----

// UUIDSchema parses canonical UUID text into uuid.UUID.
type UUIDSchema struct{ Base }

func UUID(opts ...Option) *UUIDSchema {
	st := newSettings(newBase("UUID", TypeString, "uuid"), opts)
	s := &UUIDSchema{Base: st.Base}
	s.finish()
	return s
}

func (s *UUIDSchema) Meta() *Base { return &s.Base }

func (s *UUIDSchema) Clone() Schema {
	c := *s
	c.Base = s.Base.clone()
	return &c
}

func (s *UUIDSchema) Deserialize(v any) (any, error) {
	return s.deserialize(v, func(v any) (any, error) {
		u, err := toUUID(v)
		if err != nil {
			return nil, invalid(i18n.CodeNotUUID)
		}
		return u, nil
	})
}

func (s *UUIDSchema) Serialize(v any) (any, error) {
	return s.serialize(v, func(v any) (any, error) {
		u, err := toUUID(v)
		if err != nil {
			return nil, err
		}
		return u.String(), nil
	})
}

func toUUID(v any) (uuid.UUID, error) {
	switch x := v.(type) {
	case uuid.UUID:
		return x, nil
	case [16]byte:
		return uuid.UUID(x), nil
	case string:
		return uuid.Parse(x)
	case []byte:
		return uuid.ParseBytes(x)
	}
	return uuid.Nil, fmt.Errorf("cannot convert %T to uuid", v)
}

func (s *UUIDSchema) ToSpec(*spec.Collection, spec.Options) any { return s.specFragment(s) }
