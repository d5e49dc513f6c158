package rules

import (
	"math"
	"strconv"

	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"

	openschema "github.com/reoring/openschema"
	"github.com/reoring/openschema/i18n"
)

// Bound sets one side of a Range.
type Bound func(*Bounds)

// Bounds holds the four optional range limits.
type Bounds struct {
	Gt, Gte, Lt, Lte *float64
}

func Gt(v float64) Bound  { return func(b *Bounds) { b.Gt = &v } }
func Gte(v float64) Bound { return func(b *Bounds) { b.Gte = &v } }
func Lt(v float64) Bound  { return func(b *Bounds) { b.Lt = &v } }
func Lte(v float64) Bound { return func(b *Bounds) { b.Lte = &v } }

// Check rejects bounds that set both the exclusive and inclusive limit of one side.
func (b Bounds) Check() error {
	if b.Gt != nil && b.Gte != nil {
		return openschema.NewConfigError("Range", "can only use one of gt or gte")
	}
	if b.Lt != nil && b.Lte != nil {
		return openschema.NewConfigError("Range", "can only use one of lt or lte")
	}
	return nil
}

// IsZero reports whether no limit is set.
func (b Bounds) IsZero() bool { return b.Gt == nil && b.Gte == nil && b.Lt == nil && b.Lte == nil }

// Range returns a validator enforcing up to one lower and one upper bound.
func Range(opts ...Bound) (openschema.Validator, error) {
	var b Bounds
	for _, o := range opts {
		o(&b)
	}
	return RangeOf(b)
}

// RangeOf is Range for an already assembled Bounds value.
func RangeOf(b Bounds) (openschema.Validator, error) {
	if err := b.Check(); err != nil {
		return nil, err
	}
	return func(v any) error {
		f, ok := ToFloat(v)
		if !ok {
			return nil
		}
		agg := openschema.NewValidationError()
		check := func(code string, bound float64, ok bool) {
			if !ok {
				agg.Concat(openschema.NewValidationError(i18n.T(code, map[string]string{"bound": FormatNumber(bound)})))
			}
		}
		if b.Gt != nil {
			check(i18n.CodeGt, *b.Gt, f > *b.Gt)
		}
		if b.Gte != nil {
			check(i18n.CodeGte, *b.Gte, f >= *b.Gte)
		}
		if b.Lt != nil {
			check(i18n.CodeLt, *b.Lt, f < *b.Lt)
		}
		if b.Lte != nil {
			check(i18n.CodeLte, *b.Lte, f <= *b.Lte)
		}
		if agg.NonEmpty() {
			return agg
		}
		return nil
	}, nil
}

// MultipleOf returns a validator checking v % multiple == 0 in decimal
// arithmetic, so 1.01 is a multiple of 0.01.
func MultipleOf(multiple float64) (openschema.Validator, error) {
	if !(multiple > 0) || math.IsInf(multiple, 0) {
		return nil, openschema.NewConfigError("MultipleOf", `the value of "multipleOf" must be a number, strictly greater than 0`)
	}
	m := decimal.NewFromFloat(multiple)
	return func(v any) error {
		d, ok := ToDecimal(v)
		if !ok {
			return nil
		}
		if !d.Mod(m).IsZero() {
			return fail(i18n.CodeMultipleOf, map[string]string{"multiple": m.String()})
		}
		return nil
	}, nil
}

// ToFloat converts Go numeric values, json.Number and decimal.Decimal.
func ToFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case decimal.Decimal:
		return n.InexactFloat64(), true
	}
	return 0, false
}

// ToDecimal converts v using its shortest decimal text form.
func ToDecimal(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case decimal.Decimal:
		return n, true
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		return d, err == nil
	case float32:
		return decimal.NewFromFloat32(n), true
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return decimal.Decimal{}, false
		}
		return decimal.NewFromFloat(n), true
	}
	if f, ok := ToFloat(v); ok {
		if i, isInt := asInt64(v); isInt {
			return decimal.NewFromInt(i), true
		}
		return decimal.NewFromFloat(f), true
	}
	return decimal.Decimal{}, false
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	}
	return 0, false
}

// FormatNumber renders f without a trailing ".0" or exponent for common values.
func FormatNumber(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
