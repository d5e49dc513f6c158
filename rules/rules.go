// Package rules provides the validators attached to schemas: range,
// multiple-of, length, pattern, choices and uniqueness checks, plus the
// All/Any/Check combinators and conditional rules over deserialized objects.
package rules

import (
	openschema "github.com/reoring/openschema"
	"github.com/reoring/openschema/i18n"
)

// Check builds a leaf validator from a predicate and a fixed message.
func Check(pred func(any) bool, msg string) openschema.Validator {
	return func(v any) error {
		if pred(v) {
			return nil
		}
		return openschema.NewValidationError(msg)
	}
}

// Wrap adapts a function returning foreign errors so that every failure is a
// *openschema.ValidationError.
func Wrap(fn func(any) error) openschema.Validator {
	return func(v any) error {
		return AsValidation(fn(v))
	}
}

// AsValidation converts err to a *ValidationError, keeping trees intact.
func AsValidation(err error) *openschema.ValidationError {
	if err == nil {
		return nil
	}
	if ve, ok := openschema.AsValidationError(err); ok {
		return ve
	}
	return openschema.NewValidationError(err.Error())
}

// All runs every validator and aggregates the failures.
func All(vs ...openschema.Validator) openschema.Validator {
	return func(v any) error {
		agg := openschema.NewValidationError()
		for _, fn := range vs {
			if fn == nil {
				continue
			}
			agg.Merge(AsValidation(fn(v)))
		}
		if agg.NonEmpty() {
			return agg
		}
		return nil
	}
}

// Any succeeds if one validator passes. When all fail, the branch with the
// fewest issues is returned.
func Any(vs ...openschema.Validator) openschema.Validator {
	return func(v any) error {
		var best *openschema.ValidationError
		for _, fn := range vs {
			if fn == nil {
				continue
			}
			ve := AsValidation(fn(v))
			if ve == nil {
				return nil
			}
			if best == nil || len(ve.Issues()) < len(best.Issues()) {
				best = ve
			}
		}
		if best == nil {
			return nil
		}
		return best
	}
}

func fail(code string, data map[string]string) error {
	return openschema.NewValidationError(i18n.T(code, data))
}
