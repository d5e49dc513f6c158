package rules

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	openschema "github.com/reoring/openschema"
	"github.com/reoring/openschema/i18n"
)

// Op defines simple comparison operators for If(...).Then(...)
type Op int

const (
	OpEq Op = iota
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
)

// Conditional composes conditional execution of validators over a
// deserialized object.
type Conditional struct {
	path string
	op   Op
	want any
	all  []Conditional // composite AND
	any  []Conditional // composite OR
}

// If builds a conditional that evaluates a path against a value using an operator.
// The path is a JSON Pointer like "/status" using wire keys.
func If(path string, op Op, want any) Conditional {
	return Conditional{path: normalizePath(path), op: op, want: want}
}

// IfAll builds a conditional that requires all conditions to hold.
func IfAll(conds ...Conditional) Conditional { return Conditional{all: conds} }

// IfAny builds a conditional that requires any condition to hold.
func IfAny(conds ...Conditional) Conditional { return Conditional{any: conds} }

// And combines the receiver with additional conditions using logical AND.
func (c Conditional) And(others ...Conditional) Conditional {
	return IfAll(append([]Conditional{c}, others...)...)
}

// Or combines the receiver with additional conditions using logical OR.
func (c Conditional) Or(others ...Conditional) Conditional {
	return IfAny(append([]Conditional{c}, others...)...)
}

// Holds evaluates the condition against v.
func (c Conditional) Holds(v any) bool { return evalConditional(v, c) }

// Then runs validators, aggregated, only when the condition holds.
func (c Conditional) Then(vs ...openschema.Validator) openschema.Validator {
	all := All(vs...)
	return func(v any) error {
		if !evalConditional(v, c) {
			return nil
		}
		return all(v)
	}
}

// Present fails at path when the value there is absent or nil.
func Present(path string) openschema.Validator {
	p := normalizePath(path)
	return func(v any) error {
		if got, ok := valueAtPath(v, p); ok && got != nil {
			return nil
		}
		return openschema.Nest(pointerLoc(p), openschema.NewValidationError(i18n.T(i18n.CodeRequired, nil)))
	}
}

// AtLeastOne ensures the collection at collectionPath has at least 1 element.
func AtLeastOne(collectionPath string) openschema.Validator {
	p := normalizePath(collectionPath)
	return func(v any) error {
		val, ok := valueAtPath(v, p)
		if !ok {
			return nil
		}
		rv := reflect.ValueOf(val)
		switch rv.Kind() {
		case reflect.Slice, reflect.Array:
			if rv.Len() == 0 {
				return openschema.Nest(pointerLoc(p), openschema.NewValidationError(i18n.T(i18n.CodeLengthMin, map[string]string{"min": "1"})))
			}
		default:
			// Not a collection; do not issue error here to avoid noise
		}
		return nil
	}
}

// UniqueBy ensures elements in a collection have unique key values.
// collectionPath is JSON Pointer to a list (e.g., "/items").
// keyPath is a relative path inside each element (e.g., "sku" or "/sku").
// Duplicates are reported at the duplicate element's key.
func UniqueBy(collectionPath, keyPath string) openschema.Validator {
	cp := normalizePath(collectionPath)
	kp := strings.TrimPrefix(keyPath, "/")
	return func(v any) error {
		val, ok := valueAtPath(v, cp)
		if !ok {
			return nil
		}
		rv := reflect.ValueOf(val)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return nil
		}
		seen := map[string]int{}
		out := openschema.NewValidationError()
		for i := 0; i < rv.Len(); i++ {
			kv, ok := valueAtPathWithin(rv.Index(i).Interface(), kp)
			if !ok {
				continue
			}
			key := fmt.Sprint(kv)
			if _, dup := seen[key]; dup {
				loc := append(pointerLoc(cp), i)
				loc = append(loc, pointerLoc("/"+kp)...)
				out.Merge(openschema.Nest(loc, openschema.NewValidationError(i18n.T(i18n.CodeUnique, nil))))
				continue
			}
			seen[key] = i
		}
		if out.NonEmpty() {
			return out
		}
		return nil
	}
}

// ------- helpers -------

func normalizePath(p string) string {
	if p == "" || p == "/" {
		return "/"
	}
	if p[0] != '/' {
		return "/" + p
	}
	return p
}

func pointerLoc(p string) []any {
	var loc []any
	for _, seg := range strings.Split(strings.TrimPrefix(p, "/"), "/") {
		if seg == "" {
			continue
		}
		loc = append(loc, unescape(seg))
	}
	return loc
}

func unescape(seg string) string {
	return strings.ReplaceAll(strings.ReplaceAll(seg, "~1", "/"), "~0", "~")
}

func evalConditional(v any, c Conditional) bool {
	// composite AND
	if len(c.all) > 0 {
		for _, it := range c.all {
			if !evalConditional(v, it) {
				return false
			}
		}
		return true
	}
	// composite OR
	if len(c.any) > 0 {
		for _, it := range c.any {
			if evalConditional(v, it) {
				return true
			}
		}
		return false
	}
	cur, ok := valueAtPath(v, c.path)
	if !ok {
		return false
	}
	return compare(cur, c.op, c.want)
}

func valueAtPath(v any, pointer string) (any, bool) {
	return valueAtPathWithin(v, strings.TrimPrefix(pointer, "/"))
}

// valueAtPathWithin navigates maps, structs and lists by wire keys.
func valueAtPathWithin(v any, rel string) (any, bool) {
	if rel == "" {
		return v, true
	}
	cur := v
	for _, seg := range strings.Split(rel, "/") {
		seg = unescape(seg)
		rv := reflect.ValueOf(cur)
		for rv.IsValid() && rv.Kind() == reflect.Pointer && !rv.IsNil() {
			rv = rv.Elem()
		}
		if !rv.IsValid() {
			return nil, false
		}
		if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= rv.Len() {
				return nil, false
			}
			cur = rv.Index(idx).Interface()
			continue
		}
		next, ok := openschema.Lookup(cur, seg)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

func compare(cur any, op Op, want any) bool {
	switch op {
	case OpEq:
		return Equal(cur, want)
	case OpNe:
		return !Equal(cur, want)
	case OpLt, OpLe, OpGt, OpGe:
		a, okA := ToFloat(cur)
		b, okB := ToFloat(want)
		if !okA || !okB {
			return false
		}
		switch op {
		case OpLt:
			return a < b
		case OpLe:
			return a <= b
		case OpGt:
			return a > b
		default:
			return a >= b
		}
	default:
		return false
	}
}
