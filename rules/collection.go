package rules

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	openschema "github.com/reoring/openschema"
	"github.com/reoring/openschema/i18n"
)

// Length checks len(v) for strings (in runes), slices, arrays and maps.
// A negative min or max leaves that side unbounded.
func Length(min, max int) openschema.Validator {
	return func(v any) error {
		n, ok := Len(v)
		if !ok {
			return nil
		}
		switch {
		case min >= 0 && max >= 0:
			if n < min || n > max {
				return fail(i18n.CodeLengthBetween, map[string]string{"min": strconv.Itoa(min), "max": strconv.Itoa(max)})
			}
		case min >= 0:
			if n < min {
				return fail(i18n.CodeLengthMin, map[string]string{"min": strconv.Itoa(min)})
			}
		case max >= 0:
			if n > max {
				return fail(i18n.CodeLengthMax, map[string]string{"max": strconv.Itoa(max)})
			}
		}
		return nil
	}
}

// Len returns the length of v using rune count for strings.
func Len(v any) (int, bool) {
	if s, ok := v.(string); ok {
		return utf8.RuneCountInString(s), true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return utf8.RuneCountInString(rv.String()), true
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len(), true
	}
	return 0, false
}

// Pattern accepts a pattern string or a compiled *regexp.Regexp and checks
// that the value contains a match anywhere.
func Pattern(p any) (openschema.Validator, error) {
	var re *regexp.Regexp
	switch x := p.(type) {
	case *regexp.Regexp:
		re = x
	case string:
		var err error
		if re, err = regexp.Compile(x); err != nil {
			return nil, openschema.NewConfigError("Pattern", "%v", err)
		}
	default:
		return nil, openschema.NewConfigError("Pattern", "want string or *regexp.Regexp, got %T", p)
	}
	return func(v any) error {
		s, ok := v.(string)
		if !ok {
			s = fmt.Sprint(v)
		}
		if !re.MatchString(s) {
			return fail(i18n.CodePattern, map[string]string{"value": s, "pattern": re.String()})
		}
		return nil
	}, nil
}

// OneOf checks membership in choices. Numbers compare by value, so 1 matches 1.0.
func OneOf(choices ...any) openschema.Validator {
	return func(v any) error {
		for _, c := range choices {
			if Equal(v, c) {
				return nil
			}
		}
		return fail(i18n.CodeChoices, map[string]string{"choices": FormatChoices(choices)})
	}
}

// FormatChoices renders choices as ["a", "b", 3].
func FormatChoices(choices []any) string {
	parts := make([]string, len(choices))
	for i, c := range choices {
		if s, ok := c.(string); ok {
			parts[i] = strconv.Quote(s)
		} else {
			parts[i] = fmt.Sprint(c)
		}
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Unique rejects slices and arrays holding the same item twice.
func Unique() openschema.Validator {
	return func(v any) error {
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return nil
		}
		seen := make([]any, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			item := rv.Index(i).Interface()
			for _, s := range seen {
				if Equal(s, item) {
					return fail(i18n.CodeUnique, nil)
				}
			}
			seen = append(seen, item)
		}
		return nil
	}
}

// Equal compares values deeply, treating numbers of different Go types as equal
// when their values match.
func Equal(a, b any) bool {
	fa, aNum := ToFloat(a)
	fb, bNum := ToFloat(b)
	if aNum && bNum {
		return fa == fb
	}
	return reflect.DeepEqual(a, b)
}
