package spec

import "reflect"

// Protect keeps its value through Clean even when it is empty. Its content
// is still cleaned.
type Protect struct{ Value any }

// Skip is replaced by its value untouched; Clean does not descend into it.
type Skip struct{ Value any }

type invalid struct{}

// Clean removes nil values, empty maps and empty lists from a fragment tree,
// recursively. Maps become map[string]any and lists []any. A fragment that
// is itself empty cleans to nil.
func Clean(v any) any {
	out := clean(v)
	if _, bad := out.(invalid); bad {
		return nil
	}
	return out
}

func clean(v any) any {
	protected := false
	switch x := v.(type) {
	case Skip:
		return x.Value
	case Protect:
		protected = true
		v = x.Value
	}

	var out any = v
	var size = -1
	if v != nil {
		rv := reflect.ValueOf(v)
		switch rv.Kind() {
		case reflect.Map:
			if rv.Type().Key().Kind() == reflect.String {
				m := make(map[string]any, rv.Len())
				iter := rv.MapRange()
				for iter.Next() {
					cv := clean(iter.Value().Interface())
					if _, bad := cv.(invalid); !bad {
						m[iter.Key().String()] = cv
					}
				}
				out, size = m, len(m)
			}
		case reflect.Slice, reflect.Array:
			if rv.Type().Elem().Kind() != reflect.Uint8 {
				l := make([]any, 0, rv.Len())
				for i := 0; i < rv.Len(); i++ {
					cv := clean(rv.Index(i).Interface())
					if _, bad := cv.(invalid); !bad {
						l = append(l, cv)
					}
				}
				out, size = l, len(l)
			}
		case reflect.Pointer, reflect.Interface:
			if rv.IsNil() {
				out = nil
			}
		}
	}
	if protected {
		if out == nil {
			return map[string]any{}
		}
		return out
	}
	if out == nil || size == 0 {
		return invalid{}
	}
	return out
}

// Merge combines two fragments: lists concatenate, maps merge key by key,
// anything else resolves to b.
func Merge(a, b any) any {
	if la, ok := a.([]any); ok {
		if lb, ok := b.([]any); ok {
			return append(append([]any(nil), la...), lb...)
		}
	}
	if ma, ok := a.(map[string]any); ok {
		if mb, ok := b.(map[string]any); ok {
			out := make(map[string]any, len(ma)+len(mb))
			for k, v := range ma {
				out[k] = v
			}
			for k, v := range mb {
				if prev, ok := out[k]; ok {
					out[k] = Merge(prev, v)
					continue
				}
				out[k] = v
			}
			return out
		}
	}
	return b
}

// DefaultAsNil returns nil when v equals def, so Clean drops it.
func DefaultAsNil(v, def any) any {
	if reflect.DeepEqual(v, def) {
		return nil
	}
	return v
}

// Str returns nil for an empty string.
func Str(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// True returns nil for false.
func True(b bool) any {
	if !b {
		return nil
	}
	return true
}
