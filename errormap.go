package openschema

import (
	"bytes"
	"fmt"

	json "github.com/goccy/go-json"
)

// ErrorMap is the insertion-ordered rendering of an inner ValidationError
// node. Values are []string or nested *ErrorMap.
type ErrorMap struct {
	keys   []any
	values map[any]any
}

func (m *ErrorMap) set(k, v any) {
	if m.values == nil {
		m.values = map[any]any{}
	}
	m.keys = append(m.keys, k)
	m.values[k] = v
}

// Keys returns keys in insertion order.
func (m *ErrorMap) Keys() []any { return append([]any(nil), m.keys...) }

// Get returns the value stored under k.
func (m *ErrorMap) Get(k any) (any, bool) {
	v, ok := m.values[k]
	return v, ok
}

// Len returns the number of entries.
func (m *ErrorMap) Len() int { return len(m.keys) }

// Map converts the ordered map into plain maps keyed by fmt.Sprint(key).
func (m *ErrorMap) Map() map[string]any {
	out := make(map[string]any, len(m.keys))
	for _, k := range m.keys {
		v := m.values[k]
		if sub, ok := v.(*ErrorMap); ok {
			v = sub.Map()
		}
		out[fmt.Sprint(k)] = v
	}
	return out
}

// MarshalJSON writes entries in insertion order; integer keys become strings.
func (m *ErrorMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(fmt.Sprint(k))
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(m.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func marshalJSON(v any) ([]byte, error) { return json.Marshal(v) }
