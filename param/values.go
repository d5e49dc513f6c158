// Package param binds HTTP request data to schemas. Each field of a
// parameter model is reshaped from raw wire text according to its location
// and OpenAPI style before the model deserializes it.
package param

import (
	"net/http"
	"net/textproto"
	"net/url"
	"sort"
)

// Values is the raw data of one request location.
type Values interface {
	// Get returns the first value of key.
	Get(key string) (string, bool)
	// All returns every value of key.
	All(key string) []string
	// Keys lists the keys present, sorted.
	Keys() []string
}

// URLValues adapts query strings and form bodies.
type URLValues url.Values

func (v URLValues) Get(key string) (string, bool) {
	vs, ok := v[key]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}

func (v URLValues) All(key string) []string { return append([]string(nil), v[key]...) }

func (v URLValues) Keys() []string { return sortedKeys(v) }

// HeaderValues adapts request headers; keys are matched case-insensitively.
type HeaderValues http.Header

func (h HeaderValues) Get(key string) (string, bool) {
	vs, ok := h[textproto.CanonicalMIMEHeaderKey(key)]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}

func (h HeaderValues) All(key string) []string {
	return append([]string(nil), h[textproto.CanonicalMIMEHeaderKey(key)]...)
}

func (h HeaderValues) Keys() []string { return sortedKeys(h) }

// MapValues adapts single-valued data such as path variables.
type MapValues map[string]string

func (m MapValues) Get(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

func (m MapValues) All(key string) []string {
	if v, ok := m[key]; ok {
		return []string{v}
	}
	return nil
}

func (m MapValues) Keys() []string { return sortedKeys(m) }

// CookieValues collects cookies by name; the first cookie of a name wins Get.
func CookieValues(cookies []*http.Cookie) URLValues {
	out := URLValues{}
	for _, c := range cookies {
		out[c.Name] = append(out[c.Name], c.Value)
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
