package openschema

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError is a tree of client-input failures.
// A leaf carries messages; an inner node maps a field alias or list index
// to a child error. The two are mutually exclusive on a single node.
type ValidationError struct {
	messages []string
	keys     []any
	children map[any]*ValidationError
}

// NewValidationError returns a leaf error holding msgs.
func NewValidationError(msgs ...string) *ValidationError {
	return &ValidationError{messages: append([]string(nil), msgs...)}
}

// Errorf returns a leaf error with a single formatted message.
func Errorf(format string, args ...any) *ValidationError {
	return NewValidationError(fmt.Sprintf(format, args...))
}

// Concat appends the messages of other to e. Both nodes must be leaves.
func (e *ValidationError) Concat(other *ValidationError) *ValidationError {
	if other == nil {
		return e
	}
	if len(e.keys) > 0 || len(other.keys) > 0 {
		panic("openschema: Concat on a ValidationError that has children")
	}
	e.messages = append(e.messages, other.messages...)
	return e
}

// SetItem attaches child under key. Attaching to a node that already holds
// messages, or reusing a key, is a programming error and panics.
func (e *ValidationError) SetItem(key any, child *ValidationError) {
	if child == nil {
		return
	}
	if len(e.messages) > 0 {
		panic(fmt.Sprintf("openschema: SetItem(%v) on a ValidationError that has messages", key))
	}
	if e.children == nil {
		e.children = map[any]*ValidationError{}
	}
	if _, dup := e.children[key]; dup {
		panic(fmt.Sprintf("openschema: duplicate ValidationError key %v", key))
	}
	e.keys = append(e.keys, key)
	e.children[key] = child
}

// RootKey holds the messages of a container-level validator once the
// container also has field errors.
const RootKey = "__root__"

// Merge folds other into e, recursing where both trees hold the same key.
// Leaf messages meeting an inner node are kept under RootKey, so a node
// never carries both.
func (e *ValidationError) Merge(other *ValidationError) *ValidationError {
	if !other.NonEmpty() {
		return e
	}
	if len(other.keys) == 0 {
		if len(e.keys) == 0 {
			return e.Concat(other)
		}
		e.mergeAt(RootKey, NewValidationError(other.messages...))
		return e
	}
	if len(e.messages) > 0 {
		root := NewValidationError(e.messages...)
		e.messages = nil
		e.SetItem(RootKey, root)
	}
	for _, k := range other.keys {
		e.mergeAt(k, other.children[k])
	}
	return e
}

func (e *ValidationError) mergeAt(key any, child *ValidationError) {
	if mine := e.Child(key); mine != nil {
		mine.Merge(child)
		return
	}
	e.SetItem(key, child)
}

// Nest returns leaf attached under the path loc.
func Nest(loc []any, leaf *ValidationError) *ValidationError {
	out := leaf
	for i := len(loc) - 1; i >= 0; i-- {
		parent := NewValidationError()
		parent.SetItem(loc[i], out)
		out = parent
	}
	return out
}

// NonEmpty reports whether e carries messages or children.
func (e *ValidationError) NonEmpty() bool {
	return e != nil && (len(e.messages) > 0 || len(e.keys) > 0)
}

// Messages returns the leaf messages in insertion order.
func (e *ValidationError) Messages() []string { return append([]string(nil), e.messages...) }

// Keys returns child keys in insertion order.
func (e *ValidationError) Keys() []any { return append([]any(nil), e.keys...) }

// Child returns the child attached under key, or nil.
func (e *ValidationError) Child(key any) *ValidationError {
	if e == nil || e.children == nil {
		return nil
	}
	return e.children[key]
}

// Format renders the tree: a leaf becomes []string, an inner node an
// insertion-ordered *ErrorMap.
func (e *ValidationError) Format() any {
	if len(e.keys) == 0 {
		return e.Messages()
	}
	m := &ErrorMap{}
	for _, k := range e.keys {
		m.set(k, e.children[k].Format())
	}
	return m
}

// MarshalJSON encodes the formatted tree.
func (e *ValidationError) MarshalJSON() ([]byte, error) { return marshalJSON(e.Format()) }

// Issues flattens the tree depth-first, one Issue per message.
func (e *ValidationError) Issues() Issues {
	var out Issues
	e.walk(nil, func(loc []any, msg string) {
		out = AppendIssues(out, Issue{Loc: loc, Path: Pointer(loc), Message: msg})
	})
	return out
}

func (e *ValidationError) walk(loc []any, fn func([]any, string)) {
	for _, m := range e.messages {
		fn(append([]any(nil), loc...), m)
	}
	for _, k := range e.keys {
		e.children[k].walk(append(append([]any(nil), loc...), k), fn)
	}
}

func (e *ValidationError) Error() string {
	if len(e.keys) == 0 {
		return strings.Join(e.messages, "; ")
	}
	return e.Issues().Error()
}

// AsValidationError extracts a *ValidationError using errors.As.
func AsValidationError(err error) (*ValidationError, bool) {
	if err == nil {
		return nil, false
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// Issue is a single flattened validation message.
type Issue struct {
	Path    string `json:"path"` // JSON Pointer, for example /items/2/price.
	Loc     []any  `json:"loc"`
	Message string `json:"message"`
}

// Issues is a flattened ValidationError that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := min(n, maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(b, "%s at %s", iss[i].Message, iss[i].Path)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	return append(dst, more...)
}

// ErrNotNullable is wrapped by SerializationError when nil reaches a schema
// that does not accept it.
var ErrNotNullable = errors.New("the value cannot be nil")

// SerializationError reports a server-side mismatch between a domain value
// and the schema serializing it. It is never aggregated.
type SerializationError struct {
	Schema string
	Field  string
	Err    error
}

func (e *SerializationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s serialization error: %v", e.Schema, e.Err)
	}
	return fmt.Sprintf("%s field %q serialization error: %v", e.Schema, e.Field, e.Err)
}

func (e *SerializationError) Unwrap() error { return e.Err }

// ConfigError reports an invalid schema or parameter declaration.
type ConfigError struct {
	Op  string
	Msg string
}

func (e *ConfigError) Error() string { return "openschema: " + e.Op + ": " + e.Msg }

// NewConfigError builds a ConfigError with a formatted message.
func NewConfigError(op, format string, args ...any) *ConfigError {
	return &ConfigError{Op: op, Msg: fmt.Sprintf(format, args...)}
}
