package openschema

import (
	"fmt"
	"io"
	"strings"
)

type empty struct{}

func (empty) String() string { return "<empty>" }

// Empty marks an absent value: an unset default, or a missing attribute
// handed to a serialization fallback. A fallback returning Empty omits the
// field from the output.
var Empty any = empty{}

// IsEmpty reports whether v is the Empty sentinel.
func IsEmpty(v any) bool {
	_, ok := v.(empty)
	return ok
}

// Validator checks a coerced value. It returns nil, a *ValidationError, or
// any other error whose text becomes a validation message.
type Validator func(v any) error

// UnknownPolicy controls how a Model handles input keys it does not declare.
type UnknownPolicy int

const (
	UnknownExclude UnknownPolicy = iota // Drop unknown keys.
	UnknownInclude                      // Copy unknown keys into the result untouched.
	UnknownError                        // Report each unknown key as a field error.
)

func (p UnknownPolicy) String() string {
	switch p {
	case UnknownInclude:
		return "include"
	case UnknownError:
		return "error"
	default:
		return "exclude"
	}
}

// ParseUnknownPolicy maps "exclude", "include" or "error" to a policy.
func ParseUnknownPolicy(s string) (UnknownPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "exclude", "":
		return UnknownExclude, nil
	case "include":
		return UnknownInclude, nil
	case "error":
		return UnknownError, nil
	}
	return UnknownExclude, NewConfigError("ParseUnknownPolicy", "unknown_fields must be one of exclude, include, error; got %q", s)
}

// Location is where a parameter travels in an HTTP request.
type Location string

const (
	InQuery  Location = "query"
	InHeader Location = "header"
	InCookie Location = "cookie"
	InPath   Location = "path"
)

// Style names from the OpenAPI parameter serialization vocabulary.
const (
	StyleForm           = "form"
	StyleSimple         = "simple"
	StyleMatrix         = "matrix"
	StyleLabel          = "label"
	StyleSpaceDelimited = "spaceDelimited"
	StylePipeDelimited  = "pipeDelimited"
	StyleDeepObject     = "deepObject"
)

// Style is an immutable (name, explode) pair.
type Style struct {
	Name    string
	Explode bool
}

// NewStyle returns a Style. An empty name leaves the choice to the location default.
func NewStyle(name string, explode bool) Style { return Style{Name: name, Explode: explode} }

func (s Style) String() string { return fmt.Sprintf("%s(explode=%t)", s.Name, s.Explode) }

// File is an uploaded file supplied by the HTTP layer.
type File interface {
	Name() string
	Size() int64
	Open() (io.ReadCloser, error)
}

// FileURL is implemented by stored files that can be linked to.
type FileURL interface {
	URL() string
}
