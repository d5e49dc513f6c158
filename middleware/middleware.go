// Package middleware holds the framework-neutral side of request binding:
// grouping the parameters of an operation, storing the parsed request in a
// context, and shaping errors for JSON responses.
package middleware

import (
	"context"
	"errors"
	"net/http"

	openschema "github.com/reoring/openschema"
	"github.com/reoring/openschema/param"
	"github.com/reoring/openschema/spec"
)

// InBody marks errors raised while parsing the request body.
const InBody openschema.Location = "body"

// Request is the parsed data of one request.
type Request struct {
	Path   map[string]any
	Query  map[string]any
	Header map[string]any
	Cookie map[string]any
	Body   any
}

// BindError records which part of the request failed to bind.
type BindError struct {
	Loc openschema.Location
	Err error
}

func (e *BindError) Error() string { return string(e.Loc) + ": " + e.Err.Error() }
func (e *BindError) Unwrap() error { return e.Err }

// Binding groups the parameters of one operation. Nil members are skipped.
type Binding struct {
	Path   *param.PathParameter
	Query  *param.Parameter
	Header *param.Parameter
	Cookie *param.Parameter
	Body   *param.RequestBody
}

// Bind parses r in path, query, header, cookie, body order and stops at the
// first failing location. vars holds the matched route variables.
func (b *Binding) Bind(r *http.Request, vars map[string]string) (*Request, error) {
	out := &Request{}
	var err error
	if b.Path != nil {
		if out.Path, err = b.Path.Parse(vars); err != nil {
			return nil, &BindError{Loc: openschema.InPath, Err: err}
		}
	}
	if b.Query != nil {
		if out.Query, err = b.Query.Parse(param.URLValues(r.URL.Query())); err != nil {
			return nil, &BindError{Loc: openschema.InQuery, Err: err}
		}
	}
	if b.Header != nil {
		if out.Header, err = b.Header.Parse(param.HeaderValues(r.Header)); err != nil {
			return nil, &BindError{Loc: openschema.InHeader, Err: err}
		}
	}
	if b.Cookie != nil {
		if out.Cookie, err = b.Cookie.Parse(param.CookieValues(r.Cookies())); err != nil {
			return nil, &BindError{Loc: openschema.InCookie, Err: err}
		}
	}
	if b.Body != nil {
		if out.Body, err = b.Body.Parse(r); err != nil {
			return nil, &BindError{Loc: InBody, Err: err}
		}
	}
	return out, nil
}

// Fragments lists the operation fragments of the bound parameters, for
// spec.Operation.Parameters.
func (b *Binding) Fragments() []spec.Fragment {
	var out []spec.Fragment
	if b.Path != nil {
		out = append(out, b.Path)
	}
	if b.Query != nil {
		out = append(out, b.Query)
	}
	if b.Header != nil {
		out = append(out, b.Header)
	}
	if b.Cookie != nil {
		out = append(out, b.Cookie)
	}
	if b.Body != nil {
		out = append(out, b.Body)
	}
	return out
}

// Status maps a binding error to an HTTP status. Path variables that fail
// to deserialize mean the resource does not exist.
func Status(err error) int {
	var ume *param.UnsupportedMediaTypeError
	if errors.As(err, &ume) {
		return http.StatusUnsupportedMediaType
	}
	var be *BindError
	if errors.As(err, &be) && be.Loc == openschema.InPath {
		return http.StatusNotFound
	}
	if _, ok := openschema.AsValidationError(err); ok {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// ErrorPayload shapes a validation failure for JSON responses: the nested
// error tree and its flattened issues. ok is false for other errors.
func ErrorPayload(err error) (payload map[string]any, ok bool) {
	ve, ok := openschema.AsValidationError(err)
	if !ok {
		return nil, false
	}
	return map[string]any{"errors": ve.Format(), "issues": ve.Issues()}, true
}

type ctxKeyRequest struct{}

// ContextWithRequest attaches a parsed request to ctx.
func ContextWithRequest(ctx context.Context, r *Request) context.Context {
	return context.WithValue(ctx, ctxKeyRequest{}, r)
}

// RequestFromContext retrieves the parsed request of ctx.
func RequestFromContext(ctx context.Context) (*Request, bool) {
	r, ok := ctx.Value(ctxKeyRequest{}).(*Request)
	return r, ok
}
