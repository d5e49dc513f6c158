// Package echomw binds echo requests through openschema parameters and
// serializes responses through schemas.
package echomw

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/reoring/openschema/dsl"
	"github.com/reoring/openschema/logger"
	"github.com/reoring/openschema/middleware"
	"github.com/reoring/openschema/spec"
)

// Bind parses each request through b and stores the result in the request
// context. Binding failures are answered with 400, 404 or 415 and a JSON
// error payload.
func Bind(b *middleware.Binding) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			vars := make(map[string]string, len(c.ParamNames()))
			values := c.ParamValues()
			for i, name := range c.ParamNames() {
				if i < len(values) {
					vars[name] = values[i]
				}
			}
			req, err := b.Bind(c.Request(), vars)
			if err != nil {
				return respondError(c, err)
			}
			ctx := middleware.ContextWithRequest(c.Request().Context(), req)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

func respondError(c echo.Context, err error) error {
	status := middleware.Status(err)
	logger.L().Debug().Err(err).Int("status", status).Str("path", c.Path()).Msg("request binding failed")
	if payload, ok := middleware.ErrorPayload(err); ok {
		return c.JSON(status, payload)
	}
	if status == http.StatusUnsupportedMediaType {
		return c.JSON(status, map[string]any{"error": err.Error()})
	}
	return err
}

// Parsed fetches the request stored by Bind.
func Parsed(c echo.Context) (*middleware.Request, bool) {
	return middleware.RequestFromContext(c.Request().Context())
}

// Respond serializes v through s and writes it as JSON. A serialization
// failure is a server error and is returned to echo's error handler.
func Respond(c echo.Context, status int, s dsl.Schema, v any) error {
	out, err := s.Serialize(v)
	if err != nil {
		logger.L().Error().Err(err).Str("path", c.Path()).Msg("response serialization failed")
		return err
	}
	return c.JSON(status, out)
}

// Route converts an OpenAPI path template to echo's syntax:
// /users/{id} becomes /users/:id.
func Route(template string) string {
	var sb strings.Builder
	for {
		start := strings.IndexByte(template, '{')
		if start < 0 {
			break
		}
		end := strings.IndexByte(template[start:], '}')
		if end < 0 {
			break
		}
		sb.WriteString(template[:start])
		sb.WriteByte(':')
		sb.WriteString(template[start+1 : start+end])
		template = template[start+end+1:]
	}
	sb.WriteString(template)
	return sb.String()
}

// Operation is one documented route.
type Operation struct {
	Method  string
	Path    string // OpenAPI template, /users/{id}
	Spec    spec.Operation
	Binding *middleware.Binding
	Handler echo.HandlerFunc
}

// Register adds op to the echo router behind Bind and documents it in doc.
// The binding's fragments are appended to the operation's parameters.
func Register(e *echo.Echo, doc *spec.Document, op Operation, mw ...echo.MiddlewareFunc) (*echo.Route, error) {
	binding := op.Binding
	if binding == nil {
		binding = &middleware.Binding{}
	}
	documented := op.Spec
	documented.Parameters = append(append([]spec.Fragment(nil), op.Spec.Parameters...), binding.Fragments()...)
	if err := doc.AddOperation(op.Path, op.Method, &documented); err != nil {
		return nil, err
	}
	mws := append([]echo.MiddlewareFunc{Bind(binding)}, mw...)
	return e.Add(strings.ToUpper(op.Method), Route(op.Path), op.Handler, mws...), nil
}
