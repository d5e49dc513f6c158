package spec

import (
	"net/http"
	"strconv"
)

// Fragment is implemented by parameters; it returns a partial operation
// object such as {"parameters": [...]} or {"requestBody": {...}}.
type Fragment interface {
	Fragment(c *Collection) map[string]any
}

// Response describes one operation response.
type Response struct {
	Status      int
	Description string
	ContentType string // defaults to application/json
	Schema      Specer // nil for an empty body
}

// Operation is an OpenAPI operation assembled from schema declarations.
type Operation struct {
	OperationID string
	Summary     string
	Description string
	Tags        []string
	Deprecated  bool
	Security    []string
	Parameters  []Fragment
	Responses   []Response
}

// ToSpec renders the operation, merging parameter fragments in order.
func (o *Operation) ToSpec(c *Collection) map[string]any {
	responses := map[string]any{}
	for _, r := range o.Responses {
		responses[strconv.Itoa(r.Status)] = r.toSpec(c)
	}
	if len(responses) == 0 {
		responses["200"] = map[string]any{"description": http.StatusText(http.StatusOK)}
	}

	var security []any
	for _, name := range o.Security {
		c.AddSecurity(name)
		security = append(security, map[string]any{name: []any{}})
	}

	tags := make([]any, 0, len(o.Tags))
	for _, t := range o.Tags {
		tags = append(tags, t)
	}

	var out any = map[string]any{
		"operationId": Str(o.OperationID),
		"summary":     Str(o.Summary),
		"description": Str(o.Description),
		"tags":        tags,
		"deprecated":  True(o.Deprecated),
		"responses":   responses,
		"security":    security,
	}
	for _, p := range o.Parameters {
		out = Merge(out, p.Fragment(c))
	}
	return out.(map[string]any)
}

func (r Response) toSpec(c *Collection) map[string]any {
	desc := r.Description
	if desc == "" {
		desc = http.StatusText(r.Status)
	}
	out := map[string]any{"description": desc}
	if r.Schema != nil {
		ct := r.ContentType
		if ct == "" {
			ct = "application/json"
		}
		out["content"] = map[string]any{ct: map[string]any{"schema": r.Schema.ToSpec(c, Options{})}}
	}
	return out
}
