package spec

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Version is the OpenAPI version written into documents.
const Version = "3.0.3"

// Info is the document info object.
type Info struct {
	Title       string
	Version     string
	Description string
}

// Document is an OpenAPI document under construction. Its components live
// in the registry collection of its id.
type Document struct {
	info            Info
	servers         []string
	c               *Collection
	paths           map[string]map[string]map[string]any
	pathOrder       []string
	securitySchemes map[string]any
}

// NewDocument starts a document backed by the registry collection id.
func NewDocument(id string, info Info, servers ...string) *Document {
	return NewDocumentWith(Get(id), info, servers...)
}

// NewDocumentWith starts a document backed by an explicit collection.
func NewDocumentWith(c *Collection, info Info, servers ...string) *Document {
	return &Document{
		info:            info,
		servers:         servers,
		c:               c,
		paths:           map[string]map[string]map[string]any{},
		securitySchemes: map[string]any{},
	}
}

// Collection returns the component collection of the document.
func (d *Document) Collection() *Collection { return d.c }

// AddOperation renders op under path and method.
func (d *Document) AddOperation(path, method string, op *Operation) error {
	if !strings.HasPrefix(path, "/") {
		return fmt.Errorf("spec: the path must start with a \"/\": %q", path)
	}
	method = strings.ToLower(method)
	item, ok := d.paths[path]
	if !ok {
		item = map[string]map[string]any{}
		d.paths[path] = item
		d.pathOrder = append(d.pathOrder, path)
	}
	if _, dup := item[method]; dup {
		return fmt.Errorf("spec: operation %s %s already exists", strings.ToUpper(method), path)
	}
	item[method] = op.ToSpec(d.c)
	return nil
}

// AddSecurityScheme declares a security scheme object by name.
func (d *Document) AddSecurityScheme(name string, scheme map[string]any) {
	d.securitySchemes[name] = scheme
}

// AddTag declares a document-level tag.
func (d *Document) AddTag(t Tag) error { return d.c.AddTag(t) }

// Build returns the cleaned document tree.
func (d *Document) Build() map[string]any {
	servers := make([]any, 0, len(d.servers))
	for _, s := range d.servers {
		servers = append(servers, map[string]any{"url": s})
	}
	tags := make([]any, 0)
	for _, t := range d.c.Tags() {
		tags = append(tags, map[string]any{"name": t.Name, "description": Str(t.Description)})
	}
	paths := map[string]any{}
	for _, p := range d.pathOrder {
		ops := map[string]any{}
		for m, op := range d.paths[p] {
			ops[m] = op
		}
		paths[p] = ops
	}
	security := make(map[string]any, len(d.securitySchemes))
	for name, s := range d.securitySchemes {
		security[name] = s
	}

	title := d.info.Title
	if title == "" {
		title = "API Document"
	}
	version := d.info.Version
	if version == "" {
		version = "0.1.0"
	}
	doc := map[string]any{
		"openapi": Version,
		"info": map[string]any{
			"title":       title,
			"version":     version,
			"description": Str(d.info.Description),
		},
		"servers": servers,
		"paths":   Protect{Value: paths},
		"components": map[string]any{
			"schemas":         d.c.Schemas(),
			"securitySchemes": security,
		},
		"tags": tags,
	}
	out, _ := Clean(doc).(map[string]any)
	return out
}

// JSON encodes the document.
func (d *Document) JSON() ([]byte, error) { return json.Marshal(d.Build()) }

// YAML encodes the document.
func (d *Document) YAML() ([]byte, error) { return yaml.Marshal(d.Build()) }

// Paths returns the registered paths in insertion order.
func (d *Document) Paths() []string { return append([]string(nil), d.pathOrder...) }

// Methods returns the methods registered under path, sorted.
func (d *Document) Methods(path string) []string {
	var out []string
	for m := range d.paths[path] {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

// Validate loads the rendered document with kin-openapi and runs its
// structural validation.
func (d *Document) Validate(ctx context.Context) error {
	raw, err := d.JSON()
	if err != nil {
		return err
	}
	return Validate(ctx, raw)
}

// Validate checks an encoded OpenAPI 3 document.
func Validate(ctx context.Context, raw []byte) error {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return fmt.Errorf("spec: load document: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return fmt.Errorf("spec: invalid document: %w", err)
	}
	return nil
}
