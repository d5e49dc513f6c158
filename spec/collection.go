// Package spec assembles OpenAPI 3.0.3 documents from schema and parameter
// declarations: a per-document component registry, fragment pruning and
// merging, operations, and JSON/YAML export.
package spec

import (
	"fmt"
	"sync"

	"github.com/reoring/openschema/logger"
)

// Tag is an OpenAPI tag object.
type Tag struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Collection accumulates the components, tags and security scheme names of
// one document while its schemas are walked. Spec generation for a single
// document is expected to run on one goroutine at a time.
type Collection struct {
	id string

	mu       sync.Mutex
	order    []string
	schemas  map[string]any
	reserved map[string]struct{}
	tags     []Tag
	security []string
}

// NewCollection returns a standalone collection that is not tracked by the
// process-wide registry.
func NewCollection(id string) *Collection {
	return &Collection{id: id, schemas: map[string]any{}, reserved: map[string]struct{}{}}
}

var (
	registryMu sync.Mutex
	registry   = map[string]*Collection{}
)

// Get returns the registry collection for a document id, creating it on first use.
func Get(id string) *Collection {
	registryMu.Lock()
	defer registryMu.Unlock()
	c, ok := registry[id]
	if !ok {
		c = NewCollection(id)
		registry[id] = c
	}
	return c
}

// Reset drops the registry collection of a document id.
func Reset(id string) {
	registryMu.Lock()
	delete(registry, id)
	registryMu.Unlock()
	logger.L().Debug().Str("doc", id).Msg("collection reset")
}

// ResetAll drops every registry collection.
func ResetAll() {
	registryMu.Lock()
	registry = map[string]*Collection{}
	registryMu.Unlock()
	logger.L().Debug().Msg("all collections reset")
}

// ID returns the document id.
func (c *Collection) ID() string { return c.id }

// Reserve claims a component id before its fragment is built. It returns
// false when the id is already registered or being built, in which case the
// caller should only emit a reference.
func (c *Collection) Reserve(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.reserved[id]; ok {
		logger.L().Debug().Str("doc", c.id).Str("component", id).Msg("component reused")
		return false
	}
	c.reserved[id] = struct{}{}
	c.order = append(c.order, id)
	return true
}

// Register stores the fragment of component id, reserving it if needed.
func (c *Collection) Register(id string, fragment any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.reserved[id]; !ok {
		c.reserved[id] = struct{}{}
		c.order = append(c.order, id)
	}
	c.schemas[id] = fragment
	logger.L().Debug().Str("doc", c.id).Str("component", id).Msg("component registered")
}

// Schema returns the fragment registered under id.
func (c *Collection) Schema(id string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.schemas[id]
	return v, ok
}

// SchemaNames returns registered component ids in registration order.
func (c *Collection) SchemaNames() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.order))
	for _, id := range c.order {
		if _, ok := c.schemas[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

// Schemas returns a copy of every registered component.
func (c *Collection) Schemas() map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]any, len(c.schemas))
	for k, v := range c.schemas {
		out[k] = v
	}
	return out
}

// AddTag declares a tag. Redeclaring a name with a different description fails.
func (c *Collection) AddTag(t Tag) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, have := range c.tags {
		if have.Name != t.Name {
			continue
		}
		if have != t {
			return fmt.Errorf("spec: the tag %q already exists", t.Name)
		}
		return nil
	}
	c.tags = append(c.tags, t)
	return nil
}

// Tags returns declared tags in declaration order.
func (c *Collection) Tags() []Tag {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Tag(nil), c.tags...)
}

// AddSecurity records a security scheme name used by an operation.
func (c *Collection) AddSecurity(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, s := range c.security {
		if s == name {
			return
		}
	}
	c.security = append(c.security, name)
}

// Security returns the recorded security scheme names.
func (c *Collection) Security() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.security...)
}

// Options are passed down a schema walk.
type Options struct {
	// NeedRequired emits the "required" list of object schemas. Request
	// bodies set it; responses do not.
	NeedRequired bool
	// SchemaID overrides the component id of the schema being walked.
	SchemaID string
}

// Specer is implemented by anything that projects to a schema fragment.
type Specer interface {
	ToSpec(c *Collection, opt Options) any
}

// RefPrefix is the JSON reference prefix of component schemas.
const RefPrefix = "#/components/schemas/"

// Ref returns a reference object to component id.
func Ref(id string) map[string]any { return map[string]any{"$ref": RefPrefix + id} }
