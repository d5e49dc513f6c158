package model2schema

import (
	"slices"
	"sort"
	"strings"

	openschema "github.com/reoring/openschema"
	"github.com/reoring/openschema/dsl"
	"github.com/reoring/openschema/logger"
)

type config struct {
	include []string
	extra   map[string][]dsl.Option
}

// Option configures Build.
type Option func(*config)

// Include keeps only the named fields.
func Include(names ...string) Option { return func(c *config) { c.include = names } }

// Extra appends schema options to one field. Naming a field that is not
// converted is an error.
func Extra(field string, opts ...dsl.Option) Option {
	return func(c *config) {
		if c.extra == nil {
			c.extra = map[string][]dsl.Option{}
		}
		c.extra[field] = append(c.extra[field], opts...)
	}
}

// Build converts every field of src and declares a model named name.
func Build(name string, src Source, opts ...Option) (*dsl.ModelDef, error) {
	cfg := &config{}
	for _, o := range opts {
		o(cfg)
	}
	fields, err := src.Fields()
	if err != nil {
		return nil, err
	}

	extra := make(map[string][]dsl.Option, len(cfg.extra))
	for k, v := range cfg.extra {
		extra[k] = v
	}
	b := dsl.Object(name)
	for _, f := range fields {
		if cfg.include != nil && !slices.Contains(cfg.include, f.Name) {
			continue
		}
		c, err := Match(f.Kind)
		if err != nil {
			return nil, err
		}
		s, err := c.Convert(f, extra[f.Name]...)
		if err != nil {
			return nil, err
		}
		delete(extra, f.Name)
		b.Field(f.Name, s)
	}
	if len(extra) > 0 {
		keys := make([]string, 0, len(extra))
		for k := range extra {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		err := openschema.NewConfigError("model2schema.Build", "redundant extra options for %s", strings.Join(keys, ", "))
		logger.L().Error().Err(err).Str("model", name).Msg("model conversion failed")
		return nil, err
	}
	return b.Build()
}

// MustBuild is Build for package-level declarations.
func MustBuild(name string, src Source, opts ...Option) *dsl.ModelDef {
	def, err := Build(name, src, opts...)
	if err != nil {
		panic(err)
	}
	return def
}
