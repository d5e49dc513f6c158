package param

import (
	"strings"

	openschema "github.com/reoring/openschema"
	"github.com/reoring/openschema/dsl"
	"github.com/reoring/openschema/logger"
)

// Shapes classify a schema for style selection.
const (
	ShapePrimitive = "primitive"
	ShapeArray     = "array"
	ShapeObject    = "object"
)

// ShapeOf returns the style shape of s: arrays, objects, or primitive for
// everything else.
func ShapeOf(s dsl.Schema) string {
	if l, ok := s.(*dsl.LazySchema); ok {
		s = l.Target()
	}
	switch s.Meta().DataType() {
	case dsl.TypeArray:
		return ShapeArray
	case dsl.TypeObject:
		return ShapeObject
	}
	return ShapePrimitive
}

// DefaultStyle is the OpenAPI default style of a location.
func DefaultStyle(loc openschema.Location) openschema.Style {
	switch loc {
	case openschema.InQuery:
		return openschema.NewStyle(openschema.StyleForm, true)
	case openschema.InCookie:
		return openschema.NewStyle(openschema.StyleForm, false)
	}
	return openschema.NewStyle(openschema.StyleSimple, false)
}

type handlerKey struct {
	loc     openschema.Location
	style   string
	explode bool
	shape   string
}

// extractor reshapes raw data for one field. ok is false when the field is
// absent.
type extractor func(b *binding, data Values) (v any, ok bool)

var handlers = map[handlerKey]extractor{}

func init() {
	add := func(loc openschema.Location, style string, explode bool, shape string, fn extractor) {
		handlers[handlerKey{loc: loc, style: style, explode: explode, shape: shape}] = fn
	}
	add(openschema.InQuery, openschema.StyleForm, true, ShapePrimitive, single)
	add(openschema.InQuery, openschema.StyleForm, false, ShapePrimitive, single)
	add(openschema.InQuery, openschema.StyleForm, true, ShapeArray, repeated)
	add(openschema.InQuery, openschema.StyleForm, true, ShapeObject, exploded)
	add(openschema.InQuery, openschema.StyleForm, false, ShapeArray, delimited(","))
	add(openschema.InQuery, openschema.StyleForm, false, ShapeObject, pairs)
	add(openschema.InQuery, openschema.StyleSpaceDelimited, false, ShapeArray, delimited(" "))
	add(openschema.InQuery, openschema.StylePipeDelimited, false, ShapeArray, delimited("|"))
	add(openschema.InQuery, openschema.StyleDeepObject, true, ShapeObject, deepObject)

	add(openschema.InCookie, openschema.StyleForm, false, ShapePrimitive, single)
	add(openschema.InCookie, openschema.StyleForm, false, ShapeArray, delimited(","))
	add(openschema.InCookie, openschema.StyleForm, false, ShapeObject, pairs)

	add(openschema.InPath, openschema.StyleSimple, false, ShapePrimitive, single)
	add(openschema.InPath, openschema.StyleSimple, false, ShapeArray, delimited(","))
	add(openschema.InPath, openschema.StyleSimple, true, ShapeArray, delimited(","))
	add(openschema.InPath, openschema.StyleSimple, false, ShapeObject, pairs)
	add(openschema.InPath, openschema.StyleSimple, true, ShapeObject, assignments)

	add(openschema.InHeader, openschema.StyleSimple, false, ShapePrimitive, single)
	add(openschema.InHeader, openschema.StyleSimple, false, ShapeArray, delimited(","))
	add(openschema.InHeader, openschema.StyleSimple, true, ShapeArray, delimited(","))
	add(openschema.InHeader, openschema.StyleSimple, false, ShapeObject, pairs)
	add(openschema.InHeader, openschema.StyleSimple, true, ShapeObject, assignments)
}

// binding is the resolved extractor of one field.
type binding struct {
	field dsl.Schema
	loc   openschema.Location
	style openschema.Style
	fn    extractor
}

func newBinding(loc openschema.Location, field dsl.Schema) (*binding, error) {
	style := DefaultStyle(loc)
	if s := field.Meta().Style(); s != nil && s.Name != "" {
		style = *s
	}
	b := &binding{field: field, loc: loc, style: style}
	key := handlerKey{loc: loc, style: style.Name, explode: style.Explode, shape: ShapeOf(field)}
	fn, ok := handlers[key]
	if ok && needsFields(key) && modelOf(field) == nil {
		// deepObject can still walk the keys of a Dict.
		ok = key.style == openschema.StyleDeepObject && dictOf(field) != nil
	}
	if !ok {
		err := openschema.NewConfigError("param", "%s %s with %s is not supported for %q", loc, key.shape, style, field.Meta().Alias())
		logger.L().Error().Err(err).Msg("unsupported parameter style")
		return nil, err
	}
	b.fn = fn
	logger.L().Debug().
		Str("location", string(loc)).
		Str("style", style.Name).
		Bool("explode", style.Explode).
		Str("shape", key.shape).
		Str("name", field.Meta().Alias()).
		Msg("parameter handler selected")
	return b, nil
}

// needsFields reports whether the extractor reads the object's own field
// names from the data.
func needsFields(k handlerKey) bool {
	return k.shape == ShapeObject && k.loc == openschema.InQuery && k.explode
}

func modelOf(s dsl.Schema) *dsl.Model {
	if l, ok := s.(*dsl.LazySchema); ok {
		s = l.Target()
	}
	m, _ := s.(*dsl.Model)
	return m
}

func dictOf(s dsl.Schema) *dsl.DictSchema {
	if l, ok := s.(*dsl.LazySchema); ok {
		s = l.Target()
	}
	d, _ := s.(*dsl.DictSchema)
	return d
}

func (b *binding) alias() string { return b.field.Meta().Alias() }

func (b *binding) extract(data Values) (any, bool) { return b.fn(b, data) }

// single: ?id=5
func single(b *binding, data Values) (any, bool) {
	v, ok := data.Get(b.alias())
	if !ok {
		return nil, false
	}
	return v, true
}

// repeated: ?id=3&id=4&id=5
func repeated(b *binding, data Values) (any, bool) {
	vs := data.All(b.alias())
	if len(vs) == 0 {
		return nil, false
	}
	return toAny(vs), true
}

// delimited: ?id=3,4,5 and the space and pipe variants.
func delimited(sep string) extractor {
	return func(b *binding, data Values) (any, bool) {
		v, ok := data.Get(b.alias())
		if !ok {
			return nil, false
		}
		return toAny(strings.Split(v, sep)), true
	}
}

// pairs: R,100,G,200 becomes {R: 100, G: 200}. A trailing odd item is dropped.
func pairs(b *binding, data Values) (any, bool) {
	v, ok := data.Get(b.alias())
	if !ok {
		return nil, false
	}
	parts := strings.Split(v, ",")
	out := make(map[string]any, len(parts)/2)
	for i := 0; i+1 < len(parts); i += 2 {
		out[parts[i]] = parts[i+1]
	}
	return out, true
}

// assignments: R=100,G=200 becomes {R: 100, G: 200}.
func assignments(b *binding, data Values) (any, bool) {
	v, ok := data.Get(b.alias())
	if !ok {
		return nil, false
	}
	out := map[string]any{}
	for _, part := range strings.Split(v, ",") {
		k, val, _ := strings.Cut(part, "=")
		out[k] = val
	}
	return out, true
}

// exploded: ?R=100&G=200 read through the object's own field aliases.
func exploded(b *binding, data Values) (any, bool) {
	out := map[string]any{}
	for _, f := range modelOf(b.field).Fields() {
		alias := f.Meta().Alias()
		if v, ok := data.Get(alias); ok {
			out[alias] = v
		}
	}
	return out, true
}

// deepObject: ?color[R]=100&color[G]=200
func deepObject(b *binding, data Values) (any, bool) {
	out := map[string]any{}
	if m := modelOf(b.field); m != nil {
		for _, f := range m.Fields() {
			alias := f.Meta().Alias()
			if v, ok := data.Get(b.alias() + "[" + alias + "]"); ok {
				out[alias] = v
			}
		}
		return out, true
	}
	prefix := b.alias() + "["
	for _, k := range data.Keys() {
		if strings.HasPrefix(k, prefix) && strings.HasSuffix(k, "]") {
			v, _ := data.Get(k)
			out[k[len(prefix):len(k)-1]] = v
		}
	}
	if len(out) == 0 {
		return nil, false
	}
	return out, true
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
