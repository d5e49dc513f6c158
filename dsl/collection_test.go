package dsl_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	openschema "github.com/reoring/openschema"
	g "github.com/reoring/openschema/dsl"
	"github.com/reoring/openschema/spec"
)

func TestList_ErrorsKeyedByIndex(t *testing.T) {
	l := g.List(g.Integer())

	got, err := l.Deserialize([]string{"1", "2"})
	require.NoError(t, err)
	assert.Equal(t, []any{1, 2}, got)

	_, err = l.Deserialize([]any{"1", "x"})
	ve, ok := openschema.AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, []any{1}, ve.Keys())
	assert.Equal(t, []string{"Not a valid integer."}, ve.Child(1).Messages())
	assert.JSONEq(t, `{"1":["Not a valid integer."]}`, errorJSON(t, err))
}

func TestList_RejectsNonLists(t *testing.T) {
	for _, in := range []any{"abc", 1, map[string]any{}} {
		_, err := g.List(g.Integer()).Deserialize(in)
		assert.Equal(t, []string{"Not a valid list."}, messages(t, err), "input %#v", in)
	}
}

func TestList_ItemConstraints(t *testing.T) {
	_, err := g.List(g.Integer(), g.MinItems(2)).Deserialize([]any{1})
	assert.Equal(t, []string{"Length must be at least 2."}, messages(t, err))

	_, err = g.List(g.Integer(), g.UniqueItems()).Deserialize([]any{1, "1"})
	assert.Equal(t, []string{"The item is not unique."}, messages(t, err))
}

func TestList_SerializeAndSpec(t *testing.T) {
	l := g.List(g.Integer(), g.MaxItems(3), g.UniqueItems())
	out, err := l.Serialize([]int{1, 2})
	require.NoError(t, err)
	assert.Equal(t, []any{1, 2}, out)

	frag := spec.Clean(l.ToSpec(spec.NewCollection("list"), spec.Options{}))
	assert.Equal(t, map[string]any{
		"type":        "array",
		"items":       map[string]any{"type": "integer"},
		"maxItems":    3,
		"uniqueItems": true,
	}, frag)
}

func TestDict_ValuesAndKeys(t *testing.T) {
	d := g.Dict(g.Integer())
	got, err := d.Deserialize(map[string]any{"a": "1", "b": 2})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": 1, "b": 2}, got)

	_, err = d.Deserialize(map[string]any{"a": 1, "b": "x"})
	assert.JSONEq(t, `{"b":["The value of b: Not a valid integer."]}`, errorJSON(t, err))

	_, err = g.Dict(nil, g.Keys(g.Integer())).Deserialize(map[string]any{"x": true})
	assert.JSONEq(t, `{"x":["The key x: Not a valid integer."]}`, errorJSON(t, err))

	_, err = d.Deserialize([]any{1})
	assert.Equal(t, []string{"Not a valid dict object."}, messages(t, err))
}

func TestDict_SpecAndSerialize(t *testing.T) {
	d := g.Dict(nil, g.MinProperties(1))
	out, err := d.Serialize(map[string]int{"a": 1})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": 1}, out)

	frag := spec.Clean(d.ToSpec(spec.NewCollection("dict"), spec.Options{}))
	assert.Equal(t, map[string]any{
		"type":                 "object",
		"additionalProperties": map[string]any{"nullable": true},
		"minProperties":        1,
	}, frag)
}
