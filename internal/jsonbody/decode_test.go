package jsonbody

import (
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	openschema "github.com/reoring/openschema"
)

func TestDecode_Values(t *testing.T) {
	v, err := Decode([]byte(`{"a":1,"b":[true,null,"x"],"c":{"d":1.5}}`))
	require.NoError(t, err)
	m := v.(map[string]any)
	assert.Equal(t, json.Number("1"), m["a"])
	assert.Equal(t, []any{true, nil, "x"}, m["b"])
	assert.Equal(t, map[string]any{"d": json.Number("1.5")}, m["c"])
}

func TestDecode_DuplicateKeys(t *testing.T) {
	cases := []struct {
		name string
		in   string
		path string
	}{
		{"root", `{"a":1,"a":2}`, "/"},
		{"nested object", `{"a":{"b":1,"b":2}}`, "/a"},
		{"inside array", `{"items":[{"id":1},{"id":2,"id":3}]}`, "/items/1"},
		{"after nested value", `{"a":{"x":[1,2]},"b":1,"a":3}`, "/"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode([]byte(tc.in))
			ve, ok := openschema.AsValidationError(err)
			require.True(t, ok, "got %v", err)
			issues := ve.Issues()
			require.Len(t, issues, 1)
			assert.Equal(t, tc.path, issues[0].Path)
			assert.Contains(t, issues[0].Message, "Duplicate key")
		})
	}
}

func TestDecode_SameKeyInSiblingObjects(t *testing.T) {
	_, err := Decode([]byte(`[{"id":1},{"id":2}]`))
	assert.NoError(t, err)
}

func TestDecode_Malformed(t *testing.T) {
	for _, in := range []string{``, `{"a":`, `{"a":1} {"b":2}`, `nope`} {
		_, err := Decode([]byte(in))
		ve, ok := openschema.AsValidationError(err)
		require.True(t, ok, "input %q: %v", in, err)
		assert.Equal(t, []string{"Malformed JSON body."}, ve.Messages(), "input %q", in)
	}
}
