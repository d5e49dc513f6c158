package dsl_test

import (
	"errors"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	openschema "github.com/reoring/openschema"
	"github.com/reoring/openschema/codec"
	g "github.com/reoring/openschema/dsl"
)

func messages(t *testing.T, err error) []string {
	t.Helper()
	ve, ok := openschema.AsValidationError(err)
	require.True(t, ok, "want a ValidationError, got %v", err)
	return ve.Messages()
}

func TestString_RequiresStringInput(t *testing.T) {
	s := g.String()

	got, err := s.Deserialize("hello")
	require.NoError(t, err)
	assert.Equal(t, "hello", got)

	_, err = s.Deserialize(1)
	assert.Equal(t, []string{"Not a valid string."}, messages(t, err))

	_, err = s.Deserialize(json.Number("5"))
	assert.Equal(t, []string{"Not a valid string."}, messages(t, err))

	_, err = s.Deserialize("   ")
	assert.Equal(t, []string{"The value cannot be a whitespace string."}, messages(t, err))
}

func TestString_StripAndBlank(t *testing.T) {
	got, err := g.String(g.Strip()).Deserialize("  lee ")
	require.NoError(t, err)
	assert.Equal(t, "lee", got)

	got, err = g.String(g.AllowBlank()).Deserialize("")
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestString_CollectsEveryViolation(t *testing.T) {
	s := g.String(g.MinLength(5), g.Pattern(`^\d+$`), g.Choices("123456"))
	_, err := s.Deserialize("ab")
	assert.Equal(t, []string{
		"Length must be at least 5.",
		"ab does not match pattern ^\\d+$.",
		`Must be one of ["123456"].`,
	}, messages(t, err))
}

func TestInteger_WholeNumbersOnly(t *testing.T) {
	s := g.Integer()
	for _, in := range []any{1, 1.0, "1.0", "1", true, int64(1), uint8(1)} {
		got, err := s.Deserialize(in)
		require.NoError(t, err, "input %#v", in)
		assert.Equal(t, 1, got, "input %#v", in)
	}
	for _, in := range []any{"1.5", 1.5, "x", []any{1}} {
		_, err := s.Deserialize(in)
		assert.Equal(t, []string{"Not a valid integer."}, messages(t, err), "input %#v", in)
	}
}

func TestInteger_AggregatesRangeAndMultiple(t *testing.T) {
	s := g.Integer(g.Gt(0), g.MultipleOf(2))
	_, err := s.Deserialize(-1)
	assert.Equal(t, []string{
		"The value must be greater than 0.",
		"The value must be a multiple of 2.",
	}, messages(t, err))

	got, err := s.Deserialize("4")
	require.NoError(t, err)
	assert.Equal(t, 4, got)
}

func TestFloat(t *testing.T) {
	got, err := g.Float().Deserialize("1.5")
	require.NoError(t, err)
	assert.Equal(t, 1.5, got)

	_, err = g.Float().Deserialize("abc")
	assert.Equal(t, []string{"Not a valid float."}, messages(t, err))

	out, err := g.Float().Serialize(3)
	require.NoError(t, err)
	assert.Equal(t, 3.0, out)
}

func TestBoolean_ExactLiterals(t *testing.T) {
	cases := map[any]bool{true: true, "true": true, "True": true, "1": true, 1: true, false: false, "False": false, "0": false, 0: false}
	for in, want := range cases {
		got, err := g.Boolean().Deserialize(in)
		require.NoError(t, err, "input %#v", in)
		assert.Equal(t, want, got, "input %#v", in)
	}
	for _, in := range []any{"yes", "TRUE", 2} {
		_, err := g.Boolean().Deserialize(in)
		assert.Equal(t, []string{"Not a valid boolean."}, messages(t, err), "input %#v", in)
	}
}

func TestNull_BothDirections(t *testing.T) {
	_, err := g.Integer().Deserialize(nil)
	assert.Equal(t, []string{"The value cannot be null."}, messages(t, err))

	got, err := g.Integer(g.Nullable(true)).Deserialize(nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = g.Integer().Serialize(nil)
	var se *openschema.SerializationError
	require.ErrorAs(t, err, &se)
	assert.True(t, errors.Is(err, openschema.ErrNotNullable))
	assert.Equal(t, "Integer", se.Schema)

	out, err := g.Integer(g.Nullable(true)).Serialize(nil)
	require.NoError(t, err)
	assert.Nil(t, out)

	got, err = g.Any().Deserialize(nil)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestNull_EveryKind(t *testing.T) {
	point := g.Object("NullPoint").Field("x", g.Integer()).MustBuild()
	kinds := map[string]func(...g.Option) g.Schema{
		"String":   func(o ...g.Option) g.Schema { return g.String(o...) },
		"Integer":  func(o ...g.Option) g.Schema { return g.Integer(o...) },
		"Float":    func(o ...g.Option) g.Schema { return g.Float(o...) },
		"Boolean":  func(o ...g.Option) g.Schema { return g.Boolean(o...) },
		"Date":     func(o ...g.Option) g.Schema { return g.Date(o...) },
		"Datetime": func(o ...g.Option) g.Schema { return g.Datetime(o...) },
		"UUID":     func(o ...g.Option) g.Schema { return g.UUID(o...) },
		"File":     func(o ...g.Option) g.Schema { return g.File(o...) },
		"List":     func(o ...g.Option) g.Schema { return g.List(g.Integer(), o...) },
		"Dict":     func(o ...g.Option) g.Schema { return g.Dict(g.Integer(), o...) },
		"Model":    func(o ...g.Option) g.Schema { return point.MustNew(o...) },
		"OneOf":    func(o ...g.Option) g.Schema { return g.OneOf([]g.Schema{g.Integer(), g.String()}, o...) },
		"Lazy":     func(o ...g.Option) g.Schema { return g.Lazy(func() g.Schema { return g.Integer() }, o...) },
	}
	for name, mk := range kinds {
		t.Run(name, func(t *testing.T) {
			_, err := mk().Deserialize(nil)
			assert.Equal(t, []string{"The value cannot be null."}, messages(t, err))

			_, err = mk().Serialize(nil)
			assert.ErrorIs(t, err, openschema.ErrNotNullable)

			got, err := mk(g.Nullable(true)).Deserialize(nil)
			require.NoError(t, err)
			assert.Nil(t, got)

			out, err := mk(g.Nullable(true)).Serialize(nil)
			require.NoError(t, err)
			assert.Nil(t, out)
		})
	}
}

func TestRoundTrip_Primitives(t *testing.T) {
	sameTime := func(a, b any) bool {
		ta, ok1 := a.(time.Time)
		tb, ok2 := b.(time.Time)
		return ok1 && ok2 && ta.Equal(tb) && codec.IsNaive(ta) == codec.IsNaive(tb)
	}
	cases := []struct {
		name   string
		schema g.Schema
		value  any
		same   func(a, b any) bool
	}{
		{name: "Integer", schema: g.Integer(), value: 42},
		{name: "Float", schema: g.Float(), value: 1.25},
		{name: "Boolean", schema: g.Boolean(), value: true},
		{name: "String", schema: g.String(), value: "hello"},
		{name: "Date", schema: g.Date(), value: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), same: sameTime},
		{name: "AwareDatetime", schema: g.Datetime(), value: time.Date(2024, 3, 5, 10, 30, 0, 500, time.FixedZone("", 9*3600)), same: sameTime},
		{name: "NaiveDatetime", schema: g.Datetime(), value: codec.Naive(time.Date(2024, 3, 5, 10, 30, 0, 0, time.UTC)), same: sameTime},
		{name: "UUID", schema: g.UUID(), value: uuid.New()},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			wire, err := tc.schema.Serialize(tc.value)
			require.NoError(t, err)
			got, err := tc.schema.Deserialize(wire)
			require.NoError(t, err)
			if tc.same != nil {
				assert.True(t, tc.same(tc.value, got), "want %v, got %v", tc.value, got)
				return
			}
			assert.Equal(t, tc.value, got)
		})
	}
}

func TestSerialize_Fallback(t *testing.T) {
	s := g.Integer(g.Fallback(func(any) any { return 0 }))
	out, err := s.Serialize("not a number")
	require.NoError(t, err)
	assert.Equal(t, 0, out)

	_, err = g.Integer().Serialize("not a number")
	assert.Error(t, err)
}

func TestProcessingHooks(t *testing.T) {
	s := g.String(
		g.DeserializePreprocess(func(v any) (any, error) { return v.(string) + "!", nil }),
		g.DeserializePostprocess(func(v any) (any, error) { return "<" + v.(string) + ">", nil }),
	)
	got, err := s.Deserialize("hi")
	require.NoError(t, err)
	assert.Equal(t, "<hi!>", got)
}

func TestCustomValidators_RunAfterKindValidators(t *testing.T) {
	odd := func(v any) error {
		if v.(int)%2 == 0 {
			return errors.New("must be odd")
		}
		return nil
	}
	_, err := g.Integer(g.Lt(10), g.Validators(odd)).Deserialize(12)
	assert.Equal(t, []string{"The value must be less than 10.", "must be odd"}, messages(t, err))
}

func TestDateAndDatetime(t *testing.T) {
	got, err := g.Date().Deserialize("2024-03-05")
	require.NoError(t, err)
	d := got.(time.Time)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), d.UTC())

	out, err := g.Date().Serialize(d)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-05", out)

	_, err = g.Date().Deserialize("05/03/2024")
	assert.Equal(t, []string{"Not a valid date string."}, messages(t, err))

	_, err = g.Date().Deserialize("2024-03-05T10:00:00")
	assert.Equal(t, []string{"Not a valid date string."}, messages(t, err))

	_, err = g.Datetime(g.WithTimezone(true)).Deserialize("2024-03-05T10:00:00")
	assert.Equal(t, []string{"Timezone-naive datetimes are not supported."}, messages(t, err))

	_, err = g.Datetime(g.WithTimezone(false)).Deserialize("2024-03-05T10:00:00+09:00")
	assert.Equal(t, []string{"Timezone-aware datetimes are not supported."}, messages(t, err))

	got, err = g.Datetime().Deserialize("2024-03-05T10:00:00Z")
	require.NoError(t, err)
	assert.True(t, got.(time.Time).Equal(time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)))
}

func TestUUID(t *testing.T) {
	id := uuid.New()
	got, err := g.UUID().Deserialize(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, got)

	out, err := g.UUID().Serialize(id)
	require.NoError(t, err)
	assert.Equal(t, id.String(), out)

	_, err = g.UUID().Deserialize("nope")
	assert.Equal(t, []string{"Not a valid UUID."}, messages(t, err))
}

func TestPassword_IsWriteOnly(t *testing.T) {
	p := g.Password()
	assert.True(t, p.Meta().WriteOnly())
	assert.Equal(t, "password", p.Meta().DataFormat())
}

func TestInvalidOption_Panics(t *testing.T) {
	assert.Panics(t, func() { g.String(g.Pattern("(")) })
	assert.Panics(t, func() { g.Integer(g.Gt(1), g.Gte(1)) })
	assert.Panics(t, func() { g.Float(g.MultipleOf(0)) })
}
