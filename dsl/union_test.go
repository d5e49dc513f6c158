package dsl_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	g "github.com/reoring/openschema/dsl"
	"github.com/reoring/openschema/spec"
)

const testCardNumber = "4111111111111111"

func TestOneOf_ExactlyOneMatch(t *testing.T) {
	u := g.OneOf([]g.Schema{g.Integer(), g.String()})

	got, err := u.Deserialize(5)
	require.NoError(t, err)
	assert.Equal(t, 5, got)

	got, err = u.Deserialize("abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", got)

	_, err = u.Deserialize("5")
	assert.Equal(t, []string{"Multiple schemas were matched."}, messages(t, err))

	_, err = u.Deserialize([]any{})
	assert.Equal(t, []string{"No schema is matched."}, messages(t, err))
}

func TestAnyOf_FirstMatchWins(t *testing.T) {
	u := g.AnyOf([]g.Schema{g.Integer(), g.String()})
	got, err := u.Deserialize("5")
	require.NoError(t, err)
	assert.Equal(t, 5, got)

	out, err := u.Serialize("abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", out)
}

func paymentUnion() (*g.UnionSchema, *g.ModelDef, *g.ModelDef) {
	card := g.Object("Card").
		Field("type", g.String()).
		Field("number", g.String()).
		MustBuild()
	bank := g.Object("Bank").
		Field("type", g.String()).
		Field("iban", g.String()).
		MustBuild()
	cardSchema, bankSchema := card.MustNew(), bank.MustNew()
	u := g.OneOf(
		[]g.Schema{cardSchema, bankSchema},
		g.Discriminate("type", map[string]g.Schema{"card": cardSchema, "bank": bankSchema}),
	)
	return u, card, bank
}

func TestUnion_Discriminator(t *testing.T) {
	u, _, _ := paymentUnion()

	got, err := u.Deserialize(map[string]any{"type": "card", "number": testCardNumber})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"type": "card", "number": testCardNumber}, got)

	_, err = u.Deserialize(map[string]any{"type": "bank"})
	assert.JSONEq(t, `{"iban":["This field is required."]}`, errorJSON(t, err))

	_, err = u.Deserialize(map[string]any{"number": testCardNumber})
	assert.Equal(t, []string{"'type' is required."}, messages(t, err))

	_, err = u.Deserialize(map[string]any{"type": "cash"})
	assert.Equal(t, []string{`type="cash" does not match the discriminator mapping.`}, messages(t, err))

	out, err := u.Serialize(map[string]any{"type": "bank", "iban": "DE00"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"type": "bank", "iban": "DE00"}, out)
}

func TestUnion_Spec(t *testing.T) {
	u, card, bank := paymentUnion()
	c := spec.NewCollection("union")
	frag := spec.Clean(u.ToSpec(c, spec.Options{}))
	assert.Equal(t, map[string]any{
		"oneOf": []any{spec.Ref(card.ComponentID()), spec.Ref(bank.ComponentID())},
		"discriminator": map[string]any{
			"propertyName": "type",
			"mapping": map[string]any{
				"card": spec.RefPrefix + card.ComponentID(),
				"bank": spec.RefPrefix + bank.ComponentID(),
			},
		},
	}, frag)
	assert.Len(t, c.SchemaNames(), 2)
}

func TestUnion_RequiresSchemas(t *testing.T) {
	assert.Panics(t, func() { g.OneOf(nil) })
	assert.Panics(t, func() { g.AnyOf([]g.Schema{g.Integer()}, g.Discriminate("", nil)) })
}
