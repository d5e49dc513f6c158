package model2schema_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	openschema "github.com/reoring/openschema"
	g "github.com/reoring/openschema/dsl"
	"github.com/reoring/openschema/model2schema"
	"github.com/reoring/openschema/spec"
)

type fields []model2schema.FieldInfo

func (f fields) Fields() ([]model2schema.FieldInfo, error) { return f, nil }

func messages(t *testing.T, err error) []string {
	t.Helper()
	ve, ok := openschema.AsValidationError(err)
	require.True(t, ok, "want a validation error, got %v", err)
	return ve.Messages()
}

func TestBuild_CommonMetadata(t *testing.T) {
	src := fields{
		{Name: "id", Kind: model2schema.KindInteger, PrimaryKey: true},
		{Name: "status", Kind: model2schema.KindString, MaxLength: 8, Verbose: "Status",
			Choices: []model2schema.Choice{{Value: "open", Label: "Open"}, {Value: "closed", Label: "Closed"}}},
		{Name: "note", Kind: model2schema.KindString, Blank: true, Null: true},
		{Name: "score", Kind: model2schema.KindInteger, Default: 10},
	}
	def, err := model2schema.Build("Ticket", src)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "status", "note", "score"}, def.FieldNames())

	m := def.MustNew()
	got, err := m.Deserialize(map[string]any{"id": 9, "status": "open"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"status": "open", "score": 10}, got)

	_, err = m.Deserialize(map[string]any{"status": "pending"})
	ve, ok := openschema.AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, []any{"status"}, ve.Keys())

	status, ok := def.Field("status")
	require.True(t, ok)
	assert.Equal(t, "Status\n\n- open: Open\n- closed: Closed", status.Meta().Description())
	note, _ := def.Field("note")
	assert.True(t, note.Meta().Nullable())
	assert.False(t, note.Meta().Required())
}

func TestBuild_Decimal(t *testing.T) {
	def := model2schema.MustBuild("Price", fields{
		{Name: "amount", Kind: model2schema.KindDecimal, MaxDigits: 5, DecimalPlaces: 2},
	})
	m := def.MustNew()
	_, err := m.Deserialize(map[string]any{"amount": 12.34})
	require.NoError(t, err)

	_, err = m.Deserialize(map[string]any{"amount": 1000})
	assert.Error(t, err)
	_, err = m.Deserialize(map[string]any{"amount": 1.234})
	assert.Error(t, err)
}

func TestBuild_ForeignKeyUsesTarget(t *testing.T) {
	target := model2schema.FieldInfo{Name: "id", Kind: model2schema.KindUUID}
	def := model2schema.MustBuild("Order", fields{
		{Name: "customer_id", Kind: model2schema.KindForeign, Target: &target, Help: "owner"},
	})
	f, ok := def.Field("customer_id")
	require.True(t, ok)
	assert.Equal(t, "UUID", f.Meta().Kind())
	assert.Equal(t, "owner", f.Meta().Description())

	_, err := model2schema.Build("Broken", fields{{Name: "x", Kind: model2schema.KindForeign}})
	assert.Error(t, err)
}

func TestBuild_IncludeAndExtra(t *testing.T) {
	src := fields{
		{Name: "a", Kind: model2schema.KindString},
		{Name: "b", Kind: model2schema.KindString},
	}
	def, err := model2schema.Build("Pick", src,
		model2schema.Include("a"),
		model2schema.Extra("a", g.Description("only a")),
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, def.FieldNames())

	_, err = model2schema.Build("Pick", src, model2schema.Extra("zzz", g.ReadOnly()))
	var ce *openschema.ConfigError
	assert.ErrorAs(t, err, &ce)

	_, err = model2schema.Build("Odd", fields{{Name: "a", Kind: "geometry"}})
	assert.ErrorAs(t, err, &ce)
}

type account struct {
	ID        int        `json:"id" schema:"pk"`
	Email     string     `json:"email" validate:"required,email" doc:"login address"`
	Name      string     `json:"name" validate:"max=5" example:"alice"`
	Role      string     `json:"role,omitempty" validate:"oneof=admin member"`
	Age       *int       `json:"age" validate:"gte=18"`
	Birthday  time.Time  `json:"birthday" schema:"date"`
	LastSeen  *time.Time `json:"last_seen,omitempty"`
	Internal  string     `json:"-"`
	unexposed string
}

func TestStruct_Tags(t *testing.T) {
	def, err := model2schema.Build("Account", model2schema.Struct(&account{}))
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "email", "name", "role", "age", "birthday", "last_seen"}, def.FieldNames())

	kinds := map[string]string{}
	for _, n := range def.FieldNames() {
		f, _ := def.Field(n)
		kinds[n] = f.Meta().Kind()
	}
	assert.Equal(t, "Date", kinds["birthday"])
	assert.Equal(t, "Datetime", kinds["last_seen"])

	id, _ := def.Field("id")
	assert.True(t, id.Meta().ReadOnly())
	age, _ := def.Field("age")
	assert.True(t, age.Meta().Nullable())
	role, _ := def.Field("role")
	assert.False(t, role.Meta().Required())
	email, _ := def.Field("email")
	assert.Equal(t, "login address", email.Meta().Description())
}

func TestStruct_ValidateRules(t *testing.T) {
	def := model2schema.MustBuild("Account", model2schema.Struct(account{}))
	m := def.MustNew(g.RequiredFields("email"))

	email, _ := def.Field("email")
	_, err := email.Deserialize("not-an-email")
	assert.Equal(t, []string{"Not a valid email address."}, messages(t, err))

	name, _ := def.Field("name")
	_, err = name.Deserialize("abcdefg")
	assert.Equal(t, []string{"Length must be at most 5."}, messages(t, err))

	age, _ := def.Field("age")
	_, err = age.Deserialize(16)
	assert.Equal(t, []string{"The value must be greater than or equal to 18."}, messages(t, err))

	role, _ := def.Field("role")
	_, err = role.Deserialize("guest")
	assert.Error(t, err)

	got, err := m.Deserialize(map[string]any{"email": "a@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", got.(map[string]any)["email"])
}

func TestStruct_Errors(t *testing.T) {
	_, err := model2schema.Struct(42).Fields()
	assert.Error(t, err)

	type bad struct {
		Name string `validate:"no_such_rule"`
	}
	_, err = model2schema.Struct(bad{}).Fields()
	var ce *openschema.ConfigError
	assert.ErrorAs(t, err, &ce)
}

func TestStruct_Spec(t *testing.T) {
	def := model2schema.MustBuild("AccountView", model2schema.Struct(account{}))
	c := spec.NewCollection("m2s")
	frag := spec.Clean(def.MustNew().ToSpec(c, spec.Options{})).(map[string]any)
	assert.Equal(t, spec.RefPrefix+def.ComponentID(), frag["$ref"])
	comp, ok := c.Schema(def.ComponentID())
	require.True(t, ok)
	props := spec.Clean(comp).(map[string]any)["properties"].(map[string]any)
	assert.Equal(t, map[string]any{"type": "string", "maxLength": 5, "example": "alice"}, props["name"])
}
