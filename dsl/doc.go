// Package dsl declares schemas for openschema.
//
// Overview
//   - Leaf kinds: String/Password, Integer, Float, Boolean, Date, Datetime, UUID, File, Any.
//   - Containers: List(item), Dict(values) with Keys(...) for key validation.
//   - Models: Object(name) builder producing a ModelDef; ModelDef.New creates schema instances.
//   - Unions: OneOf/AnyOf over alternatives, with Discriminate(property, mapping) routing.
//   - Lazy(fn): deferred schema for self-referencing or forward-declared models.
//
// Every schema implements Schema: Deserialize validates untrusted input and
// returns a *openschema.ValidationError holding every violation; Serialize
// converts domain values into wire values and fails with
// *openschema.SerializationError; ToSpec projects the schema into an
// OpenAPI 3.0.3 fragment, registering models as components of the given
// spec.Collection.
//
// # Options
//
// Common options (Alias, Attr, Required, Nullable, Default, ReadOnly,
// WriteOnly, AllowBlank, Choices, Validators, Description, Example,
// Fallback, WithStyle and the pre/post processing hooks) apply to every
// kind. Kind options (MinLength, Gt, MinItems, Keys, Layout, WithTimezone,
// RequiredFields, ...) are ignored by kinds they do not concern. Invalid
// option values panic with *openschema.ConfigError at construction.
//
// # File layout
//
//   - base.go: Schema interface, Base options and the shared deserialize/serialize pipelines.
//   - options.go: Option constructors.
//   - defaults.go: process-wide defaults installed by the config package.
//   - primitives.go, datetime.go, file.go: leaf kinds.
//   - array.go, dict.go: containers.
//   - object_builder.go: Object builder, inheritance, FromFields.
//   - object_core.go: ModelDef, Model instances, component registration.
//   - union.go: OneOf/AnyOf and discriminators.
//   - lazy.go: deferred schemas.
//
// # Example
//
//	user := dsl.Object("User").
//	    Doc("A registered user.").
//	    Field("id", dsl.Integer(dsl.ReadOnly())).
//	    Field("name", dsl.String(dsl.MaxLength(64))).
//	    Field("age", dsl.Integer(dsl.Gte(0), dsl.Default(18))).
//	    Field("tags", dsl.List(dsl.String(), dsl.UniqueItems(), dsl.Default(func() any { return []any{} }))).
//	    MustBuild()
//
//	m := user.MustNew()
//	got, err := m.Deserialize(map[string]any{"name": "Lee"})
//	// got == map[string]any{"name": "Lee", "age": 18, "tags": []any{}}
package dsl
