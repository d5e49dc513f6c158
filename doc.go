// Package openschema provides:
//
// - A tree-shaped ValidationError that aggregates every violation by field alias or list index
// - Flattened Issues (JSON Pointer, location, message) for logs and HTTP payloads
// - Distinct SerializationError and ConfigError kinds for server-side and build-time failures
// - Shared vocabulary used by the dsl, param and spec packages (Empty, UnknownPolicy, Style, Location)
//
// Design policy:
// - Keep only shared public types in the root package.
// - Place schema kinds under dsl/, parameter binding under param/, and OpenAPI assembly under spec/.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	user := dsl.Object("User").
//	    Field("name", dsl.String(dsl.MaxLength(32))).
//	    Field("age", dsl.Integer(dsl.Gte(0))).
//	    MustBuild()
//
//	m := user.MustNew()
//	data, err := m.Deserialize(raw)
//	if ve, ok := openschema.AsValidationError(err); ok {
//	    payload := ve.Format()
//	}
//	wire, err := m.Serialize(domainObject)
package openschema
