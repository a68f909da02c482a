// Package serialize renders object graphs as JSON, XML or YAML.
//
// Which fields appear is decided per field, at every depth:
//
//   - fields marked skip-always in the type metadata never appear;
//   - the last include or exclude rule matching the field's path decides
//     when one matches;
//   - primitive fields (strings, numbers, booleans, enums, dates) appear by
//     default, other fields only when included or when the call is
//     recursive;
//   - fields with a since threshold above the active version are dropped.
//
// Collections at the root are wrapped under "list" unless named:
//
//	out, err := engine.From(clients).Include("address").Serialize()
//	// {"list":[{"name":"John","address":{"street":"Main St"}}]}
//
// A failing value aborts the whole call with a *SerializationError.
package serialize
