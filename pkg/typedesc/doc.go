// Package typedesc describes Go types for binding and serialization.
//
// A Registry classifies every type into a Kind (string, integer, enum, date,
// struct, collection...) and caches the list of fields of struct types. Per-type
// rules are declared explicitly at startup instead of through struct tags:
//
//	types := typedesc.NewRegistry()
//	types.For(Client{}).
//	    Skip("password").
//	    Since("email", 2)
//	types.Enum(Status(0), "ACTIVE", "INACTIVE")
//
// Rules can also be loaded from YAML with LoadRules:
//
//	types:
//	  client:
//	    skip: [password]
//	    since:
//	      email: 2
//	enums:
//	  status: [ACTIVE, INACTIVE]
//
// Types referenced by name in a rule file must be registered with Name first.
//
// The registry is safe for concurrent use. Rules are meant to be declared
// before the first request; declaring rules for a type drops its cached
// description.
package typedesc
