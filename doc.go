// Package setof generates Relay-style edge and connection types for
// PostgreSQL set-returning functions whose rows are not backed by a table.
//
// A function such as
//
//	create function public.get_random_ints() returns setof int ...
//
// yields two GraphQL object types:
//
//	type GetRandomIntEdge {
//	  cursor: Cursor
//	  node: String
//	}
//
//	type GetRandomIntsConnection {
//	  nodes: [String]!
//	  edges: [GetRandomIntEdge!]!
//	}
//
// Functions returning rows of a table, view or other relational entity are
// left to the entity connection generator and produce nothing here.
//
// # Packages
//
//   - [introspection]: catalog model and PostgreSQL loader
//   - [inflection]: type and field naming
//   - [schema]: typed output registry, data generators, SDL and execution
//   - [cursor]: opaque cursor codecs
//   - [contrib/graphql]: the build phases, row fetching and output writing
//   - [config]: YAML configuration
//
// The package itself holds the error types shared by all of them.
package setof
