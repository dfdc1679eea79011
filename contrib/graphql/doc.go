// Package graphql synthesizes paginated GraphQL types for PostgreSQL
// set-returning functions whose rows are not backed by a table, view or
// other relational entity.
//
// For every such function the package defines an edge type wrapping one
// returned value with its cursor, and a connection type exposing the values
// both directly and as edges:
//
//	type GetRandomIntEdge {
//	  cursor: Cursor
//	  node: Int
//	}
//
//	type GetRandomIntsConnection {
//	  nodes: [Int]!
//	  edges: [GetRandomIntEdge!]!
//	}
//
// # Usage
//
// The Extension drives a schema build from an introspection result and
// writes the outputs:
//
//	ex, err := graphql.NewExtension(
//	    graphql.WithSchemaPath("./graph/setof.graphql"),
//	    graphql.WithModelsPath("./graph/model/setof_gen.go", "model"),
//	    graphql.WithConfigPath("./gqlgen.yml", false),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	res, err := introspection.NewLoader(drv, nil).Load(ctx, []string{"public"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	reg, err := ex.Generate(ctx, res)
//
// # Phases
//
// A build is a sequence of phases sharing one BuildInput. The scalar
// connection phase always runs; WithQueryFields adds a phase exposing each
// function on the Query type, backed by a Fetcher. Hooks wrap the whole
// build the same way generator hooks wrap code generation:
//
//	logging := func(next graphql.Builder) graphql.Builder {
//	    return graphql.BuildFunc(func(in *graphql.BuildInput) (*graphql.BuildOutput, error) {
//	        out, err := next.Build(in)
//	        if err == nil {
//	            in.Logger.Info("built", "types", len(out.Types))
//	        }
//	        return out, err
//	    })
//	}
//	ex, err := graphql.NewExtension(graphql.WithHooks(logging))
package graphql
