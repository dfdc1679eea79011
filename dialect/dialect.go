// Package dialect holds the database dialect names and the minimal driver
// contract used by catalog introspection and row fetching.
//
// Opening a database connection:
//
//	import (
//	    "github.com/syssam/setof/dialect"
//	    "github.com/syssam/setof/dialect/sql"
//	)
//
//	drv, err := sql.Open(dialect.Postgres, "postgres://...")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer drv.Close()
package dialect

import "context"

// Postgres is the only dialect whose catalog can be introspected.
const Postgres = "postgres"

// Querier wraps the Query method.
//
// args must be a []any and v a *sql.Rows from the dialect/sql package.
type Querier interface {
	Query(ctx context.Context, query string, args, v any) error
}

// Driver is a Querier bound to a dialect that can be closed.
type Driver interface {
	Querier
	Dialect() string
	Close() error
}
