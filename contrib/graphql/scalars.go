package graphql

import (
	"github.com/syssam/setof/introspection"
	"github.com/syssam/setof/schema"
)

// DefaultCursorType is the name of the cursor scalar.
const DefaultCursorType = "Cursor"

// cursorPkg is the Go package holding the cursor model type.
const cursorPkg = "github.com/syssam/setof/cursor"

// DeclareCursor returns the cursor scalar named name, declaring it when the
// registry does not hold it yet.
func DeclareCursor(reg *schema.Registry, name string) (schema.Type, error) {
	if t, ok := reg.Lookup(name); ok {
		return t, nil
	}
	return reg.DeclareScalar(name, schema.ScalarConfig{
		Description: "A location in a connection that can be used for resuming pagination.",
		GoPackage:   cursorPkg,
		GoName:      "Cursor",
	})
}

// pgScalars maps pg_catalog type names to builtin GraphQL scalars. 64-bit
// and arbitrary precision numbers do not fit in Int or Float without loss
// and are exposed as strings.
var pgScalars = map[string]*schema.Scalar{
	"int2":    schema.Int,
	"int4":    schema.Int,
	"int8":    schema.String,
	"numeric": schema.String,
	"float4":  schema.Float,
	"float8":  schema.Float,
	"bool":    schema.Boolean,
	"text":    schema.String,
	"varchar": schema.String,
	"bpchar":  schema.String,
	"name":    schema.String,
	"uuid":    schema.String,
}

// BindPostgresScalars binds the oids of well-known pg_catalog types found in
// res to builtin scalars. It returns the number of bound types.
func BindPostgresScalars(reg *schema.Registry, res *introspection.Result) (int, error) {
	var n int
	for _, t := range res.Types {
		if t.Kind != introspection.TypeBase {
			continue
		}
		if ns, ok := res.NamespaceByID(t.NamespaceID); ok && ns.Name != "pg_catalog" {
			continue
		}
		s, ok := pgScalars[t.Name]
		if !ok {
			continue
		}
		if err := reg.BindTypeID(t.ID, s); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
