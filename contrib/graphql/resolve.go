package graphql

import (
	"context"
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/syssam/setof"
	"github.com/syssam/setof/cursor"
	"github.com/syssam/setof/schema"
)

// Row is one value produced by a set-returning function together with its
// position in the result. Cursor is only populated when a cursor field was
// selected.
type Row struct {
	Value  any
	Cursor cursor.Cursor
}

// ResultSet is the source value of a connection type.
type ResultSet struct {
	Data []*Row
}

// Values returns the row values in order. The result is never nil.
func (rs *ResultSet) Values() []any {
	out := make([]any, len(rs.Data))
	for i, r := range rs.Data {
		if r != nil {
			out[i] = r.Value
		}
	}
	return out
}

// Rows returns the rows in order. The result is never nil.
func (rs *ResultSet) Rows() []*Row {
	if rs.Data == nil {
		return []*Row{}
	}
	return rs.Data
}

func usesCursor(*ast.Field) schema.Requirements {
	return schema.Requirements{schema.KeyUsesCursor: {true}}
}

func cursorResolver(enc *cursor.Encoder) schema.Resolver {
	return func(_ context.Context, p schema.ResolveParams) (any, error) {
		r, err := rowOf(p.Source)
		if err != nil {
			return nil, err
		}
		if r.Cursor == nil {
			return nil, setof.NewCursorError("", "row has no cursor", nil)
		}
		return enc.Encode(r.Cursor)
	}
}

func rowOf(v any) (*Row, error) {
	switch v := v.(type) {
	case *Row:
		if v != nil {
			return v, nil
		}
	case Row:
		return &v, nil
	}
	return nil, fmt.Errorf("unexpected edge source %T", v)
}

func resultSetOf(v any) (*ResultSet, error) {
	switch v := v.(type) {
	case *ResultSet:
		if v != nil {
			return v, nil
		}
	case ResultSet:
		return &v, nil
	}
	return nil, fmt.Errorf("unexpected connection source %T", v)
}
