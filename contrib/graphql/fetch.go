package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/lib/pq"

	"github.com/syssam/setof/dialect"
	"github.com/syssam/setof/dialect/sql"
	"github.com/syssam/setof/introspection"
)

// Fetcher calls set-returning functions and collects their rows.
type Fetcher struct {
	drv    dialect.Querier
	logger *slog.Logger
}

// NewFetcher returns a Fetcher running queries on drv.
func NewFetcher(drv dialect.Querier, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{drv: drv, logger: logger}
}

// Query returns the statement calling proc with nargs positional arguments.
// With withCursor the statement also selects the natural position of every
// row as its cursor.
func Query(proc *introspection.Procedure, nargs int, withCursor bool) (string, error) {
	if proc.Namespace == nil {
		return "", fmt.Errorf("procedure %s has no namespace", proc.Name)
	}
	var b strings.Builder
	b.WriteString(`select to_json(__local_0__) as "value"`)
	if withCursor {
		b.WriteString(`, json_build_array('natural', row_number() over (partition by 1)) as "__cursor"`)
	}
	b.WriteString(" from ")
	b.WriteString(pq.QuoteIdentifier(proc.Namespace.Name))
	b.WriteByte('.')
	b.WriteString(pq.QuoteIdentifier(proc.Name))
	b.WriteByte('(')
	for i := range nargs {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('$')
		b.WriteString(strconv.Itoa(i + 1))
	}
	b.WriteString(") as __local_0__")
	return b.String(), nil
}

// Fetch calls proc with args and returns its rows in the order produced by
// the function.
func (f *Fetcher) Fetch(ctx context.Context, proc *introspection.Procedure, args []any, withCursor bool) (*ResultSet, error) {
	query, err := Query(proc, len(args), withCursor)
	if err != nil {
		return nil, err
	}
	f.logger.Debug("fetching set", "procedure", proc.QualifiedName(), "cursor", withCursor)
	rows := &sql.Rows{}
	if err := f.drv.Query(ctx, query, args, rows); err != nil {
		return nil, fmt.Errorf("fetch %s: %w", proc.QualifiedName(), err)
	}
	defer rows.Close()
	rs := &ResultSet{Data: []*Row{}}
	for rows.Next() {
		var (
			value []byte
			pos   []byte
			dest  = []any{&value}
		)
		if withCursor {
			dest = append(dest, &pos)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("fetch %s: scan: %w", proc.QualifiedName(), err)
		}
		r := &Row{}
		if err := decodeJSON(value, &r.Value); err != nil {
			return nil, fmt.Errorf("fetch %s: decode value: %w", proc.QualifiedName(), err)
		}
		if withCursor {
			if err := decodeJSON(pos, &r.Cursor); err != nil {
				return nil, fmt.Errorf("fetch %s: decode cursor: %w", proc.QualifiedName(), err)
			}
		}
		rs.Data = append(rs.Data, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fetch %s: %w", proc.QualifiedName(), err)
	}
	return rs, nil
}

// decodeJSON decodes b into v keeping numbers as json.Number. A NULL column
// leaves v untouched.
func decodeJSON(b []byte, v any) error {
	if b == nil {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	return dec.Decode(v)
}
