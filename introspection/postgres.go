package introspection

import (
	"context"
	"log/slog"

	"github.com/lib/pq"

	"github.com/syssam/setof"
	"github.com/syssam/setof/dialect"
	"github.com/syssam/setof/dialect/sql"
)

const namespaceQuery = `select nsp.oid, nsp.nspname
from pg_catalog.pg_namespace as nsp
where nsp.nspname = any($1)
order by nsp.nspname`

const classQuery = `select rel.oid, rel.relname, rel.relnamespace, rel.relkind, rel.reltype
from pg_catalog.pg_class as rel
where rel.relnamespace in (select oid from pg_catalog.pg_namespace where nspname = any($1))
and rel.relkind in ('r', 'v', 'm', 'f', 'p', 'c')
order by rel.oid`

// Only stand-alone composite types need their columns.
const attributeQuery = `select att.attrelid, att.attnum, att.attname, att.atttypid, att.attnotnull
from pg_catalog.pg_attribute as att
join pg_catalog.pg_class as rel on rel.oid = att.attrelid
where rel.relnamespace in (select oid from pg_catalog.pg_namespace where nspname = any($1))
and rel.relkind = 'c'
and att.attnum > 0
and not att.attisdropped
order by att.attrelid, att.attnum`

const typeQuery = `select typ.oid, typ.typname, typ.typnamespace, typ.typtype, typ.typcategory, typ.typrelid
from pg_catalog.pg_type as typ
order by typ.oid`

// Procedures are read from every user schema so that functions outside the
// requested schemas surface without a namespace.
const procedureQuery = `select pro.oid, pro.proname, coalesce(dsc.description, ''), pro.pronamespace,
pro.prorettype, pro.proretset, coalesce(pro.proargnames, '{}'), coalesce(pro.proargmodes::text[], '{}'), pro.proargtypes::oid[]
from pg_catalog.pg_proc as pro
left join pg_catalog.pg_description as dsc
on dsc.objoid = pro.oid and dsc.classoid = 'pg_catalog.pg_proc'::regclass
where pro.pronamespace not in (select oid from pg_catalog.pg_namespace where nspname in ('pg_catalog', 'information_schema'))
and pro.prokind = 'f'
order by pro.oid`

// Loader reads catalog records through a dialect.Querier.
type Loader struct {
	drv    dialect.Querier
	logger *slog.Logger
}

// NewLoader returns a Loader. A nil logger uses slog.Default.
func NewLoader(drv dialect.Querier, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{drv: drv, logger: logger}
}

// Load introspects the given schemas and returns the indexed result.
func (l *Loader) Load(ctx context.Context, schemas []string) (*Result, error) {
	if len(schemas) == 0 {
		return nil, setof.NewIntrospectionError("namespace", "no schemas requested", nil)
	}
	namespaces, err := l.namespaces(ctx, schemas)
	if err != nil {
		return nil, err
	}
	classes, err := l.classes(ctx, schemas)
	if err != nil {
		return nil, err
	}
	attrs, err := l.attributes(ctx, schemas)
	if err != nil {
		return nil, err
	}
	types, err := l.types(ctx)
	if err != nil {
		return nil, err
	}
	procs, err := l.procedures(ctx)
	if err != nil {
		return nil, err
	}
	l.logger.Debug("introspection loaded",
		"namespaces", len(namespaces),
		"classes", len(classes),
		"attributes", len(attrs),
		"types", len(types),
		"procedures", len(procs),
	)
	res, err := NewResult(namespaces, classes, types, procs)
	if err != nil {
		return nil, setof.NewIntrospectionError("index", "", err)
	}
	if err := res.AddAttributes(attrs...); err != nil {
		return nil, setof.NewIntrospectionError("index", "", err)
	}
	return res, nil
}

// scan runs query and calls fn for every row.
func (l *Loader) scan(ctx context.Context, kind, query string, args []any, fn func(*sql.Rows) error) error {
	rows := &sql.Rows{}
	if err := l.drv.Query(ctx, query, args, rows); err != nil {
		return setof.NewIntrospectionError(kind, "query", err)
	}
	defer rows.Close()
	for rows.Next() {
		if err := fn(rows); err != nil {
			return setof.NewIntrospectionError(kind, "scan", err)
		}
	}
	if err := rows.Err(); err != nil {
		return setof.NewIntrospectionError(kind, "rows", err)
	}
	return nil
}

func (l *Loader) namespaces(ctx context.Context, schemas []string) ([]*Namespace, error) {
	var out []*Namespace
	err := l.scan(ctx, "namespace", namespaceQuery, []any{pq.Array(schemas)}, func(rows *sql.Rows) error {
		var (
			id int64
			n  Namespace
		)
		if err := rows.Scan(&id, &n.Name); err != nil {
			return err
		}
		n.ID = OID(id)
		out = append(out, &n)
		return nil
	})
	return out, err
}

func (l *Loader) classes(ctx context.Context, schemas []string) ([]*Class, error) {
	var out []*Class
	err := l.scan(ctx, "class", classQuery, []any{pq.Array(schemas)}, func(rows *sql.Rows) error {
		var (
			id, ns, typ int64
			c           Class
		)
		if err := rows.Scan(&id, &c.Name, &ns, &c.Kind, &typ); err != nil {
			return err
		}
		c.ID, c.NamespaceID, c.TypeID = OID(id), OID(ns), OID(typ)
		out = append(out, &c)
		return nil
	})
	return out, err
}

func (l *Loader) attributes(ctx context.Context, schemas []string) ([]*Attribute, error) {
	var out []*Attribute
	err := l.scan(ctx, "attribute", attributeQuery, []any{pq.Array(schemas)}, func(rows *sql.Rows) error {
		var (
			rel, typ int64
			a        Attribute
		)
		if err := rows.Scan(&rel, &a.Num, &a.Name, &typ, &a.NotNull); err != nil {
			return err
		}
		a.ClassID, a.TypeID = OID(rel), OID(typ)
		out = append(out, &a)
		return nil
	})
	return out, err
}

func (l *Loader) types(ctx context.Context) ([]*Type, error) {
	var out []*Type
	err := l.scan(ctx, "type", typeQuery, []any{}, func(rows *sql.Rows) error {
		var (
			id, ns, rel int64
			t           Type
		)
		if err := rows.Scan(&id, &t.Name, &ns, &t.Kind, &t.Category, &rel); err != nil {
			return err
		}
		t.ID, t.NamespaceID, t.ClassID = OID(id), OID(ns), OID(rel)
		out = append(out, &t)
		return nil
	})
	return out, err
}

func (l *Loader) procedures(ctx context.Context) ([]*Procedure, error) {
	var out []*Procedure
	err := l.scan(ctx, "procedure", procedureQuery, []any{}, func(rows *sql.Rows) error {
		var (
			id, ns, ret int64
			names       pq.StringArray
			modes       pq.StringArray
			argTypes    pq.Int64Array
			p           Procedure
		)
		if err := rows.Scan(&id, &p.Name, &p.Description, &ns, &ret, &p.ReturnsSet, &names, &modes, &argTypes); err != nil {
			return err
		}
		p.ID, p.NamespaceID, p.ReturnTypeID = OID(id), OID(ns), OID(ret)
		p.ArgTypeIDs = make([]OID, len(argTypes))
		for i, a := range argTypes {
			p.ArgTypeIDs[i] = OID(a)
		}
		p.ArgNames = inputArgNames(names, modes, len(argTypes))
		out = append(out, &p)
		return nil
	})
	return out, err
}

// inputArgNames returns the names of the n input arguments. proargnames
// covers every argument mode while proargtypes only lists inputs, so names of
// output arguments are dropped. No modes means every argument is an input.
func inputArgNames(names, modes []string, n int) []string {
	out := make([]string, 0, n)
	for i, name := range names {
		if i < len(modes) {
			switch modes[i] {
			case ArgIn, ArgInOut, ArgVariadic:
			default:
				continue
			}
		}
		out = append(out, name)
	}
	for len(out) < n {
		out = append(out, "")
	}
	return out[:n]
}
