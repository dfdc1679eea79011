package graphql

import (
	"context"
	"errors"

	"github.com/syssam/setof"
	"github.com/syssam/setof/introspection"
	"github.com/syssam/setof/schema"
)

// QueryType is the name of the root query type.
const QueryType = "Query"

// QueryFieldsPhase adds a root query field for every synthesized connection.
// It must run after ScalarConnectionPhase.
type QueryFieldsPhase struct {
	Fetcher *Fetcher
}

// Name implements Phase.
func (QueryFieldsPhase) Name() string { return "query-fields" }

// Build implements Phase.
func (q QueryFieldsPhase) Build(in *BuildInput) (*BuildOutput, error) {
	if q.Fetcher == nil {
		return nil, errors.New("graphql: query fields require a fetcher")
	}
	query, declared, err := queryObject(in.Registry)
	if err != nil {
		return nil, err
	}
	fc := in.Registry.Fields(query)
	for _, o := range in.Registry.Objects() {
		ck, ok := o.Kind().(schema.ConnectionKind)
		if !ok || ck.Source == nil || ck.Source.Namespace == nil {
			continue
		}
		p := ck.Source
		args := make([]*schema.Argument, len(p.ArgTypeIDs))
		for i, id := range p.ArgTypeIDs {
			t, ok := in.Registry.TypeForID(id)
			if !ok {
				t = schema.String
			}
			var name string
			if i < len(p.ArgNames) {
				name = p.ArgNames[i]
			}
			args[i] = &schema.Argument{Name: in.Inflector.Argument(name, i+1), Type: t}
		}
		desc := p.Description
		if desc == "" {
			desc = "Reads and enables pagination through a set of `" + ck.NodeType.String() + "`."
		}
		if err := fc.Field(in.Inflector.FunctionQueryField(p.Name, p.Namespace.Name), schema.FieldConfig{
			Description: desc,
			Type:        schema.NonNullOf(o),
			Args:        args,
			Resolve:     q.resolver(o, p, args),
		}); err != nil {
			return nil, err
		}
	}
	out := &BuildOutput{}
	if declared {
		out.Types = append(out.Types, query)
	}
	return out, nil
}

func queryObject(reg *schema.Registry) (*schema.Object, bool, error) {
	t, ok := reg.Lookup(QueryType)
	if !ok {
		o, err := reg.DeclareObject(QueryType, "The root query type which gives access points into the data universe.", nil)
		return o, true, err
	}
	o, ok := t.(*schema.Object)
	if !ok {
		return nil, false, setof.NewSchemaError(setof.ErrDuplicateType, QueryType, "", "type is not an object", nil)
	}
	return o, false, nil
}

// resolver fetches the rows of p, selecting cursors only when the selection
// beneath the field asks for one.
func (q QueryFieldsPhase) resolver(conn *schema.Object, p *introspection.Procedure, args []*schema.Argument) schema.Resolver {
	return func(ctx context.Context, rp schema.ResolveParams) (any, error) {
		values := make([]any, len(args))
		for i, a := range args {
			values[i] = rp.Args[a.Name]
		}
		req := conn.Requirements(rp.Field.SelectionSet)
		return q.Fetcher.Fetch(ctx, p, values, req.UsesCursor())
	}
}
