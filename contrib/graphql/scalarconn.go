package graphql

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/syssam/setof"
	"github.com/syssam/setof/introspection"
	"github.com/syssam/setof/schema"
)

// TagCursorField marks the cursor field of an edge type.
const TagCursorField = "isCursorField"

// Candidates returns the set-returning procedures that need a synthetic
// connection, in introspection order. Procedures outside the introspected
// namespaces and procedures returning rows of an entity are skipped; the
// entity's own connection serves those. A return type missing from res
// is reported as invalid metadata.
func Candidates(res *introspection.Result, logger *slog.Logger) ([]*introspection.Procedure, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var out []*introspection.Procedure
	for _, p := range res.Procedures {
		if !p.ReturnsSet {
			continue
		}
		if p.Namespace == nil {
			logger.Debug("skipping procedure", "procedure", p.Name, "reason", "namespace not introspected")
			continue
		}
		class, ok := res.ReturnClass(p)
		if !ok {
			return nil, setof.NewSchemaError(setof.ErrInvalidMetadata, "", "",
				fmt.Sprintf("procedure %s returns unknown type oid %d", p.QualifiedName(), p.ReturnTypeID), nil)
		}
		if class != nil && class.IsEntity() {
			logger.Debug("skipping procedure", "procedure", p.QualifiedName(), "reason", "returns entity "+class.Name)
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// ScalarConnectionPhase defines an edge and a connection type for every
// candidate procedure.
type ScalarConnectionPhase struct{}

// Name implements Phase.
func (ScalarConnectionPhase) Name() string { return "scalar-connection" }

type synthetic struct {
	proc *introspection.Procedure
	node schema.Type
	edge *schema.Object
	conn *schema.Object
}

// Build implements Phase. Shells for every candidate are declared before any
// field is defined, so a name collision fails the phase before it has
// defined a single field.
func (ScalarConnectionPhase) Build(in *BuildInput) (*BuildOutput, error) {
	procs, err := Candidates(in.Introspection, in.Logger)
	if err != nil {
		return nil, err
	}
	reg, inf := in.Registry, in.Inflector
	pending := make([]*synthetic, 0, len(procs))
	for _, p := range procs {
		node, ok := reg.TypeForID(p.ReturnTypeID)
		if !ok {
			node = schema.String
		}
		s := &synthetic{proc: p, node: node}
		if s.edge, err = reg.DeclareObject(
			inf.ScalarFunctionEdge(p.Name, p.Namespace.Name),
			fmt.Sprintf("A `%s` edge in the connection.", node),
			nil,
		); err != nil {
			return nil, err
		}
		if s.conn, err = reg.DeclareObject(
			inf.ScalarFunctionConnection(p.Name, p.Namespace.Name),
			fmt.Sprintf("A connection to a list of `%s` values.", node),
			nil,
		); err != nil {
			return nil, err
		}
		pending = append(pending, s)
	}
	for _, s := range pending {
		if err := s.edge.SetKind(schema.EdgeKind{NodeType: s.node, Source: s.proc}); err != nil {
			return nil, err
		}
		if err := s.conn.SetKind(schema.ConnectionKind{EdgeType: s.edge, NodeType: s.node, Source: s.proc}); err != nil {
			return nil, err
		}
	}
	out := &BuildOutput{}
	for _, s := range pending {
		if err := defineEdge(in, s); err != nil {
			return nil, err
		}
		if err := defineConnection(in, s); err != nil {
			return nil, err
		}
		out.Types = append(out.Types, s.edge, s.conn)
	}
	return out, nil
}

func defineEdge(in *BuildInput, s *synthetic) error {
	fc := in.Registry.Fields(s.edge)
	if err := fc.Field("cursor", schema.FieldConfig{
		Description:    "A cursor for use in pagination.",
		Type:           in.Cursor,
		DataGenerators: []schema.DataGenerator{usesCursor},
		Resolve:        cursorResolver(in.Encoder),
		Tags:           map[string]any{TagCursorField: true},
	}); err != nil {
		return err
	}
	return fc.Field("node", schema.FieldConfig{
		Description: fmt.Sprintf("The `%s` at the end of the edge.", s.node),
		Type:        s.node,
		Resolve: func(_ context.Context, p schema.ResolveParams) (any, error) {
			r, err := rowOf(p.Source)
			if err != nil {
				return nil, err
			}
			return r.Value, nil
		},
	})
}

func defineConnection(in *BuildInput, s *synthetic) error {
	fc := in.Registry.Fields(s.conn)
	for _, name := range []string{"edges", "nodes"} {
		if err := fc.RecurseDataGeneratorsForField(name); err != nil {
			return err
		}
	}
	if err := fc.Field("nodes", schema.FieldConfig{
		Description: fmt.Sprintf("A list of `%s` objects.", s.node),
		Type:        schema.NonNullOf(schema.ListOf(s.node)),
		Resolve: func(_ context.Context, p schema.ResolveParams) (any, error) {
			rs, err := resultSetOf(p.Source)
			if err != nil {
				return nil, err
			}
			return rs.Values(), nil
		},
	}); err != nil {
		return err
	}
	return fc.Field("edges", schema.FieldConfig{
		Description: fmt.Sprintf("A list of edges which contains the `%s` and cursor to aid in pagination.", s.node),
		Type:        schema.NonNullOf(schema.ListOf(schema.NonNullOf(s.edge))),
		Resolve: func(_ context.Context, p schema.ResolveParams) (any, error) {
			rs, err := resultSetOf(p.Source)
			if err != nil {
				return nil, err
			}
			return rs.Rows(), nil
		},
	})
}
