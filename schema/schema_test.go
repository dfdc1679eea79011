package schema

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"

	"github.com/syssam/setof"
	"github.com/syssam/setof/introspection"
)

type pair struct {
	value  any
	cursor string
}

// fixture registers Cursor, PairEdge, PairsConnection and Query.
func fixture(t *testing.T) (*Registry, *Object, *Object) {
	t.Helper()
	r := NewRegistry()
	cur, err := r.DeclareScalar("Cursor", ScalarConfig{Description: "A location in a connection."})
	require.NoError(t, err)

	edge, err := r.DeclareObject("PairEdge", "A pair edge.", nil)
	require.NoError(t, err)
	conn, err := r.DeclareObject("PairsConnection", "Pairs.", nil)
	require.NoError(t, err)
	query, err := r.DeclareObject("Query", "", nil)
	require.NoError(t, err)
	require.NoError(t, edge.SetKind(EdgeKind{NodeType: String}))
	require.NoError(t, conn.SetKind(ConnectionKind{EdgeType: edge, NodeType: String}))

	fc := r.Fields(edge)
	require.NoError(t, fc.Field("cursor", FieldConfig{
		Type: cur,
		DataGenerators: []DataGenerator{func(*ast.Field) Requirements {
			return Requirements{KeyUsesCursor: {true}}
		}},
		Resolve: func(_ context.Context, p ResolveParams) (any, error) {
			return p.Source.(pair).cursor, nil
		},
	}))
	require.NoError(t, fc.Field("node", FieldConfig{
		Type: String,
		Resolve: func(_ context.Context, p ResolveParams) (any, error) {
			return p.Source.(pair).value, nil
		},
	}))

	fc = r.Fields(conn)
	require.NoError(t, fc.RecurseDataGeneratorsForField("edges"))
	require.NoError(t, fc.Field("edges", FieldConfig{
		Type: NonNullOf(ListOf(NonNullOf(edge))),
		Resolve: func(_ context.Context, p ResolveParams) (any, error) {
			return p.Source, nil
		},
	}))
	require.NoError(t, fc.Field("nodes", FieldConfig{
		Type: NonNullOf(ListOf(String)),
		Resolve: func(_ context.Context, p ResolveParams) (any, error) {
			var out []any
			for _, v := range p.Source.([]pair) {
				out = append(out, v.value)
			}
			return out, nil
		},
	}))

	require.NoError(t, r.Fields(query).Field("pairs", FieldConfig{
		Type: NonNullOf(conn),
		Args: []*Argument{{Name: "limit", Type: Int}},
		Resolve: func(_ context.Context, p ResolveParams) (any, error) {
			all := []pair{{"a", "c0"}, {"b", "c1"}, {"c", "c2"}}
			if n, ok := p.Args["limit"].(int64); ok {
				all = all[:n]
			}
			return all, nil
		},
	}))
	require.NoError(t, r.Finalize())
	return r, conn, query
}

func parse(t *testing.T, q string) *ast.QueryDocument {
	t.Helper()
	doc, err := parser.ParseQuery(&ast.Source{Input: q})
	if err != nil {
		t.Fatalf("parse %q: %v", q, err)
	}
	return doc
}

func TestTypeStrings(t *testing.T) {
	edge := &Object{name: "PairEdge"}
	assert.Equal(t, "[PairEdge!]!", NonNullOf(ListOf(NonNullOf(edge))).String())
	assert.Equal(t, "[String]!", NonNullOf(ListOf(String)).String())
	assert.Equal(t, "String!", NonNullOf(NonNullOf(String)).String())
	assert.Same(t, edge, NamedOf(NonNullOf(ListOf(edge))))
	assert.Nil(t, NamedOf(nil))
}

func TestRegistry(t *testing.T) {
	t.Run("builtins", func(t *testing.T) {
		r := NewRegistry()
		for _, name := range []string{"String", "Int", "Float", "Boolean", "ID"} {
			typ, ok := r.Lookup(name)
			require.True(t, ok, name)
			assert.True(t, typ.(*Scalar).Builtin())
		}
		pkg, name := String.GoType()
		assert.Empty(t, pkg)
		assert.Equal(t, "string", name)
	})

	t.Run("duplicate names", func(t *testing.T) {
		r := NewRegistry()
		_, err := r.DeclareObject("Thing", "", nil)
		require.NoError(t, err)
		_, err = r.DeclareObject("Thing", "", nil)
		require.Error(t, err)
		assert.True(t, errors.Is(err, setof.ErrDuplicateType))
		_, err = r.DeclareScalar("String", ScalarConfig{})
		assert.True(t, errors.Is(err, setof.ErrDuplicateType))
	})

	t.Run("type identities", func(t *testing.T) {
		r := NewRegistry()
		_, ok := r.TypeForID(23)
		assert.False(t, ok)
		require.NoError(t, r.BindTypeID(23, Int))
		typ, ok := r.TypeForID(introspection.OID(23))
		require.True(t, ok)
		assert.Same(t, Int, typ)
		assert.Error(t, r.BindTypeID(24, nil))
	})

	t.Run("finalize rejects unknown types", func(t *testing.T) {
		r := NewRegistry()
		o, err := r.DeclareObject("Thing", "", nil)
		require.NoError(t, err)
		stray := &Object{name: "Stray"}
		require.NoError(t, r.Fields(o).Field("stray", FieldConfig{Type: stray}))
		err = r.Finalize()
		require.Error(t, err)
		assert.True(t, errors.Is(err, setof.ErrUnknownType))
		assert.False(t, r.Frozen())
	})

	t.Run("finalize rejects unknown argument types", func(t *testing.T) {
		r := NewRegistry()
		o, err := r.DeclareObject("Thing", "", nil)
		require.NoError(t, err)
		require.NoError(t, r.Fields(o).Field("x", FieldConfig{
			Type: String,
			Args: []*Argument{{Name: "a", Type: &Scalar{name: "Stray"}}},
		}))
		assert.True(t, errors.Is(r.Finalize(), setof.ErrUnknownType))
	})

	t.Run("finalize rejects empty objects", func(t *testing.T) {
		r := NewRegistry()
		_, err := r.DeclareObject("Empty", "", nil)
		require.NoError(t, err)
		assert.True(t, errors.Is(r.Finalize(), setof.ErrEmptyType))
	})

	t.Run("frozen", func(t *testing.T) {
		r, conn, _ := fixture(t)
		assert.True(t, r.Frozen())
		require.NoError(t, r.Finalize())

		_, err := r.DeclareObject("Late", "", nil)
		assert.True(t, errors.Is(err, setof.ErrRegistryFrozen))
		assert.True(t, errors.Is(r.Fields(conn).Field("late", FieldConfig{Type: String}), setof.ErrRegistryFrozen))
		assert.True(t, errors.Is(r.Fields(conn).RecurseDataGeneratorsForField("nodes"), setof.ErrRegistryFrozen))
		assert.True(t, errors.Is(conn.SetKind(OtherKind{}), setof.ErrRegistryFrozen))
		assert.True(t, errors.Is(r.BindTypeID(1, String), setof.ErrRegistryFrozen))
	})

	t.Run("field errors", func(t *testing.T) {
		r := NewRegistry()
		o, err := r.DeclareObject("Thing", "", nil)
		require.NoError(t, err)
		fc := r.Fields(o)
		assert.Same(t, o, fc.Object())
		require.NoError(t, fc.Field("a", FieldConfig{Type: String}))
		assert.True(t, errors.Is(fc.Field("a", FieldConfig{Type: String}), setof.ErrDuplicateType))
		assert.True(t, errors.Is(fc.Field("b", FieldConfig{}), setof.ErrUnknownType))
		assert.Error(t, fc.Field("", FieldConfig{Type: String}))
	})
}

func TestKinds(t *testing.T) {
	r, conn, query := fixture(t)
	assert.True(t, conn.IsConnection())
	assert.False(t, conn.IsEdge())
	ck := conn.Kind().(ConnectionKind)
	assert.True(t, ck.EdgeType.IsEdge())
	assert.Equal(t, "PairEdge", ck.EdgeType.Name())
	assert.IsType(t, OtherKind{}, query.Kind())
	assert.Len(t, r.Objects(), 3)
}

func TestRequirements(t *testing.T) {
	_, conn, _ := fixture(t)

	tests := []struct {
		name   string
		query  string
		cursor bool
	}{
		{"nodes only", `{ nodes }`, false},
		{"edge nodes", `{ edges { node } }`, false},
		{"edge cursor", `{ edges { cursor } }`, true},
		{"aliased cursor", `{ e: edges { c: cursor node } }`, true},
		{"inline fragment", `{ ... on PairsConnection { edges { ... { cursor } } } }`, true},
		{"other type fragment", `{ ... on Other { edges { cursor } } }`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := parse(t, tt.query)
			req := conn.Requirements(doc.Operations[0].SelectionSet)
			require.NotNil(t, req)
			assert.Equal(t, tt.cursor, req.UsesCursor())
			assert.Equal(t, tt.cursor, req.Has(KeyUsesCursor))
		})
	}
}

func TestRequirementsWithoutRecursion(t *testing.T) {
	r := NewRegistry()
	inner, err := r.DeclareObject("Inner", "", nil)
	require.NoError(t, err)
	outer, err := r.DeclareObject("Outer", "", nil)
	require.NoError(t, err)
	require.NoError(t, r.Fields(inner).Field("x", FieldConfig{
		Type: String,
		DataGenerators: []DataGenerator{func(*ast.Field) Requirements {
			return Requirements{"x": {1}}
		}},
	}))
	require.NoError(t, r.Fields(outer).Field("inner", FieldConfig{Type: inner}))

	req := outer.Requirements(parse(t, `{ inner { x } }`).Operations[0].SelectionSet)
	assert.Empty(t, req)
	req = inner.Requirements(parse(t, `{ x x }`).Operations[0].SelectionSet)
	assert.Equal(t, []any{1, 1}, req["x"])
}

func TestRequirementsMerge(t *testing.T) {
	var r Requirements
	r = r.Merge(Requirements{KeyUsesCursor: {false}})
	assert.False(t, r.UsesCursor())
	r = r.Merge(Requirements{KeyUsesCursor: {true}, "other": {"x"}})
	assert.True(t, r.UsesCursor())
	assert.Equal(t, []any{false, true}, r[KeyUsesCursor])
	assert.True(t, r.Has("other"))
}

func TestSDL(t *testing.T) {
	r, _, _ := fixture(t)
	sdl := r.SDL()
	for _, want := range []string{
		"scalar Cursor",
		"type PairEdge {",
		"cursor: Cursor",
		"node: String",
		"type PairsConnection {",
		"edges: [PairEdge!]!",
		"nodes: [String]!",
		"pairs(limit: Int): PairsConnection!",
	} {
		assert.Contains(t, sdl, want)
	}
	assert.NotContains(t, sdl, "scalar String")

	s, err := r.Validate()
	require.NoError(t, err)
	require.NotNil(t, s.Query)
	assert.Equal(t, "Query", s.Query.Name)
	assert.NotNil(t, s.Types["PairEdge"])
}

func TestSDLExternalScalar(t *testing.T) {
	r := NewRegistry()
	cur, err := r.DeclareScalar("Cursor", ScalarConfig{External: true})
	require.NoError(t, err)
	assert.True(t, cur.External())
	q, err := r.DeclareObject("Query", "", nil)
	require.NoError(t, err)
	require.NoError(t, r.Fields(q).Field("c", FieldConfig{Type: cur}))
	assert.NotContains(t, r.SDL(), "scalar Cursor")

	_, err = r.Validate()
	assert.Error(t, err)
	_, err = r.Validate(&ast.Source{Name: "cursor.graphql", Input: "scalar Cursor"})
	assert.NoError(t, err)
}

func TestExecute(t *testing.T) {
	r, _, query := fixture(t)
	s, err := r.Validate()
	require.NoError(t, err)

	doc := gqlparser.MustLoadQuery(s, `query($n: Int) {
		pairs(limit: $n) {
			__typename
			nodes
			edges { cursor value: node }
		}
	}`)
	out, err := Execute(context.Background(), query, nil, doc.Operations[0].SelectionSet, map[string]any{"n": int64(2)})
	require.NoError(t, err)

	pairs := out["pairs"].(map[string]any)
	assert.Equal(t, "PairsConnection", pairs["__typename"])
	assert.Equal(t, []any{"a", "b"}, pairs["nodes"])
	edges := pairs["edges"].([]any)
	require.Len(t, edges, 2)
	assert.Equal(t, map[string]any{"cursor": "c1", "value": "b"}, edges[1])
}

func TestExecuteNonNull(t *testing.T) {
	r := NewRegistry()
	q, err := r.DeclareObject("Query", "", nil)
	require.NoError(t, err)
	fc := r.Fields(q)
	require.NoError(t, fc.Field("must", FieldConfig{Type: NonNullOf(String)}))
	require.NoError(t, fc.Field("may", FieldConfig{Type: String}))
	require.NoError(t, fc.Field("list", FieldConfig{Type: ListOf(String)}))
	require.NoError(t, r.Finalize())

	ctx := context.Background()
	out, err := Execute(ctx, q, map[string]any{"may": nil}, parse(t, `{ may }`).Operations[0].SelectionSet, nil)
	require.NoError(t, err)
	assert.Nil(t, out["may"])

	_, err = Execute(ctx, q, map[string]any{}, parse(t, `{ must }`).Operations[0].SelectionSet, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Query.must")

	_, err = Execute(ctx, q, map[string]any{"list": 3}, parse(t, `{ list }`).Operations[0].SelectionSet, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-list")

	_, err = Execute(ctx, q, nil, parse(t, `{ missing }`).Operations[0].SelectionSet, nil)
	assert.Error(t, err)
}

type label string

func (l label) String() string { return "label:" + string(l) }

func TestBuiltinSerialize(t *testing.T) {
	tests := []struct {
		name    string
		scalar  *Scalar
		in      any
		want    any
		wantErr bool
	}{
		{"string", String, "a", "a", false},
		{"string from number", String, json.Number("5"), "5", false},
		{"string from int", String, 42, "42", false},
		{"string from int64", String, int64(-7), "-7", false},
		{"string from float", String, 1.5, "1.5", false},
		{"string from bool", String, false, "false", false},
		{"string from bytes", String, []byte("raw"), "raw", false},
		{"string from stringer", String, label("x"), "label:x", false},
		{"string from object", String, map[string]any{"a": json.Number("1")}, `{"a":1}`, false},
		{"string from list", String, []any{"a", json.Number("2")}, `["a",2]`, false},
		{"string from func", String, func() {}, nil, true},
		{"id from number", ID, json.Number("10"), "10", false},
		{"int", Int, 3, 3, false},
		{"int from number", Int, json.Number("5"), 5, false},
		{"int from integral float", Int, 2.0, 2, false},
		{"int from integral number", Int, json.Number("2.0"), 2, false},
		{"int from int64", Int, int64(9), 9, false},
		{"int from bool", Int, true, 1, false},
		{"int from string", Int, "12", 12, false},
		{"int fraction", Int, 1.5, nil, true},
		{"int overflow", Int, int64(math.MaxInt32) + 1, nil, true},
		{"int overflow number", Int, json.Number("9223372036854775807"), nil, true},
		{"int not a number", Int, "x", nil, true},
		{"int object", Int, map[string]any{}, nil, true},
		{"float", Float, 1.25, 1.25, false},
		{"float from number", Float, json.Number("0.5"), 0.5, false},
		{"float from int", Float, 2, 2.0, false},
		{"float from int64", Float, int64(3), 3.0, false},
		{"float from string", Float, "x", nil, true},
		{"boolean", Boolean, true, true, false},
		{"boolean from number", Boolean, json.Number("0"), false, false},
		{"boolean from int", Boolean, 1, true, false},
		{"boolean from string", Boolean, "true", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.scalar.serialize(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExecuteSerializesScalars(t *testing.T) {
	r := NewRegistry()
	q, err := r.DeclareObject("Query", "", nil)
	require.NoError(t, err)
	fc := r.Fields(q)
	require.NoError(t, fc.Field("name", FieldConfig{Type: String}))
	require.NoError(t, fc.Field("counts", FieldConfig{Type: NonNullOf(ListOf(Int))}))
	require.NoError(t, fc.Field("bad", FieldConfig{Type: Int}))

	src := map[string]any{"name": json.Number("7"), "counts": []any{json.Number("1"), nil, 3}, "bad": "x"}
	out, err := Execute(context.Background(), q, src, parse(t, `{ name counts }`).Operations[0].SelectionSet, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "7", "counts": []any{1, nil, 3}}, out)

	_, err = Execute(context.Background(), q, src, parse(t, `{ bad }`).Operations[0].SelectionSet, nil)
	assert.Error(t, err)
}
