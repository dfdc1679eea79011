package schema

import (
	"context"
	"fmt"
	"reflect"

	"github.com/vektah/gqlparser/v2/ast"
)

// Execute resolves sel against o with source as the parent value and returns
// the response object keyed by alias. It runs resolvers sequentially and stops
// at the first error; it exists to exercise resolver contracts, not to serve
// traffic.
func Execute(ctx context.Context, o *Object, source any, sel ast.SelectionSet, vars map[string]any) (map[string]any, error) {
	out := make(map[string]any)
	if err := o.execute(ctx, source, sel, vars, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (o *Object) execute(ctx context.Context, source any, sel ast.SelectionSet, vars map[string]any, out map[string]any) error {
	for _, s := range sel {
		switch s := s.(type) {
		case *ast.Field:
			key := s.Alias
			if key == "" {
				key = s.Name
			}
			if s.Name == "__typename" {
				out[key] = o.name
				continue
			}
			v, err := o.resolveField(ctx, source, s, vars)
			if err != nil {
				return err
			}
			out[key] = v
		case *ast.InlineFragment:
			if s.TypeCondition == "" || s.TypeCondition == o.name {
				if err := o.execute(ctx, source, s.SelectionSet, vars, out); err != nil {
					return err
				}
			}
		case *ast.FragmentSpread:
			if d := s.Definition; d != nil && d.TypeCondition == o.name {
				if err := o.execute(ctx, source, d.SelectionSet, vars, out); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (o *Object) resolveField(ctx context.Context, source any, s *ast.Field, vars map[string]any) (any, error) {
	f, ok := o.byName[s.Name]
	if !ok {
		return nil, fmt.Errorf("%s.%s: no such field", o.name, s.Name)
	}
	args := make(map[string]any, len(s.Arguments))
	for _, a := range s.Arguments {
		v, err := a.Value.Value(vars)
		if err != nil {
			return nil, fmt.Errorf("%s.%s(%s): %w", o.name, s.Name, a.Name, err)
		}
		args[a.Name] = v
	}
	resolve := f.Resolve
	if resolve == nil {
		resolve = defaultResolver
	}
	v, err := resolve(ctx, ResolveParams{Source: source, Field: s, Args: args, Object: o})
	if err != nil {
		return nil, fmt.Errorf("%s.%s: %w", o.name, s.Name, err)
	}
	v, err = complete(ctx, f.Type, v, s, vars)
	if err != nil {
		return nil, fmt.Errorf("%s.%s: %w", o.name, s.Name, err)
	}
	return v, nil
}

// defaultResolver reads the field from a map source.
func defaultResolver(_ context.Context, p ResolveParams) (any, error) {
	if m, ok := p.Source.(map[string]any); ok {
		return m[p.Field.Name], nil
	}
	return nil, nil
}

func complete(ctx context.Context, t Type, v any, s *ast.Field, vars map[string]any) (any, error) {
	if nn, ok := t.(*NonNull); ok {
		if isNil(v) {
			return nil, fmt.Errorf("non-null %s resolved to null", t)
		}
		return complete(ctx, nn.OfType, v, s, vars)
	}
	if isNil(v) {
		return nil, nil
	}
	switch t := t.(type) {
	case *List:
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return nil, fmt.Errorf("%s resolved to non-list %T", t, v)
		}
		items := make([]any, rv.Len())
		for i := range items {
			item, err := complete(ctx, t.OfType, rv.Index(i).Interface(), s, vars)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			items[i] = item
		}
		return items, nil
	case *Object:
		return Execute(ctx, t, v, s.SelectionSet, vars)
	case *Scalar:
		if t.serialize != nil {
			return t.serialize(v)
		}
		return v, nil
	default:
		return nil, fmt.Errorf("unsupported type %T", t)
	}
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func:
		return rv.IsNil()
	}
	return false
}
