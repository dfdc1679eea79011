package graphql

import (
	"context"
	"fmt"

	"github.com/syssam/setof/inflection"
	"github.com/syssam/setof/introspection"
	"github.com/syssam/setof/schema"
)

// CompositeTypesPhase declares an object type for every stand-alone composite
// type of the introspected namespaces and binds it to the composite's type
// oid, so that functions returning such rows get a structured node.
// Composites already bound in the registry, or without columns, are left
// alone.
type CompositeTypesPhase struct{}

// Name implements Phase.
func (CompositeTypesPhase) Name() string { return "composite-types" }

type composite struct {
	class *introspection.Class
	obj   *schema.Object
}

// Build implements Phase.
func (CompositeTypesPhase) Build(in *BuildInput) (*BuildOutput, error) {
	res, reg := in.Introspection, in.Registry
	var pending []*composite
	for _, c := range res.Classes {
		if c.Kind != introspection.ClassComposite {
			continue
		}
		ns, ok := res.NamespaceByID(c.NamespaceID)
		if !ok {
			continue
		}
		if _, ok := reg.TypeForID(c.TypeID); ok {
			in.Logger.Debug("skipping composite", "class", ns.Name+"."+c.Name, "reason", "type already bound")
			continue
		}
		if len(res.AttributesOf(c.ID)) == 0 {
			in.Logger.Debug("skipping composite", "class", ns.Name+"."+c.Name, "reason", "no attributes")
			continue
		}
		obj, err := reg.DeclareObject(inflection.UpperCamel(c.Name), fmt.Sprintf("The `%s` composite type.", c.Name), schema.CompositeKind{Class: c})
		if err != nil {
			return nil, err
		}
		pending = append(pending, &composite{class: c, obj: obj})
	}
	// Bind every shell before defining columns so composites may nest.
	for _, p := range pending {
		if err := reg.BindTypeID(p.class.TypeID, p.obj); err != nil {
			return nil, err
		}
	}
	out := &BuildOutput{}
	for _, p := range pending {
		if err := defineComposite(in, p); err != nil {
			return nil, err
		}
		out.Types = append(out.Types, p.obj)
	}
	return out, nil
}

func defineComposite(in *BuildInput, p *composite) error {
	fc := in.Registry.Fields(p.obj)
	for _, a := range in.Introspection.AttributesOf(p.class.ID) {
		typ, ok := in.Registry.TypeForID(a.TypeID)
		if !ok {
			typ = schema.String
		}
		if a.NotNull {
			typ = schema.NonNullOf(typ)
		}
		column := a.Name
		if err := fc.Field(inflection.LowerCamel(a.Name), schema.FieldConfig{
			Type: typ,
			Resolve: func(_ context.Context, rp schema.ResolveParams) (any, error) {
				m, ok := rp.Source.(map[string]any)
				if !ok {
					return nil, fmt.Errorf("%s: unexpected row %T", p.obj.Name(), rp.Source)
				}
				return m[column], nil
			},
		}); err != nil {
			return err
		}
	}
	return nil
}
