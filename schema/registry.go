package schema

import (
	"fmt"

	"github.com/syssam/setof"
	"github.com/syssam/setof/introspection"
)

// Registry holds every named output type of a schema build.
//
// A Registry is written by a single build pass and frozen by Finalize; it is
// not safe for concurrent writes. After Finalize it is read-only and may be
// shared.
type Registry struct {
	types  []Named
	byName map[string]Named
	byID   map[introspection.OID]Type
	frozen bool
}

// NewRegistry returns a registry holding the builtin scalars.
func NewRegistry() *Registry {
	r := &Registry{
		byName: make(map[string]Named),
		byID:   make(map[introspection.OID]Type),
	}
	for _, s := range []*Scalar{String, Int, Float, Boolean, ID} {
		r.types = append(r.types, s)
		r.byName[s.name] = s
	}
	return r
}

func (r *Registry) writable(name string) error {
	if r.frozen {
		return setof.NewSchemaError(setof.ErrRegistryFrozen, name, "", "", nil)
	}
	return nil
}

func (r *Registry) add(t Named) error {
	if err := r.writable(t.Name()); err != nil {
		return err
	}
	if t.Name() == "" {
		return setof.NewSchemaError(setof.ErrInvalidMetadata, "", "", "empty type name", nil)
	}
	if _, ok := r.byName[t.Name()]; ok {
		return setof.NewSchemaError(setof.ErrDuplicateType, t.Name(), "", "type name already registered", nil)
	}
	r.types = append(r.types, t)
	r.byName[t.Name()] = t
	return nil
}

// DeclareScalar registers a custom scalar.
func (r *Registry) DeclareScalar(name string, cfg ScalarConfig) (*Scalar, error) {
	s := &Scalar{
		name:        name,
		description: cfg.Description,
		external:    cfg.External,
		goPackage:   cfg.GoPackage,
		goName:      cfg.GoName,
		serialize:   cfg.Serialize,
	}
	if err := r.add(s); err != nil {
		return nil, err
	}
	return s, nil
}

// DeclareObject registers an object shell. Fields are defined later through
// Fields. A nil kind means OtherKind.
func (r *Registry) DeclareObject(name, description string, kind Kind) (*Object, error) {
	if kind == nil {
		kind = OtherKind{}
	}
	o := &Object{
		name:        name,
		description: description,
		kind:        kind,
		byName:      make(map[string]*Field),
		recurse:     make(map[string]bool),
		reg:         r,
	}
	if err := r.add(o); err != nil {
		return nil, err
	}
	return o, nil
}

// Fields returns the field definition context of o.
func (r *Registry) Fields(o *Object) *FieldContext {
	return &FieldContext{obj: o}
}

// Lookup returns the type registered under name.
func (r *Registry) Lookup(name string) (Named, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// BindTypeID maps a database type identity to an output type.
func (r *Registry) BindTypeID(id introspection.OID, t Type) error {
	if err := r.writable(fmt.Sprintf("oid %d", id)); err != nil {
		return err
	}
	if t == nil {
		return setof.NewSchemaError(setof.ErrUnknownType, "", "", fmt.Sprintf("nil type bound to oid %d", id), nil)
	}
	r.byID[id] = t
	return nil
}

// TypeForID returns the output type bound to a database type identity. The
// second result is false when nothing is bound.
func (r *Registry) TypeForID(id introspection.OID) (Type, bool) {
	t, ok := r.byID[id]
	return t, ok
}

// Types returns every registered type in declaration order, builtins first.
func (r *Registry) Types() []Named {
	return r.types
}

// Objects returns the registered object types in declaration order.
func (r *Registry) Objects() []*Object {
	var objs []*Object
	for _, t := range r.types {
		if o, ok := t.(*Object); ok {
			objs = append(objs, o)
		}
	}
	return objs
}

// Frozen reports whether Finalize succeeded.
func (r *Registry) Frozen() bool { return r.frozen }

// Finalize checks that every object has fields and that every field and
// argument type is a registered type, then freezes the registry.
func (r *Registry) Finalize() error {
	if r.frozen {
		return nil
	}
	for _, o := range r.Objects() {
		if len(o.fields) == 0 {
			return setof.NewSchemaError(setof.ErrEmptyType, o.name, "", "", nil)
		}
		for _, f := range o.fields {
			if err := r.resolvable(f.Type); err != nil {
				return setof.NewSchemaError(setof.ErrUnknownType, o.name, f.Name, "", err)
			}
			for _, a := range f.Args {
				if err := r.resolvable(a.Type); err != nil {
					return setof.NewSchemaError(setof.ErrUnknownType, o.name, f.Name, "argument "+a.Name, err)
				}
			}
		}
	}
	r.frozen = true
	return nil
}

func (r *Registry) resolvable(t Type) error {
	n := NamedOf(t)
	if n == nil {
		return fmt.Errorf("unsupported type %T", t)
	}
	if got, ok := r.byName[n.Name()]; !ok || got != n {
		return fmt.Errorf("%s is not registered", n.Name())
	}
	return nil
}
