// Package schema is a small, typed GraphQL output type system.
//
// Types are declared into a Registry in two phases: shells are declared first
// (so that types can refer to each other), fields are defined afterwards, and
// Finalize freezes the registry once every reference resolves. Fields may
// carry data generators, which tell the row producer what a selection needs
// before any resolver runs.
package schema

import (
	"github.com/syssam/setof/introspection"
)

// Type is any GraphQL output type reference.
type Type interface {
	// String returns the type reference in SDL notation, e.g. "[String!]!".
	String() string
	isType()
}

// Named is a type with a name in the registry.
type Named interface {
	Type
	Name() string
	Description() string
}

// Scalar is a leaf type.
type Scalar struct {
	name        string
	description string
	builtin     bool
	external    bool
	goPackage   string
	goName      string
	serialize   func(any) (any, error)
}

// ScalarConfig configures a declared scalar.
type ScalarConfig struct {
	Description string
	// GoPackage and GoName name the Go type used in generated models.
	GoPackage string
	GoName    string
	// External scalars are defined by another schema file and omitted from SDL.
	External bool
	// Serialize converts resolved values before they are returned.
	Serialize func(any) (any, error)
}

func (*Scalar) isType() {}

// Name returns the scalar name.
func (s *Scalar) Name() string { return s.name }

// Description returns the scalar description.
func (s *Scalar) Description() string { return s.description }

// String implements Type.
func (s *Scalar) String() string { return s.name }

// Builtin reports whether the scalar is part of the GraphQL prelude.
func (s *Scalar) Builtin() bool { return s.builtin }

// External reports whether the scalar is defined outside the generated SDL.
func (s *Scalar) External() bool { return s.external }

// GoType returns the Go package path and type name of the scalar. An empty
// package means a predeclared Go type.
func (s *Scalar) GoType() (pkg, name string) { return s.goPackage, s.goName }

// Builtin scalars shared by every registry.
var (
	String  = &Scalar{name: "String", description: "The `String` scalar type represents textual data.", builtin: true, goName: "string", serialize: serializeString}
	Int     = &Scalar{name: "Int", description: "The `Int` scalar type represents non-fractional signed whole numeric values.", builtin: true, goName: "int", serialize: serializeInt}
	Float   = &Scalar{name: "Float", description: "The `Float` scalar type represents signed double-precision fractional values.", builtin: true, goName: "float64", serialize: serializeFloat}
	Boolean = &Scalar{name: "Boolean", description: "The `Boolean` scalar type represents `true` or `false`.", builtin: true, goName: "bool", serialize: serializeBoolean}
	ID      = &Scalar{name: "ID", description: "The `ID` scalar type represents a unique identifier.", builtin: true, goName: "string", serialize: serializeString}
)

// List wraps a type in a list.
type List struct{ OfType Type }

func (*List) isType() {}

// String implements Type.
func (l *List) String() string { return "[" + l.OfType.String() + "]" }

// NonNull wraps a type as non-nullable.
type NonNull struct{ OfType Type }

func (*NonNull) isType() {}

// String implements Type.
func (n *NonNull) String() string { return n.OfType.String() + "!" }

// ListOf returns [t].
func ListOf(t Type) *List { return &List{OfType: t} }

// NonNullOf returns t!. Wrapping a NonNull again returns it unchanged.
func NonNullOf(t Type) Type {
	if nn, ok := t.(*NonNull); ok {
		return nn
	}
	return &NonNull{OfType: t}
}

// NamedOf strips list and non-null wrappers from t.
func NamedOf(t Type) Named {
	for {
		switch w := t.(type) {
		case *List:
			t = w.OfType
		case *NonNull:
			t = w.OfType
		case Named:
			return w
		default:
			return nil
		}
	}
}

// Kind tags what an object type represents.
type Kind interface{ isKind() }

// EdgeKind marks an edge type: one node plus its cursor.
type EdgeKind struct {
	NodeType Type
	Source   *introspection.Procedure
}

// ConnectionKind marks a connection type aggregating edges of EdgeType.
type ConnectionKind struct {
	EdgeType *Object
	NodeType Type
	Source   *introspection.Procedure
}

// CompositeKind marks the object type of a stand-alone composite type.
type CompositeKind struct {
	Class *introspection.Class
}

// OtherKind marks every other object type.
type OtherKind struct{}

func (EdgeKind) isKind()       {}
func (ConnectionKind) isKind() {}
func (CompositeKind) isKind()  {}
func (OtherKind) isKind()      {}

// Object is an object type. Fields are added through a FieldContext.
type Object struct {
	name        string
	description string
	kind        Kind
	fields      []*Field
	byName      map[string]*Field
	recurse     map[string]bool
	reg         *Registry
}

func (*Object) isType() {}

// Name returns the object name.
func (o *Object) Name() string { return o.name }

// Description returns the object description.
func (o *Object) Description() string { return o.description }

// String implements Type.
func (o *Object) String() string { return o.name }

// Kind returns the tag of the object.
func (o *Object) Kind() Kind { return o.kind }

// Fields returns the fields in definition order.
func (o *Object) Fields() []*Field { return o.fields }

// Field returns the named field.
func (o *Object) Field(name string) (*Field, bool) {
	f, ok := o.byName[name]
	return f, ok
}

// IsEdge reports whether the object is an edge type.
func (o *Object) IsEdge() bool {
	_, ok := o.kind.(EdgeKind)
	return ok
}

// IsConnection reports whether the object is a connection type.
func (o *Object) IsConnection() bool {
	_, ok := o.kind.(ConnectionKind)
	return ok
}

// IsComposite reports whether the object represents a composite type.
func (o *Object) IsComposite() bool {
	_, ok := o.kind.(CompositeKind)
	return ok
}

// SetKind replaces the tag of the object, binding cross references between
// declared shells. It fails once the registry is frozen.
func (o *Object) SetKind(k Kind) error {
	if err := o.reg.writable(o.name); err != nil {
		return err
	}
	if k == nil {
		k = OtherKind{}
	}
	o.kind = k
	return nil
}
