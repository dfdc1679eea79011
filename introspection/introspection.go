// Package introspection models the subset of the PostgreSQL catalog needed to
// build output types for set-returning functions, and loads it from a
// database.
package introspection

import (
	"fmt"

	"github.com/syssam/setof"
)

// OID is a PostgreSQL object identifier.
type OID uint32

// Class kinds as stored in pg_class.relkind.
const (
	ClassTable            = "r"
	ClassView             = "v"
	ClassMaterializedView = "m"
	ClassForeignTable     = "f"
	ClassPartitionedTable = "p"
	ClassComposite        = "c"
)

// Type kinds as stored in pg_type.typtype.
const (
	TypeBase      = "b"
	TypeComposite = "c"
	TypeDomain    = "d"
	TypeEnum      = "e"
	TypePseudo    = "p"
	TypeRange     = "r"
)

// Namespace is a schema (pg_namespace).
type Namespace struct {
	ID   OID
	Name string
}

// Class is a relation (pg_class).
type Class struct {
	ID          OID
	Name        string
	NamespaceID OID
	Kind        string
	TypeID      OID
}

// IsEntity reports whether the class is a relational entity with its own
// connection type. Stand-alone composite types are not entities.
func (c *Class) IsEntity() bool {
	return c.Kind != ClassComposite
}

// Attribute is a column of a class (pg_attribute).
type Attribute struct {
	ClassID OID
	Num     int
	Name    string
	TypeID  OID
	NotNull bool
}

// Argument modes as stored in pg_proc.proargmodes.
const (
	ArgIn       = "i"
	ArgOut      = "o"
	ArgInOut    = "b"
	ArgVariadic = "v"
	ArgTable    = "t"
)

// Type is a data type (pg_type).
type Type struct {
	ID          OID
	Name        string
	NamespaceID OID
	Kind        string
	Category    string
	// ClassID is the backing relation of a composite type, zero otherwise.
	ClassID OID
}

// Procedure is a callable function (pg_proc).
type Procedure struct {
	ID           OID
	Name         string
	Description  string
	NamespaceID  OID
	ReturnTypeID OID
	ReturnsSet   bool
	ArgNames     []string
	ArgTypeIDs   []OID

	// Namespace is nil when the owning schema was not introspected.
	Namespace *Namespace
}

// QualifiedName returns "namespace.name", or the bare name without namespace.
func (p *Procedure) QualifiedName() string {
	if p.Namespace == nil {
		return p.Name
	}
	return p.Namespace.Name + "." + p.Name
}

// Result holds introspected records and the indexes over them.
type Result struct {
	Namespaces []*Namespace
	Classes    []*Class
	Types      []*Type
	Procedures []*Procedure
	Attributes []*Attribute

	namespaceByID map[OID]*Namespace
	classByID     map[OID]*Class
	typeByID      map[OID]*Type
	procByID      map[OID]*Procedure
	procsByReturn map[OID][]*Procedure
	attrsByClass  map[OID][]*Attribute
}

// NewResult indexes the given records and links every procedure to its
// namespace. Duplicate identifiers within a kind are rejected.
func NewResult(namespaces []*Namespace, classes []*Class, types []*Type, procs []*Procedure) (*Result, error) {
	r := &Result{
		Namespaces:    namespaces,
		Classes:       classes,
		Types:         types,
		Procedures:    procs,
		namespaceByID: make(map[OID]*Namespace, len(namespaces)),
		classByID:     make(map[OID]*Class, len(classes)),
		typeByID:      make(map[OID]*Type, len(types)),
		procByID:      make(map[OID]*Procedure, len(procs)),
		procsByReturn: make(map[OID][]*Procedure),
		attrsByClass:  make(map[OID][]*Attribute),
	}
	for _, n := range namespaces {
		if _, ok := r.namespaceByID[n.ID]; ok {
			return nil, duplicate("namespace", n.ID)
		}
		r.namespaceByID[n.ID] = n
	}
	for _, c := range classes {
		if _, ok := r.classByID[c.ID]; ok {
			return nil, duplicate("class", c.ID)
		}
		r.classByID[c.ID] = c
	}
	for _, t := range types {
		if _, ok := r.typeByID[t.ID]; ok {
			return nil, duplicate("type", t.ID)
		}
		r.typeByID[t.ID] = t
	}
	for _, p := range procs {
		if _, ok := r.procByID[p.ID]; ok {
			return nil, duplicate("procedure", p.ID)
		}
		r.procByID[p.ID] = p
		r.procsByReturn[p.ReturnTypeID] = append(r.procsByReturn[p.ReturnTypeID], p)
		p.Namespace = r.namespaceByID[p.NamespaceID]
	}
	return r, nil
}

// AddAttributes indexes the columns of introspected classes. Attributes of
// unknown classes and repeated attribute numbers are rejected.
func (r *Result) AddAttributes(attrs ...*Attribute) error {
	for _, a := range attrs {
		if _, ok := r.classByID[a.ClassID]; !ok {
			return fmt.Errorf("%w: attribute %s of unknown class oid %d", setof.ErrInvalidMetadata, a.Name, a.ClassID)
		}
		for _, b := range r.attrsByClass[a.ClassID] {
			if b.Num == a.Num {
				return fmt.Errorf("%w: duplicate attribute %d of class oid %d", setof.ErrInvalidMetadata, a.Num, a.ClassID)
			}
		}
		r.attrsByClass[a.ClassID] = append(r.attrsByClass[a.ClassID], a)
		r.Attributes = append(r.Attributes, a)
	}
	return nil
}

func duplicate(kind string, id OID) error {
	return fmt.Errorf("%w: duplicate %s oid %d", setof.ErrInvalidMetadata, kind, id)
}

// NamespaceByID returns the namespace with the given oid.
func (r *Result) NamespaceByID(id OID) (*Namespace, bool) {
	n, ok := r.namespaceByID[id]
	return n, ok
}

// ClassByID returns the class with the given oid.
func (r *Result) ClassByID(id OID) (*Class, bool) {
	c, ok := r.classByID[id]
	return c, ok
}

// TypeByID returns the type with the given oid.
func (r *Result) TypeByID(id OID) (*Type, bool) {
	t, ok := r.typeByID[id]
	return t, ok
}

// ProcedureByID returns the procedure with the given oid.
func (r *Result) ProcedureByID(id OID) (*Procedure, bool) {
	p, ok := r.procByID[id]
	return p, ok
}

// ProceduresByReturnType returns the procedures returning the given type, in
// introspection order.
func (r *Result) ProceduresByReturnType(id OID) []*Procedure {
	return r.procsByReturn[id]
}

// AttributesOf returns the attributes of the class in the order they were
// added.
func (r *Result) AttributesOf(classID OID) []*Attribute {
	return r.attrsByClass[classID]
}

// ReturnClass returns the class backing the procedure's return type, if any.
// The second result is false when the return type itself is unknown.
func (r *Result) ReturnClass(p *Procedure) (*Class, bool) {
	t, ok := r.TypeByID(p.ReturnTypeID)
	if !ok {
		return nil, false
	}
	if t.ClassID == 0 {
		return nil, true
	}
	return r.classByID[t.ClassID], true
}
