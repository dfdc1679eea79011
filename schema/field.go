package schema

import (
	"context"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/syssam/setof"
)

// ResolveParams is passed to a field resolver.
type ResolveParams struct {
	// Source is the value resolved for the parent object.
	Source any
	// Field is the selected field in the query document.
	Field *ast.Field
	// Args holds argument values with variables applied.
	Args map[string]any
	// Object is the type owning the field.
	Object *Object
}

// Resolver produces the value of a field from its parent value.
type Resolver func(ctx context.Context, p ResolveParams) (any, error)

// DataGenerator declares what data a selected field needs from the row
// producer. It receives the selected field and returns requirements that are
// merged with those of every other selected field.
type DataGenerator func(f *ast.Field) Requirements

// Argument is a field argument.
type Argument struct {
	Name        string
	Description string
	Type        Type
}

// Field is an object field.
type Field struct {
	Name           string
	Description    string
	Type           Type
	Args           []*Argument
	Resolve        Resolver
	DataGenerators []DataGenerator
	// Tags carries free-form markers such as "isCursorField".
	Tags map[string]any
}

// FieldConfig describes a field passed to FieldContext.Field.
type FieldConfig struct {
	Description    string
	Type           Type
	Args           []*Argument
	Resolve        Resolver
	DataGenerators []DataGenerator
	Tags           map[string]any
}

// FieldContext defines the fields of one object.
type FieldContext struct {
	obj *Object
}

// Object returns the object whose fields are being defined.
func (fc *FieldContext) Object() *Object { return fc.obj }

// Field adds a field to the object. Names must be unique within the object.
func (fc *FieldContext) Field(name string, cfg FieldConfig) error {
	o := fc.obj
	if err := o.reg.writable(o.name); err != nil {
		return err
	}
	if name == "" {
		return setof.NewSchemaError(setof.ErrInvalidMetadata, o.name, "", "empty field name", nil)
	}
	if cfg.Type == nil {
		return setof.NewSchemaError(setof.ErrUnknownType, o.name, name, "field has no type", nil)
	}
	if _, ok := o.byName[name]; ok {
		return setof.NewSchemaError(setof.ErrDuplicateType, o.name, name, "field defined twice", nil)
	}
	f := &Field{
		Name:           name,
		Description:    cfg.Description,
		Type:           cfg.Type,
		Args:           cfg.Args,
		Resolve:        cfg.Resolve,
		DataGenerators: cfg.DataGenerators,
		Tags:           cfg.Tags,
	}
	o.fields = append(o.fields, f)
	o.byName[name] = f
	return nil
}

// RecurseDataGeneratorsForField makes requirement collection descend into the
// named field's selection, running the data generators of the field's type.
// The field may be defined before or after the call.
func (fc *FieldContext) RecurseDataGeneratorsForField(name string) error {
	o := fc.obj
	if err := o.reg.writable(o.name); err != nil {
		return err
	}
	o.recurse[name] = true
	return nil
}
