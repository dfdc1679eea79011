package schema

import (
	"bytes"
	"fmt"

	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/formatter"
)

// SourceName is the source name used when the SDL is parsed back.
const SourceName = "setof.graphql"

// SchemaDocument returns the SDL document of every non-builtin, non-external
// type in declaration order.
func (r *Registry) SchemaDocument() *ast.SchemaDocument {
	doc := &ast.SchemaDocument{}
	for _, t := range r.types {
		switch t := t.(type) {
		case *Scalar:
			if t.builtin || t.external {
				continue
			}
			doc.Definitions = append(doc.Definitions, &ast.Definition{
				Kind:        ast.Scalar,
				Name:        t.name,
				Description: t.description,
			})
		case *Object:
			def := &ast.Definition{
				Kind:        ast.Object,
				Name:        t.name,
				Description: t.description,
			}
			for _, f := range t.fields {
				fd := &ast.FieldDefinition{
					Name:        f.Name,
					Description: f.Description,
					Type:        astType(f.Type),
				}
				for _, a := range f.Args {
					fd.Arguments = append(fd.Arguments, &ast.ArgumentDefinition{
						Name:        a.Name,
						Description: a.Description,
						Type:        astType(a.Type),
					})
				}
				def.Fields = append(def.Fields, fd)
			}
			doc.Definitions = append(doc.Definitions, def)
		}
	}
	return doc
}

func astType(t Type) *ast.Type {
	switch t := t.(type) {
	case *NonNull:
		inner := astType(t.OfType)
		inner.NonNull = true
		return inner
	case *List:
		return &ast.Type{Elem: astType(t.OfType)}
	case Named:
		return &ast.Type{NamedType: t.Name()}
	default:
		return nil
	}
}

// SDL renders the registry as GraphQL schema definition language.
func (r *Registry) SDL() string {
	var buf bytes.Buffer
	formatter.NewFormatter(&buf).FormatSchemaDocument(r.SchemaDocument())
	return buf.String()
}

// Validate parses the SDL back with the GraphQL prelude and returns the
// validated schema. Types marked External must be supplied in extra sources.
func (r *Registry) Validate(extra ...*ast.Source) (*ast.Schema, error) {
	sources := append([]*ast.Source{{Name: SourceName, Input: r.SDL()}}, extra...)
	s, err := gqlparser.LoadSchema(sources...)
	if err != nil {
		return nil, fmt.Errorf("validate schema: %w", err)
	}
	return s, nil
}
