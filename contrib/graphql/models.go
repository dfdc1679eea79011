package graphql

import (
	"bytes"
	"fmt"

	"github.com/dave/jennifer/jen"

	"github.com/syssam/setof/inflection"
	"github.com/syssam/setof/schema"
)

// header is the comment on top of every generated Go file.
const header = "Code generated by setof, DO NOT EDIT."

// GenerateModels returns a Go file declaring one struct per composite, edge
// and connection type of reg, in declaration order.
func GenerateModels(reg *schema.Registry, pkg string) *jen.File {
	f := jen.NewFile(pkg)
	f.HeaderComment(header)
	for _, o := range reg.Objects() {
		if !o.IsEdge() && !o.IsConnection() && !o.IsComposite() {
			continue
		}
		if d := o.Description(); d != "" {
			f.Commentf("%s is %s", o.Name(), lowerFirst(d))
		}
		f.Type().Id(o.Name()).StructFunc(func(g *jen.Group) {
			for _, fd := range o.Fields() {
				g.Id(inflection.UpperCamel(fd.Name)).Add(goType(fd.Type, true)).Tag(map[string]string{"json": fd.Name})
			}
		})
	}
	return f
}

// RenderModels renders GenerateModels to source bytes.
func RenderModels(reg *schema.Registry, pkg string) ([]byte, error) {
	var buf bytes.Buffer
	if err := GenerateModels(reg, pkg).Render(&buf); err != nil {
		return nil, fmt.Errorf("render models: %w", err)
	}
	return buf.Bytes(), nil
}

// goType maps an output type to its model type. Nullable scalars and all
// objects are pointers; lists are slices.
func goType(t schema.Type, nullable bool) *jen.Statement {
	switch t := t.(type) {
	case *schema.NonNull:
		return goType(t.OfType, false)
	case *schema.List:
		return jen.Index().Add(goType(t.OfType, true))
	case *schema.Object:
		return jen.Op("*").Id(t.Name())
	case *schema.Scalar:
		pkg, name := t.GoType()
		if name == "" {
			return jen.Interface()
		}
		s := jen.Id(name)
		if pkg != "" {
			s = jen.Qual(pkg, name)
		}
		if nullable {
			return jen.Op("*").Add(s)
		}
		return s
	default:
		return jen.Interface()
	}
}

func lowerFirst(s string) string {
	if s == "" || s[0] < 'A' || s[0] > 'Z' {
		return s
	}
	return string(s[0]+'a'-'A') + s[1:]
}
