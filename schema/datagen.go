package schema

import (
	"github.com/vektah/gqlparser/v2/ast"
)

// KeyUsesCursor is the requirement emitted by cursor fields.
const KeyUsesCursor = "usesCursor"

// Requirements is the merged output of data generators: each key collects
// every value generators returned for it.
type Requirements map[string][]any

// Merge appends the values of o to r and returns r. A nil r is allocated.
func (r Requirements) Merge(o Requirements) Requirements {
	if r == nil {
		r = make(Requirements, len(o))
	}
	for k, vs := range o {
		r[k] = append(r[k], vs...)
	}
	return r
}

// Has reports whether any generator emitted key.
func (r Requirements) Has(key string) bool {
	return len(r[key]) > 0
}

// UsesCursor reports whether a cursor field was selected.
func (r Requirements) UsesCursor() bool {
	for _, v := range r[KeyUsesCursor] {
		if b, ok := v.(bool); ok && b {
			return true
		}
	}
	return false
}

// Requirements runs the data generators of the fields selected on o and,
// for fields registered with RecurseDataGeneratorsForField, of the fields
// selected beneath them. The result is never nil.
func (o *Object) Requirements(sel ast.SelectionSet) Requirements {
	req := Requirements{}
	o.collect(sel, req)
	return req
}

func (o *Object) collect(sel ast.SelectionSet, req Requirements) {
	for _, s := range sel {
		switch s := s.(type) {
		case *ast.Field:
			f, ok := o.byName[s.Name]
			if !ok {
				continue
			}
			for _, gen := range f.DataGenerators {
				req.Merge(gen(s))
			}
			if !o.recurse[s.Name] {
				continue
			}
			if child, ok := NamedOf(f.Type).(*Object); ok {
				child.collect(s.SelectionSet, req)
			}
		case *ast.InlineFragment:
			if s.TypeCondition == "" || s.TypeCondition == o.name {
				o.collect(s.SelectionSet, req)
			}
		case *ast.FragmentSpread:
			if d := s.Definition; d != nil && d.TypeCondition == o.name {
				o.collect(d.SelectionSet, req)
			}
		}
	}
}
