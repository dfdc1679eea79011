// Package inflection derives GraphQL type and field names from catalog names.
package inflection

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/go-openapi/inflect"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Inflector derives names for the types generated for set-returning functions.
// The zero value is ready to use.
type Inflector struct {
	// EdgeOverrides and ConnectionOverrides map "namespace.proc" or "proc"
	// to an explicit type name. The qualified key wins.
	EdgeOverrides       map[string]string
	ConnectionOverrides map[string]string
}

// New returns an Inflector with the given overrides. Nil maps are allowed.
func New(edge, connection map[string]string) *Inflector {
	return &Inflector{EdgeOverrides: edge, ConnectionOverrides: connection}
}

// ScalarFunctionEdge returns the edge type name of a function:
// get_random_ints -> GetRandomIntEdge.
func (i *Inflector) ScalarFunctionEdge(procName, namespace string) string {
	if name, ok := override(i.EdgeOverrides, procName, namespace); ok {
		return name
	}
	return UpperCamel(singularizeLast(procName)) + "Edge"
}

// ScalarFunctionConnection returns the connection type name of a function:
// get_random_ints -> GetRandomIntsConnection.
func (i *Inflector) ScalarFunctionConnection(procName, namespace string) string {
	if name, ok := override(i.ConnectionOverrides, procName, namespace); ok {
		return name
	}
	return UpperCamel(procName) + "Connection"
}

// FunctionQueryField returns the root query field name of a function:
// get_random_ints -> getRandomInts.
func (i *Inflector) FunctionQueryField(procName, _ string) string {
	return LowerCamel(procName)
}

// Argument returns the GraphQL argument name of a function argument. Unnamed
// arguments are called arg<index>, the way PostgreSQL reports them.
func (i *Inflector) Argument(name string, index int) string {
	if name == "" {
		return "arg" + strconv.Itoa(index)
	}
	return LowerCamel(name)
}

func override(m map[string]string, procName, namespace string) (string, bool) {
	if len(m) == 0 {
		return "", false
	}
	if name, ok := m[namespace+"."+procName]; ok && name != "" {
		return name, true
	}
	name, ok := m[procName]
	return name, ok && name != ""
}

// singularizeLast singularizes only the last word of a snake_case name, so
// that prefixes such as "get" or "list" survive untouched.
func singularizeLast(name string) string {
	words := splitWords(name)
	if len(words) == 0 {
		return name
	}
	words[len(words)-1] = inflect.Singularize(words[len(words)-1])
	return strings.Join(words, "_")
}

// UpperCamel converts snake, kebab or space separated names to UpperCamelCase.
func UpperCamel(s string) string {
	var (
		b     strings.Builder
		title = cases.Title(language.Und, cases.NoLower)
	)
	for _, w := range splitWords(s) {
		b.WriteString(title.String(w))
	}
	if b.Len() == 0 {
		return inflect.Camelize(s)
	}
	return b.String()
}

// LowerCamel converts names to lowerCamelCase.
func LowerCamel(s string) string {
	u := []rune(UpperCamel(s))
	if len(u) == 0 {
		return ""
	}
	u[0] = unicode.ToLower(u[0])
	return string(u)
}

func splitWords(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == '_' || r == '-' || r == ' ' || r == '.'
	})
}
