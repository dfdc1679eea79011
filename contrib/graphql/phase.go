package graphql

import (
	"log/slog"

	"github.com/syssam/setof/cursor"
	"github.com/syssam/setof/inflection"
	"github.com/syssam/setof/introspection"
	"github.com/syssam/setof/schema"
)

type (
	// BuildInput is shared by every phase of a build.
	BuildInput struct {
		Introspection *introspection.Result
		Registry      *schema.Registry
		Inflector     *inflection.Inflector
		// Cursor is the output type of edge cursor fields.
		Cursor  schema.Type
		Encoder *cursor.Encoder
		Logger  *slog.Logger
	}

	// BuildOutput lists the types defined by a phase or a whole build, in
	// definition order.
	BuildOutput struct {
		Types []*schema.Object
	}

	// Phase is one step of a schema build.
	Phase interface {
		Name() string
		Build(in *BuildInput) (*BuildOutput, error)
	}

	// Builder runs a build.
	Builder interface {
		Build(in *BuildInput) (*BuildOutput, error)
	}

	// BuildFunc is an adapter to allow the use of ordinary functions as a
	// Builder.
	BuildFunc func(*BuildInput) (*BuildOutput, error)

	// Hook wraps a Builder with additional behavior.
	Hook func(next Builder) Builder
)

// Build calls f(in).
func (f BuildFunc) Build(in *BuildInput) (*BuildOutput, error) { return f(in) }

// Build runs phases in order and finalizes the registry. Hooks are applied so
// that the first hook is the outermost.
func Build(in *BuildInput, phases []Phase, hooks ...Hook) (*BuildOutput, error) {
	if in.Logger == nil {
		in.Logger = slog.Default()
	}
	if in.Inflector == nil {
		in.Inflector = inflection.New(nil, nil)
	}
	if in.Encoder == nil {
		in.Encoder = cursor.NewEncoder(cursor.JSON)
	}
	if in.Cursor == nil {
		c, err := DeclareCursor(in.Registry, DefaultCursorType)
		if err != nil {
			return nil, err
		}
		in.Cursor = c
	}
	var b Builder = BuildFunc(func(in *BuildInput) (*BuildOutput, error) {
		out := &BuildOutput{}
		for _, p := range phases {
			po, err := p.Build(in)
			if err != nil {
				return nil, err
			}
			in.Logger.Info("phase complete", "phase", p.Name(), "types", len(po.Types))
			out.Types = append(out.Types, po.Types...)
		}
		if err := in.Registry.Finalize(); err != nil {
			return nil, err
		}
		return out, nil
	})
	for i := len(hooks) - 1; i >= 0; i-- {
		b = hooks[i](b)
	}
	return b.Build(in)
}
