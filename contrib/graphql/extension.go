package graphql

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/syssam/setof"
	"github.com/syssam/setof/cursor"
	"github.com/syssam/setof/dialect"
	"github.com/syssam/setof/inflection"
	"github.com/syssam/setof/introspection"
	"github.com/syssam/setof/schema"
)

// SchemaHook is called with the rendered SDL before it is written and may
// return a modified document.
type SchemaHook func(reg *schema.Registry, sdl string) (string, error)

// Extension builds the setof schema and writes its outputs.
type Extension struct {
	inflector      *inflection.Inflector
	encoder        *cursor.Encoder
	cursorType     string
	builtinScalars bool
	fetcher        *Fetcher
	phases         []Phase
	hooks          []Hook
	schemaHooks    []SchemaHook
	logger         *slog.Logger

	schemaPath    string
	modelsPath    string
	modelsPackage string
	// modelsImport is the import path of the models package, used for
	// gqlgen autobind.
	modelsImport string

	gqlgenPath   string
	gqlgenUpdate bool
	gqlgenConfig *GQLGenConfig
}

// ExtensionOption is a function that configures the Extension.
type ExtensionOption func(*Extension) error

// NewExtension creates an Extension with the given options.
func NewExtension(opts ...ExtensionOption) (*Extension, error) {
	ex := &Extension{
		inflector:     inflection.New(nil, nil),
		encoder:       cursor.NewEncoder(cursor.JSON),
		cursorType:    DefaultCursorType,
		modelsPackage: "model",
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(ex); err != nil {
			return nil, err
		}
	}
	return ex, nil
}

// Phases returns the phases of a build in run order.
func (e *Extension) Phases() []Phase {
	phases := []Phase{CompositeTypesPhase{}, ScalarConnectionPhase{}}
	if e.fetcher != nil {
		phases = append(phases, QueryFieldsPhase{Fetcher: e.fetcher})
	}
	return append(phases, e.phases...)
}

// GQLGenConfig returns the loaded gqlgen configuration, if any.
func (e *Extension) GQLGenConfig() *GQLGenConfig {
	return e.gqlgenConfig
}

// Build runs every phase over res and returns the frozen registry.
func (e *Extension) Build(res *introspection.Result) (*schema.Registry, error) {
	if res == nil {
		return nil, setof.NewSchemaError(setof.ErrInvalidMetadata, "", "", "no introspection result", nil)
	}
	reg := schema.NewRegistry()
	if e.builtinScalars {
		n, err := BindPostgresScalars(reg, res)
		if err != nil {
			return nil, err
		}
		e.logger.Debug("bound builtin scalars", "types", n)
	}
	cur, err := DeclareCursor(reg, e.cursorType)
	if err != nil {
		return nil, err
	}
	in := &BuildInput{
		Introspection: res,
		Registry:      reg,
		Inflector:     e.inflector,
		Cursor:        cur,
		Encoder:       e.encoder,
		Logger:        e.logger,
	}
	out, err := Build(in, e.Phases(), e.hooks...)
	if err != nil {
		return nil, err
	}
	e.logger.Info("schema built", "types", len(out.Types))
	return reg, nil
}

// SDL renders the registry and runs the schema hooks over the result.
func (e *Extension) SDL(reg *schema.Registry) (string, error) {
	sdl := reg.SDL()
	for _, h := range e.schemaHooks {
		var err error
		if sdl, err = h(reg, sdl); err != nil {
			return "", fmt.Errorf("schema hook: %w", err)
		}
	}
	return sdl, nil
}

// Generate builds the schema and writes the configured outputs: the SDL
// file, the Go models and, when enabled, the updated gqlgen.yml.
func (e *Extension) Generate(ctx context.Context, res *introspection.Result) (*schema.Registry, error) {
	reg, err := e.Build(res)
	if err != nil {
		return nil, err
	}
	var files []File
	if e.schemaPath != "" {
		sdl, err := e.SDL(reg)
		if err != nil {
			return nil, err
		}
		files = append(files, File{Path: e.schemaPath, Content: []byte(sdl)})
	}
	if e.modelsPath != "" {
		src, err := RenderModels(reg, e.modelsPackage)
		if err != nil {
			return nil, err
		}
		files = append(files, File{Path: e.modelsPath, Content: src})
	}
	w := NewWriter(e.logger)
	if err := w.Write(ctx, files...); err != nil {
		return nil, err
	}
	if n, size := w.Written(); n > 0 {
		e.logger.Info("outputs written", "files", n, "bytes", size)
	}
	if e.gqlgenConfig != nil && e.gqlgenUpdate {
		e.gqlgenConfig.InjectSetofBindings(e.modelsImport, e.gqlgenSchemaPath(), e.cursorType)
		if err := SaveGQLGenConfig(e.gqlgenPath, e.gqlgenConfig); err != nil {
			return nil, err
		}
		e.logger.Info("gqlgen config updated", "path", e.gqlgenPath)
	}
	return reg, nil
}

// gqlgenSchemaPath returns the schema path relative to the gqlgen.yml
// directory, the way gqlgen resolves it.
func (e *Extension) gqlgenSchemaPath() string {
	if e.schemaPath == "" {
		return ""
	}
	rel, err := filepath.Rel(filepath.Dir(e.gqlgenPath), e.schemaPath)
	if err != nil {
		return filepath.ToSlash(e.schemaPath)
	}
	return filepath.ToSlash(rel)
}

// WithInflector sets the naming rules.
func WithInflector(in *inflection.Inflector) ExtensionOption {
	return func(e *Extension) error {
		if in == nil {
			return setof.NewConfigError("inflector", nil, "must not be nil")
		}
		e.inflector = in
		return nil
	}
}

// WithCursorType sets the name of the cursor scalar. Default is "Cursor".
func WithCursorType(name string) ExtensionOption {
	return func(e *Extension) error {
		if name == "" {
			return setof.NewConfigError("cursor.type", name, "must not be empty")
		}
		e.cursorType = name
		return nil
	}
}

// WithCursorCodec sets the cursor codec by name: "json" (default) or
// "msgpack".
func WithCursorCodec(name string) ExtensionOption {
	return func(e *Extension) error {
		c, ok := cursor.CodecByName(name)
		if !ok {
			return setof.NewConfigError("cursor.codec", name, "unknown codec")
		}
		e.encoder = cursor.NewEncoder(c)
		return nil
	}
}

// WithBuiltinScalars binds well-known PostgreSQL types to builtin scalars
// instead of letting them fall back to String.
func WithBuiltinScalars(enabled bool) ExtensionOption {
	return func(e *Extension) error {
		e.builtinScalars = enabled
		return nil
	}
}

// WithQueryFields exposes every synthesized connection on the Query type,
// fetching rows through drv.
func WithQueryFields(drv dialect.Querier) ExtensionOption {
	return func(e *Extension) error {
		if drv == nil {
			return setof.NewConfigError("query.fields", nil, "requires a database driver")
		}
		e.fetcher = NewFetcher(drv, e.logger)
		return nil
	}
}

// WithPhases appends phases that run after the builtin ones.
func WithPhases(phases ...Phase) ExtensionOption {
	return func(e *Extension) error {
		e.phases = append(e.phases, phases...)
		return nil
	}
}

// WithHooks adds hooks wrapping the build.
func WithHooks(hooks ...Hook) ExtensionOption {
	return func(e *Extension) error {
		e.hooks = append(e.hooks, hooks...)
		return nil
	}
}

// WithSchemaHook adds hooks that run over the SDL before it is written.
func WithSchemaHook(hooks ...SchemaHook) ExtensionOption {
	return func(e *Extension) error {
		e.schemaHooks = append(e.schemaHooks, hooks...)
		return nil
	}
}

// WithLogger sets the logger. Default is slog.Default().
func WithLogger(l *slog.Logger) ExtensionOption {
	return func(e *Extension) error {
		if l != nil {
			e.logger = l
			if e.fetcher != nil {
				e.fetcher.logger = l
			}
		}
		return nil
	}
}

// WithSchemaPath sets the SDL output file. Without it no SDL is written.
func WithSchemaPath(path string) ExtensionOption {
	return func(e *Extension) error {
		if filepath.Ext(path) != ".graphql" && filepath.Ext(path) != ".graphqls" {
			return setof.NewConfigError("output.schema", path, "expected a .graphql file")
		}
		e.schemaPath = path
		return nil
	}
}

// WithModelsPath sets the Go models output file and its package name.
// Without it no models are written.
func WithModelsPath(path, pkg string) ExtensionOption {
	return func(e *Extension) error {
		if filepath.Ext(path) != ".go" {
			return setof.NewConfigError("output.models", path, "expected a .go file")
		}
		e.modelsPath = path
		if pkg != "" {
			e.modelsPackage = pkg
		}
		return nil
	}
}

// WithModelsImport sets the import path of the models package, added to the
// gqlgen autobind list.
func WithModelsImport(importPath string) ExtensionOption {
	return func(e *Extension) error {
		e.modelsImport = importPath
		return nil
	}
}

// WithConfigPath loads gqlgen.yml from path. With update the file is
// rewritten with the setof bindings after generation; otherwise it is only
// read.
func WithConfigPath(path string, update bool) ExtensionOption {
	return func(e *Extension) error {
		cfg, err := LoadGQLGenConfig(path)
		if err != nil {
			return fmt.Errorf("load gqlgen config %q: %w", path, err)
		}
		e.gqlgenPath = path
		e.gqlgenUpdate = update
		e.gqlgenConfig = cfg
		return nil
	}
}
