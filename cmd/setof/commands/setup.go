package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	_ "github.com/lib/pq"

	"github.com/syssam/setof/config"
	"github.com/syssam/setof/contrib/graphql"
	"github.com/syssam/setof/dialect"
	"github.com/syssam/setof/dialect/sql"
	"github.com/syssam/setof/inflection"
	"github.com/syssam/setof/introspection"
	"github.com/syssam/setof/schema"
)

// slowQuery is the duration above which catalog and fetch queries are
// logged.
const slowQuery = 500 * time.Millisecond

// newLogger returns the logger configured by c, writing to w.
func newLogger(c *config.Config, w io.Writer) (*slog.Logger, error) {
	level, err := c.LogLevel()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

// extensionOptions maps the configuration to extension options. withOutputs
// adds the file outputs; drv backs query fields when they are enabled.
func extensionOptions(c *config.Config, drv dialect.Querier, logger *slog.Logger, withOutputs bool) []graphql.ExtensionOption {
	opts := []graphql.ExtensionOption{
		graphql.WithLogger(logger),
		graphql.WithInflector(inflection.New(c.Inflection.Edge, c.Inflection.Connection)),
		graphql.WithCursorType(c.Cursor.Type),
		graphql.WithCursorCodec(c.Cursor.Codec),
		graphql.WithBuiltinScalars(c.Scalars.Builtin),
	}
	if c.Query.Fields {
		opts = append(opts, graphql.WithQueryFields(drv))
	}
	if !withOutputs {
		return opts
	}
	if c.Output.Schema != "" {
		opts = append(opts, graphql.WithSchemaPath(c.Output.Schema))
	}
	if c.Output.Models != "" {
		opts = append(opts, graphql.WithModelsPath(c.Output.Models, c.Output.Package))
	}
	if c.Output.Import != "" {
		opts = append(opts, graphql.WithModelsImport(c.Output.Import))
	}
	if c.GQLGen.Config != "" {
		opts = append(opts, graphql.WithConfigPath(c.GQLGen.Config, c.GQLGen.Update))
	}
	return opts
}

// session is one run against the database.
type session struct {
	cfg    *config.Config
	logger *slog.Logger
	drv    *sql.Driver
}

func openSession(path string, stderr io.Writer) (*session, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(cfg, stderr)
	if err != nil {
		return nil, err
	}
	drv, err := sql.Open(dialect.Postgres, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return &session{cfg: cfg, logger: logger, drv: drv.WithSlowQueryLog(slowQuery, logger)}, nil
}

func (s *session) Close() error { return s.drv.Close() }

// run introspects the database and builds the schema. With withOutputs the
// configured files are written too.
func (s *session) run(ctx context.Context, withOutputs bool) (*graphql.Extension, *schema.Registry, error) {
	ex, err := graphql.NewExtension(extensionOptions(s.cfg, s.drv, s.logger, withOutputs)...)
	if err != nil {
		return nil, nil, err
	}
	res, err := introspection.NewLoader(s.drv, s.logger).Load(ctx, s.cfg.Database.Schemas)
	if err != nil {
		return nil, nil, err
	}
	var reg *schema.Registry
	if withOutputs {
		reg, err = ex.Generate(ctx, res)
	} else {
		reg, err = ex.Build(res)
	}
	if err != nil {
		return nil, nil, err
	}
	return ex, reg, nil
}
