// Package config loads the setof YAML configuration file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/syssam/setof"
)

// EnvDSN overrides Database.DSN when set.
const EnvDSN = "SETOF_DATABASE_DSN"

type (
	// Config is the root of setof.yml.
	Config struct {
		Database   Database   `yaml:"database"`
		Output     Output     `yaml:"output"`
		GQLGen     GQLGen     `yaml:"gqlgen"`
		Cursor     Cursor     `yaml:"cursor"`
		Scalars    Scalars    `yaml:"scalars"`
		Query      Query      `yaml:"query"`
		Inflection Inflection `yaml:"inflection"`
		Log        Log        `yaml:"log"`

		// path is the file the configuration was loaded from.
		path string
	}

	// Database selects the catalog to introspect.
	Database struct {
		DSN     string   `yaml:"dsn"`
		Schemas []string `yaml:"schemas"`
	}

	// Output names the generated files.
	Output struct {
		Schema  string `yaml:"schema"`
		Models  string `yaml:"models"`
		Package string `yaml:"package"`
		// Import is the import path of the models package, added to the
		// gqlgen autobind list.
		Import string `yaml:"import"`
	}

	// GQLGen points at the gqlgen configuration.
	GQLGen struct {
		Config string `yaml:"config"`
		Update bool   `yaml:"update"`
	}

	// Cursor configures the cursor scalar.
	Cursor struct {
		Type  string `yaml:"type"`
		Codec string `yaml:"codec"`
	}

	// Scalars controls type mapping.
	Scalars struct {
		Builtin bool `yaml:"builtin"`
	}

	// Query controls root query fields.
	Query struct {
		Fields bool `yaml:"fields"`
	}

	// Inflection holds type name overrides keyed by "namespace.proc" or
	// "proc".
	Inflection struct {
		Edge       map[string]string `yaml:"edge"`
		Connection map[string]string `yaml:"connection"`
	}

	// Log configures the process logger.
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	}
)

// Default returns a configuration with every default applied.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads the configuration at path, applies defaults and the
// environment override, and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, err
	}
	c.path = path
	return c, nil
}

// Parse is like Load for configuration bytes.
func Parse(data []byte) (*Config, error) {
	c := &Config{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	c.applyDefaults()
	if dsn := os.Getenv(EnvDSN); dsn != "" {
		c.Database.DSN = dsn
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) applyDefaults() {
	if len(c.Database.Schemas) == 0 {
		c.Database.Schemas = []string{"public"}
	}
	if c.Output.Package == "" {
		c.Output.Package = "model"
	}
	if c.Cursor.Type == "" {
		c.Cursor.Type = "Cursor"
	}
	if c.Cursor.Codec == "" {
		c.Cursor.Codec = "json"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return setof.NewConfigError("database.dsn", "", "required (or set "+EnvDSN+")")
	}
	for _, s := range c.Database.Schemas {
		if s == "" {
			return setof.NewConfigError("database.schemas", c.Database.Schemas, "empty schema name")
		}
	}
	if s := c.Output.Schema; s != "" && filepath.Ext(s) != ".graphql" && filepath.Ext(s) != ".graphqls" {
		return setof.NewConfigError("output.schema", s, "expected a .graphql file")
	}
	if m := c.Output.Models; m != "" && filepath.Ext(m) != ".go" {
		return setof.NewConfigError("output.models", m, "expected a .go file")
	}
	if c.GQLGen.Update && c.GQLGen.Config == "" {
		return setof.NewConfigError("gqlgen.update", true, "requires gqlgen.config")
	}
	switch c.Cursor.Codec {
	case "json", "msgpack":
	default:
		return setof.NewConfigError("cursor.codec", c.Cursor.Codec, "expected json or msgpack")
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return setof.NewConfigError("log.format", c.Log.Format, "expected text or json")
	}
	return nil
}

// LogLevel parses Log.Level.
func (c *Config) LogLevel() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, setof.NewConfigError("log.level", c.Log.Level, "expected debug, info, warn or error")
	}
	return l, nil
}

// Path returns the file the configuration was loaded from, if any.
func (c *Config) Path() string { return c.path }
