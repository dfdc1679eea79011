package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/setof"
	"github.com/syssam/setof/config"
	"github.com/syssam/setof/contrib/graphql"
)

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "setof ")

	Version = "v1.2.3"
	t.Cleanup(func() { Version = "" })
	out.Reset()
	cmd = NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "setof v1.2.3\n", out.String())
}

func TestGenerateMissingConfig(t *testing.T) {
	t.Setenv(config.EnvDSN, "")
	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"generate", "--config", filepath.Join(t.TempDir(), "missing.yml")})
	assert.Error(t, cmd.Execute())

	path := filepath.Join(t.TempDir(), "setof.yml")
	require.NoError(t, os.WriteFile(path, []byte("log: {level: info}\n"), 0o644))
	cmd = NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"sdl", "-c", path})
	err := cmd.Execute()
	require.Error(t, err)
	assert.True(t, setof.IsConfigError(err))
}

func TestNewLogger(t *testing.T) {
	c := config.Default()
	c.Log.Format = "json"
	c.Log.Level = "warn"
	var buf bytes.Buffer
	logger, err := newLogger(c, &buf)
	require.NoError(t, err)
	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "shown", rec["msg"])
	assert.Equal(t, "v", rec["k"])

	c.Log.Level = "loud"
	_, err = newLogger(c, &buf)
	assert.Error(t, err)
}

func TestExtensionOptions(t *testing.T) {
	c := config.Default()
	c.Cursor.Codec = "msgpack"
	c.Output.Schema = filepath.Join(t.TempDir(), "setof.graphql")
	c.Inflection.Edge = map[string]string{"get_random_ints": "RandomEdge"}
	logger, err := newLogger(c, &bytes.Buffer{})
	require.NoError(t, err)

	ex, err := graphql.NewExtension(extensionOptions(c, nil, logger, true)...)
	require.NoError(t, err)
	assert.Len(t, ex.Phases(), 2)
	assert.Nil(t, ex.GQLGenConfig())

	c.Query.Fields = true
	_, err = graphql.NewExtension(extensionOptions(c, nil, logger, false)...)
	assert.True(t, setof.IsConfigError(err))
}

func TestWatchConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "setof.yml")
	require.NoError(t, os.WriteFile(path, []byte("a: 1\n"), 0o644))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	called := make(chan struct{}, 8)
	done := make(chan error, 1)
	go func() {
		done <- watchConfig(ctx, path, func() error {
			called <- struct{}{}
			return nil
		})
	}()

	// Writes to other files in the directory are ignored; keep touching the
	// watched file until the watcher is ready and reports it.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yml"), []byte("b: 1\n"), 0o644))
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
wait:
	for {
		select {
		case <-called:
			break wait
		case <-tick.C:
			require.NoError(t, os.WriteFile(path, []byte("a: 2\n"), 0o644))
		case <-ctx.Done():
			t.Fatal("no change reported")
		}
	}
	cancel()
	assert.NoError(t, <-done)
}
