package main

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/poiesic/taxonomist/ai/mock"
	"github.com/poiesic/taxonomist/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

var vectors = map[string][]float32{
	"Electronics": {1, 0, 0},
	"Books":       {0, 1, 0},
	"Smartphones": {0.9, 0.1, 0},
	"Laptops":     {0.8, 0, 0.2},
	"Fiction":     {0, 0.9, 0.4},
	"Non-Fiction": {0.1, 0.9, -0.3},
	"star wars":   {0, 0.7, 0.4},
}

const taxonomyYAML = `
Electronics: [Smartphones, Laptops]
Books:
  - Fiction
  - Non-Fiction
`

func findFlag[T cli.Flag](t *testing.T, flags []cli.Flag, name string) T {
	t.Helper()
	for _, flag := range flags {
		if f, ok := flag.(T); ok && flag.Names()[0] == name {
			return f
		}
	}
	t.Fatalf("flag %q not found", name)
	var zero T
	return zero
}

func findCommand(t *testing.T, app *cli.App, name string) *cli.Command {
	t.Helper()
	cmd := app.Command(name)
	require.NotNil(t, cmd, "command %q", name)
	return cmd
}

type testApp struct {
	*cli.App
	out    *bytes.Buffer
	errOut *bytes.Buffer
}

func newTestApp() *testApp {
	app := newApp()
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	app.Writer = out
	app.ErrWriter = errOut
	app.Metadata = map[string]any{embedderKey: mock.TableEmbedder(vectors)}
	return &testApp{App: app, out: out, errOut: errOut}
}

func (a *testApp) run(t *testing.T, args ...string) error {
	t.Helper()
	a.out.Reset()
	a.errOut.Reset()
	return a.Run(append([]string{"taxonomist"}, args...))
}

func TestCommandFlags(t *testing.T) {
	app := newApp()

	for _, name := range []string{"seed", "search", "reset", "count"} {
		t.Run(name+" has index flags", func(t *testing.T) {
			cmd := findCommand(t, app, name)

			db := findFlag[*cli.StringFlag](t, cmd.Flags, "db")
			assert.Equal(t, "./taxonomy_db", db.Value)
			assert.Equal(t, []string{"TAXONOMIST_DB"}, db.EnvVars)

			engine := findFlag[*cli.StringFlag](t, cmd.Flags, "engine")
			assert.Equal(t, "chromem", engine.Value)

			collection := findFlag[*cli.StringFlag](t, cmd.Flags, "collection")
			assert.Equal(t, "categories_collection", collection.Value)

			apiKey := findFlag[*cli.StringFlag](t, cmd.Flags, "api-key")
			assert.Empty(t, apiKey.Value)
			assert.Equal(t, []string{"OPENAI_API_KEY"}, apiKey.EnvVars)

			host := findFlag[*cli.StringFlag](t, cmd.Flags, "embedding-host")
			assert.Equal(t, "http://localhost:11434/v1", host.Value)

			attempts := findFlag[*cli.IntFlag](t, cmd.Flags, "max-attempts")
			assert.Equal(t, 3, attempts.Value)
		})
	}

	t.Run("search top-k defaults to 5", func(t *testing.T) {
		topK := findFlag[*cli.IntFlag](t, findCommand(t, app, "search").Flags, "top-k")
		assert.Equal(t, 5, topK.Value)
	})

	t.Run("seed flags", func(t *testing.T) {
		cmd := findCommand(t, app, "seed")
		assert.Empty(t, findFlag[*cli.StringFlag](t, cmd.Flags, "source").Value)
		assert.False(t, findFlag[*cli.BoolFlag](t, cmd.Flags, "reset").Value)
		assert.Zero(t, findFlag[*cli.IntFlag](t, cmd.Flags, "pool-size").Value)
	})
}

func TestSetupLogger(t *testing.T) {
	defer slog.SetDefault(slog.Default())

	tests := []struct {
		level   string
		wantErr bool
	}{
		{"debug", false},
		{"INFO", false},
		{"warn", false},
		{"error", false},
		{"verbose", true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			app := newApp()
			app.Commands = nil
			app.Action = func(c *cli.Context) error { return nil }

			err := app.Run([]string{"taxonomist", "--log-level", tt.level})
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "invalid log level")
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestLoadEnv(t *testing.T) {
	const key = "TAXONOMIST_LOAD_ENV_TEST"
	t.Cleanup(func() { os.Unsetenv(key) })

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(key+"=from-file\n"), 0o600))

	require.NoError(t, loadEnv(path))
	assert.Equal(t, "from-file", os.Getenv(key))

	assert.NoError(t, loadEnv(filepath.Join(t.TempDir(), "missing.env")), "missing files are skipped")
}

func TestCommands(t *testing.T) {
	dir := t.TempDir()
	sourcePath := filepath.Join(dir, "taxonomy.yaml")
	require.NoError(t, os.WriteFile(sourcePath, []byte(taxonomyYAML), 0o600))

	for _, engine := range []string{"chromem", "badger"} {
		t.Run(engine, func(t *testing.T) {
			app := newTestApp()
			db := []string{"--db", filepath.Join(dir, engine), "--engine", engine}

			require.NoError(t, app.run(t, append([]string{"seed", "--source", sourcePath, "--pool-size", "2"}, db...)...))
			assert.Contains(t, app.errOut.String(), "Categories: Electronics, Books")
			assert.Contains(t, app.errOut.String(), "6/6 stored")

			require.NoError(t, app.run(t, append([]string{"count"}, db...)...))
			assert.Equal(t, "6", strings.TrimSpace(app.out.String()))

			require.NoError(t, app.run(t, append(append([]string{"search", "--top-k", "3"}, db...), "star", "wars")...))
			var got searchOutput
			require.NoError(t, json.Unmarshal(app.out.Bytes(), &got))
			assert.Equal(t, searchOutput{Outcome: "match", Category: "Books", Subcategory: "Fiction"}, got)

			require.NoError(t, app.run(t, append([]string{"reset"}, db...)...))
			require.NoError(t, app.run(t, append([]string{"count"}, db...)...))
			count, err := strconv.Atoi(strings.TrimSpace(app.out.String()))
			require.NoError(t, err)
			assert.Zero(t, count)

			require.NoError(t, app.run(t, append(append([]string{"search"}, db...), "star", "wars")...))
			require.NoError(t, json.Unmarshal(app.out.Bytes(), &got))
			assert.Equal(t, "no_match", got.Outcome)
		})
	}
}

func TestCommandErrors(t *testing.T) {
	dir := t.TempDir()

	t.Run("search without a query", func(t *testing.T) {
		err := newTestApp().run(t, "search", "--db", dir)
		require.Error(t, err)
		assert.ErrorIs(t, err, core.ErrEmptyQuery)
		assert.Contains(t, err.Error(), "invalid search")
	})

	t.Run("unknown engine", func(t *testing.T) {
		err := newTestApp().run(t, "count", "--db", dir, "--engine", "cassandra")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown storage engine")
	})

	t.Run("invalid top-k", func(t *testing.T) {
		err := newTestApp().run(t, "search", "--db", filepath.Join(dir, "topk"), "--top-k", "0", "star", "wars")
		require.Error(t, err)
		assert.ErrorIs(t, err, core.ErrInvalidTopK)
		assert.Contains(t, err.Error(), "invalid search")
	})

	t.Run("missing source file", func(t *testing.T) {
		err := newTestApp().run(t, "seed", "--db", dir, "--source", filepath.Join(dir, "missing.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to load taxonomy")
	})

	t.Run("invalid ai configuration", func(t *testing.T) {
		err := newTestApp().run(t, "count", "--db", dir, "--max-attempts", "0")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid AI configuration")
	})
}
