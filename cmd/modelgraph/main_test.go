package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const blogSchema = `
- name: Article
  module: blog
  edges:
    - {name: author, type: Person, unique: true}
    - {name: editor, type: Person, unique: true}
- name: Person
  module: blog
`

const zooSchema = `
- name: Animal
  module: zoo
- name: Dog
  module: zoo
  bases: [Animal]
`

type graphDoc struct {
	Vertices []struct {
		ID    string `json:"id" yaml:"id"`
		Label string `json:"label" yaml:"label"`
	} `json:"vertices" yaml:"vertices"`
	Edges []struct {
		Label string `json:"label" yaml:"label"`
	} `json:"edges" yaml:"edges"`
}

func schemaDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "blog.yaml"), []byte(blogSchema), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "zoo.yml"), []byte(zooSchema), 0o644))
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestExtractCmd(t *testing.T) {
	dir := schemaDir(t)

	t.Run("Root", func(t *testing.T) {
		out, err := execute(t, "extract", "--schema", dir, "--root", "blog.Article")
		require.NoError(t, err)
		var g graphDoc
		require.NoError(t, json.Unmarshal([]byte(out), &g))
		require.Len(t, g.Vertices, 2)
		assert.Equal(t, "Article", g.Vertices[0].Label)
		require.Len(t, g.Edges, 1)
		assert.Equal(t, "author, editor (*..1)", g.Edges[0].Label)
	})

	t.Run("AllRoots", func(t *testing.T) {
		out, err := execute(t, "extract", "--schema", dir, "--fq-labels")
		require.NoError(t, err)
		var gs []graphDoc
		require.NoError(t, json.Unmarshal([]byte(out), &gs))
		require.Len(t, gs, 3)
		assert.Equal(t, "blog.Article", gs[0].Vertices[0].Label)
		assert.Equal(t, "blog.Person", gs[1].Vertices[0].Label)
		assert.Equal(t, "zoo.Animal", gs[2].Vertices[0].Label)
	})

	t.Run("UUIDHasher", func(t *testing.T) {
		out, err := execute(t, "extract", "--schema", dir, "--root", "Animal", "--hasher", "uuid")
		require.NoError(t, err)
		var g graphDoc
		require.NoError(t, json.Unmarshal([]byte(out), &g))
		require.NotEmpty(t, g.Vertices)
		assert.Len(t, g.Vertices[0].ID, 36)
	})

	t.Run("OutFile", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "graph.yaml")
		out, err := execute(t, "extract", "--schema", dir, "--root", "Animal", "--format", "yaml", "--out", path)
		require.NoError(t, err)
		assert.Empty(t, out)
		buf, err := os.ReadFile(path)
		require.NoError(t, err)
		var g graphDoc
		require.NoError(t, yaml.Unmarshal(buf, &g))
		assert.Len(t, g.Vertices, 2)
		require.Len(t, g.Edges, 1)
		assert.Equal(t, "inheritance", g.Edges[0].Label)
	})
}

func TestExtractCmdConfig(t *testing.T) {
	dir := schemaDir(t)

	t.Run("Env", func(t *testing.T) {
		t.Setenv("MODELGRAPH_FORMAT", "yaml")
		t.Setenv("MODELGRAPH_SCHEMA", dir)
		out, err := execute(t, "extract", "--root", "Animal")
		require.NoError(t, err)
		var g graphDoc
		require.NoError(t, yaml.Unmarshal([]byte(out), &g))
		assert.Len(t, g.Vertices, 2)
	})

	t.Run("File", func(t *testing.T) {
		cfg := filepath.Join(t.TempDir(), "modelgraph.yaml")
		require.NoError(t, os.WriteFile(cfg, []byte("root: Person\nschema: "+dir+"\n"), 0o644))
		out, err := execute(t, "extract", "--config", cfg)
		require.NoError(t, err)
		var g graphDoc
		require.NoError(t, json.Unmarshal([]byte(out), &g))
		require.Len(t, g.Vertices, 1)
		assert.Equal(t, "Person", g.Vertices[0].Label)

		out, err = execute(t, "extract", "--config", cfg, "--root", "Dog")
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal([]byte(out), &g))
		assert.Equal(t, "Dog", g.Vertices[0].Label)
	})
}

func TestExtractCmdErrors(t *testing.T) {
	dir := schemaDir(t)

	t.Run("NoSchema", func(t *testing.T) {
		_, err := execute(t, "extract")
		require.Error(t, err)
		assert.Contains(t, errors.FlattenHints(err), "--schema")
	})

	t.Run("UnknownRoot", func(t *testing.T) {
		_, err := execute(t, "extract", "--schema", dir, "--root", "Ghost")
		require.Error(t, err)
		assert.Contains(t, err.Error(), `no type named "Ghost"`)
		assert.Contains(t, errors.FlattenHints(err), "qualified name")
	})

	t.Run("BadFormat", func(t *testing.T) {
		_, err := execute(t, "extract", "--schema", dir, "--format", "xml")
		assert.Error(t, err)
	})

	t.Run("Strict", func(t *testing.T) {
		abstract := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(abstract, "base.json"), []byte(`{"name": "Base", "abstract": true}`), 0o644))
		_, err := execute(t, "extract", "--schema", abstract)
		require.NoError(t, err)
		_, err = execute(t, "extract", "--schema", abstract, "--strict")
		assert.Error(t, err)
	})
}

func TestInspectCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	for _, stmt := range []string{
		"CREATE TABLE users (id INTEGER PRIMARY KEY)",
		"CREATE TABLE pets (id INTEGER PRIMARY KEY, owner_id INTEGER REFERENCES users(id))",
	} {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}
	require.NoError(t, db.Close())

	out, err := execute(t, "inspect", "--driver", "sqlite", "--dsn", path, "--root", "User")
	require.NoError(t, err)
	var g graphDoc
	require.NoError(t, json.Unmarshal([]byte(out), &g))
	assert.Len(t, g.Vertices, 2)
	var labels []string
	for _, e := range g.Edges {
		labels = append(labels, e.Label)
	}
	assert.ElementsMatch(t, []string{"pets (1..*)", "owner (*..1)"}, labels)

	_, err = execute(t, "inspect", "--driver", "sqlite")
	require.Error(t, err)
	assert.Contains(t, errors.FlattenHints(err), "--dsn")

	_, err = execute(t, "inspect", "--driver", "oracle", "--dsn", "x")
	assert.Error(t, err)
}

func TestWatcher(t *testing.T) {
	debouncePeriod = 10 * time.Millisecond
	dir := t.TempDir()
	out := filepath.Join(dir, "graph.json")
	w, err := newWatcher(dir, out, zap.NewNop())
	require.NoError(t, err)
	defer w.Close()

	assert.True(t, w.relevant(fsnotify.Event{Name: filepath.Join(dir, "a.yaml"), Op: fsnotify.Write}))
	assert.False(t, w.relevant(fsnotify.Event{Name: filepath.Join(dir, "notes.md"), Op: fsnotify.Write}))
	assert.False(t, w.relevant(fsnotify.Event{Name: filepath.Join(dir, "a.yaml"), Op: fsnotify.Chmod}))
	assert.False(t, w.relevant(fsnotify.Event{Name: out, Op: fsnotify.Create}))

	ctx, cancel := context.WithCancel(context.Background())
	runs := make(chan struct{}, 8)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func() error {
			runs <- struct{}{}
			return errors.New("logged, not fatal")
		})
	}()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), []byte("name: A\n"), 0o644))
	select {
	case <-runs:
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not run after a descriptor change")
	}
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatcherFile(t *testing.T) {
	debouncePeriod = 10 * time.Millisecond
	dir := t.TempDir()
	path := filepath.Join(dir, "models.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: A\n"), 0o644))
	w, err := newWatcher(path, "", zap.NewNop())
	require.NoError(t, err)
	defer w.Close()

	assert.True(t, w.relevant(fsnotify.Event{Name: path, Op: fsnotify.Create}))
	assert.False(t, w.relevant(fsnotify.Event{Name: filepath.Join(dir, "other.yaml"), Op: fsnotify.Write}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	runs := make(chan struct{}, 8)
	go w.Run(ctx, func() error {
		runs <- struct{}{}
		return nil
	})

	// Save twice by renaming a fresh file over the descriptor.
	for i := 0; i < 2; i++ {
		tmp := filepath.Join(dir, ".models.tmp")
		require.NoError(t, os.WriteFile(tmp, []byte("name: B\n"), 0o644))
		require.NoError(t, os.Rename(tmp, path))
		select {
		case <-runs:
		case <-time.After(5 * time.Second):
			t.Fatalf("watcher did not run after save %d", i+1)
		}
	}
}
