package config

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"argware/pkg/argparse"
	"argware/pkg/argware"
)

func run(t *testing.T, argv []string, middlewares ...argware.Middleware) (argware.Namespace, error) {
	t.Helper()
	p := argware.New("app", argparse.Options{Output: &bytes.Buffer{}}, middlewares...)
	return p.Run(context.Background(), argv)
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func environ(pairs ...string) func() []string {
	return func() []string { return pairs }
}

func TestDecodeValue(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{in: "42", want: 42},
		{in: "42.0", want: 42.0},
		{in: "1e3", want: 1000.0},
		{in: "-7", want: -7},
		{in: "null", want: nil},
		{in: "true", want: true},
		{in: "bar", want: "bar"},
		{in: `"null"`, want: "null"},
		{in: "[1,2,3]", want: []any{1, 2, 3}},
		{in: `{"hello": "world", "n": 1.5}`, want: map[string]any{"hello": "world", "n": 1.5}},
		{in: "[1,2", want: "[1,2"},
		{in: "1 2", want: "1 2"},
		{in: "", want: ""},
		{in: " 5 ", want: 5},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, DecodeValue(tt.in))
		})
	}
}

func TestEnvironment(t *testing.T) {
	env := environ("PFX_FOO=1", "PFX_BAR=hello", "OTHER=ignored", "pfx_lower=no", "PFX_=empty", "PFX_NESTED={\"a\": true}")

	t.Run("lower case keys", func(t *testing.T) {
		opts := DefaultEnvironmentOptions()
		opts.Environ = env

		ns, err := run(t, nil, NewEnvironment("PFX_", opts))
		require.NoError(t, err)
		assert.Equal(t, argware.Namespace{"foo": 1, "bar": "hello", "nested": map[string]any{"a": true}}, ns)
	})

	t.Run("keep case", func(t *testing.T) {
		opts := DefaultEnvironmentOptions()
		opts.Lower = false
		opts.Environ = env

		assert.Equal(t, map[string]any{"FOO": 1, "BAR": "hello", "NESTED": map[string]any{"a": true}},
			NewEnvironment("PFX_", opts).Values())
	})

	t.Run("namespace wins unless overwrite", func(t *testing.T) {
		seed := NewInject(map[string]any{"foo": "cli", "nested": map[string]any{"b": 1}})

		opts := DefaultEnvironmentOptions()
		opts.Environ = env
		ns, err := run(t, nil, seed, NewEnvironment("PFX_", opts))
		require.NoError(t, err)
		assert.Equal(t, "cli", ns["foo"])
		assert.Equal(t, map[string]any{"a": true, "b": 1}, ns["nested"])

		opts.Overwrite = true
		ns, err = run(t, nil, seed, NewEnvironment("PFX_", opts))
		require.NoError(t, err)
		assert.Equal(t, 1, ns["foo"])
	})
}

func TestInline(t *testing.T) {
	ns, err := run(t, []string{"-e", "count=3", "-e", "name=bob"}, NewInline(DefaultInlineOptions()))
	require.NoError(t, err)
	assert.Equal(t, argware.Namespace{"count": 3, "name": "bob"}, ns)

	t.Run("split on first equal sign, skip entries without one", func(t *testing.T) {
		ns, err := run(t, []string{"--env", "query=a=b", "-e", "novalue", "-e", `list=[1,"x"]`}, NewInline(DefaultInlineOptions()))
		require.NoError(t, err)
		assert.Equal(t, argware.Namespace{"query": "a=b", "list": []any{1, "x"}}, ns)
	})

	t.Run("nested values merge", func(t *testing.T) {
		seed := NewInject(map[string]any{"db": map[string]any{"host": "a", "port": 1}})
		ns, err := run(t, []string{"-e", `db={"host": "b"}`}, seed, NewInline(DefaultInlineOptions()))
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"host": "b", "port": 1}, ns["db"])

		ns, err = run(t, []string{"-e", `db={"host": "b"}`}, seed, NewInline(InlineOptions{Overwrite: true}))
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"host": "b"}, ns["db"])
	})

	t.Run("no flags", func(t *testing.T) {
		ns, err := run(t, nil, NewInline(DefaultInlineOptions()))
		require.NoError(t, err)
		assert.Empty(t, ns)
	})
}

func TestInlineOption(t *testing.T) {
	argv := []string{"-o", "a=1", "--option", "b=x", "-o", "a=2", "-o", "junk"}

	ns, err := run(t, argv, NewInlineOption([]string{"-o", "--option"}, InlineOptionOptions{}))
	require.NoError(t, err)
	assert.Equal(t, []any{
		map[string]any{"a": 1},
		map[string]any{"b": "x"},
		map[string]any{"a": 2},
	}, ns["option"])

	ns, err = run(t, argv, NewInlineOption([]string{"-o", "--option"}, InlineOptionOptions{Dest: "opts", Merge: true}))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": 2, "b": "x"}, ns["opts"])
	assert.NotContains(t, ns, "option")
}

func TestInject(t *testing.T) {
	defaults := map[string]any{
		"port": 8080,
		"db":   map[string]any{"host": "localhost", "port": 5432},
	}
	seed := argware.NewFunc(func(_ context.Context, ns argware.Namespace) error {
		ns["port"] = 9000
		ns["db"] = map[string]any{"host": "db.internal"}
		return nil
	})

	ns, err := run(t, nil, seed, NewInject(defaults))
	require.NoError(t, err)
	assert.Equal(t, argware.Namespace{
		"port": 9000,
		"db":   map[string]any{"host": "db.internal", "port": 5432},
	}, ns)
	assert.Equal(t, map[string]any{"host": "localhost", "port": 5432}, defaults["db"], "defaults must not be mutated")
}

func TestFile(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.yaml", "db:\n  host: a\n  port: 1\nname: first\n")
	b := writeFile(t, dir, "b.json", `{"db": {"host": "b"}, "tags": ["x", "y"]}`)

	t.Run("two files merged recursively", func(t *testing.T) {
		opts := DefaultFileOptions()
		opts.AllowMulti = true

		ns, err := run(t, []string{"-c", a, "-c", b}, NewFile(opts))
		require.NoError(t, err)
		assert.Equal(t, argware.Namespace{
			"db":   map[string]any{"host": "b", "port": 1},
			"name": "first",
			"tags": []any{"x", "y"},
		}, ns)
	})

	t.Run("two files without recursion", func(t *testing.T) {
		opts := FileOptions{AllowMulti: true}

		ns, err := run(t, []string{"-c", a, "-c", b}, NewFile(opts))
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"host": "b"}, ns["db"])
	})

	t.Run("single flag keeps the last value", func(t *testing.T) {
		ns, err := run(t, []string{"-c", a, "--config", b}, NewFile(DefaultFileOptions()))
		require.NoError(t, err)
		assert.NotContains(t, ns, "name")
		assert.NotContains(t, ns, FileDest)
	})

	t.Run("namespace values win unless overwrite", func(t *testing.T) {
		seed := argware.NewFunc(func(_ context.Context, ns argware.Namespace) error {
			ns["name"] = "cli"
			return nil
		})

		ns, err := run(t, []string{"-c", a}, seed, NewFile(DefaultFileOptions()))
		require.NoError(t, err)
		assert.Equal(t, "cli", ns["name"])

		opts := DefaultFileOptions()
		opts.Overwrite = true
		ns, err = run(t, []string{"-c", a}, seed, NewFile(opts))
		require.NoError(t, err)
		assert.Equal(t, "first", ns["name"])
	})

	t.Run("node", func(t *testing.T) {
		opts := DefaultFileOptions()
		opts.Node = "db"

		ns, err := run(t, []string{"-c", a}, NewFile(opts))
		require.NoError(t, err)
		assert.Equal(t, argware.Namespace{"host": "a", "port": 1}, ns)

		opts.Node = "db.missing"
		ns, err = run(t, []string{"-c", a}, NewFile(opts))
		require.NoError(t, err)
		assert.Empty(t, ns)
	})

	t.Run("defaults and search paths", func(t *testing.T) {
		opts := DefaultFileOptions()
		opts.Defaults = []string{"a.yaml"}
		opts.SearchPaths = []string{t.TempDir(), dir}

		ns, err := run(t, nil, NewFile(opts))
		require.NoError(t, err)
		assert.Equal(t, "first", ns["name"])
	})

	t.Run("missing file", func(t *testing.T) {
		missing := filepath.Join(dir, "missing.yaml")

		_, err := run(t, []string{"-c", missing}, NewFile(DefaultFileOptions()))
		var loadErr *LoadError
		require.True(t, errors.As(err, &loadErr))
		assert.Equal(t, missing, loadErr.Path)
		assert.ErrorIs(t, err, fs.ErrNotExist)

		opts := DefaultFileOptions()
		opts.AllowMulti = true
		opts.IgnoreMissing = true
		ns, err := run(t, []string{"-c", missing, "-c", a}, NewFile(opts))
		require.NoError(t, err)
		assert.Equal(t, "first", ns["name"])
	})

	t.Run("invalid document", func(t *testing.T) {
		bad := writeFile(t, dir, "bad.yaml", "- just\n- a list\n")
		_, err := run(t, []string{"-c", bad}, NewFile(DefaultFileOptions()))
		var loadErr *LoadError
		assert.True(t, errors.As(err, &loadErr))
	})

	t.Run("custom loader", func(t *testing.T) {
		opts := DefaultFileOptions()
		opts.Loader = LoaderFunc(func(path string) (map[string]any, error) {
			return map[string]any{"loaded": path}, nil
		})

		ns, err := run(t, []string{"-c", "virtual"}, NewFile(opts))
		require.NoError(t, err)
		assert.Equal(t, "virtual", ns["loaded"])
	})
}

func TestExtLoader_HCL(t *testing.T) {
	path := writeFile(t, t.TempDir(), "app.hcl", `
name    = "api"
port    = 8080
ratio   = 0.25
debug   = true
nothing = null
tags    = ["a", "b"]
db = {
  host = "localhost"
  pool = { size = 4 }
}
`)

	doc, err := ExtLoader{}.Load(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"name":    "api",
		"port":    8080,
		"ratio":   0.25,
		"debug":   true,
		"nothing": nil,
		"tags":    []any{"a", "b"},
		"db": map[string]any{
			"host": "localhost",
			"pool": map[string]any{"size": 4},
		},
	}, doc)

	broken := writeFile(t, t.TempDir(), "broken.hcl", "name = \n")
	_, err = ExtLoader{}.Load(broken)
	var loadErr *LoadError
	assert.True(t, errors.As(err, &loadErr))
}

func TestExtLoader_EmptyYAML(t *testing.T) {
	doc, err := ExtLoader{}.Load(writeFile(t, t.TempDir(), "empty.yml", ""))
	require.NoError(t, err)
	assert.Empty(t, doc)
}

func TestList(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.yaml", "name: a\ndb:\n  host: a\n")
	b := writeFile(t, dir, "b.yaml", "name: b\n")

	defaults := map[string]any{"name": "default", "db": map[string]any{"host": "localhost", "port": 5432}}

	opts := DefaultListOptions()
	opts.Defaults = defaults
	ns, err := run(t, []string{"-c", a, "-c", "-", "-c", b}, NewList(opts))
	require.NoError(t, err)
	assert.NotContains(t, ns, ListDest)
	assert.Equal(t, []map[string]any{
		{"name": "a", "db": map[string]any{"host": "a", "port": 5432}},
		{"name": "default", "db": map[string]any{"host": "localhost", "port": 5432}},
		{"name": "b", "db": map[string]any{"host": "localhost", "port": 5432}},
	}, ns[ListDataKey])

	t.Run("namespace as defaults", func(t *testing.T) {
		opts := DefaultListOptions()
		opts.UseNamespace = true
		seed := NewInject(map[string]any{"region": "eu"})

		ns, err := run(t, []string{"-c", b}, seed, NewList(opts))
		require.NoError(t, err)
		assert.Equal(t, []map[string]any{{"region": "eu", "name": "b"}}, ns[ListDataKey])
	})

	t.Run("no files", func(t *testing.T) {
		ns, err := run(t, nil, NewList(DefaultListOptions()))
		require.NoError(t, err)
		assert.Equal(t, []map[string]any{}, ns[ListDataKey])
	})

	t.Run("single", func(t *testing.T) {
		opts := DefaultListOptions()
		opts.Single = true
		ns, err := run(t, []string{"-c", a}, NewList(opts))
		require.NoError(t, err)
		assert.Len(t, ns[ListDataKey], 1)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := run(t, []string{"-c", filepath.Join(dir, "nope.yaml")}, NewList(DefaultListOptions()))
		assert.ErrorIs(t, err, fs.ErrNotExist)
	})
}

func TestPrecedenceFollowsRegistrationOrder(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "app.yaml", "port: 1000\nhost: file\nlevel: file\n")

	fileOpts := DefaultFileOptions()
	fileOpts.Overwrite = true
	envOpts := DefaultEnvironmentOptions()
	envOpts.Overwrite = true
	envOpts.Environ = environ("APP_HOST=env", "APP_LEVEL=env")

	ns, err := run(t, []string{"-c", file, "-e", "level=inline"},
		NewInject(map[string]any{"port": 1, "host": "default", "level": "default", "only_default": true}),
		NewFile(fileOpts),
		NewEnvironment("APP_", envOpts),
		NewInline(DefaultInlineOptions()),
	)
	require.NoError(t, err)
	assert.Equal(t, argware.Namespace{
		"port":         1000,
		"host":         "env",
		"level":        "inline",
		"only_default": true,
	}, ns)
}

func TestConfigureOncePerParser(t *testing.T) {
	file := writeFile(t, t.TempDir(), "app.yaml", "name: file\n")

	tests := []struct {
		name string
		new  func() argware.Middleware
		flag string
		argv []string
		key  string
		want any
	}{
		{
			name: "file",
			new:  func() argware.Middleware { return NewFile(DefaultFileOptions()) },
			flag: "config",
			argv: []string{"-c", file},
			key:  "name",
			want: "file",
		},
		{
			name: "list",
			new:  func() argware.Middleware { return NewList(DefaultListOptions()) },
			flag: "config",
			argv: []string{"-c", file},
			key:  ListDataKey,
			want: []map[string]any{{"name": "file"}},
		},
		{
			name: "inline",
			new:  func() argware.Middleware { return NewInline(DefaultInlineOptions()) },
			flag: "env",
			argv: []string{"-e", "name=inline"},
			key:  "name",
			want: "inline",
		},
		{
			name: "inline option",
			new: func() argware.Middleware {
				return NewInlineOption([]string{"-o", "--option"}, InlineOptionOptions{})
			},
			flag: "option",
			argv: []string{"-o", "name=option"},
			key:  "option",
			want: []any{map[string]any{"name": "option"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name+" configured twice", func(t *testing.T) {
			m := tt.new()
			p := argware.New("app", argparse.Options{Output: &bytes.Buffer{}})
			require.NoError(t, m.Configure(p))
			require.NoError(t, m.Configure(p))

			p.AddMiddleware(m)
			ns, err := p.Run(context.Background(), tt.argv)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ns[tt.key])
		})

		t.Run(tt.name+" twice in one pipeline", func(t *testing.T) {
			m := tt.new()
			ns, err := run(t, tt.argv, m, m)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ns[tt.key])
		})

		t.Run(tt.name+" on another parser", func(t *testing.T) {
			m := tt.new()
			first := argware.New("first", argparse.Options{Output: &bytes.Buffer{}})
			second := argware.New("second", argparse.Options{Output: &bytes.Buffer{}})
			require.NoError(t, m.Configure(first))
			require.NoError(t, m.Configure(second))
			assert.True(t, first.HasFlag(tt.flag))
			assert.True(t, second.HasFlag(tt.flag))
		})
	}
}
