package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type result struct {
	code   int
	stdout string
	stderr string
}

// run executes the application with an isolated environment.
func run(t *testing.T, environ []string, args ...string) result {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := Run(context.Background(), args, Env{
		Stdin:       strings.NewReader(""),
		Stdout:      &stdout,
		Stderr:      &stderr,
		Environ:     func() []string { return environ },
		PluginPaths: []string{},
		CacheDir:    t.TempDir(),
	})
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRunConfigShow(t *testing.T) {
	res := run(t, []string{"ARGWARE_DEBUG=true", "HOME=/home/user"},
		"-e", "name=bob", "-e", `server={"port": 8080}`, "config", "show", "-o", "json")

	require.Equal(t, ExitCodeSuccess, res.code, res.stderr)
	assert.JSONEq(t, `{"color": false, "debug": true, "name": "bob", "server": {"port": 8080}}`, res.stdout)
}

func TestRunConfigShowNode(t *testing.T) {
	res := run(t, nil, "-e", `server={"port": 8080}`, "-e", `server={"host": "local"}`, "config", "show", "--node", "server", "-o", "yaml")

	require.Equal(t, ExitCodeSuccess, res.code, res.stderr)
	assert.YAMLEq(t, "host: local\nport: 8080\n", res.stdout)

	res = run(t, nil, "config", "show", "--node", "missing")
	assert.Equal(t, ExitCodeError, res.code)
	assert.Contains(t, res.stderr, `Error: node "missing" not found`)
}

func TestRunPrecedence(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "settings.yaml", "name: file\nlevel: file\ncolor: true\nnested:\n  a: 1\n")

	tests := []struct {
		name    string
		environ []string
		args    []string
		key     string
		want    string
	}{
		{
			name: "file value",
			args: []string{"-c", file},
			key:  "level",
			want: "file",
		},
		{
			name:    "environment beats file",
			environ: []string{"ARGWARE_LEVEL=env"},
			args:    []string{"-c", file},
			key:     "level",
			want:    "env",
		},
		{
			name:    "inline beats environment and file",
			environ: []string{"ARGWARE_NAME=env"},
			args:    []string{"-c", file, "-e", "name=inline"},
			key:     "name",
			want:    "inline",
		},
		{
			name: "file beats defaults",
			args: []string{"-c", file},
			key:  "color",
			want: "true",
		},
		{
			name: "defaults fill the rest",
			key:  "color",
			want: "false",
		},
		{
			name: "nested value",
			args: []string{"-c", file},
			key:  "nested.a",
			want: "1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append(append([]string{}, tt.args...), "config", "get", tt.key)
			res := run(t, tt.environ, args...)

			require.Equal(t, ExitCodeSuccess, res.code, res.stderr)
			assert.Equal(t, tt.want, strings.TrimSpace(res.stdout))
		})
	}
}

func TestRunConfigGetMissing(t *testing.T) {
	res := run(t, nil, "config", "get", "missing")

	assert.Equal(t, ExitCodeError, res.code)
	assert.Contains(t, res.stderr, `Error: key "missing" not found`)
	assert.Empty(t, res.stdout)
}

func TestRunReportsCause(t *testing.T) {
	res := run(t, nil, "--log-level", "loud", "version")

	assert.Equal(t, ExitCodeError, res.code)
	assert.True(t, strings.HasPrefix(res.stderr, "Error: "), res.stderr)
	assert.NotContains(t, res.stderr, "middleware")
	assert.Empty(t, res.stdout)
}

func TestRunMerge(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.yaml", "name: a\nserver:\n  host: a\n  port: 1\n")
	b := writeFile(t, dir, "b.json", `{"name": "b", "server": {"port": 2}}`)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "recursive overwrite",
			args: []string{"merge", "-o", "json", a, b},
			want: `{"name": "b", "server": {"host": "a", "port": 2}}`,
		},
		{
			name: "keep first values",
			args: []string{"merge", "--keep", "-o", "json", a, b},
			want: `{"name": "a", "server": {"host": "a", "port": 1}}`,
		},
		{
			name: "replace nested maps",
			args: []string{"merge", "--no-recurse", "-o", "json", a, b},
			want: `{"name": "b", "server": {"port": 2}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := run(t, nil, tt.args...)

			require.Equal(t, ExitCodeSuccess, res.code, res.stderr)
			assert.JSONEq(t, tt.want, res.stdout)
		})
	}
}

func TestRunMergeErrors(t *testing.T) {
	res := run(t, nil, "merge", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Equal(t, ExitCodeError, res.code)
	assert.Contains(t, res.stderr, "failed to load configuration file")

	res = run(t, nil, "merge")
	assert.Equal(t, ExitCodeUsage, res.code)
	assert.NotEmpty(t, res.stderr)

	file := writeFile(t, t.TempDir(), "a.yaml", "a: 1\n")
	res = run(t, nil, "merge", "-o", "xml", file)
	assert.Equal(t, ExitCodeError, res.code)
	assert.Contains(t, res.stderr, `unsupported output format "xml"`)
}

func TestRunCommands(t *testing.T) {
	res := run(t, nil, "commands", "-o", "json")

	require.Equal(t, ExitCodeSuccess, res.code, res.stderr)
	for _, name := range []string{"commands", "config get", "config show", "merge", "version"} {
		assert.Contains(t, res.stdout, `"`+name+`"`)
	}
}

func TestRunUsage(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantCode int
	}{
		{name: "no command prints help", args: nil, wantCode: ExitCodeSuccess},
		{name: "help flag", args: []string{"--help"}, wantCode: ExitCodeSuccess},
		{name: "intermediate command prints help", args: []string{"config"}, wantCode: ExitCodeSuccess},
		{name: "unknown command", args: []string{"nope"}, wantCode: ExitCodeUsage},
		{name: "unknown flag", args: []string{"--nope"}, wantCode: ExitCodeUsage},
		{name: "quiet and verbose", args: []string{"-q", "-v", "version"}, wantCode: ExitCodeUsage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := run(t, nil, tt.args...)

			assert.Equal(t, tt.wantCode, res.code)
			if tt.wantCode == ExitCodeSuccess {
				assert.NotEmpty(t, res.stdout)
				assert.Empty(t, res.stderr)
			} else {
				assert.NotEmpty(t, res.stderr)
			}
		})
	}
}

func TestRunPlugins(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("plugin scripts need a POSIX shell")
	}

	dir := t.TempDir()
	writeFile(t, dir, "argware-hello", `#!/bin/sh
if [ "$1" = "--help" ]; then
  printf 'usage: argware-hello [-h]\n\nSay hello.\n'
  exit 0
fi
echo "hello $*"
`)
	writeFile(t, dir, "argware-fail", `#!/bin/sh
if [ "$1" = "--help" ]; then
  exit 0
fi
echo "failing" >&2
exit 3
`)
	require.NoError(t, os.Chmod(filepath.Join(dir, "argware-hello"), 0o755))
	require.NoError(t, os.Chmod(filepath.Join(dir, "argware-fail"), 0o755))

	runPlugin := func(args ...string) result {
		var stdout, stderr bytes.Buffer
		code := Run(context.Background(), args, Env{
			Stdin:       strings.NewReader(""),
			Stdout:      &stdout,
			Stderr:      &stderr,
			Environ:     func() []string { return nil },
			PluginPaths: []string{dir},
			CacheDir:    t.TempDir(),
		})
		return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
	}

	res := runPlugin("hello", "world", "-x")
	require.Equal(t, ExitCodeSuccess, res.code, res.stderr)
	assert.Equal(t, "hello world -x\n", res.stdout)

	res = runPlugin("fail")
	assert.Equal(t, 3, res.code)
	assert.Contains(t, res.stderr, "failing")

	res = runPlugin("commands", "-o", "json")
	require.Equal(t, ExitCodeSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, `"Say hello."`)
}
