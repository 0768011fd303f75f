package common

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"argware/pkg/argparse"
	"argware/pkg/argware"
	"argware/pkg/logging"
)

func runLogging(t *testing.T, argv []string) (argware.Namespace, *bytes.Buffer, error) {
	t.Helper()
	var stderr bytes.Buffer
	m := NewLogging(LoggingOptions{Stderr: &stderr})
	t.Cleanup(func() { _ = m.Close() })

	p := argware.New("app", argparse.Options{Output: &bytes.Buffer{}}, m)
	ns, err := p.Run(context.Background(), argv)
	return ns, &stderr, err
}

func TestLogging_Levels(t *testing.T) {
	tests := []struct {
		name string
		argv []string
		want string
	}{
		{name: "default", argv: nil, want: "info"},
		{name: "verbose", argv: []string{"-v"}, want: "debug"},
		{name: "quiet", argv: []string{"--quiet"}, want: "warn"},
		{name: "explicit", argv: []string{"--log-level", "ERROR"}, want: "error"},
		{name: "alias", argv: []string{"--log-level", "warning"}, want: "warn"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ns, _, err := runLogging(t, tt.argv)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ns[LogLevelKey])
			assert.NotContains(t, ns, "quiet")
			assert.NotContains(t, ns, "verbose")
		})
	}
}

func TestLogging_WritesToStderr(t *testing.T) {
	_, stderr, err := runLogging(t, []string{"-v"})
	require.NoError(t, err)

	logging.Info("Test", "hello %s", "world")
	assert.Contains(t, stderr.String(), "hello world")
	assert.Contains(t, stderr.String(), "subsystem=Test")
}

func TestLogging_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	_, stderr, err := runLogging(t, []string{"--log-file", path})
	require.NoError(t, err)
	logging.Warn("Test", "to the file")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to the file")
	assert.NotContains(t, stderr.String(), "to the file")

	_, stderr, err = runLogging(t, []string{"--log-file", path, "--log-std"})
	require.NoError(t, err)
	logging.Warn("Test", "to both")
	assert.Contains(t, stderr.String(), "to both")
}

func TestLogging_Errors(t *testing.T) {
	_, _, err := runLogging(t, []string{"-q", "-v"})
	var usageErr *argparse.UsageError
	assert.True(t, errors.As(err, &usageErr))

	_, _, err = runLogging(t, []string{"--log-level", "loud"})
	assert.Error(t, err)

	_, _, err = runLogging(t, []string{"--log-file", filepath.Join(t.TempDir(), "missing", "app.log")})
	assert.Error(t, err)
}

func TestLogging_ConfigureOncePerParser(t *testing.T) {
	var stderr bytes.Buffer
	m := NewLogging(LoggingOptions{Stderr: &stderr})
	t.Cleanup(func() { _ = m.Close() })

	p := argware.New("app", argparse.Options{Output: &bytes.Buffer{}})
	require.NoError(t, m.Configure(p))
	require.NoError(t, m.Configure(p))
	assert.True(t, p.HasFlag("log-level"))

	t.Run("twice in one pipeline", func(t *testing.T) {
		dup := NewLogging(LoggingOptions{Stderr: &stderr})
		t.Cleanup(func() { _ = dup.Close() })

		pipeline := argware.New("app", argparse.Options{Output: &bytes.Buffer{}}, dup, dup)
		ns, err := pipeline.Run(context.Background(), []string{"-q"})
		require.NoError(t, err)
		assert.Equal(t, "warn", ns[LogLevelKey])
	})
}
