package config

import (
	"context"
	"os"
	"strings"

	"argware/pkg/argware"
	"argware/pkg/logging"
	"argware/pkg/merge"
)

// EnvironmentOptions configures an Environment middleware.
type EnvironmentOptions struct {
	// Lower lower-cases variable names after the prefix is stripped.
	Lower bool
	// Overwrite lets environment values replace values already in the namespace.
	Overwrite bool
	// Recurse merges map values key by key.
	Recurse bool
	// Environ lists the environment as KEY=VALUE pairs. Defaults to os.Environ.
	Environ func() []string
}

// DefaultEnvironmentOptions returns the options used when nothing else is set.
func DefaultEnvironmentOptions() EnvironmentOptions {
	return EnvironmentOptions{Lower: true, Recurse: true}
}

// Environment merges prefixed environment variables into the namespace:
// with prefix "APP_", APP_PORT=8080 becomes port: 8080.
type Environment struct {
	argware.BaseMiddleware

	prefix string
	opts   EnvironmentOptions
}

// NewEnvironment creates an environment middleware. The prefix match is case sensitive.
func NewEnvironment(prefix string, opts EnvironmentOptions) *Environment {
	if opts.Environ == nil {
		opts.Environ = os.Environ
	}
	return &Environment{prefix: prefix, opts: opts}
}

// Values returns the decoded variables matching the prefix.
func (e *Environment) Values() map[string]any {
	data := map[string]any{}
	for _, pair := range e.opts.Environ() {
		key, value, ok := splitKeyValue(pair)
		if !ok || !strings.HasPrefix(key, e.prefix) {
			continue
		}
		key = strings.TrimPrefix(key, e.prefix)
		if key == "" {
			continue
		}
		if e.opts.Lower {
			key = strings.ToLower(key)
		}
		data[key] = DecodeValue(value)
	}
	return data
}

// Run merges the matching variables into ns.
func (e *Environment) Run(_ context.Context, ns argware.Namespace) error {
	data := e.Values()
	if len(data) > 0 {
		logging.Debug("Config", "Applying %d environment variables with prefix %s", len(data), e.prefix)
	}
	ns.Update(merge.Merge(merge.Options{Overwrite: e.opts.Overwrite, Recurse: e.opts.Recurse}, ns, data))
	return nil
}
