package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"argware/pkg/argparse"
	"argware/pkg/argware"
	"argware/pkg/commands"
	"argware/pkg/common"
	"argware/pkg/config"
	"argware/pkg/plugins"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution, including printed help.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a failed command.
	ExitCodeError = 1
	// ExitCodeUsage indicates an invalid command line.
	ExitCodeUsage = argparse.ExitCodeUsage
)

const description = `argware runs commands with configuration layered from defaults,
configuration files, ARGWARE_* environment variables and -e KEY=VALUE overrides.
Executables named argware-<name> on the PATH are available as commands too.`

var version = "dev"

// SetVersion sets the version reported by the version command.
// This function is typically called from the main package to inject the application version at build time.
func SetVersion(v string) {
	version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return version
}

// Env holds the process resources used by the application.
// Zero fields fall back to the real process.
type Env struct {
	Stdin   io.Reader
	Stdout  io.Writer
	Stderr  io.Writer
	Environ func() []string
	// PluginPaths overrides $PATH for plugin discovery.
	PluginPaths []string
	// CacheDir holds the plugin cache. Defaults to os.TempDir().
	CacheDir string
}

func (e Env) withDefaults() Env {
	if e.Stdin == nil {
		e.Stdin = os.Stdin
	}
	if e.Stdout == nil {
		e.Stdout = os.Stdout
	}
	if e.Stderr == nil {
		e.Stderr = os.Stderr
	}
	if e.Environ == nil {
		e.Environ = os.Environ
	}
	return e
}

// app wires the middleware pipeline of the argware binary.
type app struct {
	env     Env
	parser  *argware.Parser
	tree    *commands.Tree
	logging *common.Logging
}

func newApp(env Env) *app {
	a := &app{env: env.withDefaults()}

	a.tree = commands.New(commands.WithCommands(
		newVersionCommand(a),
		newConfigShowCommand(a),
		newConfigGetCommand(a),
		newMergeCommand(a),
		newCommandsCommand(a),
	))
	a.logging = common.NewLogging(common.LoggingOptions{Stderr: a.env.Stderr})

	envOpts := config.DefaultEnvironmentOptions()
	envOpts.Environ = a.env.Environ

	fileOpts := config.DefaultFileOptions()
	fileOpts.Defaults = DefaultConfigFiles
	fileOpts.AllowMulti = true
	fileOpts.IgnoreMissing = true
	fileOpts.SearchPaths = GetConfigSearchPaths()

	// Sources run from strongest to weakest: each one only fills keys the
	// previous ones left, except -e which always wins.
	a.parser = argware.New(AppName, argparse.Options{Description: description, Output: a.env.Stdout},
		a.logging,
		config.NewInline(config.DefaultInlineOptions()),
		config.NewEnvironment(EnvPrefix, envOpts),
		config.NewFile(fileOpts),
		config.NewInject(GetDefaultSettings()),
		a.tree,
		plugins.New(a.tree, plugins.Options{
			Prefix:      PluginPrefix,
			SearchPaths: a.env.PluginPaths,
			Self:        filepath.Base(os.Args[0]),
			Cache:       true,
			CacheName:   AppName,
			CacheDir:    a.env.CacheDir,
			Stdin:       a.env.Stdin,
			Stdout:      a.env.Stdout,
			Stderr:      a.env.Stderr,
		}),
	)
	return a
}

// Run executes the command line args and returns the process exit code.
func Run(ctx context.Context, args []string, env Env) int {
	a := newApp(env)
	defer func() { _ = a.logging.Close() }()

	_, err := a.parser.Run(ctx, args)
	return a.report(err)
}

// report prints err the way the command line expects it and returns the exit code.
func (a *app) report(err error) int {
	code := argware.ExitCode(err)
	if code == ExitCodeSuccess {
		return code
	}

	var usageErr *argparse.UsageError
	if errors.As(err, &usageErr) {
		fmt.Fprint(a.env.Stderr, usageErr.Usage)
		fmt.Fprintln(a.env.Stderr, usageErr.Error())
		return code
	}

	// A failed plugin reported its own errors.
	var exitErr *plugins.ExitError
	if errors.As(err, &exitErr) {
		return code
	}

	fmt.Fprintf(a.env.Stderr, "Error: %v\n", cause(err))
	return code
}

// cause strips the pipeline and dispatch context from err.
func cause(err error) error {
	var mwErr *argware.MiddlewareError
	if errors.As(err, &mwErr) {
		err = mwErr.Err
	}
	var dispatchErr *commands.DispatchError
	if errors.As(err, &dispatchErr) {
		err = dispatchErr.Err
	}
	return err
}

// Execute is the main entry point for the CLI application.
// This function is called by main.main().
func Execute() {
	os.Exit(Run(context.Background(), os.Args[1:], Env{}))
}
