package common

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"argware/pkg/argparse"
	"argware/pkg/argware"
	"argware/pkg/logging"
)

// Namespace keys written or consumed by the Logging middleware.
const (
	LogLevelKey = "log_level"
	LogFileKey  = "log_file"
	LogStdKey   = "log_std"
	quietKey    = "quiet"
	verboseKey  = "verbose"
)

// LoggingOptions configures a Logging middleware.
type LoggingOptions struct {
	// Stderr receives log output when no log file is used, or with --log-std.
	// Defaults to os.Stderr.
	Stderr io.Writer
}

// Logging registers the --log-* flags and initializes pkg/logging from them.
type Logging struct {
	opts   LoggingOptions
	file   *os.File
	parser *argware.Parser
}

// NewLogging creates a logging middleware.
func NewLogging(opts LoggingOptions) *Logging {
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	return &Logging{opts: opts}
}

// Configure registers --log-std, --log-file and the exclusive
// --log-level, -q/--quiet and -v/--verbose flags, once per parser.
func (l *Logging) Configure(p *argware.Parser) error {
	if l.parser == p {
		return nil
	}
	if err := p.AddArgument(argparse.Argument{
		Flags:  []string{"--log-std"},
		Action: argparse.ActionStoreTrue,
		Help:   "also log to stderr when logging to a file",
	}); err != nil {
		return err
	}
	if err := p.AddArgument(argparse.Argument{
		Flags:   []string{"--log-file"},
		Help:    "the log file to use",
		Metavar: "PATH",
	}); err != nil {
		return err
	}
	if err := p.AddMutuallyExclusiveGroup(
		argparse.Argument{Flags: []string{"--log-level"}, Help: "the log level to use (debug, info, warn, error)", Metavar: "LEVEL"},
		argparse.Argument{Flags: []string{"-q", "--quiet"}, Action: argparse.ActionStoreTrue, Help: "suppress the output except warnings and errors"},
		argparse.Argument{Flags: []string{"-v", "--verbose"}, Action: argparse.ActionStoreTrue, Help: "enable additional debug output"},
	); err != nil {
		return err
	}
	l.parser = p
	return nil
}

// Run initializes logging and replaces the verbosity flags by log_level.
func (l *Logging) Run(_ context.Context, ns argware.Namespace) error {
	name, _ := ns.GetString(LogLevelKey)
	switch {
	case name != "":
	case ns.GetBool(verboseKey):
		name = "debug"
	case ns.GetBool(quietKey):
		name = "warn"
	default:
		name = "info"
	}

	level, err := logging.ParseLevel(name)
	if err != nil {
		return err
	}

	var writers []io.Writer
	logFile, _ := ns.GetString(LogFileKey)
	if logFile == "" || ns.GetBool(LogStdKey) {
		writers = append(writers, l.opts.Stderr)
	}
	if logFile != "" {
		if err := l.Close(); err != nil {
			return err
		}
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		l.file = f
		writers = append(writers, f)
	}

	logging.InitForCLI(level, io.MultiWriter(writers...))
	logging.Debug("Logging", "Logging initialized at level %s", level)

	ns[LogLevelKey] = strings.ToLower(level.String())
	ns.Delete(quietKey)
	ns.Delete(verboseKey)
	return nil
}

// Close closes the log file opened by Run, if any.
func (l *Logging) Close() error {
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}
