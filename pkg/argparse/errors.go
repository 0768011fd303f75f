package argparse

import (
	"errors"
	"fmt"
)

// ExitCodeUsage is the exit status used for invalid command lines.
const ExitCodeUsage = 2

// ErrHelp is returned by Parse when help was requested and printed.
// It is not a failure: callers should exit with status 0.
var ErrHelp = errors.New("help requested")

// UsageError reports a command line that the parser rejected: an unknown flag,
// a missing required flag, an invalid value or an unknown subcommand.
type UsageError struct {
	// Command is the full name of the (sub)command that rejected the input.
	Command string
	// Usage is the usage text of that command.
	Usage string
	// Err is the underlying parse failure.
	Err error
}

// Error implements the error interface.
func (e *UsageError) Error() string {
	return fmt.Sprintf("%s: error: %v", e.Command, e.Err)
}

// Unwrap returns the underlying parse failure.
func (e *UsageError) Unwrap() error {
	return e.Err
}

// ExitCode returns the conventional usage error status.
func (e *UsageError) ExitCode() int {
	return ExitCodeUsage
}

// ConflictError is returned when an option string or subcommand name is
// registered twice on the same parser.
type ConflictError struct {
	Parser string
	Name   string
}

// Error implements the error interface.
func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: conflicting option string or command name %q", e.Parser, e.Name)
}
