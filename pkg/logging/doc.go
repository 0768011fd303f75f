// Package logging provides a structured logging system for argware with unified
// log handling and subsystem tagging.
//
// This package is built on Go's standard slog package, providing consistent
// logging behavior with structured output and level filtering.
//
// # Log Levels
//   - **Debug**: Detailed information about pipeline phases and merges
//   - **Info**: General informational messages
//   - **Warn**: Recoverable problems such as an unreadable plugin cache
//   - **Error**: Failures that are about to propagate to the caller
//
// # Usage Examples
//
//	import "argware/pkg/logging"
//
//	// Initialize with Info level logging to stderr
//	logging.InitForCLI(logging.LevelInfo, os.Stderr)
//
//	logging.Info("Config", "Loaded configuration from %s", path)
//	logging.Debug("Pipeline", "Configuring middleware %d (%T)", i, m)
//	logging.Error("Plugins", err, "Failed to spawn %s", exe)
//
// Before InitForCLI is called only Error records are written (to stderr), so
// libraries embedding argware stay quiet until the application opts in. The
// common.Logging middleware calls InitForCLI from the --log-level, --quiet,
// --verbose and --log-file flags.
//
// # Subsystems
//
//   - **Pipeline**: configure/parse/run phases of argware.Parser
//   - **Commands**: command tree construction and dispatch
//   - **Config**: document loading and merging
//   - **Plugins**: executable discovery, caching and dispatch
//
// # Thread Safety
//
// Initialization and logging are safe for concurrent use.
package logging
