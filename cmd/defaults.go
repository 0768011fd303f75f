package cmd

import (
	"os"
	"path/filepath"
)

const (
	// AppName is the program name used in usage lines and file names.
	AppName = "argware"

	// EnvPrefix selects the environment variables merged into the configuration.
	EnvPrefix = "ARGWARE_"

	// PluginPrefix selects the executables exposed as commands, e.g. argware-hello.
	PluginPrefix = "argware"
)

// DefaultConfigFiles are loaded when no --config flag is given. Missing
// files are skipped.
var DefaultConfigFiles = []string{"argware.yaml", "argware.json", "argware.hcl"}

// GetDefaultSettings returns the values injected for keys that no other
// source provided.
func GetDefaultSettings() map[string]any {
	return map[string]any{
		"color": false,
	}
}

// GetConfigSearchPaths returns the directories searched for relative
// configuration file names: the working directory, then the user config dir.
func GetConfigSearchPaths() []string {
	paths := []string{"."}
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, AppName))
	}
	return paths
}

// internalKeys are namespace keys set by the command line itself rather
// than by configuration sources. config show leaves them out.
var internalKeys = map[string]bool{
	"command":   true,
	"format":    true,
	"node":      true,
	"key":       true,
	"log_level": true,
	"log_file":  true,
	"log_std":   true,
}
