package config

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"argware/pkg/argparse"
	"argware/pkg/argware"
	"argware/pkg/logging"
	"argware/pkg/merge"
)

// FileDest is the namespace key of the -c/--config flag of File.
const FileDest = "config_file"

// FileOptions configures a File middleware.
type FileOptions struct {
	// Defaults are loaded when no --config flag was given.
	Defaults []string
	// AllowMulti makes --config repeatable. Files are merged left to right.
	AllowMulti bool
	// IgnoreMissing skips files that do not exist.
	IgnoreMissing bool
	// Node is a dot separated path ("app.server") selecting the subtree of
	// the merged document that is applied to the namespace.
	Node string
	// Overwrite lets file values replace values already in the namespace.
	Overwrite bool
	// Recurse merges nested maps key by key.
	Recurse bool
	// SearchPaths are tried in order for relative file names.
	SearchPaths []string
	// Loader reads the files. Defaults to DefaultLoader.
	Loader Loader
}

// DefaultFileOptions returns the options used when nothing else is set:
// namespace values win and nested maps are merged.
func DefaultFileOptions() FileOptions {
	return FileOptions{Recurse: true}
}

// File loads configuration files and merges them into the namespace.
type File struct {
	opts   FileOptions
	parser *argware.Parser
}

// NewFile creates a configuration file middleware.
func NewFile(opts FileOptions) *File {
	if opts.Loader == nil {
		opts.Loader = DefaultLoader
	}
	return &File{opts: opts}
}

// Configure registers -c/--config. Configuring the same parser again is a no-op.
func (f *File) Configure(p *argware.Parser) error {
	if f.parser == p {
		return nil
	}
	arg := argparse.Argument{
		Flags:   []string{"-c", "--config"},
		Dest:    FileDest,
		Help:    "the path to the configuration file",
		Metavar: "FILE",
	}
	if f.opts.AllowMulti {
		arg.Action = argparse.ActionAppend
	}
	if err := p.AddArgument(arg); err != nil {
		return err
	}
	f.parser = p
	return nil
}

// Run loads the requested files and merges them into ns.
func (f *File) Run(_ context.Context, ns argware.Namespace) error {
	files := ns.GetStrings(FileDest)
	if len(files) == 0 {
		files = f.opts.Defaults
	}
	ns.Delete(FileDest)

	data, err := f.load(resolvePaths(files, f.opts.SearchPaths))
	if err != nil {
		return err
	}

	if f.opts.Node != "" {
		sub, _ := merge.Lookup(data, merge.SplitPath(f.opts.Node))
		data, _ = sub.(map[string]any)
	}

	ns.Update(merge.Merge(merge.Options{Overwrite: f.opts.Overwrite, Recurse: f.opts.Recurse}, ns, data))
	return nil
}

// load reads every file and merges them left to right, later files winning.
func (f *File) load(files []string) (map[string]any, error) {
	docs := make([]map[string]any, 0, len(files))
	for _, name := range files {
		doc, err := f.opts.Loader.Load(name)
		if err != nil {
			if f.opts.IgnoreMissing && errors.Is(err, fs.ErrNotExist) {
				logging.Debug("Config", "Skipping missing configuration file %s", name)
				continue
			}
			return nil, err
		}
		logging.Debug("Config", "Loaded configuration file %s", name)
		docs = append(docs, doc)
	}
	return merge.Merge(merge.Options{Overwrite: true, Recurse: f.opts.Recurse}, nil, docs...), nil
}

// resolvePaths replaces every relative name by the first search path that
// holds it. Names found nowhere are kept relative to the working directory.
func resolvePaths(files, searchPaths []string) []string {
	resolved := make([]string, 0, len(files))
	for _, name := range files {
		resolved = append(resolved, resolvePath(name, searchPaths))
	}
	return resolved
}

func resolvePath(name string, searchPaths []string) string {
	if filepath.IsAbs(name) {
		return name
	}
	for _, dir := range searchPaths {
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return name
}
