package config

import (
	"context"
	"errors"
	"io/fs"

	"argware/pkg/argparse"
	"argware/pkg/argware"
	"argware/pkg/logging"
	"argware/pkg/merge"
)

const (
	// ListDest is the namespace key of the -c/--config flag of List.
	ListDest = "config_files"
	// ListDataKey receives the loaded documents, one per file.
	ListDataKey = "config_data"
	// StdDefaults as a file name stands for the defaults alone.
	StdDefaults = "-"
)

// ListOptions configures a List middleware.
type ListOptions struct {
	// Defaults seed every loaded document.
	Defaults map[string]any
	// UseNamespace seeds every document with the namespace instead of Defaults.
	UseNamespace bool
	// Single allows --config only once.
	Single bool
	// IgnoreMissing skips files that do not exist.
	IgnoreMissing bool
	// Recurse merges nested maps key by key.
	Recurse bool
	// Loader reads the files. Defaults to DefaultLoader.
	Loader Loader
}

// DefaultListOptions returns the options used when nothing else is set.
func DefaultListOptions() ListOptions {
	return ListOptions{Recurse: true}
}

// List loads configuration files side by side: each file becomes its own
// element of the config_data list instead of being merged with the others.
type List struct {
	opts   ListOptions
	parser *argware.Parser
}

// NewList creates a configuration list middleware.
func NewList(opts ListOptions) *List {
	if opts.Loader == nil {
		opts.Loader = DefaultLoader
	}
	return &List{opts: opts}
}

// Configure registers -c/--config. Configuring the same parser again is a no-op.
func (l *List) Configure(p *argware.Parser) error {
	if l.parser == p {
		return nil
	}
	arg := argparse.Argument{
		Flags:   []string{"-c", "--config"},
		Dest:    ListDest,
		Help:    "the path to a configuration file, or - for the defaults",
		Metavar: "FILE",
	}
	if !l.opts.Single {
		arg.Action = argparse.ActionAppend
	}
	if err := p.AddArgument(arg); err != nil {
		return err
	}
	l.parser = p
	return nil
}

// Run loads every requested file into config_data. It does nothing once
// the -c/--config value has been consumed.
func (l *List) Run(_ context.Context, ns argware.Namespace) error {
	if !ns.Has(ListDest) {
		return nil
	}
	files := ns.GetStrings(ListDest)
	ns.Delete(ListDest)

	defaults := l.opts.Defaults
	if l.opts.UseNamespace {
		defaults = merge.Merge(merge.Options{}, ns)
	}

	results := make([]map[string]any, 0, len(files))
	for _, name := range files {
		if name == StdDefaults {
			results = append(results, merge.Merge(merge.Options{}, defaults))
			continue
		}

		doc, err := l.opts.Loader.Load(name)
		if err != nil {
			if l.opts.IgnoreMissing && errors.Is(err, fs.ErrNotExist) {
				logging.Debug("Config", "Skipping missing configuration file %s", name)
				continue
			}
			return err
		}
		results = append(results, merge.Merge(merge.Options{Overwrite: true, Recurse: l.opts.Recurse}, defaults, doc))
	}

	ns[ListDataKey] = results
	return nil
}
