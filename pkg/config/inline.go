package config

import (
	"context"

	"argware/pkg/argparse"
	"argware/pkg/argware"
	"argware/pkg/merge"
)

// InlineDest is the namespace key of the -e/--env flag of Inline.
const InlineDest = "config_env"

// InlineOptionOptions configures an InlineOption middleware.
type InlineOptionOptions struct {
	// Dest overrides the namespace key derived from the flag name.
	Dest string
	// Merge stores one map instead of a list of single key maps.
	Merge bool
	// Help is the flag's help text.
	Help string
}

// InlineOption registers a repeatable KEY=VALUE flag and stores the parsed
// entries under the flag's dest. Values are decoded with DecodeValue and
// entries without '=' are dropped.
type InlineOption struct {
	flags  []string
	opts   InlineOptionOptions
	dest   string
	parser *argware.Parser
}

// NewInlineOption creates an inline option middleware for the given flag
// names, e.g. "-o", "--option".
func NewInlineOption(flags []string, opts InlineOptionOptions) *InlineOption {
	return &InlineOption{flags: flags, opts: opts}
}

// Configure registers the flag once per parser.
func (o *InlineOption) Configure(p *argware.Parser) error {
	if o.parser == p {
		return nil
	}
	help := o.opts.Help
	if help == "" {
		help = "a KEY=VALUE option, VALUE is parsed as JSON when possible"
	}
	arg := argparse.Argument{
		Flags:   o.flags,
		Dest:    o.opts.Dest,
		Action:  argparse.ActionAppend,
		Help:    help,
		Metavar: "KEY=VALUE",
	}
	if err := p.AddArgument(arg); err != nil {
		return err
	}
	dests := p.Dests()
	o.dest = dests[len(dests)-1]
	o.parser = p
	return nil
}

// Dest returns the namespace key of the flag once configured.
func (o *InlineOption) Dest() string {
	return o.dest
}

// Run replaces the raw flag values by the decoded entries. Values already
// decoded are left alone.
func (o *InlineOption) Run(_ context.Context, ns argware.Namespace) error {
	switch ns[o.dest].(type) {
	case []any, map[string]any:
		return nil
	}
	items := parseInline(ns.GetStrings(o.dest))

	if o.opts.Merge {
		result := map[string]any{}
		for _, item := range items {
			for k, v := range item {
				result[k] = v
			}
		}
		ns[o.dest] = result
		return nil
	}

	list := make([]any, 0, len(items))
	for _, item := range items {
		list = append(list, item)
	}
	ns[o.dest] = list
	return nil
}

// InlineOptions configures an Inline middleware.
type InlineOptions struct {
	// Overwrite lets inline values replace values already in the namespace.
	Overwrite bool
	// Recurse merges map values key by key.
	Recurse bool
}

// DefaultInlineOptions returns the options used when nothing else is set:
// inline values win and nested maps are merged.
func DefaultInlineOptions() InlineOptions {
	return InlineOptions{Overwrite: true, Recurse: true}
}

// Inline registers -e/--env KEY=VALUE and merges the entries straight into
// the namespace.
type Inline struct {
	opts   InlineOptions
	parser *argware.Parser
}

// NewInline creates an inline configuration middleware.
func NewInline(opts InlineOptions) *Inline {
	return &Inline{opts: opts}
}

// Configure registers -e/--env. Configuring the same parser again is a no-op.
func (i *Inline) Configure(p *argware.Parser) error {
	if i.parser == p {
		return nil
	}
	if err := p.AddArgument(argparse.Argument{
		Flags:   []string{"-e", "--env"},
		Dest:    InlineDest,
		Action:  argparse.ActionAppend,
		Help:    "additional configuration values to pass, as JSON strings",
		Metavar: "KEY=VALUE",
	}); err != nil {
		return err
	}
	i.parser = p
	return nil
}

// Run merges the -e entries into ns in the order they were given.
func (i *Inline) Run(_ context.Context, ns argware.Namespace) error {
	items := parseInline(ns.GetStrings(InlineDest))
	ns.Delete(InlineDest)

	ns.Update(merge.Merge(merge.Options{Overwrite: i.opts.Overwrite, Recurse: i.opts.Recurse}, ns, items...))
	return nil
}

// parseInline turns KEY=VALUE entries into single key maps.
func parseInline(entries []string) []map[string]any {
	items := make([]map[string]any, 0, len(entries))
	for _, entry := range entries {
		key, value, ok := splitKeyValue(entry)
		if !ok {
			continue
		}
		items = append(items, map[string]any{key: DecodeValue(value)})
	}
	return items
}
