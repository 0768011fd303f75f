package cmd

import (
	"context"
	"fmt"

	"argware/internal/formatting"
	"argware/pkg/argparse"
	"argware/pkg/argware"
	"argware/pkg/commands"
	"argware/pkg/merge"
)

func formatArgument(def formatting.OutputFormat) argparse.Argument {
	return argparse.Argument{
		Flags:   []string{"-o", "--output"},
		Dest:    "format",
		Default: string(def),
		Help:    "output format (table, json, yaml)",
		Metavar: "FORMAT",
	}
}

// formatter returns the formatter selected by the format key of ns.
func (a *app) formatter(ns argware.Namespace) (formatting.Formatter, error) {
	name, _ := ns.GetString("format")
	format, err := formatting.ParseFormat(name)
	if err != nil {
		return nil, err
	}
	return formatting.New(formatting.Options{
		Format: format,
		Color:  ns.GetBool("color"),
		Output: a.env.Stdout,
	}), nil
}

// settings returns the configuration part of ns as a plain map.
func settings(ns argware.Namespace) map[string]any {
	out := make(map[string]any, len(ns))
	for k, v := range ns {
		if !internalKeys[k] {
			out[k] = v
		}
	}
	return out
}

func newConfigShowCommand(a *app) *commands.Command {
	return commands.NewCommand("config show", a.configShow,
		formatArgument(formatting.FormatTable),
		argparse.Argument{Flags: []string{"--node"}, Help: "only show the subtree at this dotted path", Metavar: "PATH"},
	).WithHelp("Show the effective configuration")
}

func (a *app) configShow(_ context.Context, ns argware.Namespace) error {
	f, err := a.formatter(ns)
	if err != nil {
		return err
	}

	var data any = settings(ns)
	if node, _ := ns.GetString("node"); node != "" {
		value, ok := merge.Lookup(settings(ns), merge.SplitPath(node))
		if !ok {
			return fmt.Errorf("node %q not found", node)
		}
		data = value
	}
	return f.FormatData(data)
}

func newConfigGetCommand(a *app) *commands.Command {
	return commands.NewCommand("config get", a.configGet,
		argparse.Argument{Flags: []string{"key"}, Help: "dotted path of the value"},
	).WithHelp("Print a single configuration value")
}

func (a *app) configGet(_ context.Context, ns argware.Namespace) error {
	key, _ := ns.GetString("key")
	value, ok := merge.Lookup(settings(ns), merge.SplitPath(key))
	if !ok {
		return fmt.Errorf("key %q not found", key)
	}

	if s, isString := value.(string); isString {
		_, err := fmt.Fprintln(a.env.Stdout, s)
		return err
	}
	return formatting.New(formatting.Options{Format: formatting.FormatJSON, Output: a.env.Stdout}).FormatData(value)
}
