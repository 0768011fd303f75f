package cmd

import (
	"context"

	"argware/internal/formatting"
	"argware/pkg/argparse"
	"argware/pkg/argware"
	"argware/pkg/commands"
	"argware/pkg/config"
	"argware/pkg/merge"
)

func newMergeCommand(a *app) *commands.Command {
	return commands.NewCommand("merge", a.merge,
		argparse.Argument{Flags: []string{"--no-recurse"}, Action: argparse.ActionStoreTrue, Help: "replace nested maps instead of merging them"},
		argparse.Argument{Flags: []string{"--keep"}, Action: argparse.ActionStoreTrue, Help: "keep the first value of a key instead of the last"},
		formatArgument(formatting.FormatYAML),
		argparse.Argument{Flags: []string{"files"}, NArgs: argparse.NArgsOneOrMore, Help: "YAML, JSON or HCL documents", Metavar: "FILE"},
	).WithHelp("Merge configuration documents left to right and print the result")
}

func (a *app) merge(_ context.Context, ns argware.Namespace) error {
	f, err := a.formatter(ns)
	if err != nil {
		return err
	}

	files := ns.GetStrings("files")
	docs := make([]map[string]any, 0, len(files))
	for _, name := range files {
		doc, err := config.DefaultLoader.Load(name)
		if err != nil {
			return err
		}
		docs = append(docs, doc)
	}

	opts := merge.Options{
		Overwrite: !ns.GetBool("keep"),
		Recurse:   !ns.GetBool("no_recurse"),
	}
	return f.FormatData(merge.Merge(opts, nil, docs...))
}
