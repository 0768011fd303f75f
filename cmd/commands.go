package cmd

import (
	"context"

	"argware/internal/formatting"
	"argware/pkg/argware"
	"argware/pkg/commands"
	textutil "argware/pkg/strings"
)

func newCommandsCommand(a *app) *commands.Command {
	return commands.NewCommand("commands", a.listCommands,
		formatArgument(formatting.FormatTable),
	).WithHelp("List every available command, plugins included")
}

func (a *app) listCommands(_ context.Context, ns argware.Namespace) error {
	f, err := a.formatter(ns)
	if err != nil {
		return err
	}

	var rows [][]string
	for _, cmd := range a.tree.Commands() {
		rows = append(rows, []string{cmd.Name, textutil.Summary(cmd.Options.Help, textutil.HelpColumnWidth)})
	}
	return f.FormatRows([]string{"Command", "Help"}, rows)
}
