package cmd

import (
	"context"
	"fmt"

	"argware/pkg/argparse"
	"argware/pkg/argware"
	"argware/pkg/commands"
)

// newVersionCommand creates the command printing the application version.
func newVersionCommand(a *app) *commands.Command {
	return commands.NewCommand("version", func(_ context.Context, _ argware.Namespace) error {
		_, err := fmt.Fprintf(a.env.Stdout, "%s version %s\n", AppName, GetVersion())
		return err
	}).WithOptions(argparse.Options{
		Help:        "Print the version number of argware",
		Description: "All software has versions. This is argware's.",
	})
}
