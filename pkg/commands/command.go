package commands

import (
	"context"
	"strings"

	"argware/pkg/argparse"
	"argware/pkg/argware"
)

// HandlerFunc is invoked when its command is selected on the command line.
type HandlerFunc func(ctx context.Context, ns argware.Namespace) error

// Command is a space separated command path ("db migrate") with its handler
// and the arguments of its leaf parser.
type Command struct {
	Name      string
	Handler   HandlerFunc
	Arguments []argparse.Argument
	Options   argparse.Options
}

// NewCommand creates a command. Runs of whitespace in name are collapsed.
func NewCommand(name string, handler HandlerFunc, args ...argparse.Argument) *Command {
	return &Command{
		Name:      strings.Join(strings.Fields(name), " "),
		Handler:   handler,
		Arguments: args,
	}
}

// AddArgument adds arguments to the command's leaf parser.
func (c *Command) AddArgument(args ...argparse.Argument) *Command {
	c.Arguments = append(c.Arguments, args...)
	return c
}

// WithHelp sets the one line help shown in the parent's command list.
func (c *Command) WithHelp(help string) *Command {
	c.Options.Help = help
	return c
}

// WithOptions replaces the leaf parser options.
func (c *Command) WithOptions(opts argparse.Options) *Command {
	c.Options = opts
	return c
}

// Path returns the command path segments.
func (c *Command) Path() []string {
	return strings.Fields(c.Name)
}
