package commands

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"argware/pkg/argparse"
	"argware/pkg/argware"
	"argware/pkg/logging"
)

// keyPrefix prefixes the namespace key holding the subcommand chosen at a
// given depth: "__cmd_0", "__cmd_1", ...
const keyPrefix = "__cmd_"

// DefaultDest is the namespace key receiving the selected command name.
const DefaultDest = "command"

// Tree is a middleware that turns a flat list of space separated command
// names into nested subcommands and dispatches to the selected handler.
type Tree struct {
	dest     string
	commands []*Command

	parser  *argware.Parser
	applied map[*Command]bool
}

// Option configures a Tree.
type Option func(*Tree)

// WithDest sets the namespace key that receives the selected command name.
// An empty dest leaves the namespace untouched.
func WithDest(dest string) Option {
	return func(t *Tree) {
		t.dest = dest
	}
}

// WithCommands registers commands.
func WithCommands(cmds ...*Command) Option {
	return func(t *Tree) {
		t.commands = append(t.commands, cmds...)
	}
}

// New creates a command tree middleware.
func New(opts ...Option) *Tree {
	t := &Tree{
		dest:    DefaultDest,
		applied: map[*Command]bool{},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// AddCommand registers commands. Commands added after the tree was configured
// are applied by the next call to Configure.
func (t *Tree) AddCommand(cmds ...*Command) *Tree {
	t.commands = append(t.commands, cmds...)
	return t
}

// Commands returns the registered commands sorted by name.
func (t *Tree) Commands() []*Command {
	cmds := append([]*Command(nil), t.commands...)
	sort.SliceStable(cmds, func(i, j int) bool {
		return cmds[i].Name < cmds[j].Name
	})
	return cmds
}

// Lookup returns the command registered under exactly name.
func (t *Tree) Lookup(name string) (*Command, bool) {
	for _, cmd := range t.commands {
		if cmd.Name == name {
			return cmd, true
		}
	}
	return nil, false
}

// Dest returns the namespace key receiving the selected command name.
func (t *Tree) Dest() string {
	return t.dest
}

// Configure creates the sub-parsers of every command not applied to p yet,
// in lexicographic order of the command names. Existing nodes are reused by
// name, so configuring the same parser again adds nothing.
func (t *Tree) Configure(p *argware.Parser) error {
	if t.parser != p {
		t.parser = p
		t.applied = map[*Command]bool{}
	}

	for _, cmd := range t.Commands() {
		if t.applied[cmd] {
			continue
		}
		if err := apply(p.Parser, cmd); err != nil {
			return err
		}
		t.applied[cmd] = true
		logging.Debug("Commands", "Registered command %q", cmd.Name)
	}
	return nil
}

func apply(root *argparse.Parser, cmd *Command) error {
	segments := cmd.Path()
	if len(segments) == 0 {
		return fmt.Errorf("command name must not be empty")
	}

	node := root
	for depth, segment := range segments {
		slot, err := slotAt(node, depth)
		if err != nil {
			return err
		}

		child, ok := slot.Lookup(segment)
		if !ok {
			opts := argparse.Options{}
			if depth == len(segments)-1 {
				opts = cmd.Options
			}
			child, err = slot.AddParser(segment, opts)
			if err != nil {
				return fmt.Errorf("command %q: %w", cmd.Name, err)
			}
		}
		node = child
	}

	for _, arg := range cmd.Arguments {
		if err := node.AddArgument(arg); err != nil {
			return fmt.Errorf("command %q: %w", cmd.Name, err)
		}
	}
	return nil
}

// slotAt returns the subcommand slot of node, creating it when missing, and
// points its dest at the key of the given depth.
func slotAt(node *argparse.Parser, depth int) (*argparse.Subparsers, error) {
	dest := fmt.Sprintf("%s%d", keyPrefix, depth)
	if slot := node.Subparsers(); slot != nil {
		slot.SetDest(dest)
		return slot, nil
	}
	return node.AddSubparsers(dest)
}

// Run reconstructs the selected command from the namespace and calls its
// handler. Handler errors are returned as *DispatchError.
//
// When no command was selected, or the selection is not a registered
// command, Run prints the top-level help and returns argware.ErrHelp.
func (t *Tree) Run(ctx context.Context, ns argware.Namespace) error {
	var path []string
	for depth := 0; ; depth++ {
		key := fmt.Sprintf("%s%d", keyPrefix, depth)
		v, ok := ns[key]
		if !ok {
			break
		}
		delete(ns, key)

		segment, _ := v.(string)
		if segment == "" {
			break
		}
		path = append(path, segment)
	}

	name := strings.Join(path, " ")
	if t.dest != "" {
		ns[t.dest] = name
	}

	if name != "" {
		if cmd, ok := t.Lookup(name); ok {
			if cmd.Handler == nil {
				return nil
			}
			logging.Debug("Commands", "Dispatching command %q", name)
			if err := cmd.Handler(ctx, ns); err != nil {
				return &DispatchError{Command: name, Err: err}
			}
			return nil
		}
	}

	logging.Debug("Commands", "No command matches %q, showing help", name)
	if t.parser != nil {
		t.parser.PrintHelp()
	}
	return argware.ErrHelp
}
