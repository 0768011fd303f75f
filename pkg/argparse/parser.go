package argparse

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Options configures a Parser or a sub-parser.
type Options struct {
	// Description is the long help text shown by --help.
	Description string
	// Help is the one line summary shown in the parent's command list.
	Help string
	// DisableFlagParsing passes every token, including flags, to the
	// positionals. Used for commands that forward their arguments.
	DisableFlagParsing bool
	// Hidden leaves the command out of the parent's help.
	Hidden bool
	// Output receives help text. Only used on the root parser; defaults to os.Stdout.
	Output io.Writer
}

// Parser is a command line parser node. The root parser turns argv into a
// Namespace; nested parsers are created through Subparsers.
type Parser struct {
	name       string
	cmd        *cobra.Command
	parent     *Parser
	arguments  []*argument
	groups     [][]*argument
	subparsers *Subparsers

	// Root only.
	nodes      map[*cobra.Command]*Parser
	invocation *invocation
}

// invocation records which node cobra executed, and with which leftover tokens.
type invocation struct {
	parser *Parser
	args   []string
}

// New creates a root parser named name (the program name in usage lines).
func New(name string, opts Options) *Parser {
	p := newNode(name, opts)
	p.nodes = map[*cobra.Command]*Parser{p.cmd: p}

	p.cmd.SilenceErrors = true
	p.cmd.SilenceUsage = true
	p.cmd.TraverseChildren = true
	p.cmd.CompletionOptions.DisableDefaultCmd = true

	output := opts.Output
	if output == nil {
		output = os.Stdout
	}
	p.SetOutput(output)

	return p
}

func newNode(name string, opts Options) *Parser {
	p := &Parser{name: name}
	p.cmd = &cobra.Command{
		Use:                name,
		Short:              opts.Help,
		Long:               opts.Description,
		Hidden:             opts.Hidden,
		DisableFlagParsing: opts.DisableFlagParsing,
		Args:               cobra.ArbitraryArgs,
		RunE: func(_ *cobra.Command, args []string) error {
			p.root().invocation = &invocation{parser: p, args: args}
			return nil
		},
	}
	p.cmd.InitDefaultHelpFlag()
	return p
}

// Name returns the parser's own name.
func (p *Parser) Name() string {
	return p.name
}

// FullName returns the space separated path from the root, e.g. "tool db migrate".
func (p *Parser) FullName() string {
	return p.cmd.CommandPath()
}

// Parent returns the parser this one is nested under, or nil for the root.
func (p *Parser) Parent() *Parser {
	return p.parent
}

// Command exposes the underlying cobra command.
func (p *Parser) Command() *cobra.Command {
	return p.cmd
}

// SetOutput sets where help text and usage are written.
func (p *Parser) SetOutput(w io.Writer) {
	p.cmd.SetOut(w)
	p.cmd.SetErr(w)
}

// Usage returns the usage text of this parser.
func (p *Parser) Usage() string {
	return p.cmd.UsageString()
}

// PrintHelp writes the full help of this parser to the configured output.
func (p *Parser) PrintHelp() {
	_ = p.cmd.Help()
}

// AddArgument registers a flag or positional on this parser.
func (p *Parser) AddArgument(arg Argument) error {
	resolved, err := p.addArgument(arg)
	if err != nil {
		return err
	}
	p.arguments = append(p.arguments, resolved)
	return nil
}

// AddMutuallyExclusiveGroup registers optional flags of which at most one may be given.
func (p *Parser) AddMutuallyExclusiveGroup(args ...Argument) error {
	group := make([]*argument, 0, len(args))
	for _, arg := range args {
		resolved, err := p.addArgument(arg)
		if err != nil {
			return err
		}
		if resolved.positional {
			return fmt.Errorf("%s: positional %q cannot be part of a mutually exclusive group", p.FullName(), resolved.Dest)
		}
		if resolved.Required {
			return fmt.Errorf("%s: flag %s in a mutually exclusive group cannot be required", p.FullName(), resolved.optionString())
		}
		p.arguments = append(p.arguments, resolved)
		group = append(group, resolved)
	}
	p.groups = append(p.groups, group)
	return nil
}

func (p *Parser) addArgument(arg Argument) (*argument, error) {
	resolved, err := resolveArgument(arg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.FullName(), err)
	}

	if resolved.positional {
		for _, existing := range p.arguments {
			if existing.positional && existing.Dest == resolved.Dest {
				return nil, &ConflictError{Parser: p.FullName(), Name: resolved.Dest}
			}
		}
		p.cmd.Use = p.name + p.positionalUsage(resolved)
		return resolved, nil
	}

	fs := p.cmd.Flags()
	if fs.Lookup(resolved.long) != nil {
		return nil, &ConflictError{Parser: p.FullName(), Name: "--" + resolved.long}
	}
	if resolved.short != "" && fs.ShorthandLookup(resolved.short) != nil {
		return nil, &ConflictError{Parser: p.FullName(), Name: "-" + resolved.short}
	}
	resolved.register(fs)

	return resolved, nil
}

func (p *Parser) positionalUsage(extra *argument) string {
	var b strings.Builder
	for _, arg := range p.arguments {
		if arg.positional {
			b.WriteString(" " + arg.metavar())
		}
	}
	b.WriteString(" " + extra.metavar())
	return b.String()
}

// HasFlag reports whether an optional flag with the given long name is registered here.
func (p *Parser) HasFlag(long string) bool {
	for _, arg := range p.arguments {
		if !arg.positional && arg.long == long {
			return true
		}
	}
	return false
}

// Dests returns the destination keys of every argument registered on this parser.
func (p *Parser) Dests() []string {
	dests := make([]string, 0, len(p.arguments))
	for _, arg := range p.arguments {
		dests = append(dests, arg.Dest)
	}
	return dests
}

// AddSubparsers creates the subcommand slot of this parser. A parser has at
// most one slot; the chosen subcommand name is stored under dest.
func (p *Parser) AddSubparsers(dest string) (*Subparsers, error) {
	if p.subparsers != nil {
		return nil, fmt.Errorf("%s: cannot have multiple subparser arguments", p.FullName())
	}
	p.subparsers = &Subparsers{parent: p, dest: dest, choices: map[string]*Parser{}}
	return p.subparsers, nil
}

// Subparsers returns the subcommand slot, or nil when none was added.
func (p *Parser) Subparsers() *Subparsers {
	return p.subparsers
}

func (p *Parser) root() *Parser {
	r := p
	for r.parent != nil {
		r = r.parent
	}
	return r
}

// lineage returns the parsers from the root down to p.
func (p *Parser) lineage() []*Parser {
	var path []*Parser
	for n := p; n != nil; n = n.parent {
		path = append([]*Parser{n}, path...)
	}
	return path
}

// Parse parses argv (without the program name) into a new Namespace.
//
// Every flag of every parser on the selected path is present in the result:
// unset flags hold their default, or nil when they have none. The name of
// the subcommand chosen at each level is stored under that level's
// subparsers dest, nil when no subcommand was given.
//
// Parse returns ErrHelp when help was printed, and a *UsageError when the
// command line is invalid.
func (p *Parser) Parse(argv []string) (Namespace, error) {
	if p.parent != nil {
		return nil, fmt.Errorf("%s: Parse must be called on the root parser", p.FullName())
	}

	p.reset()
	if argv == nil {
		// cobra falls back to os.Args on nil.
		argv = []string{}
	}
	p.cmd.SetArgs(argv)

	cmd, err := p.cmd.ExecuteC()
	if err != nil {
		return nil, p.usageError(cmd, err)
	}

	inv := p.invocation
	p.invocation = nil
	if inv == nil {
		return nil, ErrHelp
	}

	ns, err := inv.namespace()
	if err != nil {
		return nil, newUsageError(inv.parser, err)
	}
	return ns, nil
}

func (p *Parser) usageError(cmd *cobra.Command, err error) error {
	node, ok := p.nodes[cmd]
	if !ok {
		node = p
	}
	return newUsageError(node, err)
}

func newUsageError(p *Parser, err error) *UsageError {
	return &UsageError{Command: p.FullName(), Usage: p.Usage(), Err: err}
}

// reset restores every flag of the tree to its default so a parser can be
// used for more than one Parse.
func (p *Parser) reset() {
	p.cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	})
	if p.subparsers != nil {
		for _, child := range p.subparsers.choices {
			child.reset()
		}
	}
}

func (inv *invocation) namespace() (Namespace, error) {
	ns := Namespace{}
	path := inv.parser.lineage()

	for i, node := range path {
		if err := node.collectFlags(ns); err != nil {
			return nil, err
		}
		if node.subparsers != nil && node.subparsers.dest != "" {
			if i+1 < len(path) {
				ns[node.subparsers.dest] = path[i+1].name
			} else {
				ns[node.subparsers.dest] = nil
			}
		}
		if node != inv.parser {
			for _, arg := range node.arguments {
				if arg.positional {
					ns[arg.Dest] = arg.Default
				}
			}
		}
	}

	leaf := inv.parser
	var positionals []*argument
	for _, arg := range leaf.arguments {
		if arg.positional {
			positionals = append(positionals, arg)
		}
	}

	rest, err := bindPositionals(ns, positionals, inv.args)
	if err != nil {
		return nil, err
	}
	if len(rest) > 0 {
		if leaf.subparsers != nil {
			return nil, fmt.Errorf("argument %s: invalid choice: %q (choose from %s)",
				leaf.subparsers.metavar(), rest[0], strings.Join(leaf.subparsers.Choices(), ", "))
		}
		return nil, fmt.Errorf("unrecognized arguments: %s", strings.Join(rest, " "))
	}

	return ns, nil
}

// collectFlags stores the value of every optional flag of p into ns and
// checks required flags and exclusive groups.
func (p *Parser) collectFlags(ns Namespace) error {
	fs := p.cmd.Flags()
	given := map[*argument]bool{}

	for _, arg := range p.arguments {
		if arg.positional {
			continue
		}
		v, changed, err := arg.value(fs)
		if err != nil {
			return fmt.Errorf("argument %s: %w", arg.optionString(), err)
		}
		if changed {
			given[arg] = true
			ns[arg.Dest] = v
		} else if _, exists := ns[arg.Dest]; !exists {
			ns[arg.Dest] = v
		}
	}

	var missing []string
	for _, arg := range p.arguments {
		if arg.Required && !arg.positional && !given[arg] {
			missing = append(missing, arg.optionString())
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("the following arguments are required: %s", strings.Join(missing, ", "))
	}

	for _, group := range p.groups {
		var seen *argument
		for _, arg := range group {
			if !given[arg] {
				continue
			}
			if seen != nil {
				return fmt.Errorf("argument %s: not allowed with argument %s", arg.optionString(), seen.optionString())
			}
			seen = arg
		}
	}

	return nil
}

// Subparsers is the subcommand slot of a Parser.
type Subparsers struct {
	parent  *Parser
	dest    string
	choices map[string]*Parser
	order   []string
}

// AddParser creates a nested parser reachable as subcommand name.
func (s *Subparsers) AddParser(name string, opts Options) (*Parser, error) {
	if name == "" || strings.ContainsAny(name, " \t") {
		return nil, fmt.Errorf("%s: invalid command name %q", s.parent.FullName(), name)
	}
	if _, exists := s.choices[name]; exists {
		return nil, &ConflictError{Parser: s.parent.FullName(), Name: name}
	}

	child := newNode(name, opts)
	child.parent = s.parent
	s.parent.cmd.AddCommand(child.cmd)
	s.parent.root().nodes[child.cmd] = child

	s.choices[name] = child
	s.order = append(s.order, name)
	return child, nil
}

// Lookup returns the nested parser registered under name.
func (s *Subparsers) Lookup(name string) (*Parser, bool) {
	child, ok := s.choices[name]
	return child, ok
}

// Choices returns the registered subcommand names in registration order.
func (s *Subparsers) Choices() []string {
	return append([]string(nil), s.order...)
}

// Dest returns the namespace key holding the chosen subcommand.
func (s *Subparsers) Dest() string {
	return s.dest
}

// SetDest changes the namespace key holding the chosen subcommand.
func (s *Subparsers) SetDest(dest string) {
	s.dest = dest
}

func (s *Subparsers) metavar() string {
	names := s.Choices()
	sort.Strings(names)
	return "{" + strings.Join(names, ",") + "}"
}
