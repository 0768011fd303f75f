package commands

import (
	"argware/pkg/argparse"
	"argware/pkg/argware"
)

// Parser is an argware.Parser with a built-in command tree.
type Parser struct {
	*argware.Parser
	tree *Tree
}

// NewParser creates a parser whose pipeline starts with a command tree.
// Further middleware added to it run after the tree dispatched.
func NewParser(name string, opts argparse.Options, treeOpts ...Option) *Parser {
	tree := New(treeOpts...)
	return &Parser{
		Parser: argware.New(name, opts, tree),
		tree:   tree,
	}
}

// AddCommand registers a command on the built-in tree and returns it.
func (p *Parser) AddCommand(name string, handler HandlerFunc, args ...argparse.Argument) *Command {
	cmd := NewCommand(name, handler, args...)
	p.tree.AddCommand(cmd)
	return cmd
}

// Tree returns the built-in command tree.
func (p *Parser) Tree() *Tree {
	return p.tree
}
