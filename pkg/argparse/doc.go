// Package argparse is the command line parser underneath argware.
//
// It wraps cobra and pflag behind a small argparse-like surface: arguments
// are declared with AddArgument, subcommands hang off a Subparsers slot and
// the whole tree is parsed at once into a Namespace, a flat map from
// destination name to value.
//
// A Parser node maps one-to-one onto a cobra.Command. Parse walks the tree
// with cobra's TraverseChildren, then collects the flags of every node on the
// chosen path and binds the positionals of the node that was reached:
//
//	p := argparse.New("tool", argparse.Options{})
//	_ = p.AddArgument(argparse.Argument{Flags: []string{"-c", "--config"}, Action: argparse.ActionAppend})
//	sp, _ := p.AddSubparsers("cmd")
//	run, _ := sp.AddParser("run", argparse.Options{Help: "run it"})
//	_ = run.AddArgument(argparse.Argument{Flags: []string{"target"}})
//
//	ns, err := p.Parse([]string{"-c", "a.yaml", "run", "x"})
//	// ns == Namespace{"config": []string{"a.yaml"}, "cmd": "run", "target": "x"}
//
// Errors follow the usual command line conventions: ErrHelp after help was
// printed (exit 0) and *UsageError for anything the user typed wrong (exit 2).
package argparse
