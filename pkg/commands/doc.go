// Package commands provides the command tree middleware.
//
// Commands are registered by their space separated path. Configure turns the
// flat list into nested sub-parsers, sharing the intermediate nodes, so that
// "db migrate" and "db seed" both live under one "db" parser. Run looks at
// which sub-parsers were selected, stores the full command name under the
// tree's dest ("command" by default) and calls the handler of the command
// registered under exactly that name:
//
//	tree := commands.New(commands.WithCommands(
//		commands.NewCommand("db migrate", migrate,
//			argparse.Argument{Flags: []string{"--steps"}, Type: argparse.TypeInt}),
//		commands.NewCommand("serve", serve).WithHelp("start the server"),
//	))
//	p := argware.New("tool", argparse.Options{}, tree)
//
// While parsing, the subcommand chosen at depth d is held under the key
// "__cmd_<d>". Run removes those keys again.
package commands
