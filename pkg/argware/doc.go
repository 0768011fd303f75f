// Package argware drives a command line parser through a pipeline of
// middleware.
//
// A middleware contributes to a run in two phases. During configure it may
// register flags, sub-parsers and even more middleware on the Parser. After
// the command line has been parsed, its run step receives the Namespace and
// may add, rename or remove keys; later middleware see those changes.
//
//	p := argware.New("tool", argparse.Options{})
//	p.AddMiddleware(config.NewInject(map[string]any{"port": 8080}))
//	p.Middleware(func(ctx context.Context, ns argware.Namespace) error {
//		fmt.Println(ns["port"])
//		return nil
//	})
//	_, err := p.Run(ctx, os.Args[1:])
//	os.Exit(argware.ExitCode(err))
//
// The pipeline is walked by index and its length is read again after every
// step, so middleware registered while walking are always visited. Each
// middleware is configured at most once per Parser, which makes repeated
// calls to Run safe.
package argware
