package argware

import (
	"context"
	"errors"
	"fmt"

	"argware/pkg/argparse"
	"argware/pkg/logging"
)

// ErrHelp is returned when help was printed instead of running a command.
var ErrHelp = argparse.ErrHelp

// State is the lifecycle state of a Parser.
type State int

const (
	StateCreated State = iota
	StateConfigured
	StateParsed
	StateRunComplete
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "Created"
	case StateConfigured:
		return "Configured"
	case StateParsed:
		return "Parsed"
	case StateRunComplete:
		return "RunComplete"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Parser is an argparse.Parser driven by an ordered middleware pipeline.
//
// The pipeline may grow while it is being walked: a middleware can call
// AddMiddleware from its Configure or Run step and the new middleware is
// picked up by the same walk.
type Parser struct {
	*argparse.Parser

	middlewares []Middleware
	configured  int
	state       State
}

// New creates a root parser with the given middleware.
func New(name string, opts argparse.Options, middlewares ...Middleware) *Parser {
	return &Parser{
		Parser:      argparse.New(name, opts),
		middlewares: middlewares,
	}
}

// AddMiddleware appends m to the pipeline.
func (p *Parser) AddMiddleware(m ...Middleware) {
	p.middlewares = append(p.middlewares, m...)
}

// Middleware appends fn as a run step and returns it, so a configure step
// can be attached with OnConfigure.
func (p *Parser) Middleware(fn RunFunc) *Func {
	f := NewFunc(fn)
	p.AddMiddleware(f)
	return f
}

// Middlewares returns a copy of the current pipeline.
func (p *Parser) Middlewares() []Middleware {
	return append([]Middleware(nil), p.middlewares...)
}

// State returns the lifecycle state reached by the last run.
func (p *Parser) State() State {
	return p.state
}

// configure calls Configure on every middleware not configured yet.
// Middleware appended meanwhile are configured in the same pass.
func (p *Parser) configure() error {
	for p.configured < len(p.middlewares) {
		i := p.configured
		m := p.middlewares[i]
		logging.Debug("Pipeline", "Configuring middleware %d (%T)", i, m)
		if err := m.Configure(p); err != nil {
			return fmt.Errorf("failed to configure middleware %d (%T): %w", i, m, err)
		}
		p.configured++
	}
	p.state = StateConfigured
	return nil
}

// ParseArgs configures the pipeline and parses argv without running it.
func (p *Parser) ParseArgs(ctx context.Context, argv []string) (Namespace, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := p.configure(); err != nil {
		return nil, err
	}

	ns, err := p.Parse(argv)
	if err != nil {
		if !errors.Is(err, ErrHelp) {
			logging.Debug("Pipeline", "Parsing %q failed: %v", argv, err)
		}
		return nil, err
	}
	p.state = StateParsed
	logging.Debug("Pipeline", "Parsed %d keys", len(ns))
	return ns, nil
}

// Run configures the pipeline, parses argv and runs every middleware in
// registration order on the resulting namespace, which is returned.
//
// Middleware appended during the run phase are run, but they are only
// configured on the next call to Run.
func (p *Parser) Run(ctx context.Context, argv []string) (Namespace, error) {
	ns, err := p.ParseArgs(ctx, argv)
	if err != nil {
		return nil, err
	}

	for i := 0; i < len(p.middlewares); i++ {
		if err := ctx.Err(); err != nil {
			return ns, err
		}
		m := p.middlewares[i]
		logging.Debug("Pipeline", "Running middleware %d (%T)", i, m)
		if err := m.Run(ctx, ns); err != nil {
			return ns, &MiddlewareError{Index: i, Middleware: m, Err: err}
		}
	}

	p.state = StateRunComplete
	return ns, nil
}

// MiddlewareError is returned by Run when a middleware fails in the run
// phase. It records the middleware's position in the pipeline.
type MiddlewareError struct {
	Index      int
	Middleware Middleware
	Err        error
}

func (e *MiddlewareError) Error() string {
	return fmt.Sprintf("middleware %d (%T): %v", e.Index, e.Middleware, e.Err)
}

func (e *MiddlewareError) Unwrap() error {
	return e.Err
}

// ExitCode maps an error returned by Run to a process exit status.
//
// nil and ErrHelp map to 0. Errors that carry their own status through an
// ExitCode() int method (usage errors, failed commands, child processes)
// map to that status. Anything else maps to 1.
func ExitCode(err error) int {
	if err == nil || errors.Is(err, ErrHelp) {
		return 0
	}
	var coder interface{ ExitCode() int }
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	return 1
}
