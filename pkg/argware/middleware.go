package argware

import (
	"context"

	"argware/pkg/argparse"
)

// Namespace is the parsed command line shared by every middleware of a run.
type Namespace = argparse.Namespace

// Middleware is a pluggable unit of a Parser pipeline.
//
// Configure is called once per middleware before the command line is parsed
// and may register flags, sub-parsers or further middleware. Run is called
// after parsing, in registration order, and may read and mutate the
// namespace in place.
type Middleware interface {
	Configure(p *Parser) error
	Run(ctx context.Context, ns Namespace) error
}

// BaseMiddleware provides no-op implementations of both Middleware methods.
// Embed it to implement only the phase you need.
type BaseMiddleware struct{}

// Configure does nothing.
func (BaseMiddleware) Configure(*Parser) error { return nil }

// Run does nothing.
func (BaseMiddleware) Run(context.Context, Namespace) error { return nil }

// RunFunc is the signature of a middleware run step.
type RunFunc func(ctx context.Context, ns Namespace) error

// ConfigureFunc is the signature of a middleware configure step.
type ConfigureFunc func(p *Parser) error

// Func adapts plain functions to the Middleware interface.
type Func struct {
	run       RunFunc
	configure ConfigureFunc
}

// NewFunc returns a middleware whose Run calls fn.
func NewFunc(fn RunFunc) *Func {
	return &Func{run: fn}
}

// OnConfigure sets the configure step and returns f for chaining.
func (f *Func) OnConfigure(fn ConfigureFunc) *Func {
	f.configure = fn
	return f
}

// Configure implements Middleware.
func (f *Func) Configure(p *Parser) error {
	if f.configure == nil {
		return nil
	}
	return f.configure(p)
}

// Run implements Middleware.
func (f *Func) Run(ctx context.Context, ns Namespace) error {
	if f.run == nil {
		return nil
	}
	return f.run(ctx, ns)
}
