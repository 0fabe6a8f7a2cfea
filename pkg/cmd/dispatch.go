package cmd

import (
	"context"

	"github.com/keshon/slashbot/pkg/args"
)

// Outcome tells a transport what the dispatcher did with a request.
type Outcome int

const (
	// OutcomeHelp means the help handler ran: the text did not resolve, the
	// arguments did not align, or the action is unknown.
	OutcomeHelp Outcome = iota
	OutcomeCommand
	OutcomeAction
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCommand:
		return "command"
	case OutcomeAction:
		return "action"
	default:
		return "help"
	}
}

// Dispatcher resolves requests against a registry and invokes the matching
// handler. Anything that cannot be dispatched goes to the help handler. It
// performs no I/O of its own.
type Dispatcher struct {
	registry *Registry
	help     Handler
}

// NewDispatcher returns a dispatcher that falls back to help. Both reg and
// help are required; a nil value is a setup fault and panics.
func NewDispatcher(reg *Registry, help Handler) *Dispatcher {
	if reg == nil || help == nil {
		panic("cmd: NewDispatcher needs a registry and a help handler")
	}
	return &Dispatcher{registry: reg, help: help}
}

// Registry returns the registry the dispatcher reads from.
func (d *Dispatcher) Registry() *Registry { return d.registry }

// Dispatch resolves req.Text and runs the command, or help.
func (d *Dispatcher) Dispatch(ctx context.Context, req *Request, done Done) Outcome {
	if req == nil {
		req = &Request{}
	}
	m, ok := d.registry.Find(req.Text)
	if !ok {
		return d.runHelp(ctx, req, done)
	}
	return d.Call(ctx, m.Command, m.Args, req, done)
}

// Call runs a command by name with pre-split tokens, bypassing resolution.
func (d *Dispatcher) Call(ctx context.Context, name string, tokens []string, req *Request, done Done) Outcome {
	if req == nil {
		req = &Request{}
	}
	c, ok := d.registry.Lookup(name)
	if !ok {
		return d.runHelp(ctx, req, done)
	}
	values, ok := args.Align(c.Params, tokens)
	if !ok {
		return d.runHelp(ctx, req, done)
	}

	inv := &Invocation{Command: c.Name, Tokens: tokens, Args: values, Request: req}
	d.registry.wrap(c.Handler)(ctx, inv, done)
	return OutcomeCommand
}

// Act runs the action handler registered under name, or help.
func (d *Dispatcher) Act(ctx context.Context, name string, req *Request, done Done) Outcome {
	if req == nil {
		req = &Request{}
	}
	h, ok := d.registry.Action(name)
	if !ok {
		return d.runHelp(ctx, req, done)
	}

	inv := &Invocation{Command: normalize(name), Tokens: []string{}, Args: args.Values{}, Request: req}
	d.registry.wrap(h)(ctx, inv, done)
	return OutcomeAction
}

func (d *Dispatcher) runHelp(ctx context.Context, req *Request, done Done) Outcome {
	inv := &Invocation{Tokens: []string{}, Args: args.Values{}, Request: req}
	d.help(ctx, inv, done)
	return OutcomeHelp
}
