// Package cmd is the transport-agnostic command core: a registry of named
// commands and actions, longest-prefix resolution of free text against it,
// and a dispatcher that aligns arguments and invokes handlers. Transports
// (Slack HTTP, Discord gateway, CLI) build a Request, call the Dispatcher
// and deliver whatever Response reaches the Done callback.
package cmd

import (
	"context"

	"github.com/keshon/slashbot/pkg/args"
)

// Request is what a transport knows about an incoming message.
type Request struct {
	// Text is the raw command text, without any transport trigger such as
	// the slash command name or a message prefix.
	Text string

	UserID    string
	UserName  string
	ChannelID string
	RequestID string
	Transport string // "slack", "discord", "cli"

	// Action is set for interactive callbacks (button presses).
	Action *Action

	// Payload is the decoded transport body, for handlers that need it.
	Payload any
}

// Action identifies a pressed interactive element.
type Action struct {
	Name  string
	Value string
}

// Invocation is passed to handlers. Command is the canonical command or
// action name and is empty for the help fallback. Tokens holds what
// followed the command name; Args is the aligned result.
type Invocation struct {
	Command string
	Tokens  []string
	Args    args.Values
	Request *Request
}

// Done receives a handler's outcome. A nil response with a nil error means
// the handler chose not to reply.
type Done func(resp *Response, err error)

// Handler runs a command. It must call done exactly once, from any
// goroutine, possibly after Handler has returned.
type Handler func(ctx context.Context, inv *Invocation, done Done)
