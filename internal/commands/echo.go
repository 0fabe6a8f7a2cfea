package commands

import (
	"context"
	"slices"
	"strings"

	"github.com/keshon/slashbot/pkg/cmd"
)

func echo(_ context.Context, inv *cmd.Invocation, done cmd.Done) {
	a := inv.Args
	text := "Hello " + a.String("title") + " " + a.String("lastName")
	if words := a.List("words"); len(words) > 0 {
		text += ", " + strings.Join(words, " ")
	}
	done(cmd.Ephemeral(text), nil)
}

func echoReverse(_ context.Context, inv *cmd.Invocation, done cmd.Done) {
	words := slices.Clone(inv.Args.List("words"))
	if len(words) == 0 {
		done(cmd.Ephemeral("Nothing to reverse."), nil)
		return
	}
	slices.Reverse(words)
	done(cmd.InChannel(strings.Join(words, " ")), nil)
}

func ping(_ context.Context, _ *cmd.Invocation, done cmd.Done) {
	done(cmd.Ephemeral("🏓 Pong!"), nil)
}

func press(_ context.Context, inv *cmd.Invocation, done cmd.Done) {
	label := inv.Command
	if a := inv.Request.Action; a != nil && a.Value != "" {
		label = a.Value
	}
	done(cmd.InChannel("You pressed the "+label+" button"), nil)
}
