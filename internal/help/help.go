// Package help renders the command listing shown when a request cannot be
// dispatched.
package help

import (
	"context"
	"fmt"
	"strings"

	"github.com/keshon/slashbot/pkg/cmd"
)

// Title is the reply text above the listing.
const Title = "Available commands:"

// Entry is the line for the help command itself, always listed last.
const Entry = "help: display this help message"

// Text returns one line per command in registration order:
//
//	testA (tA, A): Test command A
//	testB arg1 arg2 arg3:3: Test command B
//	help: display this help message
func Text(reg *cmd.Registry) string {
	var sb strings.Builder
	for _, c := range reg.Commands() {
		sb.WriteString(c.Usage())
		if aliases := reg.AliasesOf(c.Name); len(aliases) > 0 {
			fmt.Fprintf(&sb, " (%s)", strings.Join(aliases, ", "))
		}
		fmt.Fprintf(&sb, ": %s\n", c.Description)
	}
	sb.WriteString(Entry)
	return sb.String()
}

// Reply builds the ephemeral help response.
func Reply(reg *cmd.Registry) *cmd.Response {
	return cmd.Ephemeral(Title).WithAttachment(Text(reg))
}

// Handler returns the dispatcher fallback. The listing is rendered on every
// call so commands registered later still show up.
func Handler(reg *cmd.Registry) cmd.Handler {
	return func(_ context.Context, _ *cmd.Invocation, done cmd.Done) {
		done(Reply(reg), nil)
	}
}
