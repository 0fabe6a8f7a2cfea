// Package commands holds the bundled chat commands.
package commands

import (
	"fmt"
	"math/rand/v2"

	"github.com/keshon/slashbot/internal/storage"
	"github.com/keshon/slashbot/pkg/args"
	"github.com/keshon/slashbot/pkg/cmd"
)

// HistoryReader reads recorded commands for a channel.
type HistoryReader interface {
	CommandHistory(channelID string) ([]storage.CommandRecord, error)
}

// Set is the bundled command set. A nil History makes the history command
// report that it is unavailable; a nil Roll uses math/rand.
type Set struct {
	History HistoryReader
	// Roll returns a value in [1, sides].
	Roll func(sides int) int
}

type definition struct {
	name        string
	description string
	params      args.Schema
	handler     cmd.Handler
}

// Register adds the commands, aliases and actions to reg.
func (s *Set) Register(reg *cmd.Registry) error {
	if s.Roll == nil {
		s.Roll = func(sides int) int { return rand.IntN(sides) + 1 }
	}

	for _, d := range []definition{
		{"echo", "Greet someone and repeat the rest", args.MustParse("title lastName:User words..."), echo},
		{"echo reverse", "Repeat words in reverse order", args.MustParse("words..."), echoReverse},
		{"roll", "Roll dice for the channel", args.MustParse("die:{d4|d6|d8|d10|d12|d20}=d6 count:1"), s.roll},
		{"history", "Show recent commands in this channel", args.MustParse("limit:10"), s.history},
		{"ping", "Check that the bot is alive", nil, ping},
	} {
		if err := reg.Register(d.name, d.description, d.params, d.handler); err != nil {
			return err
		}
	}

	if err := reg.Alias("echo", "say"); err != nil {
		return fmt.Errorf("alias echo: %w", err)
	}
	return reg.RegisterAction("press", press)
}
