package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/keshon/slashbot/pkg/cmd"
)

const maxDice = 20

func (s *Set) roll(_ context.Context, inv *cmd.Invocation, done cmd.Done) {
	die := inv.Args.String("die")
	sides, err := strconv.Atoi(strings.TrimPrefix(die, "d"))
	if err != nil {
		done(nil, fmt.Errorf("bad die %q: %w", die, err))
		return
	}

	count, err := strconv.Atoi(inv.Args.String("count"))
	if err != nil || count < 1 || count > maxDice {
		done(cmd.Ephemeral(fmt.Sprintf("Count must be a number between 1 and %d.", maxDice)), nil)
		return
	}

	rolls := make([]string, count)
	total := 0
	for i := range rolls {
		v := s.Roll(sides)
		total += v
		rolls[i] = strconv.Itoa(v)
	}

	text := fmt.Sprintf("🎲 %s rolled %d%s: %s", who(inv.Request), count, die, strings.Join(rolls, " + "))
	if count > 1 {
		text += fmt.Sprintf(" = %d", total)
	}
	done(cmd.InChannel(text), nil)
}

func who(req *cmd.Request) string {
	if req.UserName != "" {
		return req.UserName
	}
	if req.UserID != "" {
		return req.UserID
	}
	return "someone"
}
