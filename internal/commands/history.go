package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/keshon/slashbot/pkg/cmd"
)

const maxHistory = 20

func (s *Set) history(_ context.Context, inv *cmd.Invocation, done cmd.Done) {
	if s.History == nil {
		done(cmd.Ephemeral("History is not available."), nil)
		return
	}

	limit, err := strconv.Atoi(inv.Args.String("limit"))
	if err != nil || limit < 1 || limit > maxHistory {
		done(cmd.Ephemeral(fmt.Sprintf("Limit must be a number between 1 and %d.", maxHistory)), nil)
		return
	}

	records, err := s.History.CommandHistory(inv.Request.ChannelID)
	if err != nil {
		done(nil, fmt.Errorf("read history: %w", err))
		return
	}
	if len(records) == 0 {
		done(cmd.Ephemeral("No commands recorded in this channel yet."), nil)
		return
	}
	if len(records) > limit {
		records = records[len(records)-limit:]
	}

	var sb strings.Builder
	for i, r := range records {
		if i > 0 {
			sb.WriteByte('\n')
		}
		user := r.Username
		if user == "" {
			user = r.UserID
		}
		fmt.Fprintf(&sb, "%s %s: %s", r.Datetime.Format("2006-01-02 15:04"), user, r.Command)
		if len(r.Args) > 0 {
			sb.WriteString(" " + strings.Join(r.Args, " "))
		}
	}
	done(cmd.Ephemeral(fmt.Sprintf("Last %d commands:", len(records))).WithAttachment(sb.String()), nil)
}
