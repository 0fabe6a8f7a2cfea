package middleware

import (
	"context"
	"log"
	"time"

	"github.com/keshon/slashbot/internal/storage"
	"github.com/keshon/slashbot/pkg/cmd"
)

// HistoryStore records dispatched commands.
type HistoryStore interface {
	AppendCommand(channelID string, rec storage.CommandRecord) error
}

// WithCommandLogger logs every command and records it in store once the
// handler is done. store may be nil.
func WithCommandLogger(store HistoryStore) cmd.Middleware {
	return func(next cmd.Handler) cmd.Handler {
		return func(ctx context.Context, inv *cmd.Invocation, done cmd.Done) {
			req := inv.Request
			log.Printf("[CMD] %s user=%s channel=%s command=%q args=%q", req.Transport, displayName(req), req.ChannelID, inv.Command, inv.Tokens)

			next(ctx, inv, func(resp *cmd.Response, err error) {
				if err != nil {
					log.Printf("[ERR] Command %q failed: %v", inv.Command, err)
				}
				if store != nil && req.ChannelID != "" {
					rec := storage.CommandRecord{
						ChannelID: req.ChannelID,
						UserID:    req.UserID,
						Username:  req.UserName,
						Command:   inv.Command,
						Args:      inv.Tokens,
						Transport: req.Transport,
						Datetime:  time.Now().UTC(),
					}
					if e := store.AppendCommand(req.ChannelID, rec); e != nil {
						log.Printf("[WARN] Failed to record command %q: %v", inv.Command, e)
					}
				}
				done(resp, err)
			})
		}
	}
}

func displayName(req *cmd.Request) string {
	if req.UserName != "" {
		return req.UserName
	}
	if req.UserID != "" {
		return req.UserID
	}
	return "unknown"
}
