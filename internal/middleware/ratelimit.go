package middleware

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/keshon/slashbot/pkg/cmd"
	"golang.org/x/time/rate"
)

// SlowDownText is the reply sent to rate-limited users.
const SlowDownText = "Slow down, try again in a moment."

const (
	limiterIdle  = 10 * time.Minute
	sweepTrigger = 1024
)

type userLimiter struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

type userLimiters struct {
	mu    sync.Mutex
	limit rate.Limit
	burst int
	users map[string]*userLimiter
	now   func() time.Time
}

func (u *userLimiters) allow(user string) bool {
	u.mu.Lock()
	defer u.mu.Unlock()

	now := u.now()
	if len(u.users) >= sweepTrigger {
		for k, ul := range u.users {
			if now.Sub(ul.lastSeen) > limiterIdle {
				delete(u.users, k)
			}
		}
	}

	ul, ok := u.users[user]
	if !ok {
		ul = &userLimiter{lim: rate.NewLimiter(u.limit, u.burst)}
		u.users[user] = ul
	}
	ul.lastSeen = now
	return ul.lim.AllowN(now, 1)
}

// WithRateLimit allows each user limit commands per second with the given
// burst. Over the limit the handler is skipped and an ephemeral notice is
// sent instead.
func WithRateLimit(limit rate.Limit, burst int) cmd.Middleware {
	users := &userLimiters{
		limit: limit,
		burst: burst,
		users: make(map[string]*userLimiter),
		now:   time.Now,
	}
	return withLimiters(users)
}

func withLimiters(users *userLimiters) cmd.Middleware {
	return func(next cmd.Handler) cmd.Handler {
		return func(ctx context.Context, inv *cmd.Invocation, done cmd.Done) {
			key := inv.Request.Transport + ":" + inv.Request.UserID
			if !users.allow(key) {
				log.Printf("[WARN] Rate limited %s on %q", displayName(inv.Request), inv.Command)
				done(cmd.Ephemeral(SlowDownText), nil)
				return
			}
			next(ctx, inv, done)
		}
	}
}
