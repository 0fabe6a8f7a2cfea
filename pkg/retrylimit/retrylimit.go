// Package retrylimit retries outbound calls with exponential backoff behind
// an adaptive rate limiter. HTTP status codes drive the classification:
// 429 slows the limiter down, 5xx is retried with backoff, other 4xx codes
// stop immediately.
//
//	lim := retrylimit.NewAdaptiveLimiter(5, 1, 20, 1, 0.5)
//	err := retrylimit.WithRetryMax(ctx, func() error {
//	    return post(ctx, url, body)
//	}, lim, 5)
package retrylimit

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// AdaptiveLimiter is a rate limiter whose rate rises after successes and
// drops after rate-limit or server errors, within [min, max].
type AdaptiveLimiter struct {
	mu        sync.Mutex
	limiter   *rate.Limiter
	min, max  rate.Limit
	stepUp    rate.Limit
	stepDown  float64
	lastError time.Time
}

// NewAdaptiveLimiter returns a limiter starting at initial requests per
// second, bounded by [lo, hi]. stepUp is added after a success, stepDown
// multiplies the rate after a failure.
func NewAdaptiveLimiter(initial, lo, hi, stepUp rate.Limit, stepDown float64) *AdaptiveLimiter {
	lo = max(lo, 1)
	hi = max(hi, lo)
	initial = min(max(initial, lo), hi)
	return &AdaptiveLimiter{
		limiter:  rate.NewLimiter(initial, burstFor(initial)),
		min:      lo,
		max:      hi,
		stepUp:   stepUp,
		stepDown: stepDown,
	}
}

// Wait blocks until the limiter allows one call.
func (a *AdaptiveLimiter) Wait(ctx context.Context) error {
	return a.limiter.Wait(ctx)
}

// Success raises the rate unless a failure was seen in the last ten seconds.
func (a *AdaptiveLimiter) Success() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if time.Since(a.lastError) > 10*time.Second {
		a.set(a.limiter.Limit() + a.stepUp)
	}
}

// RateLimited lowers the rate.
func (a *AdaptiveLimiter) RateLimited() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastError = time.Now()
	a.set(rate.Limit(float64(a.limiter.Limit()) * a.stepDown))
}

// Limit returns the current rate in requests per second.
func (a *AdaptiveLimiter) Limit() rate.Limit {
	return a.limiter.Limit()
}

func (a *AdaptiveLimiter) set(l rate.Limit) {
	l = min(max(l, a.min), a.max)
	if l != a.limiter.Limit() {
		a.limiter.SetLimit(l)
		a.limiter.SetBurst(burstFor(l))
	}
}

func burstFor(l rate.Limit) int {
	return max(1, int(l))
}

// StatusError is returned for non-2xx HTTP responses.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("http status %d", e.Code)
	}
	return fmt.Sprintf("http status %d: %s", e.Code, e.Body)
}

func (e *StatusError) StatusCode() int { return e.Code }

// FatalError stops retrying immediately.
type FatalError struct {
	Err error
}

func (f *FatalError) Error() string { return f.Err.Error() }
func (f *FatalError) Unwrap() error { return f.Err }

// CheckStatus turns a status code into an error: nil for 2xx, a fatal
// StatusError for 4xx other than 429, a retryable StatusError otherwise.
func CheckStatus(code int, body string) error {
	if code >= 200 && code < 300 {
		return nil
	}
	err := &StatusError{Code: code, Body: body}
	if code >= 400 && code < 500 && code != http.StatusTooManyRequests {
		return &FatalError{Err: err}
	}
	return err
}

// Policy configures WithRetryPolicy.
type Policy struct {
	MaxAttempts    int
	InitialDelay   time.Duration
	MaxDelay       time.Duration
	RateLimitDelay time.Duration // fixed pause after a 429
	Multiplier     float64
	Jitter         bool
}

// DefaultPolicy returns the policy used by WithRetryMax.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:    10,
		InitialDelay:   500 * time.Millisecond,
		MaxDelay:       10 * time.Second,
		RateLimitDelay: 100 * time.Millisecond,
		Multiplier:     2,
		Jitter:         true,
	}
}

// WithRetryMax runs fn up to maxAttempts times using DefaultPolicy.
func WithRetryMax(ctx context.Context, fn func() error, lim *AdaptiveLimiter, maxAttempts int) error {
	p := DefaultPolicy()
	p.MaxAttempts = maxAttempts
	return WithRetryPolicy(ctx, fn, lim, p)
}

// WithRetryPolicy runs fn until it succeeds, returns a FatalError, the
// context ends, or p.MaxAttempts is reached. lim may be nil.
func WithRetryPolicy(ctx context.Context, fn func() error, lim *AdaptiveLimiter, p Policy) error {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 1
	}
	delay := p.InitialDelay

	var err error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if lim != nil {
			if werr := lim.Wait(ctx); werr != nil {
				return werr
			}
		}

		err = fn()
		if err == nil {
			if lim != nil {
				lim.Success()
			}
			if attempt > 1 {
				log.Printf("[RETRY] Succeeded after %d attempts", attempt)
			}
			return nil
		}

		var fatal *FatalError
		if errors.As(err, &fatal) {
			return err
		}
		if attempt == p.MaxAttempts {
			break
		}

		pause := delay
		if p.Jitter && pause > 0 {
			pause += time.Duration(rand.Int64N(int64(pause/4) + 1))
		}
		switch code := statusCode(err); {
		case code == http.StatusTooManyRequests:
			if lim != nil {
				lim.RateLimited()
			}
			pause = p.RateLimitDelay
			log.Printf("[RETRY] Rate limited (attempt %d)", attempt)
		case code >= 500:
			if lim != nil {
				lim.RateLimited()
			}
			log.Printf("[RETRY] Server error (attempt %d): %v. Sleeping %v", attempt, err, pause)
		default:
			log.Printf("[RETRY] Attempt %d failed: %v. Sleeping %v", attempt, err, pause)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pause):
		}

		delay = min(time.Duration(float64(delay)*p.Multiplier), p.MaxDelay)
	}

	return fmt.Errorf("giving up after %d attempts: %w", p.MaxAttempts, err)
}

func statusCode(err error) int {
	var se interface{ StatusCode() int }
	if errors.As(err, &se) {
		return se.StatusCode()
	}
	return 0
}
