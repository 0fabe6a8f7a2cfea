package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/keshon/slashbot/pkg/retrylimit"
)

const deliveryAttempts = 5

// Delivery posts delayed replies to response_url.
type Delivery struct {
	client   *http.Client
	limiter  *retrylimit.AdaptiveLimiter
	attempts int
}

// NewDelivery uses client, or a client with a ten second timeout when nil.
func NewDelivery(client *http.Client) *Delivery {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Delivery{
		client:   client,
		limiter:  retrylimit.NewAdaptiveLimiter(5, 1, 20, 1, 0.5),
		attempts: deliveryAttempts,
	}
}

// Post sends msg, retrying on network errors, 429 and 5xx.
func (d *Delivery) Post(ctx context.Context, responseURL string, msg *Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	return retrylimit.WithRetryMax(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, responseURL, bytes.NewReader(body))
		if err != nil {
			return &retrylimit.FatalError{Err: err}
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := d.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return retrylimit.CheckStatus(resp.StatusCode, strings.TrimSpace(string(snippet)))
	}, d.limiter, d.attempts)
}
