// Package slack serves Slack slash commands and interactive callbacks over
// HTTP and hands them to a cmd.Dispatcher.
package slack

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/keshon/slashbot/pkg/cmd"
)

const transport = "slack"

// lateReplyWindow bounds how long a handler may take once the request was
// acknowledged. Slack accepts response_url posts for thirty minutes.
const lateReplyWindow = 30 * time.Minute

type Config struct {
	Token           string
	PingEnabled     bool
	ResponseTimeout time.Duration
}

type Handler struct {
	cfg        Config
	dispatcher *cmd.Dispatcher
	delivery   *Delivery
	late       sync.WaitGroup
}

func NewHandler(cfg Config, d *cmd.Dispatcher, delivery *Delivery) *Handler {
	if delivery == nil {
		delivery = NewDelivery(nil)
	}
	if cfg.Token == "" {
		log.Println("[SLACK] [WARN] No Slack token configured, every request will be rejected")
	}
	return &Handler{cfg: cfg, dispatcher: d, delivery: delivery}
}

// Routes returns the mux: POST / for commands and callbacks, GET /ping.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ping", h.ping)
	mux.Handle("/", h)
	return mux
}

func (h *Handler) ping(w http.ResponseWriter, r *http.Request) {
	if !h.cfg.PingEnabled || r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("Ok"))
}

type reply struct {
	resp *cmd.Response
	err  error
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	in, err := decodeRequest(w, r)
	if err != nil {
		log.Printf("[SLACK] [WARN] Bad request: %v", err)
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if !h.authorized(in.token) {
		log.Printf("[SLACK] [WARN] Rejected request from user %s: invalid token", in.req.UserID)
		http.Error(w, "Invalid Slack token", http.StatusUnauthorized)
		return
	}

	// The handler may outlive this request, so its context does too.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), lateReplyWindow)
	replies := make(chan reply, 1)
	done := cmd.Once(func(resp *cmd.Response, err error) {
		replies <- reply{resp: resp, err: err}
	})

	go h.dispatch(ctx, in, done)

	timer := time.NewTimer(h.cfg.ResponseTimeout)
	defer timer.Stop()

	select {
	case rep := <-replies:
		cancel()
		writeMessage(w, NewMessage(rep.resp, rep.err))
		logFailure(in, rep.err)
	case <-timer.C:
		w.WriteHeader(http.StatusOK)
		h.late.Add(1)
		go func() {
			defer h.late.Done()
			defer cancel()
			h.deliverLate(ctx, in, replies)
		}()
	}
}

func (h *Handler) dispatch(ctx context.Context, in *inbound, done cmd.Done) {
	var outcome cmd.Outcome
	if in.action != nil {
		outcome = h.dispatcher.Act(ctx, in.action.Name, in.req, done)
	} else {
		outcome = h.dispatcher.Dispatch(ctx, in.req, done)
	}
	log.Printf("[SLACK] [DEBUG] request=%s user=%s outcome=%s", in.req.RequestID, in.req.UserID, outcome)
}

func (h *Handler) deliverLate(ctx context.Context, in *inbound, replies <-chan reply) {
	select {
	case rep := <-replies:
		logFailure(in, rep.err)
		msg := NewMessage(rep.resp, rep.err)
		if msg == nil {
			return
		}
		if in.responseURL == "" {
			log.Printf("[SLACK] [WARN] Late reply for request %s dropped: no response_url", in.req.RequestID)
			return
		}
		if err := h.delivery.Post(ctx, in.responseURL, msg); err != nil {
			log.Printf("[SLACK] [ERR] Failed to deliver late reply for request %s: %v", in.req.RequestID, err)
			return
		}
		log.Printf("[SLACK] [DONE] Delivered late reply for request %s", in.req.RequestID)
	case <-ctx.Done():
		log.Printf("[SLACK] [WARN] Handler for request %s never replied", in.req.RequestID)
	}
}

// Wait blocks until every late reply has been delivered or abandoned.
func (h *Handler) Wait() {
	h.late.Wait()
}

func (h *Handler) authorized(token string) bool {
	if h.cfg.Token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(h.cfg.Token)) == 1
}

func logFailure(in *inbound, err error) {
	if err != nil {
		log.Printf("[SLACK] [ERR] Request %s failed: %v", in.req.RequestID, err)
	}
}

func writeMessage(w http.ResponseWriter, msg *Message) {
	if msg == nil {
		w.WriteHeader(http.StatusOK)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(msg); err != nil {
		log.Printf("[SLACK] [ERR] Failed to write response: %v", err)
	}
}
