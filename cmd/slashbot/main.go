// cmd/slashbot/main.go
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/keshon/slashbot/internal/bot"
	"github.com/keshon/slashbot/internal/config"
	"github.com/keshon/slashbot/internal/discord"
	"github.com/keshon/slashbot/internal/slack"
	"github.com/keshon/slashbot/internal/storage"
	"github.com/keshon/slashbot/internal/telemetry"
	"github.com/keshon/slashbot/pkg/jobmgr"
	"go.opentelemetry.io/otel"
	"golang.org/x/time/rate"
)

const appName = "slashbot"

func main() {
	log.Printf("[INFO] Starting %s...", appName)

	cfg, err := config.Load(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("[ERR] Config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.OTelEndpoint, appName)
	if err != nil {
		log.Fatalf("[ERR] Telemetry: %v", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			log.Printf("[WARN] Telemetry shutdown: %v", err)
		}
	}()

	store, err := storage.New(ctx, cfg.StoragePath)
	if err != nil {
		log.Fatalf("[ERR] Storage: %v", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("[WARN] Storage close: %v", err)
		}
	}()

	opts := bot.Options{
		Store:       store,
		AliasesFile: cfg.AliasesFile,
		RateLimit:   rate.Limit(cfg.RateLimit),
		RateBurst:   cfg.RateBurst,
	}
	if cfg.OTelEndpoint != "" {
		opts.Tracer = otel.GetTracerProvider()
	}
	dispatcher, err := bot.New(opts)
	if err != nil {
		log.Fatalf("[ERR] %v", err)
	}

	handler := slack.NewHandler(slack.Config{
		Token:           cfg.SlackToken,
		PingEnabled:     cfg.PingEnabled,
		ResponseTimeout: cfg.ResponseTimeout,
	}, dispatcher, slack.NewDelivery(nil))

	jobs := jobmgr.NewManager(func(msg string) { log.Printf("[JOB] %s", msg) })
	if err := jobs.Start(ctx, "slack-http", func(ctx context.Context) error {
		return slack.Serve(ctx, cfg.HTTPAddr, handler.Routes())
	}); err != nil {
		log.Fatalf("[ERR] %v", err)
	}
	if cfg.DiscordToken != "" {
		dc := discord.NewBot(cfg.DiscordToken, cfg.DiscordPrefix, dispatcher)
		if err := jobs.Start(ctx, "discord", dc.Run); err != nil {
			log.Fatalf("[ERR] %v", err)
		}
	} else {
		log.Println("[INFO] No Discord token configured, Discord transport disabled")
	}

	select {
	case <-ctx.Done():
		log.Println("[INFO] Received shutdown signal, shutting down...")
	case err := <-jobs.Failed():
		log.Printf("[ERR] Transport failed: %v", err)
	}

	jobs.StopAll()
	jobs.Wait()
	handler.Wait()
	log.Println("[DONE] Shutdown complete")
}
