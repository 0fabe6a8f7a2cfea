// Package bot assembles the registry, middleware and bundled commands
// shared by every transport.
package bot

import (
	"fmt"
	"log"

	"github.com/keshon/slashbot/internal/aliasfile"
	"github.com/keshon/slashbot/internal/commands"
	"github.com/keshon/slashbot/internal/help"
	"github.com/keshon/slashbot/internal/middleware"
	"github.com/keshon/slashbot/internal/storage"
	"github.com/keshon/slashbot/pkg/cmd"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

type Options struct {
	// Store records and serves command history. Optional.
	Store *storage.Storage
	// AliasesFile is a YAML or TOML alias file. Optional.
	AliasesFile string

	RateLimit rate.Limit
	RateBurst int

	// Tracer enables per-command spans. Optional.
	Tracer trace.TracerProvider
}

// New builds a dispatcher with the bundled commands registered.
func New(opts Options) (*cmd.Dispatcher, error) {
	reg := cmd.NewRegistry()

	if opts.Tracer != nil {
		reg.Use(middleware.WithTracing(opts.Tracer))
	}
	var history middleware.HistoryStore
	set := &commands.Set{}
	if opts.Store != nil {
		history = opts.Store
		set.History = opts.Store
	}
	reg.Use(middleware.WithCommandLogger(history))
	if opts.RateLimit > 0 {
		reg.Use(middleware.WithRateLimit(opts.RateLimit, max(opts.RateBurst, 1)))
	}

	if err := set.Register(reg); err != nil {
		return nil, fmt.Errorf("register commands: %w", err)
	}

	if opts.AliasesFile != "" {
		entries, err := aliasfile.Load(opts.AliasesFile)
		if err != nil {
			return nil, fmt.Errorf("load aliases: %w", err)
		}
		if err := aliasfile.Apply(reg, entries); err != nil {
			return nil, fmt.Errorf("apply aliases from %s: %w", opts.AliasesFile, err)
		}
		log.Printf("[INFO] Loaded %d aliases from %s", len(entries), opts.AliasesFile)
	}

	log.Printf("[INFO] Registered %d commands", len(reg.Commands()))
	return cmd.NewDispatcher(reg, help.Handler(reg)), nil
}
