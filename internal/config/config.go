// Package config loads runtime settings from .env, the environment and
// command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr        string        `env:"SLACKBOT_HTTP_ADDR" envDefault:":8080"`
	SlackToken      string        `env:"SLACKBOT_SLACK_TOKEN"`
	PingEnabled     bool          `env:"SLACKBOT_PING_ENABLED" envDefault:"false"`
	ResponseTimeout time.Duration `env:"SLACKBOT_RESPONSE_TIMEOUT" envDefault:"2500ms"`

	StoragePath string `env:"SLACKBOT_STORAGE_PATH" envDefault:"datastore.json"`
	AliasesFile string `env:"SLACKBOT_ALIASES_FILE"`

	DiscordToken  string `env:"SLACKBOT_DISCORD_TOKEN"`
	DiscordPrefix string `env:"SLACKBOT_DISCORD_PREFIX" envDefault:"!"`

	RateLimit float64 `env:"SLACKBOT_RATE_LIMIT" envDefault:"1"`
	RateBurst int     `env:"SLACKBOT_RATE_BURST" envDefault:"5"`

	OTelEndpoint string `env:"SLACKBOT_OTEL_ENDPOINT"`
}

// Load reads .env if present, then the environment, then flags from args.
func Load(fs *flag.FlagSet, args []string) (Config, error) {
	if err := loadDotEnv(); err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	fs.StringVar(&cfg.HTTPAddr, "addr", cfg.HTTPAddr, "HTTP listen address")
	fs.StringVar(&cfg.StoragePath, "storage", cfg.StoragePath, "Datastore file path")
	fs.StringVar(&cfg.AliasesFile, "aliases", cfg.AliasesFile, "YAML or TOML alias file")
	fs.BoolVar(&cfg.PingEnabled, "ping", cfg.PingEnabled, "Answer GET /ping")
	fs.DurationVar(&cfg.ResponseTimeout, "response-timeout", cfg.ResponseTimeout, "How long to wait before acknowledging and replying later")
	if err := fs.Parse(args); err != nil {
		return Config{}, fmt.Errorf("parse flags: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadDotEnv() error {
	err := godotenv.Load()
	if errors.Is(err, fs.ErrNotExist) {
		log.Println("[INFO] No .env file found, falling back to system environment variables")
		return nil
	}
	if err != nil {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

func (c Config) validate() error {
	if c.ResponseTimeout <= 0 {
		return fmt.Errorf("response timeout must be positive, got %s", c.ResponseTimeout)
	}
	if c.RateLimit <= 0 || c.RateBurst < 1 {
		return fmt.Errorf("rate limit must be positive with a burst of at least 1, got %v/%d", c.RateLimit, c.RateBurst)
	}
	if c.StoragePath == "" {
		return errors.New("storage path is empty")
	}
	return nil
}
