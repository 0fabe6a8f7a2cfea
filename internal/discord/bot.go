// Package discord runs the command dispatcher over the Discord gateway.
// Messages starting with the configured prefix, or mentioning the bot, are
// treated as command text.
package discord

import (
	"context"
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/slashbot/pkg/cmd"
)

const transport = "discord"

// Bot is a Discord bot
type Bot struct {
	token      string
	prefix     string
	dispatcher *cmd.Dispatcher
	ctx        context.Context
}

func NewBot(token, prefix string, d *cmd.Dispatcher) *Bot {
	return &Bot{token: token, prefix: prefix, dispatcher: d}
}

// Run connects to the gateway and blocks until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	dg, err := discordgo.New("Bot " + b.token)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	b.ctx = ctx

	dg.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsDirectMessages | discordgo.IntentMessageContent
	dg.AddHandler(b.onReady)
	dg.AddHandler(b.onMessageCreate)

	if err := dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer dg.Close()

	<-ctx.Done()
	log.Println("[DISCORD] [INFO] Shutdown signal received, closing session")
	return nil
}

func (b *Bot) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	log.Printf("[DISCORD] [INFO] Connected as %s to %d guilds", r.User.Username, len(r.Guilds))
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if s.State == nil || s.State.User == nil {
		return
	}
	b.handle(b.ctx, s, s.State.User.ID, m.Message)
}
