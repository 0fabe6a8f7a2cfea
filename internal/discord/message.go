package discord

import (
	"context"
	"log"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/slashbot/pkg/cmd"
)

const embedColor = 0x4A90E2

// Sender is the part of *discordgo.Session used to reply.
type Sender interface {
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// commandText returns the text after the prefix or a leading mention of
// selfID, and false when the message is not addressed to the bot.
func commandText(content, prefix, selfID string) (string, bool) {
	content = strings.TrimSpace(content)
	if prefix != "" {
		if rest, ok := strings.CutPrefix(content, prefix); ok {
			return rest, true
		}
	}
	for _, mention := range []string{"<@" + selfID + ">", "<@!" + selfID + ">"} {
		if rest, ok := strings.CutPrefix(content, mention); ok {
			return rest, true
		}
	}
	return "", false
}

func (b *Bot) handle(ctx context.Context, s Sender, selfID string, m *discordgo.Message) {
	if m.Author == nil || m.Author.ID == selfID || m.Author.Bot {
		return
	}
	text, ok := commandText(m.Content, b.prefix, selfID)
	if !ok {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	req := &cmd.Request{
		Text:      text,
		UserID:    m.Author.ID,
		UserName:  m.Author.Username,
		ChannelID: m.ChannelID,
		RequestID: m.ID,
		Transport: transport,
		Payload:   m,
	}
	done := cmd.Once(func(resp *cmd.Response, err error) {
		if err != nil {
			log.Printf("[DISCORD] [ERR] Command in channel %s failed: %v", m.ChannelID, err)
			resp = cmd.Ephemeral("Something went wrong.")
		}
		if resp == nil {
			return
		}
		if _, serr := s.ChannelMessageSendComplex(m.ChannelID, render(resp, m)); serr != nil {
			log.Printf("[DISCORD] [ERR] Failed to send reply to channel %s: %v", m.ChannelID, serr)
		}
	})

	outcome := b.dispatcher.Dispatch(ctx, req, done)
	log.Printf("[DISCORD] [DEBUG] message=%s user=%s outcome=%s", m.ID, m.Author.ID, outcome)
}

// render turns a reply into a message. Gateway messages cannot be hidden
// from the channel, so ephemeral replies are sent as a reply to the
// invoking message instead.
func render(resp *cmd.Response, m *discordgo.Message) *discordgo.MessageSend {
	send := &discordgo.MessageSend{Content: resp.Text}
	for _, a := range resp.Attachments {
		send.Embeds = append(send.Embeds, &discordgo.MessageEmbed{
			Description: a.Text,
			Color:       embedColor,
		})
	}
	if resp.Visibility == cmd.VisibilityEphemeral {
		send.Reference = m.Reference()
	}
	return send
}
