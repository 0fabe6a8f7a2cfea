package slack

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"github.com/keshon/slashbot/pkg/cmd"
)

const maxBodyBytes = 1 << 20

// SlashCommand is the body Slack posts for a slash command.
type SlashCommand struct {
	Token       string `json:"token"`
	TeamID      string `json:"team_id"`
	TeamDomain  string `json:"team_domain"`
	ChannelID   string `json:"channel_id"`
	ChannelName string `json:"channel_name"`
	UserID      string `json:"user_id"`
	UserName    string `json:"user_name"`
	Command     string `json:"command"`
	Text        string `json:"text"`
	ResponseURL string `json:"response_url"`
	TriggerID   string `json:"trigger_id"`
}

// ActionCallback is the "payload" field Slack posts when a message button
// is pressed.
type ActionCallback struct {
	Type        string       `json:"type"`
	Token       string       `json:"token"`
	CallbackID  string       `json:"callback_id"`
	ResponseURL string       `json:"response_url"`
	TriggerID   string       `json:"trigger_id"`
	Team        Team         `json:"team"`
	Channel     Channel      `json:"channel"`
	User        User         `json:"user"`
	Actions     []ActionItem `json:"actions"`
}

type Team struct {
	ID     string `json:"id"`
	Domain string `json:"domain"`
}

type Channel struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type User struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ActionItem is one pressed element. Legacy attachments set Name, block
// elements set ActionID.
type ActionItem struct {
	Name     string `json:"name"`
	ActionID string `json:"action_id"`
	Value    string `json:"value"`
	Type     string `json:"type"`
}

func (a ActionItem) key() string {
	if a.Name != "" {
		return a.Name
	}
	return a.ActionID
}

// inbound is a decoded request, command or action.
type inbound struct {
	token       string
	responseURL string
	action      *cmd.Action
	req         *cmd.Request
}

var errNoAction = errors.New("action payload without actions")

// decodeRequest reads a JSON or form-encoded body. A form with a "payload"
// field is an interactive callback; anything else is a slash command.
func decodeRequest(w http.ResponseWriter, r *http.Request) (*inbound, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var sc SlashCommand
		if err := json.NewDecoder(r.Body).Decode(&sc); err != nil {
			return nil, fmt.Errorf("decode json body: %w", err)
		}
		return fromSlashCommand(&sc), nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("parse form: %w", err)
	}
	if raw := r.PostForm.Get("payload"); raw != "" {
		var cb ActionCallback
		if err := json.Unmarshal([]byte(raw), &cb); err != nil {
			return nil, fmt.Errorf("decode action payload: %w", err)
		}
		return fromActionCallback(&cb)
	}
	return fromSlashCommand(slashCommandFromForm(r.PostForm)), nil
}

func slashCommandFromForm(f url.Values) *SlashCommand {
	return &SlashCommand{
		Token:       f.Get("token"),
		TeamID:      f.Get("team_id"),
		TeamDomain:  f.Get("team_domain"),
		ChannelID:   f.Get("channel_id"),
		ChannelName: f.Get("channel_name"),
		UserID:      f.Get("user_id"),
		UserName:    f.Get("user_name"),
		Command:     f.Get("command"),
		Text:        f.Get("text"),
		ResponseURL: f.Get("response_url"),
		TriggerID:   f.Get("trigger_id"),
	}
}

func fromSlashCommand(sc *SlashCommand) *inbound {
	return &inbound{
		token:       sc.Token,
		responseURL: sc.ResponseURL,
		req: &cmd.Request{
			Text:      sc.Text,
			UserID:    sc.UserID,
			UserName:  sc.UserName,
			ChannelID: sc.ChannelID,
			RequestID: uuid.NewString(),
			Transport: transport,
			Payload:   sc,
		},
	}
}

func fromActionCallback(cb *ActionCallback) (*inbound, error) {
	if len(cb.Actions) == 0 {
		return nil, errNoAction
	}
	first := cb.Actions[0]
	action := &cmd.Action{Name: first.key(), Value: first.Value}
	return &inbound{
		token:       cb.Token,
		responseURL: cb.ResponseURL,
		action:      action,
		req: &cmd.Request{
			UserID:    cb.User.ID,
			UserName:  cb.User.Name,
			ChannelID: cb.Channel.ID,
			RequestID: uuid.NewString(),
			Transport: transport,
			Action:    action,
			Payload:   cb,
		},
	}, nil
}
