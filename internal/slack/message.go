package slack

import "github.com/keshon/slashbot/pkg/cmd"

// FailureText is sent in place of a handler error.
const FailureText = "Something went wrong."

// Message is the JSON reply body, used both as the HTTP response and for
// delayed posts to response_url.
type Message struct {
	ResponseType string       `json:"response_type"`
	Text         string       `json:"text,omitempty"`
	Attachments  []Attachment `json:"attachments,omitempty"`
}

type Attachment struct {
	Text string `json:"text"`
}

// NewMessage converts a handler outcome. It returns nil when there is
// nothing to send.
func NewMessage(resp *cmd.Response, err error) *Message {
	if err != nil {
		resp = cmd.Ephemeral(FailureText)
	}
	if resp == nil {
		return nil
	}

	msg := &Message{ResponseType: resp.Visibility.String(), Text: resp.Text}
	for _, a := range resp.Attachments {
		msg.Attachments = append(msg.Attachments, Attachment{Text: a.Text})
	}
	return msg
}
