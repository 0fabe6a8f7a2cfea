package cmd

// Visibility says who sees a reply.
type Visibility int

const (
	// VisibilityEphemeral replies are shown to the invoking user only.
	VisibilityEphemeral Visibility = iota
	// VisibilityInChannel replies are posted for the whole channel.
	VisibilityInChannel
)

func (v Visibility) String() string {
	if v == VisibilityInChannel {
		return "in_channel"
	}
	return "ephemeral"
}

// Attachment is a secondary block of text rendered under the reply.
type Attachment struct {
	Text string
}

// Response is a transport-neutral reply.
type Response struct {
	Visibility  Visibility
	Text        string
	Attachments []Attachment
}

// Ephemeral returns a reply visible to the invoking user only.
func Ephemeral(text string) *Response {
	return &Response{Visibility: VisibilityEphemeral, Text: text}
}

// InChannel returns a reply visible to the whole channel.
func InChannel(text string) *Response {
	return &Response{Visibility: VisibilityInChannel, Text: text}
}

// WithAttachment appends an attachment and returns r.
func (r *Response) WithAttachment(text string) *Response {
	r.Attachments = append(r.Attachments, Attachment{Text: text})
	return r
}
