package notification

import "context"

// Message is an outbound email.
type Message struct {
	From    string
	To      string
	Subject string
	Text    string
	HTML    string
}

// Receipt describes a delivered message. PreviewURL is only set by transports
// that keep a copy for inspection.
type Receipt struct {
	ID         string
	PreviewURL string
}

type Transport interface {
	Send(ctx context.Context, msg *Message) (*Receipt, error)
}
