package notification

import (
	"context"
	"fmt"
	"time"

	"storefront-identity/internal/config"

	"github.com/google/uuid"
	mail "gopkg.in/mail.v2"
)

const smtpTimeout = 10 * time.Second

type mailSender interface {
	DialAndSend(m ...*mail.Message) error
}

// SMTPTransport delivers through a configured relay.
type SMTPTransport struct {
	sender mailSender
}

func NewSMTPTransport(cfg config.SMTPConfig) *SMTPTransport {
	d := mail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	d.SSL = cfg.Secure
	d.Timeout = smtpTimeout
	return &SMTPTransport{sender: d}
}

func (t *SMTPTransport) Send(ctx context.Context, msg *Message) (*Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	id := uuid.NewString()

	m := mail.NewMessage()
	m.SetHeader("From", msg.From)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetHeader("X-Entity-Ref-ID", id)
	m.SetBody("text/plain", msg.Text)
	if msg.HTML != "" {
		m.AddAlternative("text/html", msg.HTML)
	}

	if err := t.sender.DialAndSend(m); err != nil {
		return nil, fmt.Errorf("smtp relay: %w", err)
	}

	return &Receipt{ID: id}, nil
}
