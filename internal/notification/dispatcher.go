package notification

import (
	"context"
	"fmt"
	"html"
	"net/url"
	"strings"

	"storefront-identity/internal/logger"
	apperrors "storefront-identity/pkg/errors"

	"go.uber.org/zap"
)

const resetSubject = "Password reset code"

// Dispatcher formats account notifications and hands them to a transport. It
// never decides whether the operation that triggered it succeeded.
type Dispatcher struct {
	transport    Transport
	from         string
	resetURLBase string
}

func NewDispatcher(transport Transport, from, resetURLBase string) *Dispatcher {
	return &Dispatcher{
		transport:    transport,
		from:         from,
		resetURLBase: strings.TrimRight(resetURLBase, "/"),
	}
}

// SendResetToken emails token to the account address. Transport errors are
// returned wrapped in ErrDispatchFailed.
func (d *Dispatcher) SendResetToken(ctx context.Context, to, token string) (*Receipt, error) {
	link := d.ResetLink(token)

	msg := &Message{
		From:    d.from,
		To:      to,
		Subject: resetSubject,
		Text: fmt.Sprintf(
			"You requested a password reset. Use the following code to reset your password: %s\n\n"+
				"Or open this link: %s\n\n"+
				"The code expires in one hour. If you didn't request this, ignore this email.",
			token, link,
		),
		HTML: fmt.Sprintf(
			`<p>You requested a password reset. Use the following code to reset your password:</p>`+
				`<pre style="background:#f4f4f4;padding:10px;border-radius:4px">%s</pre>`+
				`<p><a href="%s">Reset your password</a></p>`+
				`<p>The code expires in one hour. If you didn't request this, ignore this email.</p>`,
			html.EscapeString(token), html.EscapeString(link),
		),
	}

	receipt, err := d.transport.Send(ctx, msg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrDispatchFailed, err)
	}

	logger.Info("Reset email dispatched",
		logger.Event("reset_email_dispatched"),
		zap.String("receipt_id", receipt.ID),
	)
	if receipt.PreviewURL != "" {
		logger.Info("Reset email preview available", zap.String("preview_url", receipt.PreviewURL))
	}

	return receipt, nil
}

func (d *Dispatcher) ResetLink(token string) string {
	return d.resetURLBase + "/reset-password?token=" + url.QueryEscape(token)
}
