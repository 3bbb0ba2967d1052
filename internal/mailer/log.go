package mailer

import (
	"context"

	"tesoro/internal/logger"
)

// LogNotifier logs activation links instead of sending them. It is used when
// neither SMTP nor a queue is configured.
type LogNotifier struct {
	BaseURL string
}

// SendActivation implements Notifier.
func (n LogNotifier) SendActivation(_ context.Context, msg ActivationMessage) error {
	if err := msg.validate(); err != nil {
		return err
	}
	logger.Get().Infow("activation email not sent, no mail transport configured",
		"email", msg.Email,
		"username", msg.Username,
		"link", ActivationLink(n.BaseURL, msg.Token),
	)
	return nil
}
