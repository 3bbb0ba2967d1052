// Package mailer delivers account-activation notifications. Delivery runs
// synchronously over SMTP, asynchronously through an AMQP queue drained by
// cmd/mailer, or is only logged when no transport is configured.
package mailer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// ActivationMessage carries what a new user needs to activate their account.
type ActivationMessage struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Token    string `json:"token"`
}

// Notifier sends activation messages.
type Notifier interface {
	SendActivation(ctx context.Context, msg ActivationMessage) error
}

// ActivationLink builds the link a user follows to activate their account.
func ActivationLink(baseURL, token string) string {
	return strings.TrimRight(baseURL, "/") + "/api/v1/auth/activate/" + url.PathEscape(token)
}

func (m ActivationMessage) validate() error {
	if m.Email == "" || m.Token == "" {
		return fmt.Errorf("activation message requires email and token")
	}
	return nil
}

func (m ActivationMessage) marshal() ([]byte, error) {
	return json.Marshal(m)
}

func unmarshalActivation(body []byte) (ActivationMessage, error) {
	var m ActivationMessage
	if err := json.Unmarshal(body, &m); err != nil {
		return ActivationMessage{}, fmt.Errorf("unmarshal activation message: %w", err)
	}
	return m, m.validate()
}
