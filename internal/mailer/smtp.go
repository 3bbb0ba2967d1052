package mailer

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"
)

// SMTPConfig configures SMTPSender.
type SMTPConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	From     string
	// BaseURL prefixes activation links.
	BaseURL string
	// TokenTTL is quoted in the email body.
	TokenTTL time.Duration
}

// SMTPSender delivers activation emails synchronously.
type SMTPSender struct {
	cfg  SMTPConfig
	auth smtp.Auth
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPSender creates an SMTPSender. Authentication is skipped when no user is configured.
func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	var auth smtp.Auth
	if cfg.User != "" {
		auth = smtp.PlainAuth("", cfg.User, cfg.Password, cfg.Host)
	}
	return &SMTPSender{cfg: cfg, auth: auth, send: smtp.SendMail}
}

// SendActivation renders and sends the activation email.
func (s *SMTPSender) SendActivation(ctx context.Context, msg ActivationMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := msg.validate(); err != nil {
		return err
	}

	body, err := renderActivation(msg.Username, ActivationLink(s.cfg.BaseURL, msg.Token), humanDuration(s.cfg.TokenTTL))
	if err != nil {
		return err
	}

	raw := buildMessage(s.cfg.From, msg.Email, activationSubject, body)
	addr := net.JoinHostPort(s.cfg.Host, s.cfg.Port)
	if err := s.send(addr, s.auth, s.cfg.From, []string{msg.Email}, raw); err != nil {
		return fmt.Errorf("send activation email to %s: %w", msg.Email, err)
	}
	return nil
}

func buildMessage(from, to, subject, htmlBody string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: Tesoro <%s>\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)
	return []byte(b.String())
}

func humanDuration(d time.Duration) string {
	if d <= 0 {
		return "24 hours"
	}
	if d%time.Hour == 0 {
		h := int(d / time.Hour)
		if h == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", h)
	}
	return d.String()
}
