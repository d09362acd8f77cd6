package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"threadline/internal/config"

	"github.com/rs/zerolog"
)

// smtpNotifier implements Notifier over plain SMTP with AUTH PLAIN.
type smtpNotifier struct {
	cfg    config.SMTPConfig
	logger zerolog.Logger
}

// NewSMTPNotifier creates an SMTP-backed notifier.
func NewSMTPNotifier(cfg config.SMTPConfig, logger zerolog.Logger) Notifier {
	return &smtpNotifier{
		cfg:    cfg,
		logger: logger.With().Str("component", "smtp-notifier").Logger(),
	}
}

// Welcome greets a freshly registered account.
func (n *smtpNotifier) Welcome(ctx context.Context, email, name string) error {
	subject := "Welcome to Threadline"
	body := fmt.Sprintf("Hi %s,\r\n\r\nYour account is ready. Happy shopping!\r\n", name)
	return n.send(email, subject, body)
}

// OrderPlaced confirms a placed order to the customer.
func (n *smtpNotifier) OrderPlaced(ctx context.Context, email, reference string, total int64) error {
	subject := fmt.Sprintf("Order %s received", reference)
	body := fmt.Sprintf(
		"Thanks for your order!\r\n\r\nOrder number: %s\r\nTotal: %d\r\n\r\nWe will let you know when it ships.\r\n",
		reference, total)
	return n.send(email, subject, body)
}

func (n *smtpNotifier) send(to, subject, body string) error {
	addr := fmt.Sprintf("%s:%d", n.cfg.Host, n.cfg.Port)

	var msg strings.Builder
	msg.WriteString("From: " + n.cfg.From + "\r\n")
	msg.WriteString("To: " + to + "\r\n")
	msg.WriteString("Subject: " + subject + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	var auth smtp.Auth
	if n.cfg.Username != "" {
		auth = smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
	}

	if err := smtp.SendMail(addr, auth, n.cfg.From, []string{to}, []byte(msg.String())); err != nil {
		n.logger.Error().
			Err(err).
			Str("to", to).
			Str("subject", subject).
			Msg("failed to send notification")
		return fmt.Errorf("failed to send mail to %s: %w", to, err)
	}

	n.logger.Debug().
		Str("to", to).
		Str("subject", subject).
		Msg("notification sent")

	return nil
}
