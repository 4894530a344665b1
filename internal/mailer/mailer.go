// Package mailer delivers outbound email through an SMTP relay.
package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/inkpress/inkpress/internal/config"
)

const resetSubject = "Password Reset - Admin Blog"

// Mailer sends transactional email via SMTP with a bounded dispatch timeout.
type Mailer struct {
	client  *mail.Client
	from    string
	timeout time.Duration
	logger  *slog.Logger
}

// New creates a mailer from SMTP config.
func New(log *slog.Logger, cfg config.SMTPConfig) (*Mailer, error) {
	if log == nil {
		log = slog.Default()
	}
	if strings.TrimSpace(cfg.Host) == "" {
		return nil, fmt.Errorf("smtp host is required")
	}

	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
	}
	if cfg.TLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}

	from := strings.TrimSpace(cfg.From)
	if from == "" {
		from = cfg.Username
	}

	return &Mailer{
		client:  client,
		from:    from,
		timeout: cfg.MailTimeout(),
		logger:  log.With(slog.String("component", "mailer")),
	}, nil
}

// Send dispatches a single HTML message. A stalled relay is cut off by the
// configured timeout rather than blocking the caller.
func (m *Mailer) Send(ctx context.Context, to, subject, html string) error {
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("mail to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, html)

	sendCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	if err := m.client.DialAndSendWithContext(sendCtx, msg); err != nil {
		m.logger.Error("email dispatch failed", slog.String("to", to), slog.Any("error", err))
		return fmt.Errorf("send mail: %w", err)
	}
	m.logger.Info("email sent", slog.String("to", to), slog.String("subject", subject))
	return nil
}

// SendPasswordReset delivers the reset link email.
func (m *Mailer) SendPasswordReset(ctx context.Context, to, resetURL string) error {
	return m.Send(ctx, to, resetSubject, ResetEmailHTML(resetURL))
}

// ResetEmailHTML renders the password reset email body.
func ResetEmailHTML(resetURL string) string {
	return fmt.Sprintf(`
      <p>You requested to reset your password.</p>
      <p><a href="%s" target="_blank">Click here to reset</a></p>
      <p>This link will expire in 15 minutes.</p>
    `, resetURL)
}

// ResetURL builds the client-facing reset link embedding the plaintext token.
func ResetURL(baseURL, token string) string {
	return strings.TrimRight(baseURL, "/") + "/reset-password/" + token
}
