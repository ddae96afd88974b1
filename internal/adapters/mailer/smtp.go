// Package mailer delivers completion notifications by email.
package mailer

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/target/report-relay/internal/core"
	"github.com/target/report-relay/internal/domain/model"
)

var _ core.Notifier = (*SMTPNotifier)(nil)

// SMTPConfig configures the SMTP notifier.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	// UseTLS requires STARTTLS before authenticating.
	UseTLS      bool
	DialTimeout time.Duration
}

// SMTPNotifier sends plain-text mail to every recipient in one transaction.
type SMTPNotifier struct {
	cfg SMTPConfig
	now func() time.Time
}

// NewSMTPNotifier builds an SMTP notifier.
func NewSMTPNotifier(cfg SMTPConfig) *SMTPNotifier {
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 30 * time.Second
	}
	return &SMTPNotifier{cfg: cfg, now: time.Now}
}

// Notify sends n. A notification without recipients is a no-op.
func (s *SMTPNotifier) Notify(ctx context.Context, n model.Notification) error {
	recipients := cleanRecipients(n.Recipients)
	if len(recipients) == 0 {
		return nil
	}

	fromAddress, err := envelopeAddress(s.cfg.From)
	if err != nil {
		return err
	}

	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	dialer := &net.Dialer{Timeout: s.cfg.DialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("connect to SMTP server %s: %w", addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("smtp handshake with %s: %w", addr, err)
	}
	defer func() { _ = client.Close() }()

	if err := s.authenticate(client); err != nil {
		return err
	}

	if err := client.Mail(fromAddress); err != nil {
		return fmt.Errorf("smtp MAIL command failed: %w", err)
	}
	for _, to := range recipients {
		if err := client.Rcpt(to); err != nil {
			return fmt.Errorf("smtp RCPT command failed for %s: %w", to, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp DATA command failed: %w", err)
	}
	message := buildMessage(s.cfg.From, recipients, n.Subject, n.Body, s.now())
	if _, err := w.Write([]byte(message)); err != nil {
		return errors.Join(fmt.Errorf("write message: %w", err), w.Close())
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finish message: %w", err)
	}

	return client.Quit()
}

func (s *SMTPNotifier) authenticate(client *smtp.Client) error {
	if s.cfg.UseTLS {
		if ok, _ := client.Extension("STARTTLS"); !ok {
			return errors.New("smtp server does not support STARTTLS")
		}
		if err := client.StartTLS(&tls.Config{
			ServerName: s.cfg.Host,
			MinVersion: tls.VersionTLS12,
		}); err != nil {
			return fmt.Errorf("start TLS: %w", err)
		}
	}

	if strings.TrimSpace(s.cfg.Username) == "" {
		return nil
	}
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("smtp authentication failed: %w", err)
	}
	return nil
}

func envelopeAddress(from string) (string, error) {
	parsed, err := mail.ParseAddress(strings.TrimSpace(from))
	if err != nil {
		return "", fmt.Errorf("invalid SMTP_SENDER_EMAIL: %w", err)
	}
	return parsed.Address, nil
}

func cleanRecipients(in []string) []string {
	out := make([]string, 0, len(in))
	for _, r := range in {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}

func stripLineBreaks(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "\r", " "), "\n", " ")
}

func buildMessage(from string, to []string, subject, body string, now time.Time) string {
	headers := []string{
		"From: " + stripLineBreaks(from),
		"To: " + stripLineBreaks(strings.Join(to, ", ")),
		"Subject: " + stripLineBreaks(subject),
		"Date: " + now.Format(time.RFC1123Z),
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=UTF-8",
		"",
	}
	body = strings.ReplaceAll(strings.ReplaceAll(body, "\r\n", "\n"), "\n", "\r\n")
	return strings.Join(headers, "\r\n") + "\r\n" + body
}
