package mailer

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/target/report-relay/internal/core"
)

// Sender modes.
const (
	ModeLocal = "local"
	ModeSMTP  = "smtp"
)

// Config selects the notifier implementation.
type Config struct {
	Mode string
	SMTP SMTPConfig
}

// New builds the notifier for cfg.Mode.
func New(cfg Config, logger *slog.Logger) (core.Notifier, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.Mode))
	if mode == "" {
		mode = ModeLocal
	}

	switch mode {
	case ModeLocal:
		return NewLocalNotifier(logger), nil
	case ModeSMTP:
		if strings.TrimSpace(cfg.SMTP.Host) == "" {
			return nil, errors.New("SMTP_SERVER is required for EMAIL_SENDER_MODE=smtp")
		}
		if cfg.SMTP.Port <= 0 {
			return nil, errors.New("SMTP_PORT must be greater than 0 for EMAIL_SENDER_MODE=smtp")
		}
		if strings.TrimSpace(cfg.SMTP.From) == "" {
			return nil, errors.New("SMTP_SENDER_EMAIL is required for EMAIL_SENDER_MODE=smtp")
		}
		if _, err := envelopeAddress(cfg.SMTP.From); err != nil {
			return nil, err
		}
		return NewSMTPNotifier(cfg.SMTP), nil
	default:
		return nil, fmt.Errorf("unsupported EMAIL_SENDER_MODE=%q", mode)
	}
}
