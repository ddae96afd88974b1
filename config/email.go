package config

import "strings"

// Email sender modes.
const (
	EmailModeLocal = "local"
	EmailModeSMTP  = "smtp"
)

// EmailConfig configures upload notifications.
type EmailConfig struct {
	// Mode is local (log only) or smtp.
	Mode           string   `env:"EMAIL_SENDER_MODE"    envDefault:"local"`
	Server         string   `env:"SMTP_SERVER"`
	Port           int      `env:"SMTP_PORT"            envDefault:"587"`
	SenderEmail    string   `env:"SMTP_SENDER_EMAIL"`
	SenderPassword string   `env:"SMTP_SENDER_PASSWORD"`
	StartTLS       bool     `env:"SMTP_STARTTLS"        envDefault:"true"`
	Recipients     []string `env:"EMAIL_RECIPIENTS"`
}

// Sanitize falls back to local mode when SMTP is not usable.
func (c *EmailConfig) Sanitize() {
	c.Mode = strings.ToLower(strings.TrimSpace(c.Mode))
	c.Server = strings.TrimSpace(c.Server)
	c.SenderEmail = strings.TrimSpace(c.SenderEmail)
	if c.Port <= 0 {
		c.Port = 587
	}
	c.Recipients = trimAll(c.Recipients)
	if c.Mode != EmailModeSMTP {
		c.Mode = EmailModeLocal
		return
	}
	if c.Server == "" || c.SenderEmail == "" {
		c.Mode = EmailModeLocal
	}
}
