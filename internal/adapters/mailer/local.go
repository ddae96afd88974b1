package mailer

import (
	"context"
	"log/slog"
	"strings"

	"github.com/target/report-relay/internal/core"
	"github.com/target/report-relay/internal/domain/model"
)

var _ core.Notifier = (*LocalNotifier)(nil)

// LocalNotifier logs notifications instead of sending them.
type LocalNotifier struct {
	logger *slog.Logger
}

// NewLocalNotifier creates a logging notifier.
func NewLocalNotifier(logger *slog.Logger) *LocalNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LocalNotifier{logger: logger.With("component", "mailer.local")}
}

// Notify logs n.
func (l *LocalNotifier) Notify(ctx context.Context, n model.Notification) error {
	l.logger.InfoContext(ctx, "notification",
		"to", strings.Join(n.Recipients, ","),
		"subject", n.Subject,
		"body", n.Body,
	)
	return nil
}
