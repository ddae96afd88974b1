// Package failurenotifier fans run failures out to the configured on-call sinks.
package failurenotifier

import (
	"context"
	"log/slog"
	"sync"

	"github.com/target/report-relay/internal/observability/notify"
)

// SinkRegistration pairs a sink implementation with a human-readable name for logging.
type SinkRegistration struct {
	Name string
	Sink notify.Sink
}

// Options configures the failure notifier service.
type Options struct {
	Logger *slog.Logger
	Sinks  []SinkRegistration
	// NotifyTerminal also forwards runs whose remote job was cancelled or
	// failed on the vendor side. They are sent with warning severity.
	NotifyTerminal bool
}

// Service dispatches failure events to all registered sinks.
type Service struct {
	logger         *slog.Logger
	sinks          []SinkRegistration
	notifyTerminal bool
}

// NewService constructs a failure notifier.
func NewService(opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var sinks []SinkRegistration
	for _, entry := range opts.Sinks {
		if entry.Sink == nil {
			continue
		}
		name := entry.Name
		if name == "" {
			name = "sink"
		}
		sinks = append(sinks, SinkRegistration{Name: name, Sink: entry.Sink})
	}

	return &Service{
		logger:         logger.With("component", "failure_notifier"),
		sinks:          sinks,
		notifyTerminal: opts.NotifyTerminal,
	}
}

// NotifyRunFailure fans the payload out to all sinks and waits for them.
// Delivery errors are logged, never returned.
func (s *Service) NotifyRunFailure(ctx context.Context, payload notify.RunFailurePayload) {
	if s == nil || len(s.sinks) == 0 {
		return
	}

	if payload.Severity == notify.SeverityWarning && !s.notifyTerminal {
		s.logger.DebugContext(ctx, "skipping warning notification",
			"job", payload.Job,
			"run_id", payload.RunID,
		)
		return
	}
	if payload.Severity == "" {
		payload.Severity = notify.SeverityCritical
	}

	var wg sync.WaitGroup
	for _, entry := range s.sinks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := entry.Sink.SendRunFailure(ctx, payload); err != nil {
				s.logger.ErrorContext(ctx, "failure notifier delivery error",
					"sink", entry.Name,
					"job", payload.Job,
					"run_id", payload.RunID,
					"error", err,
				)
			}
		}()
	}
	wg.Wait()
}

// Enabled reports whether the notifier has any active sinks.
func (s *Service) Enabled() bool {
	return s != nil && len(s.sinks) > 0
}
