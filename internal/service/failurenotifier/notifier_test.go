package failurenotifier

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/target/report-relay/internal/observability/notify"
)

type capture struct {
	mu       sync.Mutex
	payloads []notify.RunFailurePayload
}

func (c *capture) sink() notify.Sink {
	return notify.SinkFunc(func(_ context.Context, payload notify.RunFailurePayload) error {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.payloads = append(c.payloads, payload)
		return nil
	})
}

func TestServiceNotifyRunFailure(t *testing.T) {
	ctx := context.Background()
	first, second := &capture{}, &capture{}
	svc := NewService(Options{
		Sinks: []SinkRegistration{
			{Name: "first", Sink: first.sink()},
			{Name: "second", Sink: second.sink()},
			{Name: "nil"},
		},
	})

	svc.NotifyRunFailure(ctx, notify.RunFailurePayload{RunID: "run-1", Job: "settlements"})

	for _, c := range []*capture{first, second} {
		if len(c.payloads) != 1 {
			t.Fatalf("expected 1 payload, got %d", len(c.payloads))
		}
		if c.payloads[0].Severity != notify.SeverityCritical {
			t.Fatalf("expected severity to default to critical, got %s", c.payloads[0].Severity)
		}
	}
}

func TestServiceDisabled(t *testing.T) {
	svc := NewService(Options{})
	if svc.Enabled() {
		t.Fatal("expected Enabled() to be false when no sinks registered")
	}

	var nilSvc *Service
	nilSvc.NotifyRunFailure(context.Background(), notify.RunFailurePayload{})
}

func TestServiceLogsErrors(t *testing.T) {
	svc := NewService(Options{
		Sinks: []SinkRegistration{
			{
				Name: "fail",
				Sink: notify.SinkFunc(func(context.Context, notify.RunFailurePayload) error {
					return errors.New("boom")
				}),
			},
		},
	})

	svc.NotifyRunFailure(context.Background(), notify.RunFailurePayload{Job: "daily-nas"})
}

func TestServiceWarningsRequireOptIn(t *testing.T) {
	ctx := context.Background()
	warning := notify.RunFailurePayload{Job: "daily-nas", Severity: notify.SeverityWarning}

	quiet := &capture{}
	NewService(Options{Sinks: []SinkRegistration{{Name: "c", Sink: quiet.sink()}}}).NotifyRunFailure(ctx, warning)
	if len(quiet.payloads) != 0 {
		t.Fatal("expected warning to be skipped without opt-in")
	}

	loud := &capture{}
	NewService(Options{
		Sinks:          []SinkRegistration{{Name: "c", Sink: loud.sink()}},
		NotifyTerminal: true,
	}).NotifyRunFailure(ctx, warning)
	if len(loud.payloads) != 1 || loud.payloads[0].Severity != notify.SeverityWarning {
		t.Fatalf("expected warning to be delivered, got %+v", loud.payloads)
	}
}
