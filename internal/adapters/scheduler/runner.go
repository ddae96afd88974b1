// Package scheduler runs periodic work on a fixed interval.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/target/report-relay/internal/core"
	obserrors "github.com/target/report-relay/internal/observability/errors"
	"github.com/target/report-relay/internal/observability/metrics"
	"github.com/target/report-relay/internal/observability/statsd"
)

// Runner calls a Ticker at a fixed interval until its context is cancelled.
type Runner struct {
	name           string
	task           core.Ticker
	interval       time.Duration
	runImmediately bool
	logger         *slog.Logger
	metrics        statsd.Sink
}

// RunnerOptions holds the dependencies for creating a Runner.
type RunnerOptions struct {
	Name     string
	Task     core.Ticker
	Interval time.Duration
	// RunImmediately ticks once on start instead of waiting a full interval.
	RunImmediately bool
	Logger         *slog.Logger
	Metrics        statsd.Sink
}

// NewRunner creates a new runner with the given options.
func NewRunner(opts RunnerOptions) (*Runner, error) {
	if err := validateRunnerOptions(&opts); err != nil {
		return nil, err
	}
	return &Runner{
		name:           opts.Name,
		task:           opts.Task,
		interval:       opts.Interval,
		runImmediately: opts.RunImmediately,
		logger:         opts.Logger.With("component", "scheduler", "runner", opts.Name),
		metrics:        opts.Metrics,
	}, nil
}

// validateRunnerOptions validates and sets defaults for RunnerOptions.
func validateRunnerOptions(opts *RunnerOptions) error {
	if opts.Task == nil {
		return errors.New("task is required")
	}
	if opts.Name == "" {
		return errors.New("runner name is required")
	}
	if opts.Interval <= 0 {
		opts.Interval = time.Minute
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return nil
}

// Run starts the loop and runs until the context is cancelled. Tick errors are
// logged and counted; the loop keeps going.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.InfoContext(ctx, "starting runner", "interval", r.interval)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	if r.runImmediately {
		r.tick(ctx, time.Now())
	}

	for {
		select {
		case <-ctx.Done():
			r.logger.InfoContext(ctx, "runner stopping", "reason", ctx.Err())
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()

		case now := <-ticker.C:
			r.tick(ctx, now)
		}
	}
}

func (r *Runner) tick(ctx context.Context, now time.Time) {
	start := time.Now()
	processed, err := r.task.Tick(ctx, now)
	elapsed := time.Since(start)

	r.emitTickMetrics(processed, elapsed, err)

	switch {
	case err != nil && ctx.Err() != nil:
		r.logger.DebugContext(ctx, "tick interrupted", "error", err)
	case err != nil:
		r.logger.ErrorContext(ctx, "tick failed", "processed", processed, "error", err)
	case processed > 0:
		r.logger.InfoContext(ctx, "tick processed items", "processed", processed, "duration", elapsed)
	}
}

func (r *Runner) emitTickMetrics(processed int, elapsed time.Duration, err error) {
	if r.metrics == nil {
		return
	}

	result := metrics.ResultSuccess
	if err != nil {
		result = metrics.ResultError
	} else if processed == 0 {
		result = metrics.ResultNoop
	}

	tags := map[string]string{
		"runner": r.name,
		"result": result,
	}

	if err != nil {
		if class := obserrors.Classify(err); class != "" {
			tags["error_class"] = class
		}
	}

	r.metrics.Count("scheduler.tick", 1, tags)

	if processed > 0 {
		r.metrics.Count("scheduler.items_processed", int64(processed), metrics.CloneTags(tags))
	}

	if elapsed > 0 {
		r.metrics.Timing("scheduler.tick_duration", elapsed, metrics.CloneTags(tags))
	}

	if err == nil {
		r.metrics.Gauge("scheduler.last_success_epoch", float64(time.Now().Unix()), map[string]string{"runner": r.name})
	}
}
