package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/report-relay/internal/observability/statsd"
)

type tickFunc func(ctx context.Context, now time.Time) (int, error)

func (f tickFunc) Tick(ctx context.Context, now time.Time) (int, error) { return f(ctx, now) }

func TestNewRunner_Validation(t *testing.T) {
	_, err := NewRunner(RunnerOptions{Name: "x"})
	require.Error(t, err)

	_, err = NewRunner(RunnerOptions{Task: tickFunc(func(context.Context, time.Time) (int, error) { return 0, nil })})
	require.Error(t, err)

	r, err := NewRunner(RunnerOptions{Name: "x", Task: tickFunc(func(context.Context, time.Time) (int, error) { return 0, nil })})
	require.NoError(t, err)
	assert.Equal(t, time.Minute, r.interval)
}

func TestRunner_TicksUntilCancelled(t *testing.T) {
	var ticks atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rec := &statsd.Recorder{}
	r, err := NewRunner(RunnerOptions{
		Name:     "pipelines",
		Interval: 5 * time.Millisecond,
		Metrics:  rec,
		Task: tickFunc(func(context.Context, time.Time) (int, error) {
			if ticks.Add(1) >= 3 {
				cancel()
			}
			return 1, nil
		}),
	})
	require.NoError(t, err)

	require.NoError(t, r.Run(ctx))
	assert.GreaterOrEqual(t, ticks.Load(), int32(3))

	tickMetrics := rec.Named("scheduler.tick")
	require.NotEmpty(t, tickMetrics)
	assert.Equal(t, "pipelines", tickMetrics[0].Tags["runner"])
	assert.Equal(t, "success", tickMetrics[0].Tags["result"])
}

func TestRunner_RunImmediatelyAndErrors(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rec := &statsd.Recorder{}
	r, err := NewRunner(RunnerOptions{
		Name:           "dropfolder",
		Interval:       time.Hour,
		RunImmediately: true,
		Metrics:        rec,
		Task: tickFunc(func(context.Context, time.Time) (int, error) {
			cancel()
			return 0, errors.New("share unreachable")
		}),
	})
	require.NoError(t, err)

	require.NoError(t, r.Run(ctx))
	tickMetrics := rec.Named("scheduler.tick")
	require.Len(t, tickMetrics, 1)
	assert.Equal(t, "error", tickMetrics[0].Tags["result"])
	assert.Empty(t, rec.Named("scheduler.last_success_epoch"))
}

func TestRunner_DeadlineIsReturned(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	r, err := NewRunner(RunnerOptions{
		Name:     "idle",
		Interval: time.Hour,
		Task:     tickFunc(func(context.Context, time.Time) (int, error) { return 0, nil }),
	})
	require.NoError(t, err)
	require.ErrorIs(t, r.Run(ctx), context.DeadlineExceeded)
}
