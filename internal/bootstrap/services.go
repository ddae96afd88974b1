package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/target/report-relay/config"
	"github.com/target/report-relay/internal/adapters/scheduler"
	"github.com/target/report-relay/internal/core"
	"github.com/target/report-relay/internal/observability/statsd"
	"github.com/target/report-relay/internal/service"
)

// shutdownWaitTimeout is the maximum time to wait for services to stop gracefully.
const shutdownWaitTimeout = 15 * time.Second

// backgroundService describes a periodic service loop.
type backgroundService struct {
	mode           config.ServiceMode
	name           string
	task           core.Ticker
	interval       time.Duration
	runImmediately bool
}

// buildBackgroundServices returns the loops for the enabled services.
func buildBackgroundServices(app *Application) ([]backgroundService, error) {
	cfg := app.Config
	enabled, err := cfg.GetEnabledServices()
	if err != nil {
		return nil, fmt.Errorf("determine enabled services: %w", err)
	}

	var services []backgroundService
	if enabled[config.ServiceModePipelines] {
		if app.Pipeline == nil {
			return nil, errors.New("pipelines service enabled without vendor credentials")
		}
		jobs, err := app.Catalog.Select(cfg.Pipeline.Jobs)
		if err != nil {
			return nil, fmt.Errorf("PIPELINE_JOBS: %w", err)
		}
		services = append(services, backgroundService{
			mode:           config.ServiceModePipelines,
			name:           "pipelines",
			task:           &service.PipelineTicker{Pipeline: app.Pipeline, Jobs: jobs},
			interval:       cfg.Pipeline.RunInterval,
			runImmediately: cfg.Pipeline.RunOnStart,
		})
	}
	if enabled[config.ServiceModeDropFolder] {
		if app.DropFolder == nil {
			return nil, errors.New("dropfolder service enabled without an AS400 share")
		}
		services = append(services, backgroundService{
			mode:           config.ServiceModeDropFolder,
			name:           "dropfolder",
			task:           app.DropFolder,
			interval:       cfg.DropFolder.CheckInterval,
			runImmediately: true,
		})
	}
	return services, nil
}

// RunServicesWithShutdown starts all enabled services and blocks until
// SIGINT/SIGTERM or until a service fails.
func RunServicesWithShutdown(ctx context.Context, app *Application) error {
	if app == nil || app.Config == nil {
		return errors.New("application is required")
	}
	services, err := buildBackgroundServices(app)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return runBackground(ctx, app.Logger, app.Observability.Metrics(), services)
}

// runBackground runs every service until ctx is cancelled. A failing
// service cancels the others.
func runBackground(ctx context.Context, logger *slog.Logger, metrics statsd.Sink, services []backgroundService) error {
	if logger == nil {
		logger = slog.Default()
	}

	runners := make([]*scheduler.Runner, 0, len(services))
	for _, svc := range services {
		runner, err := scheduler.NewRunner(scheduler.RunnerOptions{
			Name:           svc.name,
			Task:           svc.task,
			Interval:       svc.interval,
			RunImmediately: svc.runImmediately,
			Logger:         logger,
			Metrics:        metrics,
		})
		if err != nil {
			return fmt.Errorf("%s: %w", svc.name, err)
		}
		runners = append(runners, runner)
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, runner := range runners {
		svc := services[i]
		g.Go(func() error {
			logger.InfoContext(gctx, "background service started", "service", svc.name, "mode", svc.mode)
			if err := runner.Run(gctx); err != nil {
				return fmt.Errorf("%s failed: %w", svc.name, err)
			}
			logger.InfoContext(gctx, svc.name+" stopped")
			return nil
		})
	}

	done := make(chan error, 1)
	go func() { done <- g.Wait() }()

	select {
	case err := <-done:
		if err != nil {
			logger.Error("service error", "error", err)
		}
		return err
	case <-ctx.Done():
		logger.Info("shutting down services...")
	}

	select {
	case err := <-done:
		return err
	case <-time.After(shutdownWaitTimeout):
		logger.Warn("timeout waiting for services to stop")
		return nil
	}
}
