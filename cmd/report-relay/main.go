package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/target/report-relay/config"
	"github.com/target/report-relay/internal/bootstrap"
)

func main() {
	ctx := context.Background()
	cfg, cfgErr := bootstrap.LoadConfig()
	logger, closeLog := bootstrap.InitLogger(cfg.Logging)
	defer func() { _ = closeLog() }()

	if cfgErr != nil {
		logger.ErrorContext(ctx, "fatal error", "error", cfgErr)
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}
	if err := run(ctx, logger, &cfg); err != nil {
		logger.ErrorContext(ctx, "fatal error", "error", err)
		_ = closeLog()
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}
}

func run(ctx context.Context, logger *slog.Logger, cfg *config.AppConfig) error {
	logStartupInfo(ctx, logger, cfg)

	if err := bootstrap.ValidateServiceConfig(cfg); err != nil {
		return err
	}

	app, err := bootstrap.NewApplication(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initialise application: %w", err)
	}
	defer func() {
		if cerr := app.Close(); cerr != nil {
			logger.ErrorContext(ctx, "close application failed", "error", cerr)
		}
	}()

	return bootstrap.RunServicesWithShutdown(ctx, app)
}

func logStartupInfo(ctx context.Context, logger *slog.Logger, cfg *config.AppConfig) {
	logger.InfoContext(ctx, "starting report-relay",
		"enabled_services", bootstrap.GetEnabledServices(cfg),
		"pipeline_jobs", cfg.Pipeline.Jobs,
		"run_interval", cfg.Pipeline.RunInterval,
		"sink_mode", cfg.Sinks.Mode,
		"ledger_backend", cfg.Ledger.Backend,
		"drop_folders", len(cfg.Jobs.DropFolders),
	)
}
