// Command report-relay-admin runs single pipeline passes and maintains the
// delivery ledgers.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/target/report-relay/config"
	"github.com/target/report-relay/internal/bootstrap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	var closeLog func() error
	c := &cli{
		loadConfig: bootstrap.LoadConfig,
		initLogger: func(cfg config.LoggingConfig) *slog.Logger {
			var logger *slog.Logger
			logger, closeLog = bootstrap.InitLogger(cfg)
			return logger
		},
	}

	err := newRootCmd(c).ExecuteContext(ctx)
	if closeLog != nil {
		_ = closeLog()
	}
	stop()
	if err != nil {
		os.Exit(1) //nolint:forbidigo // CLI must signal command failure to cron and shell scripts
	}
}
