package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/target/report-relay/config"
)

// cli carries state shared by every subcommand.
type cli struct {
	loadConfig func() (config.AppConfig, error)
	initLogger func(config.LoggingConfig) *slog.Logger

	cfg    config.AppConfig
	logger *slog.Logger
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:           "report-relay-admin",
		Short:         "Operate the report relay from the command line",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			c.cfg = cfg
			if c.initLogger != nil {
				c.logger = c.initLogger(cfg.Logging)
			}
			if c.logger == nil {
				c.logger = slog.Default()
			}
			return nil
		},
	}

	root.AddCommand(
		newRunCmd(c),
		newJobsCmd(c),
		newLedgerCmd(c),
		newMigrateCmd(c),
		newDropFolderCmd(c),
	)
	return root
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}

func writeln(w io.Writer, args ...any) error {
	_, err := fmt.Fprintln(w, args...)
	return err
}

func contextWithTimeout(cmd *cobra.Command, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(cmd.Context())
	}
	return context.WithTimeout(cmd.Context(), d)
}
