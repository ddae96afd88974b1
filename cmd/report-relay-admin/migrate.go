package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/target/report-relay/internal/bootstrap"
	"github.com/target/report-relay/internal/migrate"
)

const defaultMigrationTimeout = 5 * time.Minute

func newMigrateCmd(c *cli) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply ledger database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			db, err := bootstrap.ConnectDB(ctx, bootstrap.DatabaseConfig{
				DBConfig: c.cfg.Postgres,
				Logger:   c.logger,
			})
			if err != nil {
				return err
			}
			defer db.Close()

			migCtx, cancel := contextWithTimeout(cmd, timeout)
			defer cancel()
			return bootstrap.RunMigrations(migCtx, db, c.logger)
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", defaultMigrationTimeout, "maximum time to run migrations")

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "List migrations and whether they are applied",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			db, err := bootstrap.ConnectDB(ctx, bootstrap.DatabaseConfig{
				DBConfig: c.cfg.Postgres,
				Logger:   c.logger,
			})
			if err != nil {
				return err
			}
			defer db.Close()

			statuses, err := migrate.List(ctx, db)
			if err != nil {
				return err
			}
			return printMigrationStatus(cmd, statuses)
		},
	})
	return cmd
}

func printMigrationStatus(cmd *cobra.Command, statuses []migrate.Status) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	if err := writeln(w, "Version\tApplied\tApplied At"); err != nil {
		return fmt.Errorf("write migration header: %w", err)
	}
	for _, s := range statuses {
		at := "-"
		if s.Applied {
			at = s.AppliedAt.UTC().Format(time.RFC3339)
		}
		if err := writef(w, "%s\t%t\t%s\n", s.Version, s.Applied, at); err != nil {
			return fmt.Errorf("write migration %s: %w", s.Version, err)
		}
	}
	return w.Flush()
}
