package main

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/target/report-relay/internal/bootstrap"
	"github.com/target/report-relay/internal/domain/model"
)

func newRunCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "run <job> [job...]",
		Short: "Run pipeline jobs once",
		Long: `Run one or more pipeline jobs once and exit. Intended for cron.

The exit status is non-zero when any job ends in a fault or a terminal
remote status.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := bootstrap.NewApplication(ctx, &c.cfg, c.logger)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()

			jobs, err := app.Catalog.Select(args)
			if err != nil {
				return err
			}
			if app.Pipeline == nil {
				return fmt.Errorf("vendor credentials missing: %v", c.cfg.Vendor.MissingRequired())
			}

			var errs []error
			for _, d := range jobs {
				res, runErr := app.Pipeline.Run(ctx, d)
				if err := printRunResult(cmd.OutOrStdout(), res); err != nil {
					return err
				}
				if runErr != nil {
					errs = append(errs, fmt.Errorf("%s: %w", d.Name, runErr))
				}
			}
			return errors.Join(errs...)
		},
	}
}

func printRunResult(out io.Writer, res model.RunResult) error {
	if err := writef(out, "Job: %s  Run: %s  Outcome: %s\n", res.Job, res.RunID, res.Outcome.Kind); err != nil {
		return fmt.Errorf("write run header: %w", err)
	}
	if f := res.Outcome.Fault; f != nil {
		if err := writef(out, "Fault: %s at %s: %s\n", f.Kind, f.Stage, f.Detail); err != nil {
			return fmt.Errorf("write fault: %w", err)
		}
	}
	if len(res.Items) == 0 {
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	if err := writeln(w, "Item\tFile\tOutcome"); err != nil {
		return fmt.Errorf("write item header: %w", err)
	}
	for _, item := range res.Items {
		outcome := string(item.Outcome.Kind)
		if item.Outcome.Status != "" {
			outcome += " (" + string(item.Outcome.Status) + ")"
		}
		if err := writef(w, "%s\t%s\t%s\n", item.ID, item.Filename, outcome); err != nil {
			return fmt.Errorf("write item %s: %w", item.ID, err)
		}
	}
	return w.Flush()
}

func newJobsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "jobs",
		Short: "List the configured pipeline jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			catalog, err := bootstrap.BuildCatalog(&c.cfg)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			if err := writeln(w, "Name\tKind\tTarget\tDirectory\tLedger\tPolicy"); err != nil {
				return fmt.Errorf("write jobs header: %w", err)
			}
			for _, name := range catalog.Names() {
				d := catalog[name]
				policy := string(d.Policy)
				if policy == "" {
					policy = "-"
				}
				if err := writef(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					d.Name, d.Kind, d.Destination.Target, orDash(d.Destination.Dir), d.LedgerName(), policy,
				); err != nil {
					return fmt.Errorf("write job %s: %w", name, err)
				}
			}
			return w.Flush()
		},
	}
}

func newDropFolderCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "dropfolder",
		Short: "Run one drop-folder upload pass",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			app, err := bootstrap.NewApplication(ctx, &c.cfg, c.logger)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()

			if app.DropFolder == nil {
				return errors.New("no AS400 share configured")
			}
			uploaded, err := app.DropFolder.RunOnce(ctx)
			if werr := writef(cmd.OutOrStdout(), "Uploaded %d file(s)\n", uploaded); werr != nil {
				return werr
			}
			return err
		},
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
