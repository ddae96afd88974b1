package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/target/report-relay/internal/bootstrap"
	"github.com/target/report-relay/internal/core"
)

// bulkRecorder is implemented by ledgers that can record many ids at once.
type bulkRecorder interface {
	RecordAll(ctx context.Context, jobIDs []string) (int, error)
}

func newLedgerCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Inspect and maintain delivery ledgers",
	}

	open := func(cmd *cobra.Command, name string) (core.DedupLedger, func(), error) {
		app, err := bootstrap.OpenLedgerStore(cmd.Context(), &c.cfg, c.logger)
		if err != nil {
			return nil, nil, err
		}
		ledger, err := app.Ledgers.Open(cmd.Context(), name)
		if err != nil {
			_ = app.Close()
			return nil, nil, err
		}
		return ledger, func() { _ = app.Close() }, nil
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list <ledger>",
			Short: "Print every recorded id",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				ledger, done, err := open(cmd, args[0])
				if err != nil {
					return err
				}
				defer done()
				ids, err := ledger.List(cmd.Context())
				if err != nil {
					return err
				}
				for _, id := range ids {
					if err := writeln(cmd.OutOrStdout(), id); err != nil {
						return err
					}
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "contains <ledger> <id>",
			Short: "Report whether an id is recorded",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				ledger, done, err := open(cmd, args[0])
				if err != nil {
					return err
				}
				defer done()
				ok, err := ledger.Contains(cmd.Context(), args[1])
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("%s is not recorded in %s", args[1], args[0])
				}
				return writef(cmd.OutOrStdout(), "%s is recorded in %s\n", args[1], args[0])
			},
		},
		&cobra.Command{
			Use:   "record <ledger> <id> [id...]",
			Short: "Mark ids as delivered without running the pipeline",
			Args:  cobra.MinimumNArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				ledger, done, err := open(cmd, args[0])
				if err != nil {
					return err
				}
				defer done()
				n, err := recordIDs(cmd.Context(), ledger, args[1:])
				if err != nil {
					return err
				}
				return writef(cmd.OutOrStdout(), "Recorded %d id(s) in %s\n", n, args[0])
			},
		},
		&cobra.Command{
			Use:   "import <ledger> <file|->",
			Short: "Record ids from a newline-separated file or stdin",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				ids, err := readIDs(cmd.InOrStdin(), args[1])
				if err != nil {
					return err
				}
				ledger, done, err := open(cmd, args[0])
				if err != nil {
					return err
				}
				defer done()
				n, err := recordIDs(cmd.Context(), ledger, ids)
				if err != nil {
					return err
				}
				return writef(cmd.OutOrStdout(), "Imported %d of %d id(s) into %s\n", n, len(ids), args[0])
			},
		},
	)
	return cmd
}

// recordIDs records ids and returns how many were new.
func recordIDs(ctx context.Context, ledger core.DedupLedger, ids []string) (int, error) {
	if bulk, ok := ledger.(bulkRecorder); ok {
		return bulk.RecordAll(ctx, ids)
	}
	n := 0
	for _, id := range ids {
		present, err := ledger.Contains(ctx, id)
		if err != nil {
			return n, err
		}
		if present {
			continue
		}
		if err := ledger.Record(ctx, id); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func readIDs(stdin io.Reader, source string) ([]string, error) {
	r := stdin
	if source != "-" {
		f, err := os.Open(source)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", source, err)
		}
		defer f.Close()
		r = f
	}

	var ids []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if id := strings.TrimSpace(sc.Text()); id != "" {
			ids = append(ids, id)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read ids: %w", err)
	}
	return ids, nil
}
