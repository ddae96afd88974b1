package data

import (
	"context"
	"database/sql"

	"github.com/jackc/pgx/v5"
	"github.com/target/report-relay/internal/core"
	"github.com/target/report-relay/internal/data/pgxutil"
	apperrors "github.com/target/report-relay/internal/errors"
)

var (
	_ core.DedupLedger = (*PostgresLedger)(nil)
	_ core.LedgerStore = (*PostgresLedgerStore)(nil)
)

// PostgresLedger stores delivered job ids in the delivered_jobs table, one
// partition per ledger name.
type PostgresLedger struct {
	db    *sql.DB
	name  string
	clock core.Clock
}

// Contains reports whether jobID has a row in this partition.
func (l *PostgresLedger) Contains(ctx context.Context, jobID string) (bool, error) {
	id, err := validateJobID(jobID)
	if err != nil {
		return false, apperrors.LedgerError(err, "contains")
	}

	var exists bool
	err = pgxutil.WithPgxConn(ctx, l.db, func(conn *pgx.Conn) error {
		return conn.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM delivered_jobs WHERE ledger = $1 AND job_id = $2)`,
			l.name, id,
		).Scan(&exists)
	})
	if err != nil {
		return false, apperrors.LedgerError(apperrors.MapDBError(err), "contains "+id)
	}
	return exists, nil
}

// Record inserts jobID. A unique violation means it is already recorded.
func (l *PostgresLedger) Record(ctx context.Context, jobID string) error {
	id, err := validateJobID(jobID)
	if err != nil {
		return apperrors.LedgerError(err, "record")
	}

	err = pgxutil.WithPgxConn(ctx, l.db, func(conn *pgx.Conn) error {
		_, execErr := conn.Exec(ctx,
			`INSERT INTO delivered_jobs (ledger, job_id, delivered_at) VALUES ($1, $2, $3)`,
			l.name, id, l.clock.Now().UTC(),
		)
		return execErr
	})
	if err == nil {
		return nil
	}
	mapped := apperrors.MapDBError(err)
	if apperrors.IsConflict(mapped) {
		return nil
	}
	return apperrors.LedgerError(mapped, "record "+id)
}

// RecordAll inserts many ids in one transaction, skipping those already present.
func (l *PostgresLedger) RecordAll(ctx context.Context, jobIDs []string) (int, error) {
	ids := make([]string, 0, len(jobIDs))
	for _, raw := range jobIDs {
		id, err := validateJobID(raw)
		if err != nil {
			return 0, apperrors.LedgerError(err, "record all")
		}
		ids = append(ids, id)
	}

	now := l.clock.Now().UTC()
	batch := &pgx.Batch{}
	for _, id := range ids {
		batch.Queue(`
			INSERT INTO delivered_jobs (ledger, job_id, delivered_at) VALUES ($1, $2, $3)
			ON CONFLICT (ledger, job_id) DO NOTHING`,
			l.name, id, now,
		)
	}

	var inserted int64
	err := pgxutil.WithPgxTx(ctx, l.db, pgx.TxOptions{}, func(tx pgx.Tx) error {
		n, batchErr := pgxutil.SendBatch(ctx, tx, batch)
		inserted = n
		return batchErr
	})
	if err != nil {
		return 0, apperrors.LedgerError(apperrors.MapDBError(err), "record all")
	}
	return int(inserted), nil
}

// List returns the ids of this partition oldest first.
func (l *PostgresLedger) List(ctx context.Context) ([]string, error) {
	var ids []string
	err := pgxutil.WithPgxConn(ctx, l.db, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx,
			`SELECT job_id FROM delivered_jobs WHERE ledger = $1 ORDER BY delivered_at, job_id`,
			l.name,
		)
		if err != nil {
			return err
		}
		ids, err = pgx.CollectRows(rows, pgx.RowTo[string])
		return err
	})
	if err != nil {
		return nil, apperrors.LedgerError(apperrors.MapDBError(err), "list "+l.name)
	}
	return ids, nil
}

// PostgresLedgerStore opens partitions of the delivered_jobs table.
type PostgresLedgerStore struct {
	db    *sql.DB
	clock core.Clock
}

// NewPostgresLedgerStore creates a store. A nil clock uses the system clock.
func NewPostgresLedgerStore(db *sql.DB, clock core.Clock) *PostgresLedgerStore {
	if clock == nil {
		clock = &RealTimeProvider{}
	}
	return &PostgresLedgerStore{db: db, clock: clock}
}

// Open returns the partition for name.
func (s *PostgresLedgerStore) Open(_ context.Context, name string) (core.DedupLedger, error) {
	name, err := validateLedgerName(name)
	if err != nil {
		return nil, apperrors.LedgerError(err, "open ledger")
	}
	return &PostgresLedger{db: s.db, name: name, clock: s.clock}, nil
}
