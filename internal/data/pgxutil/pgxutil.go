// Package pgxutil hands native pgx connections out of a database/sql pool.
package pgxutil

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
)

// WithPgxConn borrows one pooled connection and runs fn on its pgx handle.
func WithPgxConn(ctx context.Context, db *sql.DB, fn func(*pgx.Conn) error) error {
	conn, err := db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("get conn from pool: %w", err)
	}
	defer func() { _ = conn.Close() }()

	return conn.Raw(func(dc any) error {
		std, ok := dc.(*stdlib.Conn)
		if !ok {
			return fmt.Errorf("unexpected driver connection %T; expected *stdlib.Conn", dc)
		}
		return fn(std.Conn())
	})
}

// WithPgxTx runs fn inside a transaction. fn's error rolls back; a nil
// result commits.
func WithPgxTx(ctx context.Context, db *sql.DB, opts pgx.TxOptions, fn func(pgx.Tx) error) error {
	return WithPgxConn(ctx, db, func(conn *pgx.Conn) error {
		tx, err := conn.BeginTx(ctx, opts)
		if err != nil {
			return fmt.Errorf("begin pgx tx: %w", err)
		}
		// Rollback after Commit returns ErrTxClosed.
		defer func() { _ = tx.Rollback(ctx) }()
		if err := fn(tx); err != nil {
			return err
		}
		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("commit pgx tx: %w", err)
		}
		return nil
	})
}

// SendBatch queues every statement of b in one round trip and returns the
// summed affected row count.
func SendBatch(ctx context.Context, tx pgx.Tx, b *pgx.Batch) (int64, error) {
	results := tx.SendBatch(ctx, b)
	var total int64
	for range b.Len() {
		tag, err := results.Exec()
		if err != nil {
			_ = results.Close()
			return total, err
		}
		total += tag.RowsAffected()
	}
	return total, results.Close()
}
