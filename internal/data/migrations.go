package data

import (
	"context"
	"database/sql"

	"github.com/target/report-relay/internal/migrate"
)

// RunMigrations creates the delivered_jobs schema by delegating to the migrate package.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	return migrate.Run(ctx, db)
}
