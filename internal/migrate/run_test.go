package migrate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationFilesSorted(t *testing.T) {
	files, err := migrationFiles()
	require.NoError(t, err)
	require.NotEmpty(t, files)
	assert.Equal(t, "0001_delivered_jobs.sql", files[0])
	assert.IsIncreasing(t, files)
}

func TestMigrationCreatesLedgerTable(t *testing.T) {
	raw, err := migrationsFS.ReadFile("migrations/0001_delivered_jobs.sql")
	require.NoError(t, err)
	assert.Contains(t, string(raw), "PRIMARY KEY (ledger, job_id)")
	assert.Equal(t, "0001_delivered_jobs", versionOf("0001_delivered_jobs.sql"))
}
