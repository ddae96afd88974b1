package data

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/target/report-relay/internal/core"
)

// LedgerBackend selects the DedupLedger implementation.
type LedgerBackend string

const (
	LedgerBackendFile     LedgerBackend = "file"
	LedgerBackendRedis    LedgerBackend = "redis"
	LedgerBackendPostgres LedgerBackend = "postgres"
)

// LedgerStoreOptions carries the dependencies of each backend. Only the fields
// of the selected backend are read.
type LedgerStoreOptions struct {
	Backend     LedgerBackend
	Dir         string
	Redis       redis.UniversalClient
	RedisPrefix string
	DB          *sql.DB
	Clock       core.Clock
}

// NewLedgerStore builds the configured ledger store.
func NewLedgerStore(opts LedgerStoreOptions) (core.LedgerStore, error) {
	switch LedgerBackend(strings.ToLower(strings.TrimSpace(string(opts.Backend)))) {
	case LedgerBackendFile, "":
		if strings.TrimSpace(opts.Dir) == "" {
			return nil, fmt.Errorf("file ledger requires a directory")
		}
		return NewFileLedgerStore(opts.Dir), nil
	case LedgerBackendRedis:
		if opts.Redis == nil {
			return nil, fmt.Errorf("redis ledger requires a redis client")
		}
		return NewRedisLedgerStore(opts.Redis, opts.RedisPrefix), nil
	case LedgerBackendPostgres:
		if opts.DB == nil {
			return nil, fmt.Errorf("postgres ledger requires a database")
		}
		return NewPostgresLedgerStore(opts.DB, opts.Clock), nil
	default:
		return nil, fmt.Errorf("unknown ledger backend %q (valid: file, redis, postgres)", opts.Backend)
	}
}
