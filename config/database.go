package config

import "strings"

// Ledger backend names.
const (
	LedgerBackendFile     = "file"
	LedgerBackendRedis    = "redis"
	LedgerBackendPostgres = "postgres"
)

// LedgerConfig selects the dedup ledger backend.
type LedgerConfig struct {
	Backend string `env:"LEDGER_BACKEND" envDefault:"file"`
	// Dir holds the <name>.txt files of the file backend.
	Dir         string `env:"LEDGER_DIR"          envDefault:"ledgers"`
	RedisPrefix string `env:"LEDGER_REDIS_PREFIX" envDefault:"report-relay:ledger"`
}

// Sanitize normalises the backend name.
func (c *LedgerConfig) Sanitize() {
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	if c.Backend == "" {
		c.Backend = LedgerBackendFile
	}
	c.Dir = strings.TrimSpace(c.Dir)
	if c.Dir == "" {
		c.Dir = "ledgers"
	}
}

// NeedsPostgres reports whether the ledger lives in PostgreSQL.
func (c LedgerConfig) NeedsPostgres() bool { return c.Backend == LedgerBackendPostgres }

// NeedsRedis reports whether the ledger lives in Redis.
func (c LedgerConfig) NeedsRedis() bool { return c.Backend == LedgerBackendRedis }

// DBConfig contains PostgreSQL database configuration.
type DBConfig struct {
	Host     string `env:"HOST"                    envDefault:"localhost"`
	Port     int    `env:"PORT"                    envDefault:"5432"`
	User     string `env:"USER"                    envDefault:"relay"`
	Password string `env:"PASSWORD"                envDefault:"relay"`
	Name     string `env:"NAME"                    envDefault:"report_relay"`
	SSLMode  string `env:"SSL_MODE"                envDefault:"disable"` // Use 'disable' for local dev, 'require' for production
	// RunMigrationsOnStart controls whether the application automatically applies migrations during startup.
	RunMigrationsOnStart bool `env:"RUN_MIGRATIONS_ON_START" envDefault:"true"`
}

// RedisConfig contains Redis configuration.
type RedisConfig struct {
	URI                string   `env:"URI"                  envDefault:"localhost:6379"`
	Password           string   `env:"PASSWORD"             envDefault:""`
	SentinelNodes      []string `env:"SENTINEL_NODES"       envDefault:"localhost:26379"`
	SentinelMasterName string   `env:"SENTINEL_MASTER_NAME" envDefault:"mymaster"`
	SentinelPassword   string   `env:"SENTINEL_PASSWORD"    envDefault:""`
	UseSentinel        bool     `env:"USE_SENTINEL"         envDefault:"false"`
	ClusterNodes       []string `env:"CLUSTER_NODES"        envDefault:""`
	UseCluster         bool     `env:"USE_CLUSTER"          envDefault:"false"`
}
