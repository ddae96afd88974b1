package config

import (
	"log/slog"
	"strings"
)

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - vendor.go: credential exchange and vendor API client
//   - sinks.go: NAS and AS400 shares, local and S3 sinks
//   - database.go: ledger backend, database and Redis
//   - email.go: notification mail
//   - services.go: service modes, pipeline and drop-folder loops
//   - jobs.go: YAML job settings loaded from CONFIG_PATH
type AppConfig struct {
	// ConfigPath points at the optional YAML job settings file.
	ConfigPath string `env:"CONFIG_PATH"`

	Vendor VendorConfig
	Sinks  SinkConfig
	Email  EmailConfig

	// Ledger and its optional backing stores
	Ledger   LedgerConfig
	Postgres DBConfig    `envPrefix:"DB_"`
	Redis    RedisConfig `envPrefix:"REDIS_"`

	// Service mode configuration
	Services   string `env:"SERVICES" envDefault:"pipelines,dropfolder"`
	Pipeline   PipelineConfig
	DropFolder DropFolderConfig

	Logging       LoggingConfig
	Observability ObservabilityConfig

	// Jobs holds the settings read from ConfigPath. It has no env tags.
	Jobs JobSettings
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.ConfigPath = strings.TrimSpace(c.ConfigPath)
	c.Vendor.Sanitize()
	c.Sinks.Sanitize()
	c.Email.Sanitize()
	c.Ledger.Sanitize()
	c.Pipeline.Sanitize()
	c.DropFolder.Sanitize()
	c.Logging.Sanitize()
	c.Observability.Sanitize()
}

// GetEnabledServices returns the enabled services based on the Services field.
func (c *AppConfig) GetEnabledServices() (map[ServiceMode]bool, error) {
	return ParseServices(c.Services)
}

// IsPipelinesEnabled returns true if the scheduled report pipelines are enabled.
func (c *AppConfig) IsPipelinesEnabled() bool {
	services, err := c.GetEnabledServices()
	if err != nil {
		return false
	}
	return services[ServiceModePipelines]
}

// IsDropFolderEnabled returns true if the drop-folder uploader is enabled.
func (c *AppConfig) IsDropFolderEnabled() bool {
	services, err := c.GetEnabledServices()
	if err != nil {
		return false
	}
	return services[ServiceModeDropFolder]
}

// Recipients merges the env recipient list with the job settings file.
func (c *AppConfig) Recipients() []string {
	seen := make(map[string]bool)
	var out []string
	for _, list := range [][]string{c.Email.Recipients, c.Jobs.Recipients} {
		for _, r := range list {
			r = strings.TrimSpace(r)
			if r == "" || seen[r] {
				continue
			}
			seen[r] = true
			out = append(out, r)
		}
	}
	return out
}

// LoggingConfig controls the process logger.
type LoggingConfig struct {
	Level string `env:"LOG_LEVEL" envDefault:"info"`
	// File additionally receives every record as JSON when set.
	File string `env:"LOG_FILE"`
}

// Sanitize normalises the level name.
func (c *LoggingConfig) Sanitize() {
	c.Level = strings.ToLower(strings.TrimSpace(c.Level))
	c.File = strings.TrimSpace(c.File)
}

// SlogLevel maps Level to a slog level, defaulting to info.
func (c LoggingConfig) SlogLevel() slog.Level {
	switch c.Level {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
