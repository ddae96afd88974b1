package bootstrap

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	slogmulti "github.com/samber/slog-multi"

	"github.com/target/report-relay/config"
)

// InitLogger initializes the structured logger. Records go to stdout as JSON
// and, when cfg.File is set, are also appended to that file. The returned
// func closes the file.
func InitLogger(cfg config.LoggingConfig) (*slog.Logger, func() error) {
	logger, closer := newLogger(os.Stdout, cfg)
	slog.SetDefault(logger)
	return logger, closer
}

func newLogger(stdout io.Writer, cfg config.LoggingConfig) (*slog.Logger, func() error) {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	stdoutHandler := slog.NewJSONHandler(stdout, opts)
	noop := func() error { return nil }

	if cfg.File == "" {
		return slog.New(stdoutHandler), noop
	}

	file, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
	if err != nil {
		logger := slog.New(stdoutHandler)
		logger.Error("failed to open log file, using stdout only", "error", err, "file", cfg.File)
		return logger, noop
	}

	logger := slog.New(slogmulti.Fanout(stdoutHandler, slog.NewJSONHandler(file, opts)))
	return logger, file.Close
}

// LoadConfig loads configuration from environment variables and the
// optional job settings file.
func LoadConfig() (config.AppConfig, error) {
	// Load .env file if it exists (development)
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return config.AppConfig{}, fmt.Errorf("load .env file: %w", err)
		}
	}

	var cfg config.AppConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	cfg.Sanitize()

	jobs, err := config.LoadJobSettings(cfg.ConfigPath)
	if err != nil {
		return cfg, err
	}
	cfg.Jobs = jobs
	return cfg, nil
}

// ValidateServiceConfig validates that at least one service is enabled and
// that the enabled services have what they need.
func ValidateServiceConfig(cfg *config.AppConfig) error {
	if cfg == nil {
		return errors.New("service config is required")
	}
	services, err := cfg.GetEnabledServices()
	if err != nil {
		return fmt.Errorf("invalid service configuration: %w", err)
	}

	if len(services) == 0 {
		return errors.New("no services enabled")
	}

	if services[config.ServiceModePipelines] {
		if missing := cfg.Vendor.MissingRequired(); len(missing) > 0 {
			return fmt.Errorf("pipelines service requires %v", missing)
		}
		if len(cfg.Pipeline.Jobs) == 0 {
			return errors.New("pipelines service requires PIPELINE_JOBS")
		}
	}
	if services[config.ServiceModeDropFolder] && len(cfg.Jobs.DropFolders) == 0 {
		return errors.New("dropfolder service requires drop_folders in CONFIG_PATH")
	}

	return nil
}

// GetEnabledServices returns a list of enabled service names.
func GetEnabledServices(cfg *config.AppConfig) []string {
	if cfg == nil {
		return []string{}
	}
	services, err := cfg.GetEnabledServices()
	if err != nil {
		// Return empty list on error - validation will catch this
		return []string{}
	}

	enabledServices := make([]string, 0, len(services))
	for _, mode := range config.ValidServiceModes() {
		if services[mode] {
			enabledServices = append(enabledServices, string(mode))
		}
	}

	return enabledServices
}
