package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/target/report-relay/internal/domain/model"
)

// ServiceMode represents the available service modes.
type ServiceMode string

const (
	// ServiceModePipelines runs the scheduled report pipelines.
	ServiceModePipelines ServiceMode = "pipelines"
	// ServiceModeDropFolder runs the AS400 drop-folder uploader.
	ServiceModeDropFolder ServiceMode = "dropfolder"
)

// ValidServiceModes returns all valid service mode names.
func ValidServiceModes() []ServiceMode {
	return []ServiceMode{ServiceModePipelines, ServiceModeDropFolder}
}

// ParseServices parses a comma-delimited string of service names and returns the enabled services.
// It validates that all service names are valid and returns an error if any are invalid.
func ParseServices(servicesStr string) (map[ServiceMode]bool, error) {
	services := make(map[ServiceMode]bool)

	if servicesStr == "" {
		return services, errors.New("at least one service must be specified")
	}

	for _, part := range strings.Split(servicesStr, ",") {
		serviceName := strings.TrimSpace(part)
		if serviceName == "" {
			continue
		}

		mode := ServiceMode(serviceName)
		switch mode {
		case ServiceModePipelines, ServiceModeDropFolder:
			services[mode] = true
		default:
			return nil, fmt.Errorf("invalid service name: %q (valid options: pipelines, dropfolder)", serviceName)
		}
	}

	if len(services) == 0 {
		return nil, errors.New("at least one valid service must be specified")
	}

	return services, nil
}

// PipelineConfig contains the report pipeline settings.
type PipelineConfig struct {
	// PollInterval is the wait between report status polls.
	PollInterval time.Duration `env:"PIPELINE_POLL_INTERVAL" envDefault:"60s"`
	// AwaitTimeout bounds the wait for a report; zero waits indefinitely.
	AwaitTimeout  time.Duration `env:"PIPELINE_AWAIT_TIMEOUT"   envDefault:"0"`
	MaxPollErrors int           `env:"PIPELINE_MAX_POLL_ERRORS" envDefault:"3"`

	FetchAttempts int           `env:"PIPELINE_FETCH_ATTEMPTS" envDefault:"3"`
	FetchBackoff  time.Duration `env:"PIPELINE_FETCH_BACKOFF"  envDefault:"2s"`

	// ItemPolicy applies to the settlement and shipment list flows.
	ItemPolicy model.ItemPolicy `env:"PIPELINE_ITEM_POLICY" envDefault:"best-effort"`

	// Jobs names the descriptors the daemon runs on every RunInterval.
	Jobs        []string      `env:"PIPELINE_JOBS"         envDefault:"daily-nas,daily-as400,settlements,shipments"`
	RunInterval time.Duration `env:"PIPELINE_RUN_INTERVAL" envDefault:"24h"`
	RunOnStart  bool          `env:"PIPELINE_RUN_ON_START" envDefault:"false"`
}

// Sanitize applies guardrails to pipeline configuration values.
func (c *PipelineConfig) Sanitize() {
	if c.PollInterval <= 0 {
		c.PollInterval = 60 * time.Second
	}
	if c.AwaitTimeout < 0 {
		c.AwaitTimeout = 0
	}
	if c.MaxPollErrors < 1 {
		c.MaxPollErrors = 1
	}
	if c.FetchAttempts < 1 {
		c.FetchAttempts = 1
	}
	if c.FetchBackoff <= 0 {
		c.FetchBackoff = 2 * time.Second
	}
	if !c.ItemPolicy.Valid() {
		c.ItemPolicy = model.ItemPolicyBestEffort
	}
	c.Jobs = trimAll(c.Jobs)
	if c.RunInterval < time.Minute {
		c.RunInterval = time.Minute
	}
}

// DropFolderConfig contains the drop-folder loop settings. The watched
// folders themselves come from the job settings file.
type DropFolderConfig struct {
	CheckInterval time.Duration `env:"DROPFOLDER_CHECK_INTERVAL" envDefault:"5m"`
}

// Sanitize applies guardrails to drop-folder configuration values.
func (c *DropFolderConfig) Sanitize() {
	if c.CheckInterval < time.Second {
		c.CheckInterval = time.Second
	}
}
