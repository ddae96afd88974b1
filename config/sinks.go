package config

import (
	"strings"
)

// SinkConfig selects where delivered files go.
//
// In smb mode the NAS and AS400 (IBM) targets are SMB shares. Local mode
// writes below LocalRoot/<target>, s3 mode below S3 Prefix/<target>.
type SinkConfig struct {
	Mode      string `env:"SINK_MODE"       envDefault:"smb"`
	LocalRoot string `env:"SINK_LOCAL_ROOT"`
	// ArchiveDir is the parent of the local settlement and shipment copies.
	// Empty disables local copies.
	ArchiveDir string `env:"SINK_ARCHIVE_DIR"`

	NAS      ShareConfig `envPrefix:"NAS_"`
	NASPaths NASPaths    `envPrefix:"NAS_"`
	IBM      ShareConfig `envPrefix:"IBM_"`
	S3       S3Config    `envPrefix:"S3_"`
}

// Sanitize normalises the mode and share settings.
func (c *SinkConfig) Sanitize() {
	c.Mode = strings.ToLower(strings.TrimSpace(c.Mode))
	if c.Mode == "" {
		c.Mode = "smb"
	}
	c.LocalRoot = strings.TrimSpace(c.LocalRoot)
	c.ArchiveDir = strings.TrimSpace(c.ArchiveDir)
	c.NAS.sanitize()
	c.IBM.sanitize()
	c.S3.sanitize()
}

// ShareConfig describes one SMB share.
type ShareConfig struct {
	Server   string `env:"SERVER_NAME"`
	Port     int    `env:"PORT"        envDefault:"445"`
	Share    string `env:"SHARE_NAME"`
	Username string `env:"USERNAME"`
	Password string `env:"PASSWORD"`
	Domain   string `env:"DOMAIN"`
	// Root is a directory on the share that all paths are relative to.
	Root string `env:"ROOT"`
}

func (c *ShareConfig) sanitize() {
	c.Server = strings.TrimSpace(c.Server)
	c.Share = strings.Trim(strings.TrimSpace(c.Share), `\/`)
	c.Username = strings.TrimSpace(c.Username)
	c.Domain = strings.TrimSpace(c.Domain)
	c.Root = strings.TrimSpace(c.Root)
	if c.Port <= 0 {
		c.Port = 445
	}
}

// IsConfigured reports whether server and share are set.
func (c ShareConfig) IsConfigured() bool {
	return c.Server != "" && c.Share != ""
}

// NASPaths are the share directories of the NAS jobs.
type NASPaths struct {
	DailyLedger   string `env:"DAILY_LEDGER_PATH"   envDefault:"Amazon Downloads/Daily Inventory Ledger"`
	WeeklyLedger  string `env:"WEEKLY_LEDGER_PATH"  envDefault:"Amazon Downloads/Weekly Inventory Ledger"`
	MonthlyLedger string `env:"MONTHLY_LEDGER_PATH" envDefault:"Amazon Downloads/Monthly Inventory Ledger"`
	Settlements   string `env:"SETTLEMENTS_PATH"    envDefault:"Amazon Downloads/Settlements"`
	Shipments     string `env:"SHIPMENTS_PATH"      envDefault:"Amazon Downloads/Shipments"`
}

// S3Config configures the S3 sink mode.
type S3Config struct {
	Endpoint        string `env:"ENDPOINT"`
	Region          string `env:"REGION"            envDefault:"us-east-1"`
	Bucket          string `env:"BUCKET"`
	Prefix          string `env:"PREFIX"`
	AccessKeyID     string `env:"ACCESS_KEY_ID"`
	SecretAccessKey string `env:"SECRET_ACCESS_KEY"`
}

func (c *S3Config) sanitize() {
	c.Endpoint = strings.TrimSpace(c.Endpoint)
	c.Region = strings.TrimSpace(c.Region)
	c.Bucket = strings.TrimSpace(c.Bucket)
	c.Prefix = strings.Trim(strings.TrimSpace(c.Prefix), "/")
}
