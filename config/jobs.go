package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/target/report-relay/internal/domain/job"
	"github.com/target/report-relay/internal/domain/model"
)

// JobSettings is the optional YAML file named by CONFIG_PATH. It carries the
// settings that do not fit in flat environment variables.
type JobSettings struct {
	Recipients  []string               `yaml:"recipients"`
	DropFolders []model.DropFolderJob  `yaml:"drop_folders"`
	Overrides   map[string]JobOverride `yaml:"jobs"`
}

// JobOverride adjusts one built-in job descriptor.
type JobOverride struct {
	Dir        *string          `yaml:"dir"`
	ArchiveDir *string          `yaml:"archive_dir"`
	Ledger     string           `yaml:"ledger"`
	Policy     model.ItemPolicy `yaml:"policy"`
	Recipients []string         `yaml:"recipients"`
}

// LoadJobSettings reads and validates the settings file. An empty path
// yields empty settings.
func LoadJobSettings(path string) (JobSettings, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return JobSettings{}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return JobSettings{}, fmt.Errorf("open job settings: %w", err)
	}
	defer f.Close()
	return DecodeJobSettings(f)
}

// DecodeJobSettings parses settings from r, rejecting unknown keys.
func DecodeJobSettings(r io.Reader) (JobSettings, error) {
	var s JobSettings
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return JobSettings{}, fmt.Errorf("decode job settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return JobSettings{}, err
	}
	return s, nil
}

// Validate checks drop-folder entries and override policies.
func (s JobSettings) Validate() error {
	var errs []error
	seen := make(map[string]bool, len(s.DropFolders))
	for i, df := range s.DropFolders {
		switch {
		case strings.TrimSpace(df.Name) == "":
			errs = append(errs, fmt.Errorf("drop_folders[%d]: name is required", i))
		case strings.TrimSpace(df.FileName) == "":
			errs = append(errs, fmt.Errorf("drop_folders[%d] %s: file_name is required", i, df.Name))
		case strings.TrimSpace(df.Folder) == "":
			errs = append(errs, fmt.Errorf("drop_folders[%d] %s: folder is required", i, df.Name))
		case seen[df.Name]:
			errs = append(errs, fmt.Errorf("drop_folders[%d]: duplicate name %q", i, df.Name))
		}
		seen[df.Name] = true
	}
	for name, o := range s.Overrides {
		if o.Policy != "" && !o.Policy.Valid() {
			errs = append(errs, fmt.Errorf("jobs.%s: invalid policy %q", name, o.Policy))
		}
	}
	return errors.Join(errs...)
}

// Apply rewrites the catalog entries named in Overrides.
func (s JobSettings) Apply(catalog job.Catalog) error {
	for name, o := range s.Overrides {
		d, err := catalog.Lookup(name)
		if err != nil {
			return fmt.Errorf("jobs.%s: %w", name, err)
		}
		if o.Dir != nil {
			d.Destination.Dir = *o.Dir
		}
		if o.ArchiveDir != nil {
			d.ArchiveDir = *o.ArchiveDir
		}
		if o.Ledger != "" {
			d.Ledger = o.Ledger
		}
		if o.Policy != "" {
			d.Policy = o.Policy
		}
		if len(o.Recipients) > 0 && d.Notify != nil {
			tmpl := *d.Notify
			tmpl.Recipients = slices.Clone(o.Recipients)
			d.Notify = &tmpl
		}
		catalog[d.Name] = d
	}
	return nil
}
