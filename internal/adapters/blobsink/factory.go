package blobsink

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/target/report-relay/internal/core"
)

// Sink modes.
const (
	ModeSMB   = "smb"
	ModeLocal = "local"
	ModeS3    = "s3"
)

// Config selects and configures the sink for one named target.
type Config struct {
	Mode string
	// Name is the target name; local mode stores below LocalRoot/Name and S3
	// mode below Prefix/Name.
	Name      string
	LocalRoot string
	SMB       SMBConfig
	S3        S3Config
}

// New builds the sink for one target.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (core.RemoteShare, error) {
	if logger == nil {
		logger = slog.Default()
	}
	mode := strings.ToLower(strings.TrimSpace(cfg.Mode))
	if mode == "" {
		mode = ModeSMB
	}
	log := logger.With("component", "blobsink", "target", cfg.Name, "mode", mode)

	switch mode {
	case ModeSMB:
		sink, err := NewSMBSink(cfg.SMB)
		if err != nil {
			return nil, fmt.Errorf("target %s: %w", cfg.Name, err)
		}
		log.Info("sink ready", "share", sink.Target())
		return sink, nil

	case ModeLocal:
		root := strings.TrimSpace(cfg.LocalRoot)
		if root == "" {
			return nil, fmt.Errorf("target %s: SINK_LOCAL_ROOT is required in local mode", cfg.Name)
		}
		root = filepath.Join(root, cfg.Name)
		log.Info("sink ready", "root", root)
		return NewLocalSink(root), nil

	case ModeS3:
		s3cfg := cfg.S3
		s3cfg.Prefix = path.Join(strings.Trim(s3cfg.Prefix, "/"), cfg.Name)
		sink, err := NewS3Sink(ctx, s3cfg)
		if err != nil {
			return nil, fmt.Errorf("target %s: %w", cfg.Name, err)
		}
		log.Info("sink ready", "bucket", s3cfg.Bucket, "prefix", s3cfg.Prefix)
		return sink, nil

	default:
		return nil, fmt.Errorf("unsupported sink mode: %s", mode)
	}
}

// Targets maps target names to sinks.
type Targets map[string]core.RemoteShare

// Get returns the named sink.
func (t Targets) Get(name string) (core.RemoteShare, error) {
	sink, ok := t[name]
	if !ok || sink == nil {
		return nil, fmt.Errorf("no sink configured for target %q", name)
	}
	return sink, nil
}

// Names lists configured targets in sorted order.
func (t Targets) Names() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Ping checks every target that supports it and returns the first failure.
func (t Targets) Ping(ctx context.Context) error {
	for _, name := range t.Names() {
		p, ok := t[name].(core.Pinger)
		if !ok {
			continue
		}
		if err := p.Ping(ctx); err != nil {
			return fmt.Errorf("target %s: %w", name, err)
		}
	}
	return nil
}
