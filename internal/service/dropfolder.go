package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/target/report-relay/internal/core"
	"github.com/target/report-relay/internal/data"
	"github.com/target/report-relay/internal/domain/model"
	apperrors "github.com/target/report-relay/internal/errors"
	obserrors "github.com/target/report-relay/internal/observability/errors"
	"github.com/target/report-relay/internal/observability/metrics"
	"github.com/target/report-relay/internal/observability/notify"
	"github.com/target/report-relay/internal/observability/statsd"
	"github.com/target/report-relay/internal/service/failurenotifier"
)

// DropFolderDeps are the ports the uploader talks to.
type DropFolderDeps struct {
	Share    core.RemoteShare // Required
	Notifier core.Notifier
}

// DropFolderConfig lists the watched folders and who hears about uploads.
type DropFolderConfig struct {
	Jobs       []model.DropFolderJob
	Recipients []string
	Clock      core.Clock
	Metrics    statsd.Sink
	Failures   *failurenotifier.Service
}

// DropFolderServiceOptions groups dependencies for DropFolderService.
type DropFolderServiceOptions struct {
	Deps   DropFolderDeps
	Config DropFolderConfig
	Logger *slog.Logger
}

// DropFolderService feeds queued local files to the AS400 share one at a
// time. A new file is only uploaded after the host consumed the previous one.
type DropFolderService struct {
	share      core.RemoteShare
	notifier   core.Notifier
	jobs       []model.DropFolderJob
	recipients []string
	clock      core.Clock
	metrics    statsd.Sink
	failures   *failurenotifier.Service
	logger     *slog.Logger
}

var _ core.Ticker = (*DropFolderService)(nil)

// NewDropFolderService constructs a DropFolderService.
func NewDropFolderService(opts DropFolderServiceOptions) *DropFolderService {
	if opts.Deps.Share == nil {
		panic("RemoteShare is required")
	}
	clock := opts.Config.Clock
	if clock == nil {
		clock = &data.RealTimeProvider{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &DropFolderService{
		share:      opts.Deps.Share,
		notifier:   opts.Deps.Notifier,
		jobs:       opts.Config.Jobs,
		recipients: opts.Config.Recipients,
		clock:      clock,
		metrics:    opts.Config.Metrics,
		failures:   opts.Config.Failures,
		logger:     logger.With("component", "dropfolder"),
	}
}

// Tick runs one pass over all jobs.
func (s *DropFolderService) Tick(ctx context.Context, _ time.Time) (int, error) {
	return s.RunOnce(ctx)
}

// RunOnce checks every job once and returns the number of uploaded files.
// A failing job is logged and does not stop the others.
func (s *DropFolderService) RunOnce(ctx context.Context) (int, error) {
	uploaded := 0
	var errs []error
	for _, job := range s.jobs {
		if err := ctx.Err(); err != nil {
			return uploaded, err
		}
		ok, err := s.processJob(ctx, job)
		if err != nil {
			s.logger.ErrorContext(ctx, "drop folder job failed", "job", job.Name, "error", err)
			metrics.EmitUpload(s.metrics, job.Name, metrics.ResultError, -1)
			s.reportFailure(ctx, job, err)
			errs = append(errs, fmt.Errorf("%s: %w", job.Name, err))
			continue
		}
		if ok {
			uploaded++
		}
	}
	return uploaded, errors.Join(errs...)
}

func (s *DropFolderService) processJob(ctx context.Context, job model.DropFolderJob) (bool, error) {
	logger := s.logger.With("job", job.Name, "folder", job.Folder, "remote_file", job.FileName)

	pending, err := s.share.Exists(ctx, job.FileName)
	if err != nil {
		return false, fmt.Errorf("check remote file: %w", err)
	}
	if pending {
		logger.DebugContext(ctx, "remote file not yet consumed")
		metrics.EmitUpload(s.metrics, job.Name, metrics.ResultNoop, -1)
		return false, nil
	}

	queued, err := queuedFiles(job.Folder)
	if err != nil {
		return false, err
	}
	if len(queued) == 0 {
		logger.InfoContext(ctx, "no files in queue folder")
		metrics.EmitUpload(s.metrics, job.Name, metrics.ResultSkipped, 0)
		return false, nil
	}

	name := queued[0]
	local := filepath.Join(job.Folder, name)
	content, err := os.ReadFile(local)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", local, err)
	}
	if err := s.share.Store(ctx, job.FileName, content); err != nil {
		if !apperrors.IsSink(err) {
			err = apperrors.SinkError(err, job.FileName)
		}
		return false, err
	}

	// A failed archive leaves the file queued, so it is sent again once the
	// host has consumed the remote copy.
	archived, err := s.archive(job.Folder, name)
	if err != nil {
		return true, err
	}
	remaining := len(queued) - 1
	logger.InfoContext(ctx, "file uploaded",
		"file", name,
		"archived_as", archived,
		"remaining", remaining,
	)
	metrics.EmitUpload(s.metrics, job.Name, metrics.ResultSuccess, remaining)

	s.notify(ctx, job, name, remaining, logger)
	return true, nil
}

// queuedFiles lists the regular files of folder in lexical order.
func queuedFiles(folder string) ([]string, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, fmt.Errorf("list queue folder: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// archive moves folder/name into folder/archive and returns the archived path.
// An existing archived file with the same name gets a timestamp suffix.
func (s *DropFolderService) archive(folder, name string) (string, error) {
	dir := filepath.Join(folder, model.ArchiveFolderName)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("create archive folder: %w", err)
	}
	dest := filepath.Join(dir, name)
	if _, err := os.Stat(dest); err == nil {
		ext := filepath.Ext(name)
		stamp := s.clock.Now().UTC().Format("20060102T150405")
		dest = filepath.Join(dir, strings.TrimSuffix(name, ext)+"_"+stamp+ext)
	}
	if err := os.Rename(filepath.Join(folder, name), dest); err != nil {
		return "", fmt.Errorf("archive %s: %w", name, err)
	}
	return dest, nil
}

// UploadNotification renders the message sent after a drop-folder upload.
func UploadNotification(job model.DropFolderJob, file string, remaining int, recipients []string) model.Notification {
	return model.Notification{
		Subject: fmt.Sprintf("%s File: %s Uploaded to AS400", job.Name, file),
		Body: fmt.Sprintf(
			"filename: %s\nhas been uploaded as: %s\nand is ready for processing.\n\nRemaining files in queue folder: %d",
			file, job.FileName, remaining,
		),
		Recipients: append([]string(nil), recipients...),
	}
}

func (s *DropFolderService) notify(ctx context.Context, job model.DropFolderJob, file string, remaining int, logger *slog.Logger) {
	if s.notifier == nil {
		return
	}
	n := UploadNotification(job, file, remaining, s.recipients)
	if !n.HasRecipients() {
		return
	}
	if err := s.notifier.Notify(ctx, n); err != nil {
		logger.ErrorContext(ctx, "upload notification failed", "error", err)
	}
}

func (s *DropFolderService) reportFailure(ctx context.Context, job model.DropFolderJob, err error) {
	if !s.failures.Enabled() {
		return
	}
	s.failures.NotifyRunFailure(ctx, notify.RunFailurePayload{
		Job:        "dropfolder:" + job.Name,
		ItemID:     job.FileName,
		Stage:      string(model.StagePersist),
		Error:      err.Error(),
		ErrorClass: obserrors.Classify(err),
		Severity:   notify.SeverityCritical,
		OccurredAt: s.clock.Now(),
		Metadata:   map[string]string{"folder": job.Folder},
	})
}
