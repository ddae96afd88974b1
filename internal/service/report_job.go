package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/target/report-relay/internal/core"
	"github.com/target/report-relay/internal/domain/model"
	apperrors "github.com/target/report-relay/internal/errors"
)

// DefaultPollInterval is the wait between status polls.
const DefaultPollInterval = 60 * time.Second

// defaultMaxPollErrors bounds consecutive transient poll failures.
const defaultMaxPollErrors = 3

// AwaitOptions bounds AwaitCompletion. A zero Timeout waits indefinitely.
type AwaitOptions struct {
	Interval time.Duration
	Timeout  time.Duration
	// MaxPollErrors is the number of consecutive transient poll failures
	// tolerated before giving up.
	MaxPollErrors int
}

func (o AwaitOptions) withDefaults() AwaitOptions {
	if o.Interval <= 0 {
		o.Interval = DefaultPollInterval
	}
	if o.MaxPollErrors <= 0 {
		o.MaxPollErrors = defaultMaxPollErrors
	}
	return o
}

// ReportJobServiceOptions groups dependencies for ReportJobService.
type ReportJobServiceOptions struct {
	API    core.ReportAPI // Required
	Logger *slog.Logger
}

// ReportJobService drives the remote report job state machine: create,
// poll and await a terminal status.
type ReportJobService struct {
	api    core.ReportAPI
	logger *slog.Logger
}

// NewReportJobService constructs a ReportJobService.
func NewReportJobService(opts ReportJobServiceOptions) *ReportJobService {
	if opts.API == nil {
		panic("ReportAPI is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportJobService{api: opts.API, logger: logger.With("component", "report_jobs")}
}

// Create submits a report request and returns the new job id. Creation is
// never retried.
func (s *ReportJobService) Create(ctx context.Context, sess *Session, req model.ReportRequest) (string, error) {
	if req.ReportType == "" {
		return "", apperrors.ValidationField("report_type", "report type is required")
	}
	jobID, err := callWithToken(ctx, sess, func(token string) (string, error) {
		return s.api.CreateReport(ctx, token, req)
	})
	if err != nil {
		return "", err
	}
	s.logger.InfoContext(ctx, "report requested",
		"job_id", jobID,
		"report_type", req.ReportType,
		"data_start", req.DataStart.Format(time.DateOnly),
		"data_end", req.DataEnd.Format(time.DateOnly),
	)
	return jobID, nil
}

// Poll fetches the current server-side view of the job.
func (s *ReportJobService) Poll(ctx context.Context, sess *Session, jobID string) (model.ReportJob, error) {
	return callWithToken(ctx, sess, func(token string) (model.ReportJob, error) {
		return s.api.GetReport(ctx, token, jobID)
	})
}

// AwaitCompletion polls until the job reaches a terminal status. It polls
// immediately, then once per Interval.
//
// DONE returns the completion. CANCELLED and FATAL return the completion and
// a job_failed error. Once a terminal status is seen no further calls are made.
func (s *ReportJobService) AwaitCompletion(
	ctx context.Context,
	sess *Session,
	jobID string,
	opts AwaitOptions,
) (model.Completion, error) {
	opts = opts.withDefaults()

	waitCtx := ctx
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	completion := model.Completion{JobID: jobID}
	consecutiveErrors := 0
	var last model.ProcessingStatus

	for {
		job, err := s.Poll(waitCtx, sess, jobID)
		completion.Polls++

		switch {
		case err == nil:
			consecutiveErrors = 0
			completion.Status = job.Status
			if job.Status != last {
				s.logger.InfoContext(ctx, "report status", "job_id", jobID, "status", job.Status, "polls", completion.Polls)
				last = job.Status
			}
			if job.Status == model.StatusDone {
				completion.DocumentRef = job.DocumentRef
				return completion, nil
			}
			if job.Status.IsFailure() {
				return completion, apperrors.JobFailedError(jobID, string(job.Status))
			}
			if !job.Status.Known() {
				s.logger.WarnContext(ctx, "unknown report status, continuing to poll", "job_id", jobID, "status", job.Status)
			}

		case waitCtx.Err() != nil:
			return completion, s.waitError(ctx, waitCtx, jobID)

		case apperrors.IsRetryable(err) && consecutiveErrors+1 < opts.MaxPollErrors:
			consecutiveErrors++
			s.logger.WarnContext(ctx, "transient poll failure",
				"job_id", jobID,
				"attempt", consecutiveErrors,
				"error", err,
			)

		default:
			return completion, fmt.Errorf("poll report %s: %w", jobID, err)
		}

		if waitErr := sleep(waitCtx, opts.Interval); waitErr != nil {
			return completion, s.waitError(ctx, waitCtx, jobID)
		}
	}
}

// waitError distinguishes the caller's cancellation from the wait budget expiring.
func (s *ReportJobService) waitError(parent, waitCtx context.Context, jobID string) error {
	if parentErr := parent.Err(); parentErr != nil {
		if errors.Is(parentErr, context.DeadlineExceeded) {
			return apperrors.Wrap(parentErr, apperrors.ErrCodeTimeout, "await report "+jobID)
		}
		return apperrors.Wrap(parentErr, apperrors.ErrCodeCanceled, "await report "+jobID)
	}
	return apperrors.JobTimeoutError(jobID, waitCtx.Err())
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
