package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/target/report-relay/internal/core"
	"github.com/target/report-relay/internal/data"
	"github.com/target/report-relay/internal/domain/model"
	"github.com/target/report-relay/internal/domain/window"
	apperrors "github.com/target/report-relay/internal/errors"
	obserrors "github.com/target/report-relay/internal/observability/errors"
	"github.com/target/report-relay/internal/observability/metrics"
	"github.com/target/report-relay/internal/observability/notify"
	"github.com/target/report-relay/internal/observability/statsd"
	"github.com/target/report-relay/internal/service/failurenotifier"
)

// recordTimeout bounds the ledger write that follows a successful store.
const recordTimeout = 30 * time.Second

// PipelineDeps are the ports a pipeline run talks to.
type PipelineDeps struct {
	Credentials core.CredentialProvider // Required
	Jobs        *ReportJobService       // Required
	Fetcher     *ReportFetcher          // Required
	Reports     core.ReportAPI          // Required for settlement listing
	Shipments   core.ShipmentAPI        // Required for the shipment flow
	Ledgers     core.LedgerStore        // Required
	Targets     core.SinkTargets        // Required
	// Archive receives local copies for descriptors with an ArchiveDir.
	Archive core.BlobSink
	// Notifier sends descriptor notifications. Optional.
	Notifier core.Notifier
}

// PipelineConfig tunes a pipeline run.
type PipelineConfig struct {
	Await    AwaitOptions
	Clock    core.Clock
	Metrics  statsd.Sink
	Failures *failurenotifier.Service
}

// PipelineServiceOptions groups dependencies for PipelineService.
type PipelineServiceOptions struct {
	Deps   PipelineDeps
	Config PipelineConfig
	Logger *slog.Logger
}

// PipelineService runs one job descriptor end to end: create the remote
// report (or list the ready items), wait, fetch, store, record and notify.
type PipelineService struct {
	deps     PipelineDeps
	await    AwaitOptions
	clock    core.Clock
	metrics  statsd.Sink
	failures *failurenotifier.Service
	logger   *slog.Logger
}

// NewPipelineService constructs a PipelineService.
func NewPipelineService(opts PipelineServiceOptions) *PipelineService {
	d := opts.Deps
	if d.Credentials == nil {
		panic("CredentialProvider is required")
	}
	if d.Jobs == nil {
		panic("ReportJobService is required")
	}
	if d.Fetcher == nil {
		panic("ReportFetcher is required")
	}
	if d.Ledgers == nil {
		panic("LedgerStore is required")
	}
	if d.Targets == nil {
		panic("SinkTargets is required")
	}

	clock := opts.Config.Clock
	if clock == nil {
		clock = &data.RealTimeProvider{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &PipelineService{
		deps:     d,
		await:    opts.Config.Await,
		clock:    clock,
		metrics:  opts.Config.Metrics,
		failures: opts.Config.Failures,
		logger:   logger.With("component", "pipeline"),
	}
}

// run carries the state of one pipeline invocation.
type run struct {
	id      string
	job     model.JobDescriptor
	today   time.Time
	window  model.Window
	session *Session
	ledger  core.DedupLedger
	share   core.RemoteShare
	logger  *slog.Logger
}

// itemFailure is an item error annotated with the stage it happened in.
type itemFailure struct {
	stage    model.Stage
	err      error
	reported bool
}

func (f *itemFailure) Error() string { return fmt.Sprintf("%s: %v", f.stage, f.err) }

func (f *itemFailure) Unwrap() error { return f.err }

func fail(stage model.Stage, err error) error {
	if err == nil {
		return nil
	}
	if apperrors.IsAuth(err) {
		stage = model.StageAuth
	}
	return &itemFailure{stage: stage, err: err}
}

// alreadyReported is true once the failure notifier has seen err.
func alreadyReported(err error) bool {
	var f *itemFailure
	return errors.As(err, &f) && f.reported
}

func stageOf(err error) model.Stage {
	var f *itemFailure
	if errors.As(err, &f) {
		return f.stage
	}
	return ""
}

// Run executes d once. The returned error is nil only when the run outcome is
// delivered, skipped or empty; RunResult is populated either way.
func (s *PipelineService) Run(ctx context.Context, d model.JobDescriptor) (model.RunResult, error) {
	if err := d.Validate(); err != nil {
		return model.RunResult{}, apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid job descriptor")
	}

	started := s.clock.Now()
	r := &run{
		id:      uuid.NewString(),
		job:     d,
		today:   started,
		session: NewSession(s.deps.Credentials),
	}
	if d.Window != nil {
		r.window = d.Window(started)
	}
	r.logger = s.logger.With("run_id", r.id, "job", d.Name)
	if !r.window.IsZero() {
		r.logger = r.logger.With("window", r.window.String())
	}

	result := model.RunResult{RunID: r.id, Job: d.Name, Window: r.window, StartedAt: started}
	r.logger.InfoContext(ctx, "pipeline run started", "kind", d.Kind)

	err := s.prepare(ctx, r)
	if err == nil {
		switch {
		case d.Kind.IsReport():
			result.Items, err = s.runReport(ctx, r)
		case d.Kind == model.JobKindSettlements:
			result.Items, err = s.runList(ctx, r, s.settlementItems)
		case d.Kind == model.JobKindShipments:
			result.Items, err = s.runList(ctx, r, s.shipmentItems)
		}
	}

	result.FinishedAt = s.clock.Now()
	result.Outcome = runOutcome(result.Items, err)
	s.finish(ctx, r, result, err)
	return result, err
}

func (s *PipelineService) prepare(ctx context.Context, r *run) error {
	share, err := s.deps.Targets.Get(r.job.Destination.Target)
	if err != nil {
		return fail(model.StagePersist, err)
	}
	if pinger, ok := share.(core.Pinger); ok {
		if err := s.stage(ctx, r, model.StagePersist, func() error { return pinger.Ping(ctx) }); err != nil {
			return fail(model.StagePersist, fmt.Errorf("share %s unreachable: %w", r.job.Destination.Target, err))
		}
	}
	r.share = share

	ledger, err := s.deps.Ledgers.Open(ctx, r.job.LedgerName())
	if err != nil {
		return fail(model.StageLedger, apperrors.LedgerError(err, "open ledger "+r.job.LedgerName()))
	}
	r.ledger = ledger
	return nil
}

// runReport drives the create, await and deliver sequence of a report kind.
func (s *PipelineService) runReport(ctx context.Context, r *run) ([]model.ItemResult, error) {
	d := r.job
	start, end := window.RequestBounds(r.window, d.Report.EndPadDays)
	req := model.NewReportRequest(d.Report.Type, start, end, d.Report.MarketplaceIDs, d.Report.Options)

	var jobID string
	err := s.stage(ctx, r, model.StageCreate, func() error {
		var err error
		jobID, err = s.deps.Jobs.Create(ctx, r.session, req)
		return err
	})
	if err != nil {
		return nil, fail(model.StageCreate, err)
	}

	filename := d.Filename(r.today, r.window, jobID)
	var completion model.Completion
	err = s.stage(ctx, r, model.StageAwait, func() error {
		var err error
		completion, err = s.deps.Jobs.AwaitCompletion(ctx, r.session, jobID, s.await)
		return err
	})
	if err != nil {
		item := model.ItemResult{ID: jobID, Filename: filename}
		if apperrors.IsJobFailed(err) {
			item.Outcome = model.Terminal(completion.Status)
			return []model.ItemResult{item}, err
		}
		err = fail(model.StageAwait, err)
		item.Outcome = faultOutcome(err)
		return []model.ItemResult{item}, err
	}

	item := s.deliver(ctx, r, deliverable{
		id:       jobID,
		filename: filename,
		produce: func(ctx context.Context) ([]byte, error) {
			doc, err := s.deps.Fetcher.Fetch(ctx, r.session, jobID, completion.DocumentRef, r.window)
			return doc.Content, err
		},
	})
	return []model.ItemResult{item.result}, item.err
}

// listFunc enumerates the items of a list flow.
type listFunc func(ctx context.Context, r *run) ([]deliverable, error)

// runList delivers every listed item, honouring the descriptor's item policy.
func (s *PipelineService) runList(ctx context.Context, r *run, list listFunc) ([]model.ItemResult, error) {
	var items []deliverable
	err := s.stage(ctx, r, model.StageList, func() error {
		var err error
		items, err = list(ctx, r)
		return err
	})
	if err != nil {
		return nil, fail(model.StageList, err)
	}
	if len(items) == 0 {
		r.logger.InfoContext(ctx, "nothing to deliver")
		return nil, nil
	}

	policy := r.job.Policy
	if !policy.Valid() {
		policy = model.ItemPolicyBestEffort
	}

	results := make([]model.ItemResult, 0, len(items))
	var failures []error
	for _, it := range items {
		if err := ctx.Err(); err != nil {
			return results, fail(model.StageFetch, err)
		}
		out := s.deliver(ctx, r, it)
		results = append(results, out.result)
		if out.err == nil {
			continue
		}
		if policy == model.ItemPolicyFailFast {
			return results, out.err
		}
		failures = append(failures, out.err)
	}

	if len(failures) > 0 {
		return results, fmt.Errorf("%d of %d items failed: %w", len(failures), len(items), errors.Join(failures...))
	}
	return results, nil
}

func (s *PipelineService) settlementItems(ctx context.Context, r *run) ([]deliverable, error) {
	if s.deps.Reports == nil {
		return nil, errors.New("settlement listing requires a ReportAPI")
	}
	filter := model.ReportFilter{
		ReportTypes:      []model.ReportType{model.ReportTypeSettlement},
		ProcessingStatus: []model.ProcessingStatus{model.StatusDone},
	}
	jobs, err := callWithToken(ctx, r.session, func(token string) ([]model.ReportJob, error) {
		return s.deps.Reports.ListReports(ctx, token, filter)
	})
	if err != nil {
		return nil, err
	}

	items := make([]deliverable, 0, len(jobs))
	for _, job := range jobs {
		if job.Status != model.StatusDone {
			continue
		}
		w := model.Window{Start: job.DataStart, End: job.DataEnd}
		items = append(items, deliverable{
			id:       job.JobID,
			filename: r.job.Filename(r.today, w, job.JobID),
			produce: func(ctx context.Context) ([]byte, error) {
				doc, err := s.deps.Fetcher.Fetch(ctx, r.session, job.JobID, job.DocumentRef, w)
				return doc.Content, err
			},
		})
	}
	r.logger.InfoContext(ctx, "settlement reports listed", "count", len(items))
	return items, nil
}

func (s *PipelineService) shipmentItems(ctx context.Context, r *run) ([]deliverable, error) {
	if s.deps.Shipments == nil {
		return nil, errors.New("shipment flow requires a ShipmentAPI")
	}
	statuses := []string{model.ShipmentStatusWorking, model.ShipmentStatusReadyToShip}
	ids, err := callWithToken(ctx, r.session, func(token string) ([]string, error) {
		return s.deps.Shipments.ListShipments(ctx, token, statuses)
	})
	if err != nil {
		return nil, err
	}

	items := make([]deliverable, 0, len(ids))
	for _, id := range ids {
		items = append(items, deliverable{
			id:       id,
			filename: r.job.Filename(r.today, model.Window{}, id),
			produce: func(ctx context.Context) ([]byte, error) {
				rows, err := callWithToken(ctx, r.session, func(token string) ([]model.ShipmentItem, error) {
					return s.deps.Shipments.ListShipmentItems(ctx, token, id)
				})
				if err != nil {
					return nil, err
				}
				return ShipmentTSV(rows)
			},
		})
	}
	r.logger.InfoContext(ctx, "inbound shipments listed", "count", len(items))
	return items, nil
}

// deliverable is one item waiting for the ledger check and delivery.
type deliverable struct {
	id       string
	filename string
	produce  func(ctx context.Context) ([]byte, error)
}

type delivery struct {
	result model.ItemResult
	err    error
}

// deliver runs ledger check, fetch, store, record and notify for one item.
// The ledger is only written after every store succeeded.
func (s *PipelineService) deliver(ctx context.Context, r *run, it deliverable) delivery {
	res := model.ItemResult{ID: it.id, Filename: it.filename}
	logger := r.logger.With("item_id", it.id, "filename", it.filename)
	failed := func(stage model.Stage, err error) delivery {
		f := &itemFailure{stage: stage, err: err, reported: true}
		if apperrors.IsAuth(err) {
			f.stage = model.StageAuth
		}
		res.Outcome = faultOutcome(f)
		logger.ErrorContext(ctx, "item failed", "stage", f.stage, "error", err)
		s.reportFailure(ctx, r, it.id, f)
		return delivery{result: res, err: f}
	}

	var seen bool
	err := s.stage(ctx, r, model.StageLedger, func() error {
		var err error
		seen, err = r.ledger.Contains(ctx, it.id)
		return err
	})
	if err != nil {
		return failed(model.StageLedger, apperrors.LedgerError(err, "check ledger"))
	}
	if seen {
		logger.InfoContext(ctx, "already delivered, skipping")
		res.Outcome = model.Skipped()
		return delivery{result: res}
	}

	var content []byte
	err = s.stage(ctx, r, model.StageFetch, func() error {
		var err error
		content, err = it.produce(ctx)
		return err
	})
	if err != nil {
		return failed(model.StageFetch, err)
	}

	target := r.job.Destination.Path(it.filename)
	err = s.stage(ctx, r, model.StagePersist, func() error {
		if err := s.archive(ctx, r, it.filename, content); err != nil {
			return err
		}
		if err := r.share.Store(ctx, target, content); err != nil {
			if apperrors.IsSink(err) {
				return err
			}
			return apperrors.SinkError(err, target)
		}
		return nil
	})
	if err != nil {
		return failed(model.StagePersist, err)
	}

	// The file is on the share; a shutdown must not leave it unrecorded.
	recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	err = s.stage(recordCtx, r, model.StageRecord, func() error { return r.ledger.Record(recordCtx, it.id) })
	cancel()
	if err != nil {
		return failed(model.StageRecord, apperrors.LedgerError(err, "record delivery"))
	}

	logger.InfoContext(ctx, "item delivered", "path", target, "bytes", len(content))
	s.notify(ctx, r, it.filename, logger)
	res.Outcome = model.Delivered()
	return delivery{result: res}
}

func (s *PipelineService) archive(ctx context.Context, r *run, filename string, content []byte) error {
	if r.job.ArchiveDir == "" || s.deps.Archive == nil {
		return nil
	}
	p := filepath.Join(r.job.ArchiveDir, filename)
	if err := s.deps.Archive.Store(ctx, p, content); err != nil {
		if apperrors.IsSink(err) {
			return err
		}
		return apperrors.SinkError(err, p)
	}
	return nil
}

// notify sends the descriptor notification. Delivery errors are logged and dropped.
func (s *PipelineService) notify(ctx context.Context, r *run, filename string, logger *slog.Logger) {
	if r.job.Notify == nil || s.deps.Notifier == nil {
		return
	}
	n := r.job.Notify.Render(filename)
	if !n.HasRecipients() {
		logger.WarnContext(ctx, "notification has no recipients, skipping")
		return
	}
	err := s.stage(ctx, r, model.StageNotify, func() error { return s.deps.Notifier.Notify(ctx, n) })
	if err != nil {
		logger.ErrorContext(ctx, "notification failed", "subject", n.Subject, "error", err)
	}
}

// stage times fn and emits the stage metric.
func (s *PipelineService) stage(ctx context.Context, r *run, stage model.Stage, fn func() error) error {
	start := time.Now()
	err := fn()
	result := metrics.ResultSuccess
	if err != nil {
		result = metrics.ResultError
		if ctx.Err() != nil {
			result = metrics.ResultNoop
		}
	}
	metrics.EmitStage(s.metrics, metrics.StageMetric{
		Job:      r.job.Name,
		Stage:    string(stage),
		Result:   result,
		Duration: time.Since(start),
		Err:      err,
	})
	return err
}

func (s *PipelineService) finish(ctx context.Context, r *run, result model.RunResult, err error) {
	outcome := metrics.ResultSuccess
	switch result.Outcome.Kind {
	case model.OutcomeSkipped:
		outcome = metrics.ResultSkipped
	case model.OutcomeEmpty:
		outcome = metrics.ResultNoop
	case model.OutcomeTerminal, model.OutcomeFault:
		outcome = metrics.ResultError
	}
	metrics.EmitRun(s.metrics, metrics.RunMetric{
		Job:      r.job.Name,
		Outcome:  outcome,
		Items:    len(result.Items),
		Failed:   result.Failed(),
		Duration: result.FinishedAt.Sub(result.StartedAt),
		Err:      err,
	})

	attrs := []any{
		"outcome", result.Outcome.Kind,
		"items", len(result.Items),
		"delivered", result.Delivered(),
		"failed", result.Failed(),
		"duration", result.FinishedAt.Sub(result.StartedAt),
	}
	switch result.Outcome.Kind {
	case model.OutcomeTerminal:
		r.logger.WarnContext(ctx, "pipeline run ended with terminal report status",
			append(attrs, "status", result.Outcome.Status)...)
		s.reportTerminal(ctx, r, result)
	case model.OutcomeFault:
		r.logger.ErrorContext(ctx, "pipeline run failed", append(attrs, "stage", stageOf(err), "error", err)...)
		if !alreadyReported(err) {
			s.reportFailure(ctx, r, "", err)
		}
	default:
		r.logger.InfoContext(ctx, "pipeline run finished", attrs...)
	}
}

func (s *PipelineService) reportFailure(ctx context.Context, r *run, itemID string, err error) {
	if !s.failures.Enabled() || err == nil {
		return
	}
	s.failures.NotifyRunFailure(ctx, notify.RunFailurePayload{
		RunID:      r.id,
		Job:        r.job.Name,
		ItemID:     itemID,
		Stage:      string(stageOf(err)),
		Window:     r.window.String(),
		Error:      err.Error(),
		ErrorClass: obserrors.Classify(err),
		Severity:   notify.SeverityCritical,
		OccurredAt: s.clock.Now(),
		Metadata:   map[string]string{"kind": string(r.job.Kind)},
	})
}

func (s *PipelineService) reportTerminal(ctx context.Context, r *run, result model.RunResult) {
	if !s.failures.Enabled() {
		return
	}
	itemID := ""
	if len(result.Items) > 0 {
		itemID = result.Items[0].ID
	}
	s.failures.NotifyRunFailure(ctx, notify.RunFailurePayload{
		RunID:      r.id,
		Job:        r.job.Name,
		ItemID:     itemID,
		Stage:      string(model.StageAwait),
		Window:     r.window.String(),
		Error:      fmt.Sprintf("report %s ended with status %s", itemID, result.Outcome.Status),
		ErrorClass: string(apperrors.ErrCodeJobFailed),
		Severity:   notify.SeverityWarning,
		OccurredAt: s.clock.Now(),
		Metadata:   map[string]string{"kind": string(r.job.Kind), "status": string(result.Outcome.Status)},
	})
}

func faultOutcome(err error) model.Outcome {
	return model.Faulted(obserrors.Classify(err), stageOf(err), err.Error())
}

// runOutcome folds item outcomes and the run error into the run outcome.
func runOutcome(items []model.ItemResult, err error) model.Outcome {
	for _, item := range items {
		if item.Outcome.Kind == model.OutcomeTerminal {
			return item.Outcome
		}
	}
	if err != nil {
		return faultOutcome(err)
	}
	if len(items) == 0 {
		return model.Outcome{Kind: model.OutcomeEmpty}
	}
	for _, item := range items {
		if item.Outcome.Kind == model.OutcomeDelivered {
			return model.Delivered()
		}
	}
	return model.Skipped()
}

// PipelineTicker runs a fixed set of descriptors on each scheduler tick.
type PipelineTicker struct {
	Pipeline *PipelineService
	Jobs     []model.JobDescriptor
}

var _ core.Ticker = (*PipelineTicker)(nil)

// Tick runs every descriptor in order and returns the number of delivered
// items. A failing job does not stop the remaining ones.
func (t *PipelineTicker) Tick(ctx context.Context, _ time.Time) (int, error) {
	delivered := 0
	var errs []error
	for _, d := range t.Jobs {
		if err := ctx.Err(); err != nil {
			return delivered, err
		}
		res, err := t.Pipeline.Run(ctx, d)
		delivered += res.Delivered()
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", d.Name, err))
		}
	}
	return delivered, errors.Join(errs...)
}
