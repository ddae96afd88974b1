// Package model defines the core data types shared by the report relay pipelines.
package model

import (
	"maps"
	"slices"
	"strings"
	"time"
)

// ReportType identifies a vendor report kind.
type ReportType string

const (
	// ReportTypeLedgerSummary is the FBA inventory ledger summary view.
	ReportTypeLedgerSummary ReportType = "GET_LEDGER_SUMMARY_VIEW_DATA"
	// ReportTypeSettlement is the flat-file V2 settlement report.
	ReportTypeSettlement ReportType = "GET_V2_SETTLEMENT_REPORT_DATA_FLAT_FILE_V2"
)

// ProcessingStatus is the remote processing state of a report job.
type ProcessingStatus string

const (
	// StatusInQueue indicates the job is waiting to be processed.
	StatusInQueue ProcessingStatus = "IN_QUEUE"
	// StatusInProgress indicates the job is being processed.
	StatusInProgress ProcessingStatus = "IN_PROGRESS"
	// StatusDone indicates the job finished and a document is available.
	StatusDone ProcessingStatus = "DONE"
	// StatusCancelled indicates the job was cancelled remotely.
	StatusCancelled ProcessingStatus = "CANCELLED"
	// StatusFatal indicates the job failed remotely.
	StatusFatal ProcessingStatus = "FATAL"
)

// ParseProcessingStatus normalises a raw status string. Unknown values are kept
// verbatim so newer vendor statuses are treated as non-terminal.
func ParseProcessingStatus(raw string) ProcessingStatus {
	return ProcessingStatus(strings.ToUpper(strings.TrimSpace(raw)))
}

// IsTerminal reports whether no further transitions can occur.
func (s ProcessingStatus) IsTerminal() bool {
	switch s {
	case StatusDone, StatusCancelled, StatusFatal:
		return true
	default:
		return false
	}
}

// IsFailure reports whether the status is a terminal failure.
func (s ProcessingStatus) IsFailure() bool {
	return s == StatusCancelled || s == StatusFatal
}

// Known reports whether the status is one of the documented vendor states.
func (s ProcessingStatus) Known() bool {
	return s == StatusInQueue || s == StatusInProgress || s.IsTerminal()
}

// ReportRequest describes a report to generate. Use NewReportRequest so the
// marketplace and option collections are owned by the request.
type ReportRequest struct {
	ReportType     ReportType
	DataStart      time.Time
	DataEnd        time.Time
	MarketplaceIDs []string
	Options        map[string]string
}

// NewReportRequest builds an immutable report request.
func NewReportRequest(
	reportType ReportType,
	start, end time.Time,
	marketplaceIDs []string,
	options map[string]string,
) ReportRequest {
	ids := slices.Clone(marketplaceIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	var opts map[string]string
	if len(options) > 0 {
		opts = maps.Clone(options)
	}

	return ReportRequest{
		ReportType:     reportType,
		DataStart:      start,
		DataEnd:        end,
		MarketplaceIDs: ids,
		Options:        opts,
	}
}

// ReportJob is the server-side view of an asynchronous report task. It is only
// ever refreshed from the remote service, never mutated locally.
type ReportJob struct {
	JobID       string
	ReportType  ReportType
	Status      ProcessingStatus
	DocumentRef string
	DataStart   time.Time
	DataEnd     time.Time
	CreatedAt   time.Time
}

// Completion is the terminal snapshot produced by awaiting a report job.
type Completion struct {
	JobID       string
	Status      ProcessingStatus
	DocumentRef string
	Polls       int
}

// DocumentLocation is a resolved, time-limited download location.
type DocumentLocation struct {
	DocumentRef          string
	URL                  string
	CompressionAlgorithm string
}

// ReportDocument is the decoded report payload and the window it covers.
type ReportDocument struct {
	JobID     string
	DataStart time.Time
	DataEnd   time.Time
	Content   []byte
}

// ReportFilter narrows a report listing.
type ReportFilter struct {
	ReportTypes      []ReportType
	ProcessingStatus []ProcessingStatus
}

// AccessToken is a short-lived vendor bearer token.
type AccessToken struct {
	Value     string
	ExpiresAt time.Time
}

// Expired reports whether the token is past its expiry at now.
func (t AccessToken) Expired(now time.Time) bool {
	if t.Value == "" {
		return true
	}
	return !t.ExpiresAt.IsZero() && !now.Before(t.ExpiresAt)
}
