// Package core defines the ports between the report relay services and the adapters behind them.
package core

import (
	"context"
	"time"

	"github.com/target/report-relay/internal/domain/model"
)

// This file contains the port definitions (hexagonal architecture).
// Services depend on these interfaces; adapters and the data layer implement them.

// CredentialProvider exchanges long-lived credentials for a short-lived vendor token.
type CredentialProvider interface {
	AccessToken(ctx context.Context) (model.AccessToken, error)
}

// ReportAPI is the vendor reports endpoint. A rejected token must surface as a
// token_expired AppError so callers can refresh and retry.
type ReportAPI interface {
	CreateReport(ctx context.Context, token string, req model.ReportRequest) (string, error)
	GetReport(ctx context.Context, token, reportID string) (model.ReportJob, error)
	GetReportDocument(ctx context.Context, token, documentRef string) (model.DocumentLocation, error)
	ListReports(ctx context.Context, token string, filter model.ReportFilter) ([]model.ReportJob, error)
}

// DocumentAPI downloads a resolved report document. The URL is pre-signed, so no token is sent.
type DocumentAPI interface {
	Download(ctx context.Context, url string) ([]byte, error)
}

// ShipmentAPI is the vendor inbound shipment endpoint.
type ShipmentAPI interface {
	ListShipments(ctx context.Context, token string, statuses []string) ([]string, error)
	ListShipmentItems(ctx context.Context, token, shipmentID string) ([]model.ShipmentItem, error)
}

// DedupLedger is a durable set of job ids that have been delivered.
//
// Record must only be called after the sink write succeeded; recording an id
// that is already present is a no-op.
type DedupLedger interface {
	Contains(ctx context.Context, jobID string) (bool, error)
	Record(ctx context.Context, jobID string) error
	List(ctx context.Context) ([]string, error)
}

// LedgerStore opens one independent ledger partition per job type.
type LedgerStore interface {
	Open(ctx context.Context, name string) (DedupLedger, error)
}

// BlobSink persists whole objects. Store either fully succeeds or fails.
type BlobSink interface {
	Store(ctx context.Context, path string, content []byte) error
}

// RemoteShare is a sink that can also answer whether a path exists.
type RemoteShare interface {
	BlobSink
	Exists(ctx context.Context, path string) (bool, error)
}

// SinkTargets resolves a destination target name to its share.
type SinkTargets interface {
	Get(name string) (RemoteShare, error)
}

// Pinger is implemented by sinks that can check connectivity before a run.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Notifier delivers a plain-text notification to its recipients.
type Notifier interface {
	Notify(ctx context.Context, n model.Notification) error
}

// Clock provides the current time. Tests substitute a fixed clock.
type Clock interface {
	Now() time.Time
}

// Ticker is one unit of periodic work driven by the scheduler runner. It
// returns how many items it processed.
type Ticker interface {
	Tick(ctx context.Context, now time.Time) (int, error)
}
