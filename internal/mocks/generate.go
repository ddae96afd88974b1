// Package mocks provides mock implementations of the core ports for testing the report relay.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for the port interfaces.
// The mocks are generated using go:generate directives and provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	ledger := mocks.NewMockDedupLedger(ctrl)
//	ledger.EXPECT().Contains(gomock.Any(), "42").Return(false, nil)
package mocks

// Vendor ports: CredentialProvider, ReportAPI, DocumentAPI, ShipmentAPI.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=credential_provider_mock.go github.com/target/report-relay/internal/core CredentialProvider
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=report_api_mock.go github.com/target/report-relay/internal/core ReportAPI
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=document_api_mock.go github.com/target/report-relay/internal/core DocumentAPI
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=shipment_api_mock.go github.com/target/report-relay/internal/core ShipmentAPI

// Ledger ports: DedupLedger, LedgerStore.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=dedup_ledger_mock.go github.com/target/report-relay/internal/core DedupLedger
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=ledger_store_mock.go github.com/target/report-relay/internal/core LedgerStore

// Delivery ports: BlobSink, RemoteShare, Notifier.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=blob_sink_mock.go github.com/target/report-relay/internal/core BlobSink
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=remote_share_mock.go github.com/target/report-relay/internal/core RemoteShare
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=notifier_mock.go github.com/target/report-relay/internal/core Notifier
