package data

import "errors"

// Shared sentinel errors for the ledger backends.
var (
	ErrLedgerNameRequired = errors.New("ledger name is required")
	ErrInvalidLedgerName  = errors.New("ledger name must not contain path separators")
	ErrJobIDRequired      = errors.New("job_id is required")
	ErrInvalidJobID       = errors.New("job_id must be a single line")
)
