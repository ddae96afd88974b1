package data

import (
	"strings"
)

// validateLedgerName rejects names that would escape the ledger directory or key space.
func validateLedgerName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrLedgerNameRequired
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", ErrInvalidLedgerName
	}
	return name, nil
}

// validateJobID normalises a ledger entry. Entries are newline-delimited on disk,
// so embedded line breaks are rejected.
func validateJobID(jobID string) (string, error) {
	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		return "", ErrJobIDRequired
	}
	if strings.ContainsAny(jobID, "\r\n") {
		return "", ErrInvalidJobID
	}
	return jobID, nil
}
