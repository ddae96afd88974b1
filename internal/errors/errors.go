// Package errors defines the application error taxonomy shared by the pipelines.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a category of application error.
type ErrorCode string

const (
	// ErrCodeAuth indicates the credential exchange failed or a refreshed token was rejected.
	ErrCodeAuth ErrorCode = "auth"
	// ErrCodeTokenExpired indicates the vendor rejected the access token (HTTP 401).
	ErrCodeTokenExpired ErrorCode = "token_expired"
	// ErrCodeJobCreation indicates the vendor did not accept a report request.
	ErrCodeJobCreation ErrorCode = "job_creation"
	// ErrCodeJobFailed indicates the remote job ended in CANCELLED or FATAL.
	ErrCodeJobFailed ErrorCode = "job_failed"
	// ErrCodeJobTimeout indicates the caller's wait budget was exhausted.
	ErrCodeJobTimeout ErrorCode = "job_timeout"
	// ErrCodeFetch indicates a resolve or download failure.
	ErrCodeFetch ErrorCode = "fetch"
	// ErrCodeDecode indicates the payload could not be decompressed or decoded.
	ErrCodeDecode ErrorCode = "decode"
	// ErrCodeSink indicates persistence to the destination failed.
	ErrCodeSink ErrorCode = "sink"
	// ErrCodeLedger indicates the dedup ledger could not be read or written.
	ErrCodeLedger ErrorCode = "ledger"
	// ErrCodeNotFound indicates a resource was not found.
	ErrCodeNotFound ErrorCode = "not_found"
	// ErrCodeConflict indicates a conflict with existing data (e.g., unique constraint violation).
	ErrCodeConflict ErrorCode = "conflict"
	// ErrCodeValidation indicates invalid input data.
	ErrCodeValidation ErrorCode = "validation"
	// ErrCodeInternal indicates an unexpected internal error.
	ErrCodeInternal ErrorCode = "internal"
	// ErrCodeTimeout indicates a timeout occurred.
	ErrCodeTimeout ErrorCode = "timeout"
	// ErrCodeCanceled indicates the operation was canceled.
	ErrCodeCanceled ErrorCode = "canceled"
)

// AppError represents a structured application error with a code, message, and optional cause.
// It supports error wrapping and unwrapping for use with errors.Is and errors.As.
type AppError struct {
	// Code categorizes the error type
	Code ErrorCode
	// Message is a human-readable error message
	Message string
	// Cause is the underlying error that caused this error (optional)
	Cause error
	// Field is the specific field that caused the error (optional, for validation errors)
	Field string
	// Status is the terminal remote status for job_failed errors.
	Status string
	// Transient marks failures worth retrying (network errors, 5xx, throttling).
	Transient bool
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause, enabling errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates an AppError without a cause.
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Newf creates an AppError with a formatted message.
func Newf(code ErrorCode, format string, args ...any) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an existing error with an AppError, preserving the cause.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an existing error with an AppError and formatted message.
func Wrapf(err error, code ErrorCode, format string, args ...any) *AppError {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// AuthError reports a failed credential exchange.
func AuthError(err error, message string) *AppError {
	return &AppError{Code: ErrCodeAuth, Message: message, Cause: err}
}

// TokenExpired reports a vendor 401 for the current access token.
func TokenExpired(message string) *AppError {
	return &AppError{Code: ErrCodeTokenExpired, Message: message}
}

// JobCreationError reports a rejected or malformed report creation response.
func JobCreationError(err error, message string) *AppError {
	return &AppError{Code: ErrCodeJobCreation, Message: message, Cause: err}
}

// JobFailedError reports a remote job that ended without a document.
func JobFailedError(jobID, status string) *AppError {
	return &AppError{
		Code:    ErrCodeJobFailed,
		Message: fmt.Sprintf("report job %s ended with status %s", jobID, status),
		Status:  status,
	}
}

// JobTimeoutError reports an exhausted wait budget.
func JobTimeoutError(jobID string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeJobTimeout,
		Message: fmt.Sprintf("report job %s did not finish in time", jobID),
		Cause:   err,
	}
}

// FetchError reports a resolve or download failure.
func FetchError(err error, message string, transient bool) *AppError {
	return &AppError{Code: ErrCodeFetch, Message: message, Cause: err, Transient: transient}
}

// DecodeError reports an undecodable payload.
func DecodeError(err error, message string) *AppError {
	return &AppError{Code: ErrCodeDecode, Message: message, Cause: err}
}

// SinkError reports a failed store.
func SinkError(err error, path string) *AppError {
	return &AppError{Code: ErrCodeSink, Message: "store " + path, Cause: err, Field: path}
}

// LedgerError reports a ledger read or write failure.
func LedgerError(err error, message string) *AppError {
	return &AppError{Code: ErrCodeLedger, Message: message, Cause: err}
}

// Validation creates a new Validation error.
func Validation(message string) *AppError {
	return &AppError{
		Code:    ErrCodeValidation,
		Message: message,
	}
}

// ValidationField creates a new Validation error for a specific field.
func ValidationField(field, message string) *AppError {
	return &AppError{
		Code:    ErrCodeValidation,
		Message: message,
		Field:   field,
	}
}

// NotFoundf creates a new NotFound error with formatted message.
func NotFoundf(format string, args ...any) *AppError {
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf(format, args...),
	}
}

// isCode checks if an error has a specific error code.
func isCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// IsAuth checks if an error is an Auth error.
func IsAuth(err error) bool { return isCode(err, ErrCodeAuth) }

// IsTokenExpired checks if the vendor rejected the access token.
func IsTokenExpired(err error) bool { return isCode(err, ErrCodeTokenExpired) }

// IsJobCreation checks if an error is a JobCreation error.
func IsJobCreation(err error) bool { return isCode(err, ErrCodeJobCreation) }

// IsJobFailed checks if an error is a JobFailed error.
func IsJobFailed(err error) bool { return isCode(err, ErrCodeJobFailed) }

// IsJobTimeout checks if an error is a JobTimeout error.
func IsJobTimeout(err error) bool { return isCode(err, ErrCodeJobTimeout) }

// IsFetch checks if an error is a Fetch error.
func IsFetch(err error) bool { return isCode(err, ErrCodeFetch) }

// IsDecode checks if an error is a Decode error.
func IsDecode(err error) bool { return isCode(err, ErrCodeDecode) }

// IsSink checks if an error is a Sink error.
func IsSink(err error) bool { return isCode(err, ErrCodeSink) }

// IsLedger checks if an error is a Ledger error.
func IsLedger(err error) bool { return isCode(err, ErrCodeLedger) }

// IsNotFound checks if an error is a NotFound error.
func IsNotFound(err error) bool { return isCode(err, ErrCodeNotFound) }

// IsConflict checks if an error is a Conflict error.
func IsConflict(err error) bool { return isCode(err, ErrCodeConflict) }

// IsValidation checks if an error is a Validation error.
func IsValidation(err error) bool { return isCode(err, ErrCodeValidation) }

// IsTimeout checks if an error is a Timeout error.
func IsTimeout(err error) bool { return isCode(err, ErrCodeTimeout) }

// IsCanceled checks if an error is a Canceled error.
func IsCanceled(err error) bool { return isCode(err, ErrCodeCanceled) }

// IsTransient reports whether the outermost AppError in the chain is marked transient.
func IsTransient(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Transient
}

// IsRetryable reports whether err is a transient fetch failure.
func IsRetryable(err error) bool {
	return IsFetch(err) && IsTransient(err)
}

// GetCode returns the ErrorCode from an error, or empty string if not an AppError.
func GetCode(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// GetStatus returns the terminal remote status carried by a job_failed error.
func GetStatus(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}
	return ""
}
