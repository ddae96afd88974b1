package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestMapDBError_NilError(t *testing.T) {
	if err := MapDBError(nil); err != nil {
		t.Errorf("MapDBError(nil) = %v, want nil", err)
	}
}

func TestMapDBError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantCode  ErrorCode
		wantField string
	}{
		{name: "deadline exceeded", err: context.DeadlineExceeded, wantCode: ErrCodeTimeout},
		{name: "canceled", err: fmt.Errorf("query: %w", context.Canceled), wantCode: ErrCodeCanceled},
		{name: "no rows", err: pgx.ErrNoRows, wantCode: ErrCodeNotFound},
		{
			name: "unique violation with column name",
			err: &pgconn.PgError{
				Code:       pgerrcode.UniqueViolation,
				ColumnName: "job_id",
			},
			wantCode:  ErrCodeConflict,
			wantField: "job_id",
		},
		{
			name: "unique violation with detail",
			err: &pgconn.PgError{
				Code:   pgerrcode.UniqueViolation,
				Detail: `Key (ledger, job_id)=(settlements-log, 42) already exists.`,
			},
			wantCode:  ErrCodeConflict,
			wantField: "ledger, job_id",
		},
		{
			name: "not null violation",
			err: &pgconn.PgError{
				Code:       pgerrcode.NotNullViolation,
				ColumnName: "ledger",
			},
			wantCode:  ErrCodeValidation,
			wantField: "ledger",
		},
		{
			name:     "other pg error",
			err:      &pgconn.PgError{Code: pgerrcode.DiskFull},
			wantCode: ErrCodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := MapDBError(tt.err)
			if got := GetCode(err); got != tt.wantCode {
				t.Errorf("MapDBError() code = %v, want %v", got, tt.wantCode)
			}
			if got := GetField(err); got != tt.wantField {
				t.Errorf("MapDBError() field = %q, want %q", got, tt.wantField)
			}
			if !errors.Is(err, tt.err) {
				t.Errorf("MapDBError() lost the cause %v", tt.err)
			}
		})
	}
}

func TestMapDBError_PassThrough(t *testing.T) {
	plain := errors.New("connection reset")
	if err := MapDBError(plain); !errors.Is(err, plain) || GetCode(err) != "" {
		t.Errorf("MapDBError() = %v, want original error", err)
	}
}
