package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	apperrors "github.com/target/report-relay/internal/errors"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "app error code", err: apperrors.SinkError(errors.New("disk full"), "a/b.tsv"), want: "sink"},
		{name: "wrapped app error", err: fmt.Errorf("run: %w", apperrors.JobFailedError("1", "FATAL")), want: "job_failed"},
		{name: "plain error", err: errors.New("boom"), want: "errors_errorstring"},
		{name: "context", err: fmt.Errorf("wait: %w", context.Canceled), want: "errors_errorstring"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Fatalf("Classify() = %q, want %q", got, tt.want)
			}
		})
	}
}
