package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/klauspost/compress/gzip"
	"github.com/sethvargo/go-retry"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/target/report-relay/internal/core"
	"github.com/target/report-relay/internal/domain/model"
	apperrors "github.com/target/report-relay/internal/errors"
)

// Fetch retry defaults.
const (
	DefaultFetchAttempts = 3
	DefaultFetchBackoff  = 2 * time.Second
)

// FetcherOptions configures ReportFetcher.
type FetcherOptions struct {
	Reports   core.ReportAPI   // Required
	Documents core.DocumentAPI // Required
	Retry     FetchRetry
	Logger    *slog.Logger
}

// FetchRetry bounds the retries of transient download and decode failures.
type FetchRetry struct {
	Attempts int
	Backoff  time.Duration
}

// ReportFetcher resolves a completed job's document and downloads its content.
type ReportFetcher struct {
	reports   core.ReportAPI
	documents core.DocumentAPI
	retry     FetchRetry
	logger    *slog.Logger
}

// NewReportFetcher constructs a ReportFetcher.
func NewReportFetcher(opts FetcherOptions) *ReportFetcher {
	if opts.Reports == nil {
		panic("ReportAPI is required")
	}
	if opts.Documents == nil {
		panic("DocumentAPI is required")
	}
	r := opts.Retry
	if r.Attempts <= 0 {
		r.Attempts = DefaultFetchAttempts
	}
	if r.Backoff <= 0 {
		r.Backoff = DefaultFetchBackoff
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportFetcher{
		reports:   opts.Reports,
		documents: opts.Documents,
		retry:     r,
		logger:    logger.With("component", "report_fetcher"),
	}
}

// Fetch resolves documentRef to a download location, downloads it and
// decodes the payload. Transient transport failures and corrupt payloads are
// retried with exponential backoff; anything else fails immediately.
func (f *ReportFetcher) Fetch(
	ctx context.Context,
	sess *Session,
	jobID, documentRef string,
	w model.Window,
) (model.ReportDocument, error) {
	if documentRef == "" {
		return model.ReportDocument{}, apperrors.FetchError(nil, "report "+jobID+" has no document", false)
	}

	var content []byte
	attempt := 0
	backoff := retry.WithMaxRetries(uint64(f.retry.Attempts-1), retry.NewExponential(f.retry.Backoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		data, err := f.fetchOnce(ctx, sess, documentRef)
		if err == nil {
			content, err = Decode(data)
			if err != nil {
				err = fmt.Errorf("report %s: %w", jobID, err)
			}
		}
		if err == nil {
			return nil
		}
		if apperrors.IsRetryable(err) || apperrors.IsDecode(err) {
			f.logger.WarnContext(ctx, "document fetch failed, retrying",
				"job_id", jobID,
				"attempt", attempt,
				"error", err,
			)
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		return model.ReportDocument{}, err
	}

	return model.ReportDocument{
		JobID:     jobID,
		DataStart: w.Start,
		DataEnd:   w.End,
		Content:   content,
	}, nil
}

func (f *ReportFetcher) fetchOnce(ctx context.Context, sess *Session, documentRef string) ([]byte, error) {
	loc, err := callWithToken(ctx, sess, func(token string) (model.DocumentLocation, error) {
		return f.reports.GetReportDocument(ctx, token, documentRef)
	})
	if err != nil {
		return nil, err
	}
	if loc.URL == "" {
		return nil, apperrors.FetchError(nil, "document "+documentRef+" has no download url", false)
	}
	return f.documents.Download(ctx, loc.URL)
}

var gzipMagic = []byte{0x1f, 0x8b}

// Decode turns a downloaded payload into UTF-8 text. Gzip payloads are
// inflated first. UTF-16 payloads with a byte order mark are transcoded and a
// leading UTF-8 byte order mark is dropped. Anything else must be valid UTF-8.
func Decode(raw []byte) ([]byte, error) {
	data := raw
	if bytes.HasPrefix(data, gzipMagic) {
		inflated, err := gunzip(data)
		if err != nil {
			return nil, apperrors.DecodeError(err, "gunzip document")
		}
		data = inflated
	}

	if hasUTF16BOM(data) {
		out, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
		if err != nil {
			return nil, apperrors.DecodeError(err, "transcode utf-16 document")
		}
		return out, nil
	}

	if !utf8.Valid(data) {
		return nil, apperrors.DecodeError(nil, "document is not valid utf-8")
	}
	out, _, err := transform.Bytes(unicode.UTF8BOM.NewDecoder(), data)
	if err != nil {
		return nil, apperrors.DecodeError(err, "strip byte order mark")
	}
	return out, nil
}

func hasUTF16BOM(data []byte) bool {
	return bytes.HasPrefix(data, []byte{0xff, 0xfe}) || bytes.HasPrefix(data, []byte{0xfe, 0xff})
}

func gunzip(data []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	out, readErr := io.ReadAll(zr)
	return out, errors.Join(readErr, zr.Close())
}
