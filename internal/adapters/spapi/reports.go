package spapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/target/report-relay/internal/core"
	"github.com/target/report-relay/internal/domain/model"
	apperrors "github.com/target/report-relay/internal/errors"
)

const reportsBase = "/reports/2021-06-30"

var (
	_ core.ReportAPI   = (*Client)(nil)
	_ core.DocumentAPI = (*Client)(nil)
)

type createReportBody struct {
	ReportType     string            `json:"reportType"`
	DataStartTime  string            `json:"dataStartTime,omitempty"`
	DataEndTime    string            `json:"dataEndTime,omitempty"`
	MarketplaceIDs []string          `json:"marketplaceIds"`
	ReportOptions  map[string]string `json:"reportOptions,omitempty"`
}

type reportWire struct {
	ReportID         string `json:"reportId"`
	ReportType       string `json:"reportType"`
	ProcessingStatus string `json:"processingStatus"`
	ReportDocumentID string `json:"reportDocumentId"`
	DataStartTime    string `json:"dataStartTime"`
	DataEndTime      string `json:"dataEndTime"`
	CreatedTime      string `json:"createdTime"`
}

func (w reportWire) toModel() model.ReportJob {
	return model.ReportJob{
		JobID:       w.ReportID,
		ReportType:  model.ReportType(w.ReportType),
		Status:      model.ParseProcessingStatus(w.ProcessingStatus),
		DocumentRef: w.ReportDocumentID,
		DataStart:   parseTime(w.DataStartTime),
		DataEnd:     parseTime(w.DataEndTime),
		CreatedAt:   parseTime(w.CreatedTime),
	}
}

// CreateReport submits a report request. Only 200 and 202 count as accepted.
func (c *Client) CreateReport(ctx context.Context, token string, req model.ReportRequest) (string, error) {
	body := createReportBody{
		ReportType:     string(req.ReportType),
		MarketplaceIDs: req.MarketplaceIDs,
		ReportOptions:  req.Options,
	}
	if !req.DataStart.IsZero() {
		body.DataStartTime = req.DataStart.Format(time.DateOnly)
	}
	if !req.DataEnd.IsZero() {
		body.DataEndTime = req.DataEnd.Format(time.DateOnly)
	}

	data, status, err := c.do(ctx, call{
		method: http.MethodPost,
		path:   reportsBase + "/reports",
		token:  token,
		body:   body,
	})
	if err != nil {
		if apperrors.IsTokenExpired(err) {
			return "", err
		}
		return "", apperrors.JobCreationError(err, "create report")
	}
	if status != http.StatusOK && status != http.StatusAccepted {
		return "", apperrors.JobCreationError(nil, fmt.Sprintf("create report: unexpected status %d", status))
	}

	var resp struct {
		ReportID string `json:"reportId"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", apperrors.JobCreationError(err, "decode create report response")
	}
	if strings.TrimSpace(resp.ReportID) == "" {
		return "", apperrors.JobCreationError(nil, "create report response did not contain reportId")
	}
	return resp.ReportID, nil
}

// GetReport fetches the current state of a report.
func (c *Client) GetReport(ctx context.Context, token, reportID string) (model.ReportJob, error) {
	data, _, err := c.do(ctx, call{
		method: http.MethodGet,
		path:   reportsBase + "/reports/" + url.PathEscape(reportID),
		token:  token,
	})
	if err != nil {
		return model.ReportJob{}, fetchError(err, "get report "+reportID)
	}

	var w reportWire
	if err := json.Unmarshal(data, &w); err != nil {
		return model.ReportJob{}, apperrors.FetchError(err, "decode report "+reportID, false)
	}
	if w.ReportID == "" {
		w.ReportID = reportID
	}
	return w.toModel(), nil
}

// GetReportDocument resolves a document id to its download location.
func (c *Client) GetReportDocument(ctx context.Context, token, documentRef string) (model.DocumentLocation, error) {
	data, _, err := c.do(ctx, call{
		method: http.MethodGet,
		path:   reportsBase + "/documents/" + url.PathEscape(documentRef),
		token:  token,
	})
	if err != nil {
		return model.DocumentLocation{}, fetchError(err, "get report document "+documentRef)
	}

	var resp struct {
		ReportDocumentID     string `json:"reportDocumentId"`
		URL                  string `json:"url"`
		CompressionAlgorithm string `json:"compressionAlgorithm"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return model.DocumentLocation{}, apperrors.FetchError(err, "decode report document "+documentRef, false)
	}
	if strings.TrimSpace(resp.URL) == "" {
		return model.DocumentLocation{}, apperrors.FetchError(nil, "report document "+documentRef+" has no url", false)
	}
	return model.DocumentLocation{
		DocumentRef:          documentRef,
		URL:                  resp.URL,
		CompressionAlgorithm: resp.CompressionAlgorithm,
	}, nil
}

// ListReports pages through the reports matching filter.
func (c *Client) ListReports(ctx context.Context, token string, filter model.ReportFilter) ([]model.ReportJob, error) {
	query := url.Values{}
	if len(filter.ReportTypes) > 0 {
		types := make([]string, 0, len(filter.ReportTypes))
		for _, t := range filter.ReportTypes {
			types = append(types, string(t))
		}
		query.Set("reportTypes", strings.Join(types, ","))
	}
	if len(filter.ProcessingStatus) > 0 {
		statuses := make([]string, 0, len(filter.ProcessingStatus))
		for _, s := range filter.ProcessingStatus {
			statuses = append(statuses, string(s))
		}
		query.Set("processingStatuses", strings.Join(statuses, ","))
	}

	var out []model.ReportJob
	for {
		data, _, err := c.do(ctx, call{
			method: http.MethodGet,
			path:   reportsBase + "/reports",
			query:  query,
			token:  token,
		})
		if err != nil {
			return nil, fetchError(err, "list reports")
		}

		var page struct {
			Reports   []reportWire `json:"reports"`
			NextToken string       `json:"nextToken"`
		}
		if err := json.Unmarshal(data, &page); err != nil {
			return nil, apperrors.FetchError(err, "decode report list", false)
		}
		for _, w := range page.Reports {
			out = append(out, w.toModel())
		}
		if page.NextToken == "" {
			return out, nil
		}
		// nextToken must be sent alone.
		query = url.Values{"nextToken": []string{page.NextToken}}
	}
}

// Download retrieves a pre-signed document URL. No vendor token is attached.
func (c *Client) Download(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, apperrors.FetchError(err, "create download request", false)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fetchError(err, "download report document")
	}
	data, err := readAndClose(resp)
	if err != nil {
		return nil, apperrors.FetchError(err, "download report document", true)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fetchError(&StatusError{StatusCode: resp.StatusCode, Body: truncate(data)}, "download report document")
	}
	return data, nil
}

func parseTime(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.DateOnly} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}
