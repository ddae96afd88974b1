// Package spapi is a minimal Selling Partner API client covering the reports
// and inbound shipment endpoints.
package spapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "github.com/target/report-relay/internal/errors"
	"golang.org/x/time/rate"
)

// DefaultEndpoint is the North America regional endpoint.
const DefaultEndpoint = "https://sellingpartnerapi-na.amazon.com"

const (
	accessTokenHeader = "x-amz-access-token"
	maxErrorBody      = 4 << 10
)

// Config captures the client settings.
type Config struct {
	Endpoint string
	// RateLimit is the sustained request rate per second; zero disables throttling.
	RateLimit float64
	Burst     int
	UserAgent string
	// MarketplaceID scopes inbound shipment queries.
	MarketplaceID string
	Timeout       time.Duration
	Client        *http.Client
}

// Client talks to the vendor API. It is safe for concurrent use.
type Client struct {
	endpoint      *url.URL
	userAgent     string
	marketplaceID string
	limiter       *rate.Limiter
	client        *http.Client
}

// NewClient builds a client. An empty endpoint selects DefaultEndpoint.
func NewClient(cfg Config) (*Client, error) {
	raw := strings.TrimSpace(cfg.Endpoint)
	if raw == "" {
		raw = DefaultEndpoint
	}
	endpoint, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}
	if endpoint.Scheme == "" || endpoint.Host == "" {
		return nil, fmt.Errorf("endpoint %q must be an absolute URL", raw)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	hc := cfg.Client
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	return &Client{
		endpoint:      endpoint,
		userAgent:     fallbackString(strings.TrimSpace(cfg.UserAgent), "report-relay/1.0"),
		marketplaceID: strings.TrimSpace(cfg.MarketplaceID),
		limiter:       limiter,
		client:        hc,
	}, nil
}

// StatusError is a non-2xx vendor response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("status %d", e.StatusCode)
	}
	return fmt.Sprintf("status %d: %s", e.StatusCode, e.Body)
}

// Transient reports whether the status is worth retrying.
func (e *StatusError) Transient() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}

// call describes one vendor request.
type call struct {
	method string
	path   string
	query  url.Values
	token  string
	body   any
}

// do executes c and returns the raw response body and status code for 2xx
// responses. A 401 becomes a token_expired AppError; other non-2xx statuses
// become *StatusError. Network failures are returned as-is.
func (c *Client) do(ctx context.Context, cl call) ([]byte, int, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, 0, fmt.Errorf("rate limiter: %w", err)
	}

	u := c.endpoint.JoinPath(cl.path)
	if len(cl.query) > 0 {
		u.RawQuery = cl.query.Encode()
	}

	var reader io.Reader
	if cl.body != nil {
		payload, err := json.Marshal(cl.body)
		if err != nil {
			return nil, 0, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, u.String(), reader)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set(accessTokenHeader, cl.token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if cl.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%s %s: %w", cl.method, cl.path, err)
	}

	data, err := readAndClose(resp)
	if err != nil {
		return nil, resp.StatusCode, err
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, resp.StatusCode, apperrors.TokenExpired(fmt.Sprintf("%s %s: access token rejected", cl.method, cl.path))
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, resp.StatusCode, &StatusError{StatusCode: resp.StatusCode, Body: truncate(data)}
	}
	return data, resp.StatusCode, nil
}

func readAndClose(resp *http.Response) ([]byte, error) {
	data, readErr := io.ReadAll(resp.Body)
	closeErr := resp.Body.Close()
	if readErr != nil {
		if closeErr != nil {
			return nil, errors.Join(
				fmt.Errorf("read response body: %w", readErr),
				fmt.Errorf("close response body: %w", closeErr),
			)
		}
		return nil, fmt.Errorf("read response body: %w", readErr)
	}
	if closeErr != nil {
		return nil, fmt.Errorf("close response body: %w", closeErr)
	}
	return data, nil
}

// fetchError maps a failed read call to a fetch AppError, keeping token_expired intact.
func fetchError(err error, op string) error {
	if apperrors.IsTokenExpired(err) {
		return err
	}
	var se *StatusError
	if errors.As(err, &se) {
		return apperrors.FetchError(err, op, se.Transient())
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return apperrors.FetchError(err, op, true)
}

func truncate(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxErrorBody {
		return s[:maxErrorBody]
	}
	return s
}

func fallbackString(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
