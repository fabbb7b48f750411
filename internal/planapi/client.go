// Package planapi is the client for the HolinFlow planning backend: plan
// generation, PDF report export and email dispatch.
package planapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/holinflow/hflow/internal/model"
)

const (
	planPath  = "/api/plan-detailed"
	pdfPath   = "/api/report-pdf"
	emailPath = "/api/report-email"

	maxPlanBody = 4 << 20  // 4 MB
	maxPDFBody  = 32 << 20 // 32 MB

	defaultUserAgent = "hflow/1.0"
)

// Client talks to one backend origin. Every call is a single attempt; there
// is no retry.
type Client struct {
	baseURL   string
	http      *http.Client
	timeout   time.Duration
	userAgent string
	log       *log.Entry

	maxPlan int64
	maxPDF  int64
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout bounds each call. Zero means no timeout beyond the caller's ctx.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithLogger sets the logrus entry used for request logging.
func WithLogger(l *log.Entry) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// New creates a client for baseURL, e.g. "http://localhost:8000".
func New(baseURL string, opts ...Option) (*Client, error) {
	normalized, err := NormalizeBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL:   normalized,
		http:      &http.Client{},
		userAgent: defaultUserAgent,
		log:       log.WithField("component", "planapi"),
		maxPlan:   maxPlanBody,
		maxPDF:    maxPDFBody,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the normalized origin the client posts to.
func (c *Client) BaseURL() string { return c.baseURL }

// NormalizeBaseURL checks that raw is an absolute http(s) URL and strips any
// trailing slash.
func NormalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidBaseURL)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidBaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: scheme must be http or https, got %q", ErrInvalidBaseURL, u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: missing host in %q", ErrInvalidBaseURL, raw)
	}
	return strings.TrimRight(u.String(), "/"), nil
}

// RequestPlan asks the backend for a detailed allocation plan. The response
// is decoded without schema validation.
func (c *Client) RequestPlan(ctx context.Context, req model.PlanRequest) (*model.PlanResponse, error) {
	body, err := c.post(ctx, "plan", planPath, req, c.maxPlan, ErrPlanGeneration)
	if err != nil {
		return nil, err
	}

	var plan model.PlanResponse
	if err := json.Unmarshal(body, &plan); err != nil {
		return nil, fmt.Errorf("planapi: parsing plan: %w", err)
	}
	return &plan, nil
}

// RequestPDF asks the backend to render plan as a PDF and returns the raw
// bytes. Saving them is the caller's job.
func (c *Client) RequestPDF(ctx context.Context, plan *model.PlanResponse) ([]byte, error) {
	payload := struct {
		Plan *model.PlanResponse `json:"plan"`
	}{plan}
	return c.post(ctx, "report-pdf", pdfPath, payload, c.maxPDF, ErrReportExport)
}

// RequestEmailDispatch asks the backend to email the report for plan.
func (c *Client) RequestEmailDispatch(ctx context.Context, email string, plan *model.PlanResponse) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ErrEmailRequired
	}
	payload := struct {
		Email string              `json:"email"`
		Plan  *model.PlanResponse `json:"plan"`
	}{email, plan}
	_, err := c.post(ctx, "report-email", emailPath, payload, 0, ErrEmailDispatch)
	return err
}

// post sends payload as JSON and returns the response body. A body longer
// than limit is an error rather than a truncated result. Failures wrap kind.
func (c *Client) post(ctx context.Context, op, path string, payload any, limit int64, kind error) ([]byte, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: encoding request: %w", kind, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: creating request: %w", kind, err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)

	entry := c.log.WithFields(log.Fields{"op": op, "request_id": requestID})
	start := time.Now()

	//nolint:gosec // URL is the configured backend origin
	resp, err := c.http.Do(req)
	if err != nil {
		entry.WithError(err).Warn("request failed")
		return nil, fmt.Errorf("%w: %w", kind, err)
	}
	defer func() { _ = resp.Body.Close() }()

	entry = entry.WithFields(log.Fields{"status": resp.StatusCode, "elapsed": time.Since(start).Round(time.Millisecond)})

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		entry.Warn("unexpected status")
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, &StatusError{Op: op, StatusCode: resp.StatusCode, kind: kind}
	}
	entry.Debug("request ok")

	if limit <= 0 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %w", kind, err)
	}
	if int64(len(body)) > limit {
		entry.WithField("limit", limit).Warn("response too large")
		return nil, fmt.Errorf("%w: response exceeds %d bytes", kind, limit)
	}
	return body, nil
}
