// Package client talks to the report backend: POST /generate-report for
// reports and POST /analyze for image analysis.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/goliatone/go-reportform/pkg/report"
)

const (
	// GeneratePath is the report endpoint relative to the base URL.
	GeneratePath = "/generate-report"
	// AnalyzePath is the image analysis endpoint relative to the base URL.
	AnalyzePath = "/analyze"

	// FailureMessage is the single message shown to users for any failed
	// report request.
	FailureMessage = "Failed to generate report"

	defaultBaseURL  = "http://localhost:8000"
	defaultTimeout  = 60 * time.Second
	maxResponseSize = 8 << 20
)

var (
	// ErrGenerateFailed wraps every error returned by Generate.
	ErrGenerateFailed = errors.New("client: failed to generate report")
	// ErrAnalyzeFailed wraps every error returned by Analyze.
	ErrAnalyzeFailed = errors.New("client: failed to analyze image")
)

// Analysis is the body returned by POST /analyze. Error is set instead of
// Analysis when the model call failed.
type Analysis struct {
	Analysis string `json:"analysis,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets the backend root, e.g. "http://localhost:8000".
func WithBaseURL(base string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimRight(strings.TrimSpace(base), "/"); trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithHTTPClient injects the HTTP client used for requests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// WithTimeout bounds each request. Zero disables the per-request deadline.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// Client is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
}

// New constructs a Client applying any provided options.
func New(options ...Option) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		http:    http.DefaultClient,
		timeout: defaultTimeout,
	}
	for _, opt := range options {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// BaseURL reports the backend root requests are sent to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Generate posts form as JSON and decodes the report. Transport failures,
// non-2xx statuses and undecodable bodies all wrap ErrGenerateFailed; a
// status failure additionally carries a *StatusError.
func (c *Client) Generate(ctx context.Context, form report.FormData) (report.Report, error) {
	body, err := json.Marshal(form)
	if err != nil {
		return report.Report{}, fmt.Errorf("%w: encode form: %w", ErrGenerateFailed, err)
	}

	payload, err := c.do(ctx, GeneratePath, "application/json", bytes.NewReader(body))
	if err != nil {
		return report.Report{}, fmt.Errorf("%w: %w", ErrGenerateFailed, err)
	}

	rep, err := report.ParseReport(payload)
	if err != nil {
		return report.Report{}, fmt.Errorf("%w: %w", ErrGenerateFailed, err)
	}
	return rep, nil
}

// Analyze uploads an image as the multipart "file" field together with an
// optional description.
func (c *Client) Analyze(ctx context.Context, filename, contentType string, data []byte, description string) (Analysis, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	if filename == "" {
		filename = "image"
	}
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return Analysis{}, fmt.Errorf("%w: %w", ErrAnalyzeFailed, err)
	}
	if _, err := part.Write(data); err != nil {
		return Analysis{}, fmt.Errorf("%w: %w", ErrAnalyzeFailed, err)
	}
	if description != "" {
		if err := writer.WriteField("description", description); err != nil {
			return Analysis{}, fmt.Errorf("%w: %w", ErrAnalyzeFailed, err)
		}
	}
	if err := writer.Close(); err != nil {
		return Analysis{}, fmt.Errorf("%w: %w", ErrAnalyzeFailed, err)
	}

	payload, err := c.do(ctx, AnalyzePath, writer.FormDataContentType(), &buf)
	if err != nil {
		return Analysis{}, fmt.Errorf("%w: %w", ErrAnalyzeFailed, err)
	}

	var out Analysis
	if err := json.Unmarshal(payload, &out); err != nil {
		return Analysis{}, fmt.Errorf("%w: decode response: %w", ErrAnalyzeFailed, err)
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, path, contentType string, body io.Reader) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	reqCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newStatusError(path, resp, payload)
	}
	return payload, nil
}

// AnalyzeImage satisfies analysis.Analyzer so the web UI can forward uploads to
// a remote backend. A failure reported in the body becomes an error.
func (c *Client) AnalyzeImage(ctx context.Context, image []byte, description string) (string, error) {
	result, err := c.Analyze(ctx, "", "", image, description)
	if err != nil {
		return "", err
	}
	if result.Error != "" {
		return "", fmt.Errorf("%w: %s", ErrAnalyzeFailed, result.Error)
	}
	return result.Analysis, nil
}
