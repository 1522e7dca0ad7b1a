package predictor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is used when no base URL is configured.
	DefaultBaseURL = "http://localhost:8000"

	predictPath = "/api/predict"
	healthPath  = "/api/"

	maxBodyBytes = 1 << 20
)

// Client calls the prediction service.
type Client struct {
	base   *url.URL
	http   *http.Client
	logger *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient injects a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// WithTimeout sets the per-request timeout on the default client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			clone := *c.http
			clone.Timeout = timeout
			c.http = &clone
		}
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New constructs a Client for the given base URL. An empty base falls back to
// DefaultBaseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	raw := strings.TrimSpace(baseURL)
	if raw == "" {
		raw = DefaultBaseURL
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBaseURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("%w: scheme %q", ErrInvalidBaseURL, parsed.Scheme)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("%w: missing host", ErrInvalidBaseURL)
	}
	parsed.Path = strings.TrimRight(parsed.Path, "/")

	client := &Client{
		base:   parsed,
		http:   &http.Client{Timeout: 30 * time.Second},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// Predict posts the request and decodes the prediction.
func (c *Client) Predict(ctx context.Context, req Request) (Result, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return Result{}, fmt.Errorf("predictor: encode request: %w", err)
	}

	status, body, err := c.do(ctx, http.MethodPost, predictPath, payload)
	if err != nil {
		return Result{}, err
	}
	if status < 200 || status > 299 {
		apiErr := parseErrorBody(status, body)
		c.logger.Debug("prediction rejected", "status", status, "structured", apiErr.Structured())
		return Result{}, apiErr
	}

	var result Result
	if err := json.Unmarshal(body, &result); err != nil {
		return Result{}, &DecodeError{StatusCode: status, Err: err}
	}
	return result, nil
}

// Health probes GET {base}/api/ and expects {"status":"ok"}.
func (c *Client) Health(ctx context.Context) (HealthStatus, error) {
	status, body, err := c.do(ctx, http.MethodGet, healthPath, nil)
	if err != nil {
		return HealthStatus{}, err
	}
	if status < 200 || status > 299 {
		return HealthStatus{}, parseErrorBody(status, body)
	}
	var health HealthStatus
	if err := json.Unmarshal(body, &health); err != nil {
		return HealthStatus{}, &DecodeError{StatusCode: status, Err: err}
	}
	if !strings.EqualFold(health.Status, "ok") {
		return health, fmt.Errorf("predictor: service reports status %q", health.Status)
	}
	return health, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte) (int, []byte, error) {
	endpoint := c.base.JoinPath(path)
	// keep the trailing slash of the health path
	target := endpoint.String()
	if strings.HasSuffix(path, "/") && !strings.HasSuffix(target, "/") {
		target += "/"
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return 0, nil, fmt.Errorf("predictor: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("prediction request failed", "method", method, "url", target, "error", err)
		return 0, nil, &TransportError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return resp.StatusCode, nil, &TransportError{Op: method + " " + path, Err: err}
	}
	c.logger.Debug("prediction request completed",
		"method", method,
		"url", target,
		"status", resp.StatusCode,
		"duration", time.Since(started),
	)
	return resp.StatusCode, data, nil
}
