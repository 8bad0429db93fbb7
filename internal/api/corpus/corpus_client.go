package corpus

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-tourist-guide/app/observability/metrics"
	"github.com/FACorreiaa/go-tourist-guide/config"
	"github.com/FACorreiaa/go-tourist-guide/internal/types"
)

const (
	defaultMaxAttempts = 3
	defaultRetryDelay  = time.Second
	maxResponseBytes   = 10 << 20
)

var _ API = (*Client)(nil)

// API is the subset of the collections API the storage services use.
type API interface {
	Get(ctx context.Context, endpoint, token string, query url.Values) (json.RawMessage, error)
	Post(ctx context.Context, endpoint, token string, data any) (json.RawMessage, error)
}

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

func contextSleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Client talks to the remote collections API. Failed calls are retried
// with a linear backoff of attempt * retryDelay.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	maxAttempts int
	retryDelay  time.Duration
	sleep       Sleeper
	logger      *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithSleeper replaces the wait between attempts.
func WithSleeper(s Sleeper) Option {
	return func(c *Client) { c.sleep = s }
}

func WithRetryDelay(d time.Duration) Option {
	return func(c *Client) { c.retryDelay = d }
}

func NewClient(cfg config.CorpusConfig, logger *slog.Logger, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	c := &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		httpClient:  &http.Client{Timeout: timeout},
		maxAttempts: defaultMaxAttempts,
		retryDelay:  defaultRetryDelay,
		sleep:       contextSleep,
		logger:      logger.With(slog.String("component", "corpus_client")),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do sends a JSON request and returns the decoded JSON body. Transport
// errors and non-2xx responses are retried; the final failure is wrapped
// in types.ErrRequestFailed.
func (c *Client) Do(ctx context.Context, method, endpoint, token string, query url.Values, body any) (json.RawMessage, error) {
	target := c.baseURL + "/" + strings.TrimLeft(endpoint, "/")
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	ctx, span := otel.Tracer("CorpusClient").Start(ctx, "Do", trace.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("corpus.endpoint", endpoint),
	))
	defer span.End()

	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return nil, fmt.Errorf("%w: encoding request body: %s", types.ErrInvalidArgument, err)
		}
	}

	start := time.Now()
	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		raw, err := c.attempt(ctx, method, target, token, payload)
		if err == nil {
			span.SetAttributes(attribute.Int("corpus.attempts", attempt))
			span.SetStatus(codes.Ok, "")
			c.recordDuration(ctx, endpoint, start)
			return raw, nil
		}
		lastErr = err
		c.logger.WarnContext(ctx, "Remote request failed",
			slog.String("method", method),
			slog.String("endpoint", endpoint),
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", c.maxAttempts),
			slog.Any("error", err),
		)
		if attempt == c.maxAttempts {
			break
		}
		if err := c.sleep(ctx, time.Duration(attempt)*c.retryDelay); err != nil {
			lastErr = err
			break
		}
	}

	c.recordDuration(ctx, endpoint, start)
	metrics.Get().RemoteRequestFailuresTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("endpoint", endpoint)))
	span.RecordError(lastErr)
	span.SetStatus(codes.Error, "remote request failed")
	return nil, fmt.Errorf("%w: %s %s: %w", types.ErrRequestFailed, method, endpoint, lastErr)
}

func (c *Client) attempt(ctx context.Context, method, target, token string, payload []byte) (json.RawMessage, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: truncate(string(data), 200)}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return json.RawMessage("{}"), nil
	}
	if !json.Valid(data) {
		return nil, errors.New("response body is not valid JSON")
	}
	return json.RawMessage(data), nil
}

func (c *Client) recordDuration(ctx context.Context, endpoint string, start time.Time) {
	metrics.Get().RemoteRequestDurationSeconds.Record(ctx, time.Since(start).Seconds(),
		metric.WithAttributes(attribute.String("endpoint", endpoint)))
}

// Get fetches endpoint with optional query parameters.
func (c *Client) Get(ctx context.Context, endpoint, token string, query url.Values) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodGet, endpoint, token, query, nil)
}

// Post sends data as JSON. Empty payloads are rejected before any I/O.
func (c *Client) Post(ctx context.Context, endpoint, token string, data any) (json.RawMessage, error) {
	if isEmptyPayload(data) {
		return nil, fmt.Errorf("%w: data payload is required", types.ErrInvalidArgument)
	}
	return c.Do(ctx, http.MethodPost, endpoint, token, nil, data)
}

// StatusError reports a non-2xx response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

func isEmptyPayload(data any) bool {
	if data == nil {
		return true
	}
	b, err := json.Marshal(data)
	if err != nil {
		return false
	}
	switch string(bytes.TrimSpace(b)) {
	case "null", "{}", "[]", `""`:
		return true
	}
	return false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
