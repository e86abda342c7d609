// internal/upstream/client.go
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
)

const (
	DefaultTimeout = 20 * time.Second
	DefaultRetries = 2
	DefaultStep    = 500 * time.Millisecond
)

// Recorder receives call outcomes. *metrics.Collector implements it.
type Recorder interface {
	RecordUpstream(upstream string, duration time.Duration, err error)
	RecordRetry(upstream string)
}

// Options tunes one upstream client.
type Options struct {
	// Timeout bounds each attempt.
	Timeout time.Duration
	// Retries is the number of extra attempts after the first.
	Retries int
	// Step is the linear backoff unit.
	Step time.Duration
}

// DefaultOptions returns the shared per-call policy.
func DefaultOptions() Options {
	return Options{
		Timeout: DefaultTimeout,
		Retries: DefaultRetries,
		Step:    DefaultStep,
	}
}

// Client performs JSON requests against one named upstream with a bounded retry policy.
type Client struct {
	name     string
	http     *http.Client
	opts     Options
	logger   *zap.Logger
	recorder Recorder
}

// New creates a client. httpClient may be nil.
func New(name string, httpClient *http.Client, opts Options, logger *zap.Logger, recorder Recorder) *Client {
	if httpClient == nil {
		httpClient = &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	if opts.Step <= 0 {
		opts.Step = DefaultStep
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		name:     name,
		http:     httpClient,
		opts:     opts,
		logger:   logger.Named(name),
		recorder: recorder,
	}
}

// Name returns the upstream label.
func (c *Client) Name() string { return c.name }

// GetJSON decodes the response of GET url into out.
func (c *Client) GetJSON(ctx context.Context, url string, out any) error {
	return c.do(ctx, http.MethodGet, url, nil, out)
}

// PostJSON sends body as JSON and decodes the response into out.
func (c *Client) PostJSON(ctx context.Context, url string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}
	return c.do(ctx, http.MethodPost, url, payload, out)
}

func (c *Client) do(ctx context.Context, method, url string, payload []byte, out any) error {
	start := time.Now()
	attempt := 0

	operation := func() (struct{}, error) {
		attempt++
		err := c.attempt(ctx, method, url, payload, out)
		if err == nil {
			return struct{}{}, nil
		}
		if !retryable(ctx, err) {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	}

	notify := func(err error, wait time.Duration) {
		if c.recorder != nil {
			c.recorder.RecordRetry(c.name)
		}
		c.logger.Debug("Retrying request",
			zap.String("method", method),
			zap.String("url", redact(url)),
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err))
	}

	_, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(NewLinearBackOff(c.opts.Step)),
		backoff.WithMaxTries(uint(c.opts.Retries+1)),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(notify),
	)

	duration := time.Since(start)
	if c.recorder != nil {
		c.recorder.RecordUpstream(c.name, duration, err)
	}
	if err != nil {
		c.logger.Warn("Upstream request failed",
			zap.String("method", method),
			zap.String("url", redact(url)),
			zap.Int("attempts", attempt),
			zap.Duration("duration", duration),
			zap.Error(err))
		return &Error{Err: err, Upstream: c.name, URL: redact(url)}
	}
	return nil
}

func (c *Client) attempt(ctx context.Context, method, url string, payload []byte, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{StatusCode: resp.StatusCode, Body: truncate(string(raw), maxBodyEcho)}
	}
	if out == nil {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return nil
}

// retryable: transport errors, per-attempt timeouts, 429 and 5xx.
func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	if errors.Is(err, ErrDecode) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Retryable()
	}
	var pe *backoff.PermanentError
	return !errors.As(err, &pe)
}
