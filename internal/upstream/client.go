// Package upstream is the boundary between the reply pipeline and the
// third-party HTTP services it depends on (NLU, geocoding, weather). Every
// outbound call goes through BaseClient, which applies the same policy to
// all of them: a per-call deadline, a bounded retry count, a circuit breaker,
// trace propagation, and mapping of failures to *Error.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// maxResponseBytes caps how much of an upstream body is read into memory.
const maxResponseBytes = 4 << 20

// RetryPolicy configures retries for transient upstream failures (transport
// errors, 429 and 5xx).
type RetryPolicy struct {
	MaxRetries int
	MinWait    time.Duration
	MaxWait    time.Duration
}

// DefaultRetryPolicy performs a single attempt. Any upstream failure is
// terminal for the request that triggered it.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: 0,
		MinWait:    200 * time.Millisecond,
		MaxWait:    2 * time.Second,
	}
}

// BaseClient wraps an *http.Client with a circuit breaker, a per-call timeout
// and a retry policy. Service clients embed or hold one.
type BaseClient struct {
	service   string
	client    *http.Client
	breaker   *gobreaker.CircuitBreaker[[]byte]
	retry     RetryPolicy
	timeout   time.Duration
	userAgent string
	sleepFn   func(context.Context, time.Duration) error
}

// Option configures a BaseClient.
type Option func(*BaseClient)

// WithHTTPClient replaces the default instrumented client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *BaseClient) { c.client = hc }
}

// WithRetryPolicy overrides DefaultRetryPolicy.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(c *BaseClient) { c.retry = p }
}

// WithTimeout sets the deadline applied to each attempt. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *BaseClient) { c.timeout = d }
}

// WithUserAgent sets the User-Agent header sent on every request.
func WithUserAgent(ua string) Option {
	return func(c *BaseClient) { c.userAgent = ua }
}

// WithSleepFunc overrides the wait between retries. Intended for tests.
func WithSleepFunc(fn func(context.Context, time.Duration) error) Option {
	return func(c *BaseClient) { c.sleepFn = fn }
}

// NewBaseClient creates a client for the named service. The name is used as
// the breaker name, the metrics label and the Service field of *Error.
func NewBaseClient(service string, opts ...Option) *BaseClient {
	c := &BaseClient{
		service:   service,
		client:    &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		retry:     DefaultRetryPolicy(),
		timeout:   5 * time.Second,
		userAgent: "telemacher/1.0",
		sleepFn:   sleepCtx,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        service,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
		// Caller cancellation says nothing about upstream health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
	return c
}

// Service returns the name the client was created with.
func (c *BaseClient) Service() string { return c.service }

// Do sends req and returns the body of a 2xx response. Non-2xx statuses,
// transport failures, deadline expiry and an open breaker are all returned as
// *Error. The request body, if any, is replayed on retries.
func (c *BaseClient) Do(ctx context.Context, req *http.Request) ([]byte, error) {
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	var payload []byte
	if req.Body != nil {
		var err error
		payload, err = io.ReadAll(req.Body)
		req.Body.Close()
		if err != nil {
			return nil, c.fail(0, fmt.Errorf("read request body: %w", err))
		}
	}

	var (
		lastStatus int
		lastErr    error
	)
	attempts := 1 + max(c.retry.MaxRetries, 0)
	for attempt := 0; attempt < attempts; attempt++ {
		body, status, err := c.attempt(ctx, req, payload)
		if err == nil {
			observe(c.service, outcomeOK)
			return body, nil
		}
		lastStatus, lastErr = status, err

		if !retryable(status, err) || ctx.Err() != nil {
			break
		}
		if attempt < attempts-1 {
			if serr := c.sleepFn(ctx, c.backoff(attempt)); serr != nil {
				lastErr = serr
				break
			}
		}
	}
	return nil, c.fail(lastStatus, lastErr)
}

func (c *BaseClient) attempt(ctx context.Context, req *http.Request, payload []byte) ([]byte, int, error) {
	var status int
	body, err := c.breaker.Execute(func() ([]byte, error) {
		actx, cancel := ctx, func() {}
		if c.timeout > 0 {
			actx, cancel = context.WithTimeout(ctx, c.timeout)
		}
		defer cancel()

		r := req.Clone(actx)
		if payload != nil {
			r.Body = io.NopCloser(bytes.NewReader(payload))
			r.ContentLength = int64(len(payload))
		}
		resp, err := c.client.Do(r)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		status = resp.StatusCode

		b, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		if err != nil {
			return nil, err
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
		}
		return b, nil
	})
	return body, status, err
}

// GetJSON issues a GET to url and decodes the 2xx body into out.
func (c *BaseClient) GetJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return c.fail(0, err)
	}
	req.Header.Set("Accept", "application/json")
	return c.doJSON(ctx, req, out)
}

// PostJSON encodes in as the request body, POSTs it to url and decodes the
// 2xx body into out.
func (c *BaseClient) PostJSON(ctx context.Context, url string, in, out any) error {
	b, err := json.Marshal(in)
	if err != nil {
		return c.fail(0, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return c.fail(0, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return c.doJSON(ctx, req, out)
}

func (c *BaseClient) doJSON(ctx context.Context, req *http.Request, out any) error {
	body, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &Error{Service: c.service, Err: fmt.Errorf("%w: %v", ErrDecode, err)}
	}
	return nil
}

func (c *BaseClient) fail(status int, err error) *Error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		observe(c.service, outcomeOpen)
		return &Error{Service: c.service, Err: fmt.Errorf("%w: %v", ErrCircuitOpen, err)}
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		observe(c.service, outcomeTimeout)
	default:
		observe(c.service, outcomeError)
	}
	return &Error{Service: c.service, Status: status, Err: err}
}

// backoff returns the wait before retry number attempt+1: exponential from
// MinWait, capped at MaxWait, with full jitter above MinWait.
func (c *BaseClient) backoff(attempt int) time.Duration {
	minWait := float64(c.retry.MinWait)
	base := minWait * math.Pow(2, float64(attempt))
	if maxWait := float64(c.retry.MaxWait); base > maxWait {
		base = maxWait
	}
	if base <= minWait {
		return c.retry.MinWait
	}
	return time.Duration(minWait + rand.Float64()*(base-minWait))
}

func retryable(status int, err error) bool {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if status == 0 {
		return true
	}
	return status == http.StatusTooManyRequests || status >= 500
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
