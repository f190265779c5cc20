package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"gfnpresence/internal/logging"
)

const (
	// DefaultMaxRetries is the number of retries after the first attempt.
	DefaultMaxRetries = 3
	// DefaultInitialBackoff is the delay before the first retry; it doubles
	// for every following one.
	DefaultInitialBackoff = 500 * time.Millisecond
	// DefaultTimeout bounds a single attempt when the request sets none.
	DefaultTimeout = 15 * time.Second

	maxBodyBytes = 8 << 20
)

// Doer issues HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Request describes a GET.
type Request struct {
	URL     string
	Header  http.Header
	Timeout time.Duration
}

// Response is a fully read 2xx response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Client performs GET requests with exponential backoff retries.
type Client struct {
	doer           Doer
	maxRetries     int
	initialBackoff time.Duration
	sleep          Sleeper
	logger         *slog.Logger
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(doer Doer) Option {
	return func(c *Client) {
		if doer != nil {
			c.doer = doer
		}
	}
}

// WithMaxRetries overrides how many times a failed request is retried.
func WithMaxRetries(retries int) Option {
	return func(c *Client) {
		if retries >= 0 {
			c.maxRetries = retries
		}
	}
}

// WithInitialBackoff overrides the first retry delay.
func WithInitialBackoff(delay time.Duration) Option {
	return func(c *Client) {
		if delay >= 0 {
			c.initialBackoff = delay
		}
	}
}

// WithSleeper overrides how retry waits are performed (useful for tests).
func WithSleeper(sleeper Sleeper) Option {
	return func(c *Client) {
		if sleeper != nil {
			c.sleep = sleeper
		}
	}
}

// WithLogger attaches a logger for retry diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New constructs a fetch client.
func New(opts ...Option) *Client {
	c := &Client{
		doer:           &http.Client{},
		maxRetries:     DefaultMaxRetries,
		initialBackoff: DefaultInitialBackoff,
		sleep:          SleepWithContext,
		logger:         logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.NewComponentLogger(c.logger, "fetch")
	return c
}

// Get issues the request, retrying failed attempts after
// InitialBackoff * 2^attempt. Once the retries are spent the last failure is
// returned as a *NetworkError.
func (c *Client) Get(ctx context.Context, req Request) (*Response, error) {
	for attempt := 0; ; attempt++ {
		resp, err := c.once(ctx, req)
		if err == nil {
			return resp, nil
		}
		if ctx.Err() != nil {
			return nil, &NetworkError{URL: req.URL, Attempts: attempt + 1, Err: ctx.Err()}
		}
		if attempt >= c.maxRetries {
			return nil, &NetworkError{URL: req.URL, Attempts: attempt + 1, Err: err}
		}

		delay := c.backoff(attempt)
		c.logger.Debug("request failed, retrying",
			logging.String("url", req.URL),
			logging.Int("attempt", attempt+1),
			logging.Duration("delay", delay),
			logging.Error(err),
		)
		if err := c.sleep(ctx, delay); err != nil {
			return nil, &NetworkError{URL: req.URL, Attempts: attempt + 1, Err: err}
		}
	}
}

func (c *Client) backoff(attempt int) time.Duration {
	return c.initialBackoff << attempt
}

func (c *Client) once(ctx context.Context, req Request) (*Response, error) {
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, req.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	for key, values := range req.Header {
		for _, value := range values {
			httpReq.Header.Add(key, value)
		}
	}

	started := time.Now()
	resp, err := c.doer.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("http error (timeout=%s, latency=%s): %w", timeout, time.Since(started).Round(time.Millisecond), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}
	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: body}, nil
}

// SleepWithContext blocks for the given duration, returning early if the
// context is cancelled.
func SleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
