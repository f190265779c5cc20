package steam

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"gfnpresence/internal/fetch"
	"gfnpresence/internal/logging"
)

const (
	// DefaultSearchURL is the storefront search page.
	DefaultSearchURL = "https://store.steampowered.com/search/"
	// DefaultUserAgent is sent with every search request.
	DefaultUserAgent = "Mozilla/5.0 (compatible; GFN-Electron)"
	// DefaultTimeout bounds one search attempt.
	DefaultTimeout = 15 * time.Second
	// SoftwareCategory restricts results to games and software.
	SoftwareCategory = "998"
)

// Result is a single storefront search hit.
type Result struct {
	AppID string
	Title string
}

// Getter performs a GET. *fetch.Client satisfies it.
type Getter interface {
	Get(ctx context.Context, req fetch.Request) (*fetch.Response, error)
}

// Searcher defines the search operation used by resolution.
type Searcher interface {
	Search(ctx context.Context, query string) ([]Result, error)
}

// Client searches the Steam storefront.
type Client struct {
	fetcher   Getter
	searchURL string
	userAgent string
	timeout   time.Duration
	logger    *slog.Logger
}

var _ Searcher = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithSearchURL overrides the search endpoint.
func WithSearchURL(raw string) Option {
	return func(c *Client) {
		if raw = strings.TrimSpace(raw); raw != "" {
			c.searchURL = raw
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(agent string) Option {
	return func(c *Client) {
		if agent = strings.TrimSpace(agent); agent != "" {
			c.userAgent = agent
		}
	}
}

// WithTimeout overrides the per-attempt timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a search client on top of the given fetcher.
func New(fetcher Getter, opts ...Option) (*Client, error) {
	if fetcher == nil {
		return nil, errors.New("steam search: fetcher required")
	}
	client := &Client{
		fetcher:   fetcher,
		searchURL: DefaultSearchURL,
		userAgent: DefaultUserAgent,
		timeout:   DefaultTimeout,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(client)
	}
	if _, err := url.Parse(client.searchURL); err != nil {
		return nil, fmt.Errorf("parse steam search url: %w", err)
	}
	client.logger = logging.NewComponentLogger(client.logger, "steam")
	return client, nil
}

// SearchURL builds the search request URL for query.
func SearchURL(base, query string) (string, error) {
	endpoint, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse steam search url: %w", err)
	}
	params := endpoint.Query()
	params.Set("term", query)
	params.Set("category1", SoftwareCategory)
	endpoint.RawQuery = params.Encode()
	return endpoint.String(), nil
}

// Search queries the storefront and returns hits in page order. A page with
// no hits yields an empty slice and a nil error. Transport failures are
// returned as *fetch.NetworkError.
func (c *Client) Search(ctx context.Context, query string) ([]Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query must not be empty")
	}
	endpoint, err := SearchURL(c.searchURL, query)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	resp, err := c.fetcher.Get(ctx, fetch.Request{
		URL:     endpoint,
		Header:  http.Header{"User-Agent": []string{c.userAgent}},
		Timeout: c.timeout,
	})
	latency := time.Since(started)
	if err != nil {
		return nil, fmt.Errorf("steam search %q (latency=%v): %w", query, latency, err)
	}

	results, err := ParseResults(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, fmt.Errorf("parse steam search %q: %w", query, err)
	}
	c.logger.Debug("steam search complete",
		logging.String("query", query),
		logging.Int("results", len(results)),
		logging.Duration("latency", latency),
	)
	return results, nil
}
