package artwork

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gfnpresence/internal/fetch"
	"gfnpresence/internal/fileutil"
	"gfnpresence/internal/logging"
)

// DefaultCDNBaseURL hosts Steam store capsule images.
const DefaultCDNBaseURL = "https://cdn.cloudflare.steamstatic.com/steam/apps"

// Capsules are tried in order; the first one the CDN has wins.
var Capsules = []string{"hero_capsule.jpg", "library_600x900.jpg", "header.jpg"}

var appIDPattern = regexp.MustCompile(`^\d+$`)

// ErrNotFound means the CDN had none of the capsules.
var ErrNotFound = errors.New("no artwork available")

// Getter is the fetch capability the downloader needs.
type Getter interface {
	Get(ctx context.Context, req fetch.Request) (*fetch.Response, error)
}

// Options configures a Downloader.
type Options struct {
	Dir     string
	BaseURL string
	Timeout time.Duration
}

// Downloader stores one capsule image per app id under Dir.
type Downloader struct {
	fetcher Getter
	opts    Options
	logger  *slog.Logger
}

// New builds a downloader.
func New(fetcher Getter, opts Options, logger *slog.Logger) (*Downloader, error) {
	if fetcher == nil {
		return nil, errors.New("artwork downloader requires a fetcher")
	}
	if strings.TrimSpace(opts.Dir) == "" {
		return nil, errors.New("artwork directory required")
	}
	opts.BaseURL = strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultCDNBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = fetch.DefaultTimeout
	}
	return &Downloader{
		fetcher: fetcher,
		opts:    opts,
		logger:  logging.NewComponentLogger(logger, "artwork"),
	}, nil
}

// Path returns where artwork for appID is stored.
func (d *Downloader) Path(appID string) string {
	return filepath.Join(d.opts.Dir, appID+".jpg")
}

// Fetch downloads artwork for appID unless it is already on disk.
func (d *Downloader) Fetch(ctx context.Context, appID string) error {
	if !appIDPattern.MatchString(appID) {
		return fmt.Errorf("invalid app id %q", appID)
	}
	target := d.Path(appID)
	exists, err := fileutil.Exists(target)
	if err != nil {
		return fmt.Errorf("stat artwork: %w", err)
	}
	if exists {
		d.logger.Debug("artwork already cached", logging.String(logging.FieldAppID, appID))
		return nil
	}

	var lastErr error
	for _, capsule := range Capsules {
		url := fmt.Sprintf("%s/%s/%s", d.opts.BaseURL, appID, capsule)
		resp, err := d.fetcher.Get(ctx, fetch.Request{URL: url, Timeout: d.opts.Timeout})
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			d.logger.Debug("artwork capsule unavailable",
				logging.String(logging.FieldAppID, appID),
				logging.String("capsule", capsule),
				logging.Error(err))
			continue
		}
		if len(resp.Body) == 0 {
			lastErr = fmt.Errorf("empty %s", capsule)
			continue
		}
		if err := fileutil.WriteAtomic(target, resp.Body, 0o644); err != nil {
			return fmt.Errorf("save artwork: %w", err)
		}
		d.logger.Info("artwork saved",
			logging.String(logging.FieldAppID, appID),
			logging.String("capsule", capsule),
			logging.String("path", target))
		return nil
	}
	if lastErr != nil {
		return fmt.Errorf("%w for %s: %w", ErrNotFound, appID, lastErr)
	}
	return fmt.Errorf("%w for %s", ErrNotFound, appID)
}
