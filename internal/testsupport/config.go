package testsupport

import (
	"path/filepath"
	"testing"

	"gfnpresence/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config whose paths all live in a per-test temp
// directory. Presence is disabled and no fallback snapshot is used unless an
// option says otherwise.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.CacheFile = filepath.Join(base, "config", "game_cache.json")
	cfgVal.Paths.MirrorFile = filepath.Join(base, "logs", "game_cache.json")
	cfgVal.Paths.FallbackSnapshot = "-"
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Overrides.Path = filepath.Join(base, "config", "overrides.json")
	cfgVal.Presence.Enabled = false
	cfgVal.Artwork.Dir = filepath.Join(base, "artwork")
	cfgVal.History.Path = filepath.Join(base, "state", "history.db")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithSteamSearchURL points the search client at a test server.
func WithSteamSearchURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Steam.SearchURL = url
		b.cfg.Steam.MaxRetries = 0
	}
}

// WithArtwork enables artwork downloads from the given CDN base URL.
func WithArtwork(baseURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Artwork.Enabled = true
		b.cfg.Artwork.CDNBaseURL = baseURL
	}
}

// WithoutHistory disables the lookup journal.
func WithoutHistory() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.History.Enabled = false
	}
}

// WithBaseDir reports the temp directory backing the config into dst.
func WithBaseDir(dst *string) ConfigOption {
	return func(b *configBuilder) {
		*dst = b.baseDir
	}
}
