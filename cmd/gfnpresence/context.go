package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"gfnpresence/internal/artwork"
	"gfnpresence/internal/config"
	"gfnpresence/internal/fetch"
	"gfnpresence/internal/gamecache"
	"gfnpresence/internal/history"
	"gfnpresence/internal/logging"
	"gfnpresence/internal/presence/discord"
	"gfnpresence/internal/resolution"
	"gfnpresence/internal/resolution/overrides"
	"gfnpresence/internal/steam"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() *slog.Logger {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "logging unavailable: %v\n", err)
			logger = logging.NewNop()
		}
		c.logger = logger
	})
	return c.logger
}

func (c *commandContext) openCache() (*gamecache.Cache, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	mirror := cfg.Paths.MirrorFile
	if cfg.MirrorDisabled() {
		mirror = ""
	}
	cache := gamecache.New(gamecache.Options{
		Path:         cfg.Paths.CacheFile,
		MirrorPath:   mirror,
		FallbackPath: cfg.Paths.FallbackSnapshot,
		TTL:          time.Duration(cfg.Cache.TTLDays) * 24 * time.Hour,
	}, c.ensureLogger())
	cache.Load()
	return cache, nil
}

func (c *commandContext) openHistory() (*history.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.History.Enabled {
		return nil, nil
	}
	return history.Open(cfg.History.Path)
}

// app bundles the resolution pipeline for commands that look titles up.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	cache    *gamecache.Cache
	resolver *resolution.Resolver
	history  *history.Store
}

func (c *commandContext) openApp() (*app, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger := c.ensureLogger()

	cache, err := c.openCache()
	if err != nil {
		return nil, err
	}

	searchFetcher := fetch.New(
		fetch.WithMaxRetries(cfg.Steam.MaxRetries),
		fetch.WithInitialBackoff(time.Duration(cfg.Steam.InitialBackoffMillis)*time.Millisecond),
		fetch.WithLogger(logger),
	)
	searcher, err := steam.New(searchFetcher,
		steam.WithSearchURL(cfg.Steam.SearchURL),
		steam.WithUserAgent(cfg.Steam.UserAgent),
		steam.WithTimeout(time.Duration(cfg.Steam.TimeoutSeconds)*time.Second),
		steam.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("steam client: %w", err)
	}

	opts := []resolution.Option{
		resolution.WithLogger(logger),
		resolution.WithOverrides(overrides.NewCatalog(cfg.Overrides.Path, logger)),
	}

	a := &app{cfg: cfg, logger: logger, cache: cache}

	store, err := c.openHistory()
	if err != nil {
		logging.WarnWithContext(logger, "history journal unavailable", "history_open_failed",
			logging.Error(err),
			logging.String("path", cfg.History.Path),
			logging.String(logging.FieldErrorHint, "delete the history database or set history.enabled = false"),
			logging.String(logging.FieldImpact, "lookups are not journaled"),
		)
	} else if store != nil {
		a.history = store
		opts = append(opts, resolution.WithRecorder(store))
	}

	if cfg.Artwork.Enabled {
		artFetcher := fetch.New(fetch.WithMaxRetries(1), fetch.WithLogger(logger))
		downloader, err := artwork.New(artFetcher, artwork.Options{
			Dir:     cfg.Artwork.Dir,
			BaseURL: cfg.Artwork.CDNBaseURL,
			Timeout: time.Duration(cfg.Artwork.TimeoutSeconds) * time.Second,
		}, logger)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("artwork downloader: %w", err)
		}
		opts = append(opts, resolution.WithArtwork(downloader))
	}

	resolver, err := resolution.NewResolver(cache, searcher, opts...)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.resolver = resolver
	return a, nil
}

// Close waits for artwork jobs and releases the journal.
func (a *app) Close() {
	if a.resolver != nil {
		a.resolver.Wait()
	}
	if a.history != nil {
		_ = a.history.Close()
	}
}

var errPresenceDisabled = errors.New("presence disabled (presence.enabled = false, DISABLE_RPC or DISCORD_DISABLE_IPC)")

func (a *app) discordClient() (*discord.Client, error) {
	if !a.cfg.Presence.Enabled {
		return nil, errPresenceDisabled
	}
	return discord.New(a.cfg.Presence.ClientID,
		discord.WithSocketPath(a.cfg.Presence.SocketPath),
		discord.WithLogger(a.logger),
	)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func isTerminal(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
