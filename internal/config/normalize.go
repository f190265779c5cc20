package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeSteam()
	if err := c.normalizeOverrides(); err != nil {
		return err
	}
	c.normalizePresence()
	if err := c.normalizeArtwork(); err != nil {
		return err
	}
	if err := c.normalizeHistory(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.CacheFile) == "" {
		c.Paths.CacheFile = defaultCacheFile()
	}
	if c.Paths.CacheFile, err = expandPath(strings.TrimSpace(c.Paths.CacheFile)); err != nil {
		return fmt.Errorf("paths.cache_file: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(strings.TrimSpace(c.Paths.StateDir)); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}

	mirror := strings.TrimSpace(c.Paths.MirrorFile)
	switch mirror {
	case mirrorDisabled:
		c.Paths.MirrorFile = mirrorDisabled
	case "":
		c.Paths.MirrorFile = filepath.Join(c.Paths.LogDir, cacheFileName)
	default:
		if c.Paths.MirrorFile, err = expandPath(mirror); err != nil {
			return fmt.Errorf("paths.mirror_file: %w", err)
		}
	}

	fallback := strings.TrimSpace(c.Paths.FallbackSnapshot)
	if fallback == fallbackDisabled {
		c.Paths.FallbackSnapshot = fallbackDisabled
		return nil
	}
	if c.Paths.FallbackSnapshot, err = expandPath(fallback); err != nil {
		return fmt.Errorf("paths.fallback_snapshot: %w", err)
	}
	return nil
}

func (c *Config) normalizeSteam() {
	c.Steam.SearchURL = strings.TrimSpace(c.Steam.SearchURL)
	if c.Steam.SearchURL == "" {
		c.Steam.SearchURL = defaultSteamSearchURL
	}
	c.Steam.UserAgent = strings.TrimSpace(c.Steam.UserAgent)
	if c.Steam.UserAgent == "" {
		c.Steam.UserAgent = defaultSteamUserAgent
	}
	if c.Steam.TimeoutSeconds == 0 {
		c.Steam.TimeoutSeconds = defaultSteamTimeoutSeconds
	}
	if c.Steam.InitialBackoffMillis == 0 {
		c.Steam.InitialBackoffMillis = defaultSteamInitialBackoff
	}
}

func (c *Config) normalizeOverrides() error {
	var err error
	if c.Overrides.Path, err = expandPath(strings.TrimSpace(c.Overrides.Path)); err != nil {
		return fmt.Errorf("overrides.path: %w", err)
	}
	return nil
}

func (c *Config) normalizePresence() {
	c.Presence.ClientID = strings.TrimSpace(c.Presence.ClientID)
	c.Presence.SocketPath = strings.TrimSpace(c.Presence.SocketPath)
}

func (c *Config) normalizeArtwork() error {
	if strings.TrimSpace(c.Artwork.Dir) == "" {
		c.Artwork.Dir = defaultArtworkDir
	}
	var err error
	if c.Artwork.Dir, err = expandPath(strings.TrimSpace(c.Artwork.Dir)); err != nil {
		return fmt.Errorf("artwork.dir: %w", err)
	}
	c.Artwork.CDNBaseURL = strings.TrimRight(strings.TrimSpace(c.Artwork.CDNBaseURL), "/")
	if c.Artwork.CDNBaseURL == "" {
		c.Artwork.CDNBaseURL = defaultArtworkCDNBaseURL
	}
	if c.Artwork.TimeoutSeconds == 0 {
		c.Artwork.TimeoutSeconds = defaultArtworkTimeoutSecond
	}
	return nil
}

func (c *Config) normalizeHistory() error {
	if strings.TrimSpace(c.History.Path) == "" {
		c.History.Path = filepath.Join(c.Paths.StateDir, "history.db")
	}
	var err error
	if c.History.Path, err = expandPath(strings.TrimSpace(c.History.Path)); err != nil {
		return fmt.Errorf("history.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
