package config

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var discordClientIDPattern = regexp.MustCompile(`^\d{17,19}$`)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateSteam(); err != nil {
		return err
	}
	if err := c.validateCache(); err != nil {
		return err
	}
	if err := c.validatePresence(); err != nil {
		return err
	}
	if err := c.validateArtwork(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateSteam() error {
	if err := validateHTTPURL("steam.search_url", c.Steam.SearchURL); err != nil {
		return err
	}
	if err := ensurePositiveMap(map[string]int{
		"steam.timeout_seconds":    c.Steam.TimeoutSeconds,
		"steam.initial_backoff_ms": c.Steam.InitialBackoffMillis,
	}); err != nil {
		return err
	}
	if c.Steam.MaxRetries < 0 {
		return errors.New("steam.max_retries must be >= 0")
	}
	return nil
}

func (c *Config) validateCache() error {
	if c.Cache.TTLDays <= 0 {
		return errors.New("cache.ttl_days must be positive")
	}
	return nil
}

func (c *Config) validatePresence() error {
	if c.Presence.ClientID == "" {
		return nil
	}
	if !discordClientIDPattern.MatchString(c.Presence.ClientID) {
		return errors.New("presence.client_id must be 17-19 digits (or set DISCORD_CLIENT_ID)")
	}
	return nil
}

func (c *Config) validateArtwork() error {
	if !c.Artwork.Enabled {
		return nil
	}
	if strings.TrimSpace(c.Artwork.Dir) == "" {
		return errors.New("artwork.dir must be set when artwork.enabled is true")
	}
	if c.Artwork.TimeoutSeconds <= 0 {
		return errors.New("artwork.timeout_seconds must be positive")
	}
	return validateHTTPURL("artwork.cdn_base_url", c.Artwork.CDNBaseURL)
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q (use console or json)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

func validateHTTPURL(key, value string) error {
	parsed, err := url.Parse(value)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%s must be an http(s) URL", key)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%s must include a host", key)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
