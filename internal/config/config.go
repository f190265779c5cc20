package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains file and directory locations.
type Paths struct {
	CacheFile        string `toml:"cache_file"`
	MirrorFile       string `toml:"mirror_file"`
	FallbackSnapshot string `toml:"fallback_snapshot"`
	StateDir         string `toml:"state_dir"`
	LogDir           string `toml:"log_dir"`
}

// Steam contains configuration for the storefront search client.
type Steam struct {
	SearchURL            string `toml:"search_url"`
	UserAgent            string `toml:"user_agent"`
	TimeoutSeconds       int    `toml:"timeout_seconds"`
	MaxRetries           int    `toml:"max_retries"`
	InitialBackoffMillis int    `toml:"initial_backoff_ms"`
}

// Cache contains configuration for the resolution cache.
type Cache struct {
	TTLDays int `toml:"ttl_days"`
}

// Overrides contains configuration for user supplied title to app id overrides.
type Overrides struct {
	Path string `toml:"path"`
}

// Presence contains configuration for the Discord rich presence transport.
type Presence struct {
	Enabled    bool   `toml:"enabled"`
	ClientID   string `toml:"client_id"`
	SocketPath string `toml:"socket_path"`
	Instance   bool   `toml:"instance"`
}

// Artwork contains configuration for the capsule artwork downloader.
type Artwork struct {
	Enabled        bool   `toml:"enabled"`
	Dir            string `toml:"dir"`
	CDNBaseURL     string `toml:"cdn_base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// History contains configuration for the lookup journal.
type History struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for gfnpresence.
//
// Configuration sections by subsystem:
//   - Paths: cache store, mirror, fallback snapshot, state and log directories
//   - Steam: search endpoint, user agent, timeout and retry policy
//   - Cache: entry time-to-live
//   - Overrides: optional user override file
//   - Presence: Discord client id and IPC transport switches
//   - Artwork: capsule downloader target directory and CDN
//   - History: sqlite lookup journal
//   - Logging: log format and level
type Config struct {
	Paths     Paths     `toml:"paths"`
	Steam     Steam     `toml:"steam"`
	Cache     Cache     `toml:"cache"`
	Overrides Overrides `toml:"overrides"`
	Presence  Presence  `toml:"presence"`
	Artwork   Artwork   `toml:"artwork"`
	History   History   `toml:"history"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. Environment
// toggles are applied after the file so they always win. The returned config
// has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	environment, err := ReadEnv()
	if err != nil {
		return nil, "", false, err
	}
	if path == "" {
		path = strings.TrimSpace(environment.ConfigPath)
	}

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.ApplyEnv(environment)

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("gfnpresence.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the CLI writes into.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.StateDir, c.Paths.LogDir, filepath.Dir(c.Paths.CacheFile)}
	if c.Artwork.Enabled {
		dirs = append(dirs, c.Artwork.Dir)
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// LockPath returns the single-instance lock file used by the watch loop.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "watch.lock")
}

// MirrorDisabled reports whether the cache mirror has been switched off.
func (c *Config) MirrorDisabled() bool {
	return c.Paths.MirrorFile == "" || c.Paths.MirrorFile == mirrorDisabled || c.Paths.MirrorFile == c.Paths.CacheFile
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// defaultCacheFile places the cache under the user config directory, falling
// back to the directory holding the executable.
func defaultCacheFile() string {
	if dir, err := os.UserConfigDir(); err == nil && strings.TrimSpace(dir) != "" {
		return filepath.Join(dir, "gfnpresence", cacheFileName)
	}
	if exe, err := os.Executable(); err == nil {
		return filepath.Join(filepath.Dir(exe), cacheFileName)
	}
	return cacheFileName
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
