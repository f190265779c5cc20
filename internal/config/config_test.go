package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"gfnpresence/internal/config"
)

func isolateEnv(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	for _, key := range []string{"DEBUG", "DISABLE_RPC", "DISCORD_CLIENT_ID", "DISCORD_DISABLE_IPC", "GFNPRESENCE_CONFIG"} {
		t.Setenv(key, "")
	}
	return home
}

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	home := isolateEnv(t)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved != filepath.Join(home, ".config", "gfnpresence", "config.toml") {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	if want := filepath.Join(home, ".config", "gfnpresence", "game_cache.json"); cfg.Paths.CacheFile != want {
		t.Fatalf("unexpected cache file: got %q want %q", cfg.Paths.CacheFile, want)
	}
	wantLogDir := filepath.Join(home, ".local", "share", "gfnpresence", "logs")
	if cfg.Paths.LogDir != wantLogDir {
		t.Fatalf("unexpected log dir: %q", cfg.Paths.LogDir)
	}
	if cfg.Paths.MirrorFile != filepath.Join(wantLogDir, "game_cache.json") {
		t.Fatalf("unexpected mirror file: %q", cfg.Paths.MirrorFile)
	}
	if cfg.MirrorDisabled() {
		t.Fatal("expected mirror enabled by default")
	}
	if cfg.History.Path != filepath.Join(cfg.Paths.StateDir, "history.db") {
		t.Fatalf("unexpected history path: %q", cfg.History.Path)
	}
	if cfg.Steam.TimeoutSeconds != 15 || cfg.Steam.MaxRetries != 3 || cfg.Steam.InitialBackoffMillis != 500 {
		t.Fatalf("unexpected steam defaults: %+v", cfg.Steam)
	}
	if cfg.Cache.TTLDays != 30 {
		t.Fatalf("unexpected ttl: %d", cfg.Cache.TTLDays)
	}
	if !cfg.Presence.Enabled {
		t.Fatal("expected presence enabled by default")
	}
	if cfg.Artwork.Enabled {
		t.Fatal("expected artwork disabled by default")
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.StateDir, cfg.Paths.LogDir, filepath.Dir(cfg.Paths.CacheFile)} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	isolateEnv(t)
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "gfnpresence.toml")

	type payload struct {
		Paths struct {
			CacheFile  string `toml:"cache_file"`
			MirrorFile string `toml:"mirror_file"`
		} `toml:"paths"`
		Cache struct {
			TTLDays int `toml:"ttl_days"`
		} `toml:"cache"`
		Presence struct {
			Enabled  bool   `toml:"enabled"`
			ClientID string `toml:"client_id"`
		} `toml:"presence"`
	}
	custom := payload{}
	custom.Paths.CacheFile = filepath.Join(tempDir, "cache.json")
	custom.Paths.MirrorFile = "-"
	custom.Cache.TTLDays = 7
	custom.Presence.Enabled = true
	custom.Presence.ClientID = "123456789012345678"
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Paths.CacheFile != custom.Paths.CacheFile {
		t.Fatalf("expected cache file from config, got %q", cfg.Paths.CacheFile)
	}
	if !cfg.MirrorDisabled() {
		t.Fatalf("expected mirror disabled, got %q", cfg.Paths.MirrorFile)
	}
	if cfg.Cache.TTLDays != 7 {
		t.Fatalf("expected ttl 7, got %d", cfg.Cache.TTLDays)
	}
	if cfg.Presence.ClientID != "123456789012345678" {
		t.Fatalf("unexpected client id %q", cfg.Presence.ClientID)
	}
}

func TestLoadUsesConfigPathFromEnv(t *testing.T) {
	isolateEnv(t)
	configPath := filepath.Join(t.TempDir(), "custom.toml")
	if err := os.WriteFile(configPath, []byte("[cache]\nttl_days = 2\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("GFNPRESENCE_CONFIG", configPath)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected env config path, got %q (exists=%v)", resolved, exists)
	}
	if cfg.Cache.TTLDays != 2 {
		t.Fatalf("expected ttl from env config, got %d", cfg.Cache.TTLDays)
	}
}

func TestEnvTogglesApplyOnTopOfFile(t *testing.T) {
	isolateEnv(t)
	configPath := filepath.Join(t.TempDir(), "gfnpresence.toml")
	if err := os.WriteFile(configPath, []byte("[presence]\nenabled = true\n[logging]\nlevel = \"warn\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("DEBUG", "true")
	t.Setenv("DISABLE_RPC", "true")
	t.Setenv("DISCORD_CLIENT_ID", "98765432109876543")

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected DEBUG to force debug level, got %q", cfg.Logging.Level)
	}
	if cfg.Presence.Enabled {
		t.Error("expected DISABLE_RPC to switch presence off")
	}
	if cfg.Presence.ClientID != "98765432109876543" {
		t.Errorf("expected client id from env, got %q", cfg.Presence.ClientID)
	}
}

func TestApplyEnvKeepsConfiguredClientID(t *testing.T) {
	cfg := config.Default()
	cfg.Presence.ClientID = "111111111111111111"
	cfg.ApplyEnv(config.Env{DiscordClientID: "222222222222222222", DiscordDisableIPC: true})
	if cfg.Presence.ClientID != "111111111111111111" {
		t.Fatalf("expected configured client id to win, got %q", cfg.Presence.ClientID)
	}
	if cfg.Presence.Enabled {
		t.Fatal("expected DISCORD_DISABLE_IPC to switch presence off")
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "[presence]") {
		t.Fatalf("sample config missing presence section: %s", contents)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if cfg.Steam.UserAgent != "Mozilla/5.0 (compatible; GFN-Electron)" {
		t.Fatalf("unexpected sample user agent %q", cfg.Steam.UserAgent)
	}
	if !strings.Contains(cfg.Paths.StateDir, "gfnpresence") {
		t.Fatalf("expected state dir to contain gfnpresence, got %q", cfg.Paths.StateDir)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"zero ttl", func(c *config.Config) { c.Cache.TTLDays = 0 }},
		{"negative retries", func(c *config.Config) { c.Steam.MaxRetries = -1 }},
		{"zero timeout", func(c *config.Config) { c.Steam.TimeoutSeconds = 0 }},
		{"search url scheme", func(c *config.Config) { c.Steam.SearchURL = "ftp://store.example" }},
		{"short client id", func(c *config.Config) { c.Presence.ClientID = "12345" }},
		{"artwork cdn", func(c *config.Config) {
			c.Artwork.Enabled = true
			c.Artwork.CDNBaseURL = "not a url"
		}},
		{"log format", func(c *config.Config) { c.Logging.Format = "xml" }},
		{"log level", func(c *config.Config) { c.Logging.Level = "trace" }},
	}

	base := config.Default()
	if err := base.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestLoadKeepsDisabledFallbackSnapshot(t *testing.T) {
	isolateEnv(t)
	configPath := filepath.Join(t.TempDir(), "gfnpresence.toml")
	if err := os.WriteFile(configPath, []byte("[paths]\nfallback_snapshot = \"-\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Paths.FallbackSnapshot != "-" {
		t.Fatalf("expected disabled fallback to stay %q, got %q", "-", cfg.Paths.FallbackSnapshot)
	}
}
