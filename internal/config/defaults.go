package config

const (
	defaultConfigPath           = "~/.config/gfnpresence/config.toml"
	cacheFileName               = "game_cache.json"
	mirrorDisabled              = "-"
	fallbackDisabled            = "-"
	defaultStateDir             = "~/.local/state/gfnpresence"
	defaultLogDir               = "~/.local/share/gfnpresence/logs"
	defaultSteamSearchURL       = "https://store.steampowered.com/search/"
	defaultSteamUserAgent       = "Mozilla/5.0 (compatible; GFN-Electron)"
	defaultSteamTimeoutSeconds  = 15
	defaultSteamMaxRetries      = 3
	defaultSteamInitialBackoff  = 500
	defaultCacheTTLDays         = 30
	defaultOverridesPath        = "~/.config/gfnpresence/overrides.json"
	defaultArtworkDir           = "~/.local/share/gfnpresence/artwork"
	defaultArtworkCDNBaseURL    = "https://cdn.cloudflare.steamstatic.com/steam/apps"
	defaultArtworkTimeoutSecond = 15
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			CacheFile: defaultCacheFile(),
			StateDir:  defaultStateDir,
			LogDir:    defaultLogDir,
		},
		Steam: Steam{
			SearchURL:            defaultSteamSearchURL,
			UserAgent:            defaultSteamUserAgent,
			TimeoutSeconds:       defaultSteamTimeoutSeconds,
			MaxRetries:           defaultSteamMaxRetries,
			InitialBackoffMillis: defaultSteamInitialBackoff,
		},
		Cache: Cache{
			TTLDays: defaultCacheTTLDays,
		},
		Overrides: Overrides{
			Path: defaultOverridesPath,
		},
		Presence: Presence{
			Enabled:  true,
			Instance: true,
		},
		Artwork: Artwork{
			Enabled:        false,
			Dir:            defaultArtworkDir,
			CDNBaseURL:     defaultArtworkCDNBaseURL,
			TimeoutSeconds: defaultArtworkTimeoutSecond,
		},
		History: History{
			Enabled: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
