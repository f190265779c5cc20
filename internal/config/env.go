package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Env holds the environment toggles honoured on top of the config file.
type Env struct {
	Debug             bool   `env:"DEBUG"`
	DisableRPC        bool   `env:"DISABLE_RPC"`
	DiscordClientID   string `env:"DISCORD_CLIENT_ID"`
	DiscordDisableIPC bool   `env:"DISCORD_DISABLE_IPC"`
	ConfigPath        string `env:"GFNPRESENCE_CONFIG"`
}

// ReadEnv loads the environment toggles.
func ReadEnv() (Env, error) {
	var out Env
	if err := env.Parse(&out); err != nil {
		return Env{}, fmt.Errorf("parse env: %w", err)
	}
	return out, nil
}

// ApplyEnv folds environment toggles into the config. A client id from the
// config file takes precedence over DISCORD_CLIENT_ID.
func (c *Config) ApplyEnv(e Env) {
	if e.Debug {
		c.Logging.Level = "debug"
	}
	if e.DisableRPC || e.DiscordDisableIPC {
		c.Presence.Enabled = false
	}
	if c.Presence.ClientID == "" {
		c.Presence.ClientID = e.DiscordClientID
	}
}
