// Package config loads, normalizes, and validates gfnpresence configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files and layers the DEBUG, DISABLE_RPC,
// DISCORD_CLIENT_ID and DISCORD_DISABLE_IPC environment toggles on top. The
// Config type centralizes the cache locations, Steam search policy, presence
// transport switches and artwork settings the CLI needs.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
