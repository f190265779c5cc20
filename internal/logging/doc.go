// Package logging assembles the slog loggers used across gfnpresence.
//
// It owns the console and JSON handlers, level and output plumbing, and
// context helpers that tag lines with the correlation id, title and source of
// the lookup being served. WARN and ERROR records go through WarnWithContext
// and ErrorWithContext so every one carries event_type and error_hint fields.
// NewNop returns a discarding logger for tests and optional wiring.
package logging
