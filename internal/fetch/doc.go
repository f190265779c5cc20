// Package fetch performs HTTP GETs with per-attempt timeouts and exponential
// backoff (500ms, 1s, 2s by default). Exhausted retries surface as
// *NetworkError so callers can tell transport trouble apart from empty results.
package fetch
