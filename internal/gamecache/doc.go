// Package gamecache provides the persistent title to Steam app id cache.
//
// # Storage
//
// The cache is a JSON object keyed by the exact display title. Values are
// either {"id": "1240440", "ts": 1760000000000} (epoch millis of insertion)
// or a bare id string for legacy entries, which never expire:
//
//	{
//	  "Dota 2": "570",
//	  "Halo Infinite": {"id": "1240440", "ts": 1760000000000}
//	}
//
// Every write is mirrored to a second file (by default inside the log
// directory). When no store exists yet the cache is seeded from a snapshot of
// common titles bundled with the binary.
package gamecache
