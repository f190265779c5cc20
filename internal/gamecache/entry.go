package gamecache

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Entry is a cached title resolution. Timestamped entries expire after the
// cache TTL; legacy entries (a bare id string on disk) never expire.
type Entry struct {
	ID       string
	CachedAt time.Time
	Legacy   bool
}

type timestampedEntry struct {
	ID string `json:"id"`
	TS int64  `json:"ts"`
}

// MarshalJSON writes legacy entries as a bare string and timestamped entries
// as {"id": ..., "ts": <epoch millis>}.
func (e Entry) MarshalJSON() ([]byte, error) {
	if e.Legacy {
		return json.Marshal(e.ID)
	}
	var ts int64
	if !e.CachedAt.IsZero() {
		ts = e.CachedAt.UnixMilli()
	}
	return json.Marshal(timestampedEntry{ID: e.ID, TS: ts})
}

// UnmarshalJSON accepts both on-disk shapes. null decodes to an entry with an
// empty id, which the load pass drops.
func (e *Entry) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return fmt.Errorf("empty cache entry")
	}
	switch trimmed[0] {
	case 'n':
		*e = Entry{}
		return nil
	case '"':
		var id string
		if err := json.Unmarshal(trimmed, &id); err != nil {
			return err
		}
		*e = Entry{ID: id, Legacy: true}
		return nil
	case '{':
		var raw struct {
			ID json.RawMessage `json:"id"`
			TS json.Number     `json:"ts"`
		}
		decoder := json.NewDecoder(bytes.NewReader(trimmed))
		decoder.UseNumber()
		if err := decoder.Decode(&raw); err != nil {
			return err
		}
		id, err := decodeID(raw.ID)
		if err != nil {
			return err
		}
		out := Entry{ID: id}
		if raw.TS != "" {
			millis, err := raw.TS.Float64()
			if err != nil {
				return fmt.Errorf("cache entry ts: %w", err)
			}
			if millis > 0 {
				out.CachedAt = time.UnixMilli(int64(millis))
			}
		}
		*e = out
		return nil
	default:
		return fmt.Errorf("cache entry must be a string or object, got %s", truncate(trimmed))
	}
}

func decodeID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '"' {
		var id string
		if err := json.Unmarshal(raw, &id); err != nil {
			return "", err
		}
		return id, nil
	}
	var number json.Number
	if err := json.Unmarshal(raw, &number); err != nil {
		return "", fmt.Errorf("cache entry id must be a string or number: %w", err)
	}
	if n, err := number.Int64(); err == nil {
		return strconv.FormatInt(n, 10), nil
	}
	return number.String(), nil
}

func truncate(data []byte) string {
	const limit = 32
	if len(data) > limit {
		return string(data[:limit]) + "..."
	}
	return string(data)
}

// Valid reports whether entry may be served. nil is never valid, legacy
// entries always are, and timestamped entries are valid while
// now - CachedAt <= ttl.
func Valid(entry *Entry, now time.Time, ttl time.Duration) bool {
	if entry == nil || entry.ID == "" {
		return false
	}
	if entry.Legacy {
		return true
	}
	if entry.CachedAt.IsZero() {
		return false
	}
	return now.Sub(entry.CachedAt) <= ttl
}
