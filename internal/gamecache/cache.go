package gamecache

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"gfnpresence/internal/fileutil"
	"gfnpresence/internal/logging"
)

// DefaultTTL is how long a timestamped entry stays valid.
const DefaultTTL = 30 * 24 * time.Hour

// NoFallback disables the seed snapshot when used as Options.FallbackPath.
const NoFallback = "-"

//go:embed common_cache.json
var bundledSnapshot []byte

// LoadSource tells where Load found its entries.
type LoadSource string

const (
	SourcePrimary  LoadSource = "primary"
	SourceFallback LoadSource = "fallback"
	SourceEmpty    LoadSource = "empty"
)

// Options configures a Cache.
type Options struct {
	// Path is the primary store. An empty path keeps the cache in memory only.
	Path string
	// MirrorPath receives a copy of every write. Empty disables the mirror.
	MirrorPath string
	// FallbackPath seeds the cache when Path does not exist yet. Empty uses
	// the snapshot bundled with the binary; NoFallback uses none.
	FallbackPath string
	TTL          time.Duration
	Now          func() time.Time
}

// Record pairs a title with its cached entry.
type Record struct {
	Title string
	Entry Entry
}

// Cache maps display titles to Steam app ids. All methods are safe for
// concurrent use; writes are last-writer-wins per title.
type Cache struct {
	opts    Options
	logger  *slog.Logger
	mu      sync.RWMutex
	entries map[string]Entry
}

// New creates an empty cache. Call Load to read the stores.
func New(opts Options, logger *slog.Logger) *Cache {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.MirrorPath == opts.Path {
		opts.MirrorPath = ""
	}
	return &Cache{
		opts:    opts,
		logger:  logging.NewComponentLogger(logger, "gamecache"),
		entries: make(map[string]Entry),
	}
}

// Path returns the primary store location.
func (c *Cache) Path() string { return c.opts.Path }

// TTL returns the validity window of timestamped entries.
func (c *Cache) TTL() time.Duration { return c.opts.TTL }

// Load replaces the in-memory entries with the primary store. When the store
// does not exist the fallback snapshot seeds the cache. A file that is not a
// JSON object is logged and leaves the cache empty; malformed entries are
// logged and skipped one by one.
func (c *Cache) Load() LoadSource {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]Entry)

	if c.opts.Path != "" {
		data, err := os.ReadFile(c.opts.Path)
		switch {
		case err == nil:
			entries, skipped, err := decode(data)
			if err != nil {
				c.warnParse(&ParseError{Path: c.opts.Path, Err: err})
				return SourceEmpty
			}
			c.warnSkipped(c.opts.Path, skipped)
			c.entries = entries
			c.logger.Debug("loaded game cache",
				logging.Int("entry_count", len(entries)),
				logging.String("path", c.opts.Path))
			return SourcePrimary
		case !errors.Is(err, fs.ErrNotExist):
			c.warnParse(&ParseError{Path: c.opts.Path, Err: err})
			return SourceEmpty
		}
	}

	name, data, ok := c.fallbackData()
	if !ok {
		return SourceEmpty
	}
	entries, skipped, err := decode(data)
	if err != nil {
		c.warnParse(&ParseError{Path: name, Err: err})
		return SourceEmpty
	}
	c.warnSkipped(name, skipped)
	c.entries = entries
	c.logger.Debug("seeded game cache from fallback snapshot",
		logging.Int("entry_count", len(entries)),
		logging.String("source", name))
	return SourceFallback
}

func (c *Cache) fallbackData() (string, []byte, bool) {
	switch c.opts.FallbackPath {
	case NoFallback:
		return "", nil, false
	case "":
		return "bundled snapshot", bundledSnapshot, len(bundledSnapshot) > 0
	}
	data, err := os.ReadFile(c.opts.FallbackPath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			c.logger.Debug("fallback snapshot unreadable",
				logging.String("path", c.opts.FallbackPath),
				logging.Error(err))
		}
		return "", nil, false
	}
	return c.opts.FallbackPath, data, true
}

func (c *Cache) warnParse(err *ParseError) {
	logging.WarnWithContext(c.logger, "game cache unreadable; starting empty", "gamecache_load_failed",
		logging.Error(err),
		logging.String("path", err.Path),
		logging.String(logging.FieldErrorHint, "fix or delete the cache file"),
		logging.String(logging.FieldImpact, "previously resolved titles will be looked up again"),
	)
}

func (c *Cache) warnSkipped(path string, titles []string) {
	if len(titles) == 0 {
		return
	}
	logging.WarnWithContext(c.logger, "skipped malformed game cache entries", "gamecache_entries_skipped",
		logging.String("path", path),
		logging.Int("skipped_count", len(titles)),
		logging.String("titles", strings.Join(titles, ", ")),
		logging.String(logging.FieldErrorHint, "entries must be an id string or an {\"id\", \"ts\"} object"),
		logging.String(logging.FieldImpact, "skipped titles are looked up again"),
	)
}

// decode parses a store. Entries that are not a string or an {id, ts} object
// are skipped and returned by title; entries without an id are dropped.
func decode(data []byte) (map[string]Entry, []string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if len(bytes.TrimSpace(data)) == 0 {
		return make(map[string]Entry), nil, nil
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, err
	}
	entries := make(map[string]Entry, len(raw))
	var skipped []string
	for title, value := range raw {
		var entry Entry
		if err := json.Unmarshal(value, &entry); err != nil {
			skipped = append(skipped, title)
			continue
		}
		entry.ID = strings.TrimSpace(entry.ID)
		if entry.ID == "" {
			continue
		}
		entries[title] = entry
	}
	sort.Strings(skipped)
	return entries, skipped, nil
}

// Reset drops every in-memory entry without touching disk.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]Entry)
}

// Get returns the id of a valid entry for title.
func (c *Cache) Get(title string) (string, bool) {
	c.mu.RLock()
	entry, ok := c.entries[title]
	c.mu.RUnlock()
	if !ok || !Valid(&entry, c.opts.Now(), c.opts.TTL) {
		return "", false
	}
	return entry.ID, true
}

// Lookup returns the raw entry for title regardless of validity.
func (c *Cache) Lookup(title string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[title]
	return entry, ok
}

// Put stores a fresh timestamped entry and persists the cache. Persistence
// failures are logged; the in-memory entry is kept either way.
func (c *Cache) Put(title, id string) {
	id = strings.TrimSpace(id)
	if title == "" || id == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[title] = Entry{ID: id, CachedAt: c.opts.Now()}
	c.persistLocked()
	c.logger.Debug("cached steam id",
		logging.String(logging.FieldTitle, title),
		logging.String(logging.FieldAppID, id))
}

// Remove deletes title from the cache and persists the change. It reports
// whether an entry existed.
func (c *Cache) Remove(title string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[title]; !ok {
		return false
	}
	delete(c.entries, title)
	c.persistLocked()
	return true
}

// Entries returns every entry sorted by title.
func (c *Cache) Entries() []Record {
	c.mu.RLock()
	defer c.mu.RUnlock()

	records := make([]Record, 0, len(c.entries))
	for title, entry := range c.entries {
		records = append(records, Record{Title: title, Entry: entry})
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Title < records[j].Title
	})
	return records
}

// Len returns the number of entries, valid or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Save persists the current entries. It returns the first failure so
// callers that need a hard guarantee can check it.
func (c *Cache) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.persistLocked()
}

func (c *Cache) persistLocked() error {
	if c.opts.Path == "" {
		return nil
	}
	data, err := encode(c.entries)
	if err != nil {
		perr := &PersistenceError{Path: c.opts.Path, Err: err}
		c.warnPersist(perr)
		return perr
	}

	var first error
	for _, path := range []string{c.opts.Path, c.opts.MirrorPath} {
		if path == "" {
			continue
		}
		if err := fileutil.WriteAtomic(path, data, 0o644); err != nil {
			perr := &PersistenceError{Path: path, Err: err}
			c.warnPersist(perr)
			if first == nil {
				first = perr
			}
		}
	}
	return first
}

func (c *Cache) warnPersist(err *PersistenceError) {
	logging.WarnWithContext(c.logger, "game cache write failed", "gamecache_persist_failed",
		logging.Error(err),
		logging.String("path", err.Path),
		logging.String(logging.FieldErrorHint, "check permissions and free space for the cache directory"),
		logging.String(logging.FieldImpact, "resolutions stay in memory and are lost on exit"),
	)
}

func encode(entries map[string]Entry) ([]byte, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(entries); err != nil {
		return nil, fmt.Errorf("marshal cache: %w", err)
	}
	return buf.Bytes(), nil
}
