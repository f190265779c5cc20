package overrides

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"gfnpresence/internal/logging"
)

// builtin pins titles whose storefront search never finds the right app.
var builtin = map[string]string{
	"ARC Raiders Playtest": "2427520",
}

// Builtin returns a copy of the compiled-in override table.
func Builtin() map[string]string {
	out := make(map[string]string, len(builtin))
	for title, id := range builtin {
		out[title] = id
	}
	return out
}

// Override pins an exact display title to a Steam app id.
type Override struct {
	Title string `json:"title"`
	AppID string `json:"app_id"`
}

// Catalog serves the compiled-in overrides plus an optional user file. The
// file is re-read whenever its modification time changes; entries from the
// file take precedence over the compiled-in table.
type Catalog struct {
	path   string
	logger *slog.Logger

	mu     sync.RWMutex
	loaded time.Time
	user   map[string]string
}

// NewCatalog constructs a catalog. An empty path serves the compiled-in table only.
func NewCatalog(path string, logger *slog.Logger) *Catalog {
	return &Catalog{
		path:   strings.TrimSpace(path),
		logger: logging.NewComponentLogger(logger, "overrides"),
	}
}

// Lookup returns the app id pinned to title. Titles match exactly.
func (c *Catalog) Lookup(title string) (string, bool) {
	if c == nil {
		id, ok := builtin[title]
		return id, ok
	}
	if err := c.ensureLoaded(); err != nil {
		logging.WarnWithContext(c.logger, "override file unreadable", "overrides_load_failed",
			logging.String("path", c.path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "fix the JSON in the overrides file"),
			logging.String(logging.FieldImpact, "only built-in overrides apply"),
		)
	}

	c.mu.RLock()
	id, ok := c.user[title]
	c.mu.RUnlock()
	if ok {
		return id, true
	}
	id, ok = builtin[title]
	return id, ok
}

// All returns every active override sorted by title.
func (c *Catalog) All() []Override {
	merged := Builtin()
	if c != nil {
		_ = c.ensureLoaded()
		c.mu.RLock()
		for title, id := range c.user {
			merged[title] = id
		}
		c.mu.RUnlock()
	}
	out := make([]Override, 0, len(merged))
	for title, id := range merged {
		out = append(out, Override{Title: title, AppID: id})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out
}

func (c *Catalog) ensureLoaded() error {
	if c.path == "" {
		return nil
	}
	info, err := os.Stat(c.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			c.mu.Lock()
			c.user, c.loaded = nil, time.Time{}
			c.mu.Unlock()
			return nil
		}
		return err
	}

	c.mu.RLock()
	alreadyLoaded := !c.loaded.IsZero() && c.loaded.Equal(info.ModTime())
	c.mu.RUnlock()
	if alreadyLoaded {
		return nil
	}

	data, err := os.ReadFile(c.path)
	if err != nil {
		return err
	}
	entries, err := parseOverrides(data)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.user = entries
	c.loaded = info.ModTime()
	c.mu.Unlock()
	c.logger.Info("loaded title overrides", logging.String("path", c.path), logging.Int("count", len(entries)))
	return nil
}

// parseOverrides accepts {"Title": "id"}, {"overrides": {...}} or
// {"overrides": [{"title": ..., "app_id": ...}]} and a bare array of the
// latter.
func parseOverrides(data []byte) (map[string]string, error) {
	data = bytes.TrimSpace(bytes.TrimPrefix(data, []byte("\xEF\xBB\xBF")))
	if len(data) == 0 {
		return nil, nil
	}

	if data[0] == '[' {
		var list []Override
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, err
		}
		return fromList(list)
	}

	var object map[string]json.RawMessage
	if err := json.Unmarshal(data, &object); err != nil {
		return nil, err
	}
	if wrapped, ok := object["overrides"]; ok && len(object) == 1 {
		if trimmed := bytes.TrimSpace(wrapped); len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
			return parseOverrides(trimmed)
		}
	}

	out := make(map[string]string, len(object))
	for title, raw := range object {
		var id string
		if err := json.Unmarshal(raw, &id); err != nil {
			var number json.Number
			if numErr := json.Unmarshal(raw, &number); numErr != nil {
				return nil, fmt.Errorf("override %q: app id must be a string", title)
			}
			id = number.String()
		}
		if err := addOverride(out, title, id); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func fromList(list []Override) (map[string]string, error) {
	out := make(map[string]string, len(list))
	for _, entry := range list {
		if err := addOverride(out, entry.Title, entry.AppID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func addOverride(out map[string]string, title, id string) error {
	title = strings.TrimSpace(title)
	id = strings.TrimSpace(id)
	if title == "" {
		return errors.New("override title must not be empty")
	}
	if id == "" {
		return fmt.Errorf("override %q: app id must not be empty", title)
	}
	out[title] = id
	return nil
}
