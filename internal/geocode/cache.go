// Package geocode resolves free-text location strings to coordinates
// through a tiered chain: persistent cache, manual corrections, local
// gazetteer, remote Nominatim queries with region-priority selection.
package geocode

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// CacheEntry is one memoized resolution. Entries are never evicted or
// re-validated; once cached, a location resolves identically until the file
// is edited externally.
type CacheEntry struct {
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	Source    string  `json:"source"`
	DateAdded string  `json:"date_added,omitempty"`
}

// Cache is the process-lifetime store of resolved locations, loaded once at
// construction and flushed as a whole document on every addition. Keys
// starting with "_" are documentation entries carried through untouched.
type Cache struct {
	path    string
	entries map[string]CacheEntry
	extra   map[string]json.RawMessage
	now     func() time.Time
	log     *slog.Logger
}

// OpenCache loads the cache file. A missing or unreadable file yields an
// empty cache, not an error.
func OpenCache(path string, log *slog.Logger) *Cache {
	c := &Cache{
		path:    path,
		entries: make(map[string]CacheEntry),
		extra:   make(map[string]json.RawMessage),
		now:     time.Now,
		log:     log,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return c
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		log.Warn("cannot parse location cache, starting empty", "path", path, "error", err)
		return c
	}
	for key, raw := range doc {
		if len(key) > 0 && key[0] == '_' {
			c.extra[key] = raw
			continue
		}
		var e CacheEntry
		if err := json.Unmarshal(raw, &e); err != nil {
			log.Warn("skipping malformed cache entry", "key", key, "error", err)
			continue
		}
		c.entries[key] = e
	}
	return c
}

// Get returns the cached entry for a normalized location string.
func (c *Cache) Get(location string) (CacheEntry, bool) {
	e, ok := c.entries[location]
	return e, ok
}

// Len returns the number of data entries.
func (c *Cache) Len() int { return len(c.entries) }

// Add stores a new resolution and flushes the whole document. The flush is
// write-temp-then-rename so an interruption between entries never leaves a
// truncated file.
func (c *Cache) Add(location string, lat, lon float64, source string) {
	c.entries[location] = CacheEntry{
		Lat:       lat,
		Lon:       lon,
		Source:    source,
		DateAdded: c.now().Format("2006-01-02"),
	}
	if err := c.flush(); err != nil {
		c.log.Warn("cannot save location cache", "path", c.path, "error", err)
	}
}

func (c *Cache) flush() error {
	doc := make(map[string]any, len(c.entries)+len(c.extra))
	for k, v := range c.extra {
		doc[k] = v
	}
	for k, v := range c.entries {
		doc[k] = v
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(c.path), ".cache-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), c.path)
}
