// Package cache persists search results on disk with time-based expiry.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go2web/internal/search"
)

// DefaultTTL is the expiry window after which a stored entry is treated
// as absent.
const DefaultTTL = 24 * time.Hour

// Entry is one cached query with its ranked results and creation time.
type Entry struct {
	Query     string          `json:"query"`
	Results   []search.Result `json:"results"`
	CreatedAt time.Time       `json:"created_at"`
}

type cacheFile struct {
	Entries []Entry `json:"entries"`
}

// Cache is a file-backed query→results map. It is loaded once at Open and
// flushed synchronously after every mutation. Keys match exactly and
// case-sensitively; expired entries read as misses and are only pruned
// from disk by the next mutation. A single process is assumed to own the
// storage file.
type Cache struct {
	path    string
	ttl     time.Duration
	entries map[string]Entry
	now     func() time.Time
}

// New creates an empty cache over path without reading the file. The
// first mutation overwrites whatever is there.
func New(path string, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		path:    path,
		ttl:     ttl,
		entries: make(map[string]Entry),
		now:     time.Now,
	}
}

// Open loads the cache file at path, starting empty when none exists.
func Open(path string, ttl time.Duration) (*Cache, error) {
	c := New(path, ttl)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache file: %w", err)
	}

	var file cacheFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse cache file %s: %w", path, err)
	}
	for _, e := range file.Entries {
		c.entries[e.Query] = e
	}
	return c, nil
}

// Lookup returns the results stored for query. An entry older than the
// expiry window reads as a miss even while its record is still on disk.
func (c *Cache) Lookup(query string) ([]search.Result, bool) {
	entry, ok := c.entries[query]
	if !ok {
		return nil, false
	}
	if c.now().Sub(entry.CreatedAt) > c.ttl {
		return nil, false
	}
	return entry.Results, true
}

// Store replaces any entry for query, stamps it with the current time and
// flushes the whole cache before returning. Expired entries are pruned on
// the way out.
func (c *Cache) Store(query string, results []search.Result) error {
	c.pruneExpired()
	c.entries[query] = Entry{
		Query:     query,
		Results:   results,
		CreatedAt: c.now(),
	}
	return c.flush()
}

// Clear drops every entry and persists the empty cache.
func (c *Cache) Clear() error {
	c.entries = make(map[string]Entry)
	return c.flush()
}

// Len returns the number of live (unexpired) entries.
func (c *Cache) Len() int {
	n := 0
	for _, e := range c.entries {
		if c.now().Sub(e.CreatedAt) <= c.ttl {
			n++
		}
	}
	return n
}

func (c *Cache) pruneExpired() {
	for query, e := range c.entries {
		if c.now().Sub(e.CreatedAt) > c.ttl {
			delete(c.entries, query)
		}
	}
}

// flush writes the full cache to disk via a temp file rename so a crash
// never leaves a half-written cache behind.
func (c *Cache) flush() error {
	file := cacheFile{Entries: make([]Entry, 0, len(c.entries))}
	for _, e := range c.entries {
		file.Entries = append(file.Entries, e)
	}
	sort.Slice(file.Entries, func(i, j int) bool {
		return file.Entries[i].Query < file.Entries[j].Query
	})

	data, err := json.MarshalIndent(&file, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize cache: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		return fmt.Errorf("failed to replace cache file: %w", err)
	}
	return nil
}
