// Package prefs keeps small key/value settings in a local JSON file.
package prefs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// MaxHistoryEntries is how many recent conversions the cache retains.
const MaxHistoryEntries = 10

// HistoryCache stores the most recent conversion strings of the anonymous
// converter screen. Entries are unique by exact match and kept newest first.
type HistoryCache struct {
	path string
	mu   sync.Mutex
}

type historyFile struct {
	History []string `json:"history"`
}

// NewHistoryCache returns a cache persisted at path.
func NewHistoryCache(path string) *HistoryCache {
	return &HistoryCache{path: path}
}

// Load returns the cached entries, newest first. A missing file is an empty cache.
func (c *HistoryCache) Load() ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.load()
}

// Save replaces the cache with entries, dropping duplicates and keeping the
// first MaxHistoryEntries.
func (c *HistoryCache) Save(entries []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.save(entries)
}

// Add puts entry at the front of the cache, moving it there if it was
// already present.
func (c *HistoryCache) Add(entry string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	current, err := c.load()
	if err != nil {
		return err
	}
	return c.save(append([]string{entry}, current...))
}

func (c *HistoryCache) load() ([]string, error) {
	f, err := os.Open(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("open history cache: %w", err)
	}
	defer f.Close()

	var hf historyFile
	if err := json.NewDecoder(f).Decode(&hf); err != nil {
		return nil, fmt.Errorf("decode history cache: %w", err)
	}
	return normalize(hf.History), nil
}

func (c *HistoryCache) save(entries []string) error {
	if dir := filepath.Dir(c.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create cache dir: %w", err)
		}
	}

	tmp := c.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create history cache: %w", err)
	}
	if err := json.NewEncoder(f).Encode(historyFile{History: normalize(entries)}); err != nil {
		f.Close()
		return fmt.Errorf("encode history cache: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close history cache: %w", err)
	}
	return os.Rename(tmp, c.path)
}

func normalize(entries []string) []string {
	seen := make(map[string]bool, len(entries))
	out := make([]string, 0, MaxHistoryEntries)
	for _, e := range entries {
		if seen[e] {
			continue
		}
		seen[e] = true
		out = append(out, e)
		if len(out) == MaxHistoryEntries {
			break
		}
	}
	return out
}
