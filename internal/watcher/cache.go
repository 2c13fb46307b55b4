package watcher

import (
	"sync"

	"go-keyword-radar/internal/annotate"
	"go-keyword-radar/internal/dom"
)

// CacheEntry is the verdict computed for one job title.
type CacheEntry struct {
	Status   annotate.Status
	Keywords []string
	// Title is the card title node seen when the verdict was computed.
	Title dom.Element
}

// Cache holds the verdicts computed on one page load. A title is evaluated at
// most once; later sightings reuse the stored verdict even if the description
// changed.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]CacheEntry
}

func NewCache() *Cache {
	return &Cache{entries: make(map[string]CacheEntry)}
}

func (c *Cache) Get(title string) (CacheEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[title]
	return e, ok
}

// Put stores e under title unless a verdict already exists. It reports
// whether e was stored.
func (c *Cache) Put(title string, e CacheEntry) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[title]; exists {
		return false
	}
	c.entries[title] = e
	return true
}

// Status implements annotate.Lookup.
func (c *Cache) Status(title string) (annotate.Status, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[title]
	return e.Status, ok
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
