package network

import (
	"sync"
	"time"

	"github.com/chrisuehlinger/swipekit/imageload"
)

// Entry is what is known about one image URL.
type Entry struct {
	URL         string
	Status      imageload.Status
	ContentType string
	Width       int
	Height      int
	Err         error
	CachedAt    time.Time
}

// Cache holds probe results keyed by resolved URL. When full, the oldest
// settled entry is evicted; pending entries are never evicted so in-flight
// loads keep their slot.
type Cache struct {
	entries map[string]*Entry
	maxSize int
	mu      sync.RWMutex
}

// NewCache creates a cache with the given maximum number of entries.
func NewCache(maxSize int) *Cache {
	if maxSize <= 0 {
		maxSize = 1000
	}
	return &Cache{
		entries: make(map[string]*Entry),
		maxSize: maxSize,
	}
}

// Get returns a copy of the entry for url.
func (c *Cache) Get(url string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[url]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Set stores an entry, stamping CachedAt.
func (c *Cache) Set(e Entry) {
	e.CachedAt = time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[e.URL]; !exists && len(c.entries) >= c.maxSize {
		c.evictOldest()
	}
	c.entries[e.URL] = &e
}

// MarkPending records url as pending unless an entry already exists. It
// reports whether the caller claimed the load.
func (c *Cache) MarkPending(url string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[url]; ok {
		return false
	}
	if len(c.entries) >= c.maxSize {
		c.evictOldest()
	}
	c.entries[url] = &Entry{URL: url, Status: imageload.Pending, CachedAt: time.Now()}
	return true
}

// Delete removes an entry from the cache.
func (c *Cache) Delete(url string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, url)
}

// Clear removes all entries from the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*Entry)
}

// Size returns the number of entries in the cache.
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// evictOldest removes the oldest settled entry. Must be called with c.mu
// held.
func (c *Cache) evictOldest() {
	var oldest *Entry
	for _, e := range c.entries {
		if e.Status == imageload.Pending {
			continue
		}
		if oldest == nil || e.CachedAt.Before(oldest.CachedAt) {
			oldest = e
		}
	}
	if oldest != nil {
		delete(c.entries, oldest.URL)
	}
}
