// Package imagecache holds cover images in a process-wide LRU cache with a
// fixed byte budget, and downloads missing images through it.
package imagecache

import (
	"sync"
)

// DefaultMaxBytes is the default byte budget (32MB).
const DefaultMaxBytes int64 = 32 << 20

// Cache is an LRU cache of image bytes keyed by URL. It is safe for
// concurrent use. Returned slices are shared and must not be modified.
type Cache struct {
	mu       sync.Mutex
	entries  map[string][]byte
	size     int64
	maxBytes int64
	lru      *lruList
}

// New creates a cache holding at most maxBytes of image data.
// A non-positive maxBytes selects DefaultMaxBytes.
func New(maxBytes int64) *Cache {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Cache{
		entries:  make(map[string][]byte),
		maxBytes: maxBytes,
		lru:      newLRUList(),
	}
}

// Get returns the cached bytes for url and marks it recently used.
func (c *Cache) Get(url string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, ok := c.entries[url]
	if !ok {
		cacheMissesTotal.Inc()
		return nil, false
	}
	c.lru.touch(url)
	cacheHitsTotal.Inc()
	return data, true
}

// Put stores data under url, evicting least recently used entries until it
// fits. Empty data and entries larger than the whole budget are rejected.
func (c *Cache) Put(url string, data []byte) bool {
	n := int64(len(data))
	if url == "" || n == 0 || n > c.maxBytes {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if old, ok := c.entries[url]; ok {
		c.size -= int64(len(old))
		delete(c.entries, url)
		c.lru.remove(url)
	}

	for c.size+n > c.maxBytes {
		key, ok := c.lru.oldest()
		if !ok {
			break
		}
		c.size -= int64(len(c.entries[key]))
		delete(c.entries, key)
		c.lru.remove(key)
		cacheEvictionsTotal.Inc()
	}

	c.entries[url] = data
	c.size += n
	c.lru.touch(url)
	cacheBytes.Set(float64(c.size))
	return true
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string][]byte)
	c.size = 0
	c.lru.reset()
	cacheBytes.Set(0)
}

// Len returns the number of cached images.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Size returns the number of cached bytes.
func (c *Cache) Size() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

// MaxBytes returns the byte budget.
func (c *Cache) MaxBytes() int64 {
	return c.maxBytes
}
