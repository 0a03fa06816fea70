package vectorize

import (
	"container/list"
	"sync"

	"github.com/hyperjump/simstream/internal/vector"
)

// VectorCache is an LRU cache of transformed vectors keyed by text.
// Cached vectors are shared with callers and must not be mutated.
type VectorCache struct {
	capacity int
	cache    map[string]*list.Element
	lru      *list.List
	mu       sync.Mutex

	hits   int
	misses int
}

type cacheEntry struct {
	key   string
	value vector.Sparse
}

// NewVectorCache creates a new cache with the given capacity. A capacity of
// zero or less returns nil, which callers treat as caching disabled.
func NewVectorCache(capacity int) *VectorCache {
	if capacity <= 0 {
		return nil
	}
	return &VectorCache{
		capacity: capacity,
		cache:    make(map[string]*list.Element),
		lru:      list.New(),
	}
}

// Get returns the cached vector for key if present.
func (c *VectorCache) Get(key string) (vector.Sparse, bool) {
	if c == nil {
		return vector.Sparse{}, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.cache[key]; ok {
		c.lru.MoveToFront(elem)
		c.hits++
		return elem.Value.(*cacheEntry).value, true
	}
	c.misses++
	return vector.Sparse{}, false
}

// Set stores the vector for key, evicting the least recently used entry if at capacity.
func (c *VectorCache) Set(key string, value vector.Sparse) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.cache[key]; ok {
		c.lru.MoveToFront(elem)
		elem.Value.(*cacheEntry).value = value
		return
	}

	elem := c.lru.PushFront(&cacheEntry{key: key, value: value})
	c.cache[key] = elem

	if c.lru.Len() > c.capacity {
		if oldest := c.lru.Back(); oldest != nil {
			c.lru.Remove(oldest)
			delete(c.cache, oldest.Value.(*cacheEntry).key)
		}
	}
}

// Len reports the number of cached entries.
func (c *VectorCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Stats returns the hit and miss counters.
func (c *VectorCache) Stats() (hits, misses int) {
	if c == nil {
		return 0, 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
