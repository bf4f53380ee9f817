package memorycache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/JericoFX/advance-manager/pkg/cache"
)

// entry represents a cache entry with value and metadata
type entry[V any] struct {
	key       string
	value     V
	expiresAt time.Time
}

// Cache implements a bounded LRU cache with TTL support.
type Cache[V any] struct {
	mu sync.Mutex

	items     map[string]*list.Element // key -> list element
	evictList *list.List               // front = most recent, back = least recent

	maxEntries int
	ttl        time.Duration
	now        func() time.Time

	metrics *cacheMetrics
}

type cacheMetrics struct {
	hits        uint64
	misses      uint64
	keysAdded   uint64
	keysEvicted uint64
}

// Config holds configuration for the memory cache.
type Config struct {
	// MaxEntries bounds the number of live entries. Least recently used
	// entries are evicted past this limit. Zero means unbounded.
	MaxEntries int

	// DefaultTTL is used when Set is called with a non-positive TTL.
	// Zero means entries never expire.
	DefaultTTL time.Duration

	// EnableMetrics enables collection of cache metrics.
	EnableMetrics bool

	// Now overrides the clock, for tests.
	Now func() time.Time
}

var _ cache.Cache[int] = (*Cache[int])(nil)

// New creates a new memory cache with the given configuration.
func New[V any](config *Config) *Cache[V] {
	c := &Cache[V]{
		items:      make(map[string]*list.Element),
		evictList:  list.New(),
		maxEntries: config.MaxEntries,
		ttl:        config.DefaultTTL,
		now:        config.Now,
	}
	if c.now == nil {
		c.now = time.Now
	}
	if config.EnableMetrics {
		c.metrics = &cacheMetrics{}
	}
	return c
}

// Get retrieves a value from cache.
func (c *Cache[V]) Get(ctx context.Context, key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	elem, exists := c.items[key]
	if !exists {
		c.recordMiss()
		return zero, false
	}

	ent := elem.Value.(*entry[V])
	if c.expired(ent) {
		c.removeElement(elem)
		c.recordMiss()
		return zero, false
	}

	c.evictList.MoveToFront(elem)
	if c.metrics != nil {
		c.metrics.hits++
	}
	return ent.value, true
}

// Set stores a value in cache with the specified TTL.
func (c *Cache[V]) Set(ctx context.Context, key string, value V, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ttl <= 0 {
		ttl = c.ttl
	}
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = c.now().Add(ttl)
	}

	if elem, exists := c.items[key]; exists {
		ent := elem.Value.(*entry[V])
		ent.value = value
		ent.expiresAt = expiresAt
		c.evictList.MoveToFront(elem)
		return nil
	}

	elem := c.evictList.PushFront(&entry[V]{key: key, value: value, expiresAt: expiresAt})
	c.items[key] = elem
	if c.metrics != nil {
		c.metrics.keysAdded++
	}

	for c.maxEntries > 0 && c.evictList.Len() > c.maxEntries {
		oldest := c.evictList.Back()
		if oldest == nil {
			break
		}
		c.removeElement(oldest)
		if c.metrics != nil {
			c.metrics.keysEvicted++
		}
	}

	return nil
}

// Delete removes a value from cache.
func (c *Cache[V]) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, exists := c.items[key]; exists {
		c.removeElement(elem)
	}
	return nil
}

// Clear removes all entries from cache.
func (c *Cache[V]) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*list.Element)
	c.evictList.Init()
	return nil
}

// Range calls fn for every live entry, most recently used first.
// fn must not call back into the cache.
func (c *Cache[V]) Range(ctx context.Context, fn func(key string, value V) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for elem := c.evictList.Front(); elem != nil; {
		next := elem.Next()
		ent := elem.Value.(*entry[V])
		if c.expired(ent) {
			c.removeElement(elem)
		} else if !fn(ent.key, ent.value) {
			return
		}
		elem = next
	}
}

// Close releases resources (no-op for memory cache).
func (c *Cache[V]) Close() error {
	return nil
}

// Metrics returns cache statistics.
func (c *Cache[V]) Metrics() *cache.Metrics {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.metrics == nil {
		return &cache.Metrics{}
	}
	return &cache.Metrics{
		Hits:        c.metrics.hits,
		Misses:      c.metrics.misses,
		KeysAdded:   c.metrics.keysAdded,
		KeysEvicted: c.metrics.keysEvicted,
	}
}

// Len returns the current number of items in cache, expired ones included.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.evictList.Len()
}

func (c *Cache[V]) expired(ent *entry[V]) bool {
	return !ent.expiresAt.IsZero() && c.now().After(ent.expiresAt)
}

func (c *Cache[V]) recordMiss() {
	if c.metrics != nil {
		c.metrics.misses++
	}
}

// removeElement removes an element from cache (must be called with lock held).
func (c *Cache[V]) removeElement(elem *list.Element) {
	c.evictList.Remove(elem)
	ent := elem.Value.(*entry[V])
	delete(c.items, ent.key)
}
