package nominatim

import (
	"context"
	"strings"
	"sync"

	"github.com/couchcryptid/trip-safety-service/internal/domain"
	"github.com/couchcryptid/trip-safety-service/internal/observability"
)

// CachedGeocoder wraps a Geocoder with an in-memory LRU cache keyed by the
// normalized query string.
type CachedGeocoder struct {
	inner   domain.Geocoder
	cache   *lruCache
	metrics *observability.Metrics
}

// NewCachedGeocoder creates a cache decorator around a geocoder.
func NewCachedGeocoder(inner domain.Geocoder, maxEntries int, metrics *observability.Metrics) *CachedGeocoder {
	return &CachedGeocoder{
		inner:   inner,
		cache:   newLRUCache(maxEntries),
		metrics: metrics,
	}
}

func (c *CachedGeocoder) Search(ctx context.Context, query string) ([]domain.GeocodeResult, error) {
	key := strings.ToLower(strings.TrimSpace(query))
	if key == "" {
		return nil, nil
	}

	if results, ok := c.cache.get(key); ok {
		c.metrics.GeocodeCache.WithLabelValues("hit").Inc()
		return results, nil
	}
	c.metrics.GeocodeCache.WithLabelValues("miss").Inc()

	results, err := c.inner.Search(ctx, query)
	if err != nil {
		return results, err
	}
	// Only cache non-empty result sets so transient "not found" responses
	// can be retried.
	if len(results) > 0 {
		c.cache.put(key, results)
	}
	return results, nil
}

// lruCache is a simple thread-safe LRU cache for geocode result sets.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	value []domain.GeocodeResult
	prev  *entry
	next  *entry
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string) ([]domain.GeocodeResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key string, value []domain.GeocodeResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
