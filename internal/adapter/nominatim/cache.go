package nominatim

import (
	"context"
	"strings"
	"sync"

	"github.com/floodline/waterlog-monitor/internal/domain"
	"github.com/floodline/waterlog-monitor/internal/observability"
)

// CachedGeocoder wraps a Geocoder with an in-memory LRU cache. Repeat
// reports for the same landmark are common during a flood event, and
// Nominatim rate-limits aggressively.
type CachedGeocoder struct {
	inner   domain.Geocoder
	metrics *observability.Metrics

	mu         sync.Mutex
	maxEntries int
	entries    map[string]*cacheEntry
	head       *cacheEntry // most recently used
	tail       *cacheEntry // least recently used
}

type cacheEntry struct {
	key    string
	result domain.GeocodeResult
	prev   *cacheEntry
	next   *cacheEntry
}

// NewCachedGeocoder creates a cache decorator around a geocoder.
func NewCachedGeocoder(inner domain.Geocoder, maxEntries int, metrics *observability.Metrics) *CachedGeocoder {
	return &CachedGeocoder{
		inner:      inner,
		metrics:    metrics,
		maxEntries: maxEntries,
		entries:    make(map[string]*cacheEntry),
	}
}

// Resolve serves from cache when possible. Only successful matches are
// cached so transient "not found" responses can be retried.
func (c *CachedGeocoder) Resolve(ctx context.Context, query string) (domain.GeocodeResult, error) {
	key := strings.ToLower(strings.TrimSpace(query))

	if result, ok := c.get(key); ok {
		c.metrics.GeocodeCache.WithLabelValues("hit").Inc()
		return result, nil
	}
	c.metrics.GeocodeCache.WithLabelValues("miss").Inc()

	result, err := c.inner.Resolve(ctx, query)
	if err != nil {
		return result, err
	}
	if result.Address != "" {
		c.put(key, result)
	}
	return result, nil
}

func (c *CachedGeocoder) get(key string) (domain.GeocodeResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return domain.GeocodeResult{}, false
	}
	c.moveToFront(e)
	return e.result, true
}

func (c *CachedGeocoder) put(key string, result domain.GeocodeResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.result = result
		c.moveToFront(e)
		return
	}

	e := &cacheEntry{key: key, result: result}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *CachedGeocoder) moveToFront(e *cacheEntry) {
	if e == c.head {
		return
	}
	c.unlink(e)
	c.addToFront(e)
}

func (c *CachedGeocoder) addToFront(e *cacheEntry) {
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

func (c *CachedGeocoder) unlink(e *cacheEntry) {
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

func (c *CachedGeocoder) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.unlink(c.tail)
}
