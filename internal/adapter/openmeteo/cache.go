package openmeteo

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/couchcryptid/city-spending-enricher/internal/domain"
)

// CachedGeocoder wraps a Geocoder with an in-memory LRU cache keyed by
// (city, country code). The cache lives for one run only; nothing is
// persisted across processes.
type CachedGeocoder struct {
	inner domain.Geocoder
	cache *lruCache
}

// NewCachedGeocoder creates a cache decorator around a geocoder.
func NewCachedGeocoder(inner domain.Geocoder, maxEntries int) *CachedGeocoder {
	return &CachedGeocoder{
		inner: inner,
		cache: newLRUCache(maxEntries),
	}
}

func (c *CachedGeocoder) Geocode(ctx context.Context, city, countryCode string) (domain.Coordinates, bool, error) {
	key := fmt.Sprintf("%s|%s", strings.ToLower(strings.TrimSpace(city)), strings.ToLower(strings.TrimSpace(countryCode)))
	if coords, ok := c.cache.get(key); ok {
		return coords, true, nil
	}
	coords, found, err := c.inner.Geocode(ctx, city, countryCode)
	if err != nil {
		return coords, found, err
	}
	// Only cache matches so transient "no result" responses can be retried.
	if found {
		c.cache.put(key, coords)
	}
	return coords, found, nil
}

// lruCache is a small thread-safe LRU cache for coordinates.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key    string
	coords domain.Coordinates
	prev   *entry
	next   *entry
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string) (domain.Coordinates, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return domain.Coordinates{}, false
	}
	c.moveToFront(e)
	return e.coords, true
}

func (c *lruCache) put(key string, coords domain.Coordinates) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.coords = coords
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, coords: coords}
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
