package rammb

import (
	"context"
	"sync"

	"github.com/couchcryptid/cyclone-feed-service/internal/domain"
	"github.com/couchcryptid/cyclone-feed-service/internal/observability"
)

// CachedSource wraps a Source with an in-memory LRU cache of resolved
// advisory-data URLs keyed by storm identifier. A storm's advisory link
// rarely moves within its lifetime, so a cache hit skips the detail-page
// fetch and link search entirely. A stale entry falls back to a full resolve.
type CachedSource struct {
	inner   *Source
	cache   *lruCache
	metrics *observability.Metrics
}

// NewCachedSource creates a cache decorator around a RAMMB source.
func NewCachedSource(inner *Source, maxEntries int, metrics *observability.Metrics) *CachedSource {
	return &CachedSource{
		inner:   inner,
		cache:   newLRUCache(maxEntries),
		metrics: metrics,
	}
}

func (c *CachedSource) Info() domain.SourceInfo {
	return c.inner.Info()
}

func (c *CachedSource) Discover(ctx context.Context) ([]domain.StormIdentity, error) {
	return c.inner.Discover(ctx)
}

func (c *CachedSource) Parse(raw string) []domain.AdvisoryFix {
	return c.inner.Parse(raw)
}

// Resolve retrieves a storm's advisory deck, reusing the cached advisory URL
// when one is known. Only successful resolutions are cached so a storm whose
// page temporarily lacks a link is retried on the next run.
func (c *CachedSource) Resolve(ctx context.Context, identity domain.StormIdentity) (string, error) {
	if cachedURL, ok := c.cache.get(identity.ID); ok {
		c.metrics.ResolveCache.WithLabelValues("hit").Inc()
		if raw, err := c.inner.FetchAdvisory(ctx, cachedURL); err == nil {
			return raw, nil
		}
		// Cached location went stale or unreachable; drop it and re-resolve.
		c.cache.remove(identity.ID)
	} else {
		c.metrics.ResolveCache.WithLabelValues("miss").Inc()
	}

	advisoryURL, err := c.inner.ResolveAdvisoryURL(ctx, identity)
	if err != nil {
		return "", err
	}
	raw, err := c.inner.FetchAdvisory(ctx, advisoryURL)
	if err != nil {
		return "", err
	}
	c.cache.put(identity.ID, advisoryURL)
	return raw, nil
}

// lruCache is a simple thread-safe LRU cache of storm id → advisory URL.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	value string
	prev  *entry
	next  *entry
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return "", false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key, value string) {
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

func (c *lruCache) remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return
	}
	delete(c.entries, key)
	c.unlink(e)
}

func (c *lruCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.unlink(e)
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

func (c *lruCache) unlink(e *entry) {
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
	c.unlink(c.tail)
}
