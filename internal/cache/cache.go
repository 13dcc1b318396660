// Package cache provides the in-memory layer in front of the on-disk catalog
// store. It uses patrickmn/go-cache; entries never expire unless a TTL is
// configured, matching the load-once lifetime of a catalog in a process.
package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// NoExpiration keeps entries until they are deleted.
const NoExpiration = gocache.NoExpiration

// Cache is a typed wrapper around go-cache.
type Cache[T any] struct {
	store *gocache.Cache
}

// New creates a cache. A zero or negative ttl means entries never expire;
// cleanupInterval is how often expired items are removed.
func New[T any](ttl, cleanupInterval time.Duration) *Cache[T] {
	if ttl <= 0 {
		ttl = NoExpiration
		cleanupInterval = 0
	}
	return &Cache[T]{
		store: gocache.New(ttl, cleanupInterval),
	}
}

// Get retrieves a value.
func (c *Cache[T]) Get(key string) (T, bool) {
	var zero T
	v, ok := c.store.Get(key)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	if !ok {
		return zero, false
	}
	return t, true
}

// Set stores a value with the default TTL.
func (c *Cache[T]) Set(key string, value T) {
	c.store.Set(key, value, gocache.DefaultExpiration)
}

// SetWithTTL stores a value with a custom TTL.
func (c *Cache[T]) SetWithTTL(key string, value T, ttl time.Duration) {
	c.store.Set(key, value, ttl)
}

// Delete removes a value.
func (c *Cache[T]) Delete(key string) {
	c.store.Delete(key)
}

// Clear removes all items.
func (c *Cache[T]) Clear() {
	c.store.Flush()
}

// Keys returns the keys of unexpired items.
func (c *Cache[T]) Keys() []string {
	items := c.store.Items()
	keys := make([]string, 0, len(items))
	for k := range items {
		keys = append(keys, k)
	}
	return keys
}

// ItemCount returns the number of items, including expired ones not yet cleaned up.
func (c *Cache[T]) ItemCount() int {
	return c.store.ItemCount()
}
