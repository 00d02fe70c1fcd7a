// Package safe decorates any base.Engine with a sync.RWMutex, giving it the
// "shared" concurrency discipline described in the specification: Get,
// Contains, and Len may run concurrently with each other, but every
// operation that can mutate queue structure takes the exclusive lock.
package safe

import (
	"sync"

	"github.com/kvcache/kvcache/pkg/base"
)

// New wraps engine with read-write mutex protection so it can be shared
// across goroutines.
func New[K comparable, V any](engine base.Engine[K, V]) base.Engine[K, V] {
	return &Cache[K, V]{engine: engine}
}

// Cache is a thread-safe decorator around any base.Engine.
type Cache[K comparable, V any] struct {
	engine base.Engine[K, V]
	mu     sync.RWMutex
}

var _ base.Engine[string, int] = (*Cache[string, int])(nil)

// Set stores key/value under the exclusive lock.
func (c *Cache[K, V]) Set(key K, value V) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.engine.Set(key, value)
}

// Get retrieves a value under a shared lock. A hit changes only atomic
// state in both engines (SIEVE's visited bit, S3-FIFO's frequency counter,
// and the hit/miss counters); no queue is restructured on a hit, so
// concurrent Get calls do not race with each other.
func (c *Cache[K, V]) Get(key K) (value V, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.engine.Get(key)
}

// Peek retrieves a value under a shared lock; it never mutates policy state.
func (c *Cache[K, V]) Peek(key K) (value V, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.engine.Peek(key)
}

// Contains reports residency under a shared lock.
func (c *Cache[K, V]) Contains(key K) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.engine.Contains(key)
}

// FetchRemove detaches and returns an entry under the exclusive lock.
func (c *Cache[K, V]) FetchRemove(key K) (value V, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.engine.FetchRemove(key)
}

// Purge clears the cache under the exclusive lock.
func (c *Cache[K, V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.engine.Purge()
}

// Keys returns a snapshot of resident keys under a shared lock.
func (c *Cache[K, V]) Keys() []K {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.engine.Keys()
}

// Values returns a snapshot of resident values under a shared lock.
func (c *Cache[K, V]) Values() []V {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.engine.Values()
}

// Len returns the resident count under a shared lock.
func (c *Cache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.engine.Len()
}

// Capacity returns the immutable size bound; capacity never changes after
// construction, so no lock is needed.
func (c *Cache[K, V]) Capacity() int {
	return c.engine.Capacity()
}

// Algorithm returns the immutable policy name; no lock is needed.
func (c *Cache[K, V]) Algorithm() string {
	return c.engine.Algorithm()
}

// Stats returns a snapshot of the engine's counters under a shared lock.
func (c *Cache[K, V]) Stats() base.Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.engine.Stats()
}

// sizeByter is implemented by both pkg/sieve.Cache and pkg/s3fifo.Cache.
// It is not part of base.Engine, so the wrapped engine is reached by type
// assertion rather than through the Engine interface.
type sizeByter interface {
	SizeBytes() int64
}

// SizeBytes estimates the heap footprint of the wrapped engine's resident
// index under a shared lock, so it never observes a map mid-mutation.
// Returns 0 if the wrapped engine does not support size accounting.
func (c *Cache[K, V]) SizeBytes() int64 {
	sb, ok := c.engine.(sizeByter)
	if !ok {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return sb.SizeBytes()
}
