// Package kvcache is a fixed-capacity, in-memory key-value cache offering a
// choice of two eviction policies, SIEVE and S3-FIFO, behind one contract.
//
// Construct a Cache with New, picking a Policy and a Concurrency discipline;
// everything else (Set, Get, Peek, Contains, FetchRemove, Len, Capacity,
// Purge) behaves identically regardless of which policy or discipline was
// chosen.
package kvcache

import (
	"fmt"

	"github.com/kvcache/kvcache/pkg/base"
	"github.com/kvcache/kvcache/pkg/s3fifo"
	"github.com/kvcache/kvcache/pkg/safe"
	"github.com/kvcache/kvcache/pkg/sieve"
)

// Policy selects the eviction algorithm a Cache uses.
type Policy string

const (
	// Sieve uses the SIEVE eviction algorithm (pkg/sieve).
	Sieve Policy = "sieve"
	// S3FIFO uses the S3-FIFO eviction algorithm (pkg/s3fifo).
	S3FIFO Policy = "s3fifo"
)

// Concurrency selects whether a Cache may be shared across goroutines.
type Concurrency int

const (
	// Serial caches are not safe for concurrent use; callers must
	// synchronize access themselves. This is the cheaper option when a
	// cache is confined to a single goroutine.
	Serial Concurrency = iota
	// Shared caches may be used concurrently from multiple goroutines;
	// every operation is internally synchronized with a sync.RWMutex.
	Shared
)

// sizeByter is implemented by both engine types and by the pkg/safe
// wrapper. Size accounting isn't part of base.Engine, so New keeps the
// value that provides it alongside the engine, and Cache.SizeBytes works
// uniformly whether or not the engine is wrapped.
type sizeByter interface {
	SizeBytes() int64
}

// Cache is a fixed-capacity key-value cache. The zero value is not usable;
// construct one with New.
type Cache[K comparable, V any] struct {
	engine base.Engine[K, V]
	sizer  sizeByter
}

// New creates a Cache with the given policy, capacity, and concurrency
// discipline. capacity must be a positive integer, or New returns
// ErrBadCapacity; an unrecognised policy is also an error.
func New[K comparable, V any](policy Policy, capacity int, concurrency Concurrency) (*Cache[K, V], error) {
	if capacity <= 0 {
		return nil, ErrBadCapacity
	}

	var engine base.Engine[K, V]
	var sizer sizeByter

	switch policy {
	case Sieve:
		c, err := sieve.New[K, V](capacity)
		if err != nil {
			return nil, err
		}
		engine, sizer = c, c
	case S3FIFO:
		c, err := s3fifo.New[K, V](capacity)
		if err != nil {
			return nil, err
		}
		engine, sizer = c, c
	default:
		return nil, fmt.Errorf("kvcache: unknown policy %q", policy)
	}

	if concurrency == Shared {
		wrapped := safe.New[K, V](engine)
		engine = wrapped
		// The safe wrapper re-exposes SizeBytes under its own lock, so
		// route through it instead of the raw (now-wrapped) engine —
		// reading sizer directly would race with locked mutations.
		sizer = wrapped.(sizeByter)
	}

	return &Cache[K, V]{engine: engine, sizer: sizer}, nil
}

// Set stores key/value, evicting an entry if the cache is at capacity and
// key was not already resident. Returns true iff key was absent before the
// call.
func (c *Cache[K, V]) Set(key K, value V) bool {
	return c.engine.Set(key, value)
}

// Get retrieves a value and updates the eviction policy's metadata on a hit
// (SIEVE sets the visited bit; S3-FIFO bumps the frequency counter).
func (c *Cache[K, V]) Get(key K) (value V, ok bool) {
	return c.engine.Get(key)
}

// Peek retrieves a value without updating any eviction policy metadata.
func (c *Cache[K, V]) Peek(key K) (value V, ok bool) {
	return c.engine.Peek(key)
}

// Contains reports whether key is resident, without changing policy state.
func (c *Cache[K, V]) Contains(key K) bool {
	return c.engine.Contains(key)
}

// FetchRemove detaches and returns the entry for key, if present.
func (c *Cache[K, V]) FetchRemove(key K) (value V, ok bool) {
	return c.engine.FetchRemove(key)
}

// Purge deletes every entry, leaving the cache empty but usable.
func (c *Cache[K, V]) Purge() {
	c.engine.Purge()
}

// Keys returns a snapshot of every resident key.
func (c *Cache[K, V]) Keys() []K {
	return c.engine.Keys()
}

// Values returns a snapshot of every resident value.
func (c *Cache[K, V]) Values() []V {
	return c.engine.Values()
}

// Len returns the current resident count.
func (c *Cache[K, V]) Len() int {
	return c.engine.Len()
}

// IsEmpty reports whether the cache currently holds no entries.
func (c *Cache[K, V]) IsEmpty() bool {
	return c.engine.Len() == 0
}

// Capacity returns the immutable size bound fixed at construction.
func (c *Cache[K, V]) Capacity() int {
	return c.engine.Capacity()
}

// Algorithm returns the name of the eviction policy ("sieve" or "s3fifo").
func (c *Cache[K, V]) Algorithm() string {
	return c.engine.Algorithm()
}

// Stats returns a snapshot of the cache's hit/miss/insertion/eviction
// counters.
func (c *Cache[K, V]) Stats() base.Stats {
	return c.engine.Stats()
}

// SizeBytes estimates the heap footprint of the resident index. It returns
// 0 if the underlying engine does not support size accounting.
func (c *Cache[K, V]) SizeBytes() int64 {
	if c.sizer == nil {
		return 0
	}
	return c.sizer.SizeBytes()
}
