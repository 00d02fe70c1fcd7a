// Package sieve implements the SIEVE eviction algorithm: a single
// doubly-linked list, a scanning "hand" pointer, and a per-entry visited
// bit, as described in
// https://junchengyang.com/publication/nsdi24-SIEVE.pdf (Zhang et al.,
// NSDI 2024) and https://cachemon.github.io/SIEVE-website/.
//
// New entries are prepended at the head with visited=false. A lookup sets
// visited=true. Eviction walks backward from the hand (or the tail, if the
// hand is nil), clearing visited bits as it goes, and evicts the first
// entry it finds with visited=false — giving every entry a second chance
// before it is reclaimed.
//
// Cache is not safe for concurrent use; wrap it with pkg/safe for
// multi-goroutine access.
package sieve

import (
	"errors"
	"sync/atomic"

	"github.com/DmitriyVTitov/size"

	"github.com/kvcache/kvcache/internal"
	"github.com/kvcache/kvcache/internal/list"
	"github.com/kvcache/kvcache/pkg/base"
)

// ErrBadCapacity is returned by New when capacity is not a positive integer.
var ErrBadCapacity = errors.New("sieve: capacity must be a positive integer")

// entry is the value type stored in the list. visited is atomic so that the
// "shared" concurrency wrapper can take only a read lock on Get: the bit is
// idempotent (setting it to true twice is harmless) and the atomic write
// keeps the race detector happy without requiring an exclusive lock.
type entry[K comparable, V any] struct {
	key     K
	value   V
	visited atomic.Bool
}

// Cache implements base.Engine using the SIEVE eviction policy.
//
// The zero value is not usable; construct with New.
type Cache[K comparable, V any] struct {
	noCopy internal.NoCopy // Prevents accidental copying of the cache

	capacity int

	ll    *list.List[entry[K, V]]
	index map[K]*list.Element[entry[K, V]]
	hand  *list.Element[entry[K, V]]

	hits       atomic.Uint64
	misses     atomic.Uint64
	insertions atomic.Uint64
	evictions  atomic.Uint64
}

var _ base.Engine[string, int] = (*Cache[string, int])(nil)

// New creates a SIEVE cache holding at most capacity entries.
// capacity must be a positive integer.
func New[K comparable, V any](capacity int) (*Cache[K, V], error) {
	if capacity <= 0 {
		return nil, ErrBadCapacity
	}

	return &Cache[K, V]{
		capacity: capacity,
		ll:       list.New[entry[K, V]](),
		index:    make(map[K]*list.Element[entry[K, V]], capacity),
	}, nil
}

// Set stores key/value. If key is already resident, its value is
// overwritten in place and the entry is marked visited — a write is itself
// evidence of relevance, and the list position does not move. Returns true
// iff key was absent before the call.
func (c *Cache[K, V]) Set(key K, value V) bool {
	if e, ok := c.index[key]; ok {
		e.Value.value = value
		e.Value.visited.Store(true)
		return false
	}

	if c.ll.Len() >= c.capacity {
		c.evict()
	}

	ele := c.ll.PushFront(entry[K, V]{key: key, value: value})
	c.index[key] = ele
	c.insertions.Add(1)
	return true
}

// Get retrieves a value and sets its visited bit on a hit.
func (c *Cache[K, V]) Get(key K) (value V, ok bool) {
	if e, hit := c.index[key]; hit {
		e.Value.visited.Store(true)
		c.hits.Add(1)
		return e.Value.value, true
	}
	c.misses.Add(1)
	return value, false
}

// Peek retrieves a value without marking it visited.
func (c *Cache[K, V]) Peek(key K) (value V, ok bool) {
	if e, hit := c.index[key]; hit {
		return e.Value.value, true
	}
	return value, false
}

// Contains reports whether key is resident, without touching the visited bit.
func (c *Cache[K, V]) Contains(key K) bool {
	_, ok := c.index[key]
	return ok
}

// FetchRemove detaches and returns the entry for key, if present.
func (c *Cache[K, V]) FetchRemove(key K) (value V, ok bool) {
	e, hit := c.index[key]
	if !hit {
		return value, false
	}
	value = e.Value.value
	c.removeElementAndUpdateHand(e)
	return value, true
}

// Keys returns a snapshot of every resident key.
func (c *Cache[K, V]) Keys() []K {
	keys := make([]K, 0, len(c.index))
	for k := range c.index {
		keys = append(keys, k)
	}
	return keys
}

// Values returns a snapshot of every resident value.
func (c *Cache[K, V]) Values() []V {
	values := make([]V, 0, len(c.index))
	for _, e := range c.index {
		values = append(values, e.Value.value)
	}
	return values
}

// Purge deletes every entry, leaving the cache empty but usable.
func (c *Cache[K, V]) Purge() {
	c.ll = list.New[entry[K, V]]()
	c.index = make(map[K]*list.Element[entry[K, V]], c.capacity)
	c.hand = nil
}

// Capacity returns the immutable size bound.
func (c *Cache[K, V]) Capacity() int { return c.capacity }

// Algorithm returns "sieve".
func (c *Cache[K, V]) Algorithm() string { return "sieve" }

// Len returns the current resident count.
func (c *Cache[K, V]) Len() int { return c.ll.Len() }

// Stats returns a snapshot of the hit/miss/eviction counters.
func (c *Cache[K, V]) Stats() base.Stats {
	return base.Stats{
		Hits:       c.hits.Load(),
		Misses:     c.misses.Load(),
		Insertions: c.insertions.Load(),
		Evictions:  c.evictions.Load(),
	}
}

// SizeBytes estimates the heap footprint of the resident index.
func (c *Cache[K, V]) SizeBytes() int64 {
	return int64(size.Of(c.index))
}

// evict runs exactly one SIEVE eviction pass: starting from the hand (or
// the tail if the hand is nil), walk backward clearing visited bits until
// an unvisited entry is found, then evict it and park the hand at its
// former predecessor. Wraps around to the tail if the walk runs off the
// front. The scan always terminates because each pass clears at least one
// bit and the list is finite.
func (c *Cache[K, V]) evict() {
	if c.ll.Len() == 0 {
		return
	}

	ele := c.hand
	if ele == nil {
		ele = c.ll.Back()
	}

	for ele != nil && ele.Value.visited.Load() {
		ele.Value.visited.Store(false)
		ele = ele.Prev()
	}

	if ele == nil {
		ele = c.ll.Back()
		for ele != nil && ele.Value.visited.Load() {
			ele.Value.visited.Store(false)
			ele = ele.Prev()
		}
	}

	if ele == nil {
		return
	}

	c.hand = ele.Prev()
	c.removeElement(ele)
	c.evictions.Add(1)
}

// removeElementAndUpdateHand removes e and, if e was the hand, moves the
// hand to e's predecessor first so the scan cursor never dangles.
func (c *Cache[K, V]) removeElementAndUpdateHand(e *list.Element[entry[K, V]]) {
	if c.hand == e {
		c.hand = e.Prev()
	}
	c.removeElement(e)
}

func (c *Cache[K, V]) removeElement(e *list.Element[entry[K, V]]) {
	c.ll.Remove(e)
	delete(c.index, e.Value.key)
}
