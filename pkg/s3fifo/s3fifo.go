// Package s3fifo implements S3-FIFO, a cache eviction policy built from
// three FIFO queues: small (admission), main (long-term residency), and
// ghost (a keys-only memory of recently evicted small-queue entries used
// to inform admission). See https://s3fifo.com/ and the USENIX ATC '23
// paper "FIFO queues are all you need for cache eviction" (Yang et al.).
//
// Cache is not safe for concurrent use; wrap it with pkg/safe for
// multi-goroutine access.
package s3fifo

import (
	"errors"
	"sync/atomic"

	"github.com/DmitriyVTitov/size"

	"github.com/kvcache/kvcache/internal"
	"github.com/kvcache/kvcache/internal/list"
	"github.com/kvcache/kvcache/pkg/base"
)

// ErrBadCapacity is returned by New when capacity is not a positive integer.
var ErrBadCapacity = errors.New("s3fifo: capacity must be a positive integer")

// maxFreq is the saturation point of the per-entry frequency counter.
const maxFreq = 3

// entry is a resident key-value pair. freq is atomic so a "shared" wrapper
// need not take an exclusive lock purely to bump it; inMain is touched only
// while the engine already holds exclusive access (structural queue moves
// happen only in Set, FetchRemove, Purge and eviction, which pkg/safe runs
// under its exclusive lock).
type entry[K comparable, V any] struct {
	key    K
	value  V
	freq   atomic.Int32
	inMain bool
}

// Cache implements base.Engine using the S3-FIFO eviction policy.
//
// The zero value is not usable; construct with New.
type Cache[K comparable, V any] struct {
	noCopy internal.NoCopy // Prevents accidental copying of the cache

	capacity int

	small *list.List[*entry[K, V]]
	main  *list.List[*entry[K, V]]
	index map[K]*list.Element[*entry[K, V]]

	ghost      *list.List[K]
	ghostIndex map[K]*list.Element[K]

	smallCap int
	mainCap  int
	ghostCap int

	hits       atomic.Uint64
	misses     atomic.Uint64
	insertions atomic.Uint64
	evictions  atomic.Uint64
}

var _ base.Engine[string, int] = (*Cache[string, int])(nil)

// New creates an S3-FIFO cache holding at most capacity entries.
// capacity must be a positive integer. The nominal split gives small
// floor(capacity/10) slots and main the rest; the ghost queue holds up to
// main's share of keys. New keys always enter small, and eviction takes
// from small until main reaches its share, so for capacity < 10 (nominal
// small size 0) small still receives every new key.
func New[K comparable, V any](capacity int) (*Cache[K, V], error) {
	if capacity <= 0 {
		return nil, ErrBadCapacity
	}

	smallCap := capacity / 10
	mainCap := capacity - smallCap
	ghostCap := mainCap

	return &Cache[K, V]{
		capacity:   capacity,
		small:      list.New[*entry[K, V]](),
		main:       list.New[*entry[K, V]](),
		index:      make(map[K]*list.Element[*entry[K, V]], capacity),
		ghost:      list.New[K](),
		ghostIndex: make(map[K]*list.Element[K], ghostCap),
		smallCap:   smallCap,
		mainCap:    mainCap,
		ghostCap:   ghostCap,
	}, nil
}

// Set stores key/value. If key is already resident, the existing entry is
// unlinked from whichever queue holds it and a fresh entry (freq reset to
// 0) is appended to the tail of that same queue — a write is a new fact,
// not an access, so it does not inherit the old entry's frequency.
// Otherwise the admission path runs: evict until there is room, then
// insert, routing through the ghost queue if the key was recently evicted.
// Returns true iff key was absent before the call.
func (c *Cache[K, V]) Set(key K, value V) bool {
	if old, ok := c.index[key]; ok {
		wasMain := old.Value.inMain
		if wasMain {
			c.main.Remove(old)
		} else {
			c.small.Remove(old)
		}

		ne := &entry[K, V]{key: key, value: value, inMain: wasMain}
		var ele *list.Element[*entry[K, V]]
		if wasMain {
			ele = c.main.PushBack(ne)
		} else {
			ele = c.small.PushBack(ne)
		}
		c.index[key] = ele
		return false
	}

	for c.small.Len()+c.main.Len() >= c.capacity {
		c.evict()
	}
	c.insert(key, value)
	return true
}

// Get retrieves a value and saturating-increments its frequency. Promotion
// out of the small queue is not decided here: it is decided lazily, the
// next time the eviction scan reaches the entry (see evictFromSmall).
func (c *Cache[K, V]) Get(key K) (value V, ok bool) {
	e, hit := c.index[key]
	if !hit {
		c.misses.Add(1)
		return value, false
	}

	c.bumpFreq(e.Value)
	c.hits.Add(1)
	return e.Value.value, true
}

// Peek retrieves a value without updating frequency or queue membership.
func (c *Cache[K, V]) Peek(key K) (value V, ok bool) {
	if e, hit := c.index[key]; hit {
		return e.Value.value, true
	}
	return value, false
}

// Contains reports whether key is resident, without touching frequency.
func (c *Cache[K, V]) Contains(key K) bool {
	_, ok := c.index[key]
	return ok
}

// FetchRemove detaches and returns the entry for key, if present. It
// unlinks from whichever single queue owns the entry and does not touch
// ghost: a live key was never ghosted, so there is nothing to reconcile.
func (c *Cache[K, V]) FetchRemove(key K) (value V, ok bool) {
	e, hit := c.index[key]
	if !hit {
		return value, false
	}

	if e.Value.inMain {
		c.main.Remove(e)
	} else {
		c.small.Remove(e)
	}
	delete(c.index, key)

	return e.Value.value, true
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

// Purge deletes every entry and every ghost key, leaving the cache empty
// but usable.
func (c *Cache[K, V]) Purge() {
	c.small.Init()
	c.main.Init()
	c.ghost.Init()
	c.index = make(map[K]*list.Element[*entry[K, V]], c.capacity)
	c.ghostIndex = make(map[K]*list.Element[K], c.ghostCap)
}

// Capacity returns the immutable size bound.
func (c *Cache[K, V]) Capacity() int { return c.capacity }

// Algorithm returns "s3fifo".
func (c *Cache[K, V]) Algorithm() string { return "s3fifo" }

// Len returns the current resident count (small + main; ghost excluded).
func (c *Cache[K, V]) Len() int { return c.small.Len() + c.main.Len() }

// GhostLen returns the current number of keys remembered in the ghost queue.
func (c *Cache[K, V]) GhostLen() int { return c.ghost.Len() }

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

func (c *Cache[K, V]) bumpFreq(e *entry[K, V]) {
	for {
		cur := e.freq.Load()
		if cur >= maxFreq {
			return
		}
		if e.freq.CompareAndSwap(cur, cur+1) {
			return
		}
	}
}

// insert admits a new key. A ghost hit (the key was recently evicted from
// small) skips straight to main with freq=1; otherwise the key enters
// small with freq=0.
func (c *Cache[K, V]) insert(key K, value V) {
	if c.removeFromGhost(key) {
		e := &entry[K, V]{key: key, value: value, inMain: true}
		e.freq.Store(1)
		ele := c.main.PushBack(e)
		c.index[key] = ele
	} else {
		e := &entry[K, V]{key: key, value: value}
		ele := c.small.PushBack(e)
		c.index[key] = ele
	}
	c.insertions.Add(1)
}

// evict performs exactly one S3-FIFO eviction step, per the trigger rule:
// evict from main if main is at or over its cap, or if small is empty;
// otherwise evict from small. A single call may only reinsert (decrement
// a main entry's frequency) or promote (small -> main) without reducing
// Len; the caller loops until Len actually drops, which is guaranteed
// because every reinsertion strictly decreases a bounded frequency.
func (c *Cache[K, V]) evict() {
	if c.main.Len() >= c.mainCap || c.small.Len() == 0 {
		c.evictFromMain()
		return
	}
	c.evictFromSmall()
}

func (c *Cache[K, V]) evictFromMain() {
	e := c.main.Front()
	if e == nil {
		return
	}

	if e.Value.freq.Load() > 0 {
		e.Value.freq.Add(-1)
		c.main.Remove(e)
		newEle := c.main.PushBack(e.Value)
		c.index[e.Value.key] = newEle
		return
	}

	c.main.Remove(e)
	delete(c.index, e.Value.key)
	c.evictions.Add(1)
}

// evictFromSmall pops small's head. Any prior access at all (freq > 0) is
// enough to promote it to main instead of ghosting it — a single Get before
// eviction pressure arrives is sufficient protection, it need not be two.
func (c *Cache[K, V]) evictFromSmall() {
	e := c.small.Front()
	if e == nil {
		return
	}

	c.small.Remove(e)

	if e.Value.freq.Load() > 0 {
		e.Value.inMain = true
		newEle := c.main.PushBack(e.Value)
		c.index[e.Value.key] = newEle
		return
	}

	delete(c.index, e.Value.key)
	c.addToGhost(e.Value.key)
	c.evictions.Add(1)
}

func (c *Cache[K, V]) addToGhost(key K) {
	if c.ghostCap == 0 {
		return
	}
	if c.ghost.Len() >= c.ghostCap {
		if oldest := c.ghost.Front(); oldest != nil {
			c.ghost.Remove(oldest)
			delete(c.ghostIndex, oldest.Value)
		}
	}
	ele := c.ghost.PushBack(key)
	c.ghostIndex[key] = ele
}

// removeFromGhost deletes key from the ghost queue if present and reports
// whether it was found.
func (c *Cache[K, V]) removeFromGhost(key K) bool {
	e, ok := c.ghostIndex[key]
	if !ok {
		return false
	}
	c.ghost.Remove(e)
	delete(c.ghostIndex, key)
	return true
}
