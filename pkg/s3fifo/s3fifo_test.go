package s3fifo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	is := assert.New(t)
	t.Parallel()

	_, err := New[string, int](0)
	is.ErrorIs(err, ErrBadCapacity)

	cache, err := New[string, int](10)
	is.NoError(err)
	is.Equal(10, cache.capacity)
	is.Equal(1, cache.smallCap)
	is.Equal(9, cache.mainCap)
	is.Equal(9, cache.ghostCap)
}

func TestSetInsertsUntilCapacity(t *testing.T) {
	is := assert.New(t)
	t.Parallel()

	cache, _ := New[string, int](3)

	is.True(cache.Set("a", 1))
	is.True(cache.Set("b", 2))
	is.True(cache.Set("c", 3))
	is.Equal(3, cache.Len())
}

func TestSetExistingKeyIsReplaceNotInsertion(t *testing.T) {
	is := assert.New(t)
	t.Parallel()

	cache, _ := New[string, int](3)
	is.True(cache.Set("a", 1))
	is.False(cache.Set("a", 2))

	v, ok := cache.Get("a")
	is.True(ok)
	is.Equal(2, v)
	is.Equal(1, cache.Len())
}

func TestGetMissAndHit(t *testing.T) {
	is := assert.New(t)
	t.Parallel()

	cache, _ := New[string, int](3)
	cache.Set("a", 1)

	v, ok := cache.Get("a")
	is.True(ok)
	is.Equal(1, v)

	_, ok = cache.Get("missing")
	is.False(ok)

	stats := cache.Stats()
	is.Equal(uint64(1), stats.Hits)
	is.Equal(uint64(1), stats.Misses)
}

func TestPeekDoesNotBumpFrequency(t *testing.T) {
	is := assert.New(t)
	t.Parallel()

	cache, _ := New[string, int](3)
	cache.Set("a", 1)

	v, ok := cache.Peek("a")
	is.True(ok)
	is.Equal(1, v)

	e := cache.index["a"]
	is.Zero(e.Value.freq.Load())
}

func TestContains(t *testing.T) {
	is := assert.New(t)
	t.Parallel()

	cache, _ := New[string, int](3)
	cache.Set("a", 1)

	is.True(cache.Contains("a"))
	is.False(cache.Contains("z"))
}

func TestKeysAndValues(t *testing.T) {
	is := assert.New(t)
	t.Parallel()

	cache, _ := New[string, int](3)
	cache.Set("a", 1)
	cache.Set("b", 2)

	is.ElementsMatch([]string{"a", "b"}, cache.Keys())
	is.ElementsMatch([]int{1, 2}, cache.Values())
}

func TestFetchRemove(t *testing.T) {
	is := assert.New(t)
	t.Parallel()

	cache, _ := New[string, int](3)
	cache.Set("a", 1)
	cache.Set("b", 2)

	v, ok := cache.FetchRemove("a")
	is.True(ok)
	is.Equal(1, v)
	is.False(cache.Contains("a"))
	is.Equal(1, cache.Len())

	_, ok = cache.FetchRemove("a")
	is.False(ok)
}

func TestFetchRemoveDoesNotTouchGhost(t *testing.T) {
	is := assert.New(t)
	t.Parallel()

	cache, _ := New[string, int](3)
	cache.Set("a", 1)
	cache.FetchRemove("a")

	is.Equal(0, cache.GhostLen())
}

func TestPurge(t *testing.T) {
	is := assert.New(t)
	t.Parallel()

	cache, _ := New[string, int](3)
	cache.Set("a", 1)
	cache.Set("b", 2)

	cache.Purge()
	is.Equal(0, cache.Len())
	is.Equal(0, cache.GhostLen())
	is.Empty(cache.index)
	is.Empty(cache.ghostIndex)

	is.True(cache.Set("c", 3))
	is.Equal(1, cache.Len())
}

func TestCapacityAndAlgorithm(t *testing.T) {
	is := assert.New(t)
	t.Parallel()

	cache, _ := New[string, int](3)
	is.Equal(3, cache.Capacity())
	is.Equal("s3fifo", cache.Algorithm())
}

func TestSizeBytes(t *testing.T) {
	is := assert.New(t)
	t.Parallel()

	cache, _ := New[string, int](10)
	is.GreaterOrEqual(cache.SizeBytes(), int64(0))

	cache.Set("a", 1)
	is.Positive(cache.SizeBytes())
}

// A small-queue entry read once before eviction pressure reaches it is
// promoted to main rather than ghosted.
func TestSingleAccessPromotesFromSmall(t *testing.T) {
	is := assert.New(t)
	t.Parallel()

	cache, _ := New[int, int](3)
	cache.Set(1, 1)
	cache.Set(2, 2)
	cache.Get(1)
	cache.Set(3, 3)
	cache.Set(4, 4)

	is.True(cache.Contains(1))
	e := cache.index[1]
	is.True(e.Value.inMain)
}

// An untouched small-queue entry is ghosted, not promoted, when evicted.
func TestNeverAccessedEntryIsGhosted(t *testing.T) {
	is := assert.New(t)
	t.Parallel()

	cache, _ := New[int, int](3)
	cache.Set(1, 1)
	cache.Set(2, 2)
	cache.Set(3, 3)
	cache.Set(4, 4)

	is.False(cache.Contains(1))
	is.Equal(1, cache.GhostLen())
}

// A ghost hit on re-admission skips small and enters main directly with
// freq=1.
func TestGhostHitAdmitsDirectlyToMain(t *testing.T) {
	is := assert.New(t)
	t.Parallel()

	cache, _ := New[int, int](3)
	cache.Set(1, 1)
	cache.Set(2, 2)
	cache.Set(3, 3)
	cache.Set(4, 4) // evicts 1 into ghost

	is.Equal(1, cache.GhostLen())

	cache.Set(1, 100)
	e, ok := cache.index[1]
	is.True(ok)
	is.True(e.Value.inMain)
	is.Equal(int32(1), e.Value.freq.Load())
	_, stillGhosted := cache.ghostIndex[1]
	is.False(stillGhosted)
}

// A main-queue entry with freq > 0 is reinserted (decremented, re-appended)
// instead of being evicted outright.
func TestMainReinsertionDecrementsFrequency(t *testing.T) {
	is := assert.New(t)
	t.Parallel()

	cache, _ := New[int, int](10)
	cache.Set(1, 1)
	cache.Set(2, 2)
	cache.Set(3, 3)
	cache.Get(1)
	cache.Set(4, 4)
	cache.Set(5, 5)

	// Sustained insertion of new keys stays within capacity. Only key 1 is
	// ever promoted here, so main never fills and reinsertion is exercised
	// separately below.
	for i := 6; i < 40; i++ {
		cache.Set(i, i)
	}

	is.LessOrEqual(cache.Len(), cache.Capacity())

	// Ghost hits fill main with freq=1 entries; the next admission has to
	// pass over each of them (decrementing freq) before evicting one.
	full, _ := New[int, int](3)
	for i := 1; i <= 4; i++ {
		full.Set(i, i) // 1 is ghosted when 4 arrives
	}
	full.Set(1, 1) // ghost hit: main [1]
	full.Set(2, 2) // ghost hit: main [1, 2]
	full.Set(3, 3) // ghost hit: main [1, 2, 3], small empty
	full.Set(5, 5) // 1, 2, 3 reinserted with freq 0, then 1 evicted

	is.Equal(3, full.Len())
	is.False(full.Contains(1))
	is.Equal(int32(0), full.index[2].Value.freq.Load())
	is.Equal(int32(0), full.index[3].Value.freq.Load())
}

func TestGhostCapacityEvictsOldest(t *testing.T) {
	is := assert.New(t)
	t.Parallel()

	cache, _ := New[int, int](3)
	is.Equal(3, cache.ghostCap)

	cache.Set(1, 1)
	cache.Set(2, 2)
	cache.Set(3, 3)
	cache.Set(4, 4) // ghost: [1]
	cache.Set(5, 5) // ghost: [1, 2]
	cache.Set(6, 6) // ghost: [1, 2, 3], now at cap
	is.Equal(3, cache.GhostLen())
	_, stillGhosted := cache.ghostIndex[1]
	is.True(stillGhosted)

	cache.Set(7, 7) // ghost at cap: oldest (1) evicted to make room for 4
	is.Equal(3, cache.GhostLen())
	_, stillGhosted = cache.ghostIndex[1]
	is.False(stillGhosted)
}

// scenario 2 from the specification's concrete end-to-end examples:
// S3-FIFO small/main/ghost, capacity=3.
func TestSpecScenarioS3FIFOSmallMainGhost(t *testing.T) {
	is := assert.New(t)
	t.Parallel()

	cache, err := New[int, string](3)
	is.NoError(err)

	is.True(cache.Set(1, "one"))
	is.True(cache.Set(2, "two"))

	v, ok := cache.Get(1)
	is.True(ok)
	is.Equal("one", v)

	is.True(cache.Set(3, "three"))
	is.True(cache.Set(4, "four"))
	is.True(cache.Set(5, "five"))
	is.False(cache.Set(4, "four"))

	is.True(cache.Contains(1))
}

// scenario 4 from the specification's concrete end-to-end examples:
// eviction under sustained pressure never overshoots capacity.
func TestSpecScenarioEvictionUnderPressure(t *testing.T) {
	is := assert.New(t)
	t.Parallel()

	cache, err := New[int, int](2)
	is.NoError(err)

	for i := 0; i < 100; i++ {
		cache.Set(i, i)
		is.LessOrEqual(cache.Len(), cache.Capacity())
	}
}
