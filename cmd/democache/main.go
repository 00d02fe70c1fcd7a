// Command democache is a minimal demonstration of the kvcache library. It
// is not part of the library's public surface; it exists only to exercise
// the operations listed in the package's external interface.
package main

import (
	"fmt"
	"log"

	"github.com/kvcache/kvcache"
)

func main() {
	fmt.Println("SIEVE cache")
	runDemo(kvcache.Sieve)

	fmt.Println()
	fmt.Println("S3-FIFO cache")
	runDemo(kvcache.S3FIFO)
}

func runDemo(policy kvcache.Policy) {
	cache, err := kvcache.New[string, string](policy, 3, kvcache.Shared)
	if err != nil {
		log.Fatalf("new cache: %v", err)
	}

	cache.Set("alpha", "1")
	cache.Set("beta", "2")
	cache.Get("alpha")
	cache.Set("gamma", "3")
	cache.Set("delta", "4")

	fmt.Printf("algorithm=%s capacity=%d len=%d\n", cache.Algorithm(), cache.Capacity(), cache.Len())

	for _, key := range []string{"alpha", "beta", "gamma", "delta"} {
		if v, ok := cache.Get(key); ok {
			fmt.Printf("  %s -> %s\n", key, v)
		} else {
			fmt.Printf("  %s -> (evicted)\n", key)
		}
	}

	stats := cache.Stats()
	fmt.Printf("hits=%d misses=%d insertions=%d evictions=%d hit_ratio=%.2f\n",
		stats.Hits, stats.Misses, stats.Insertions, stats.Evictions, stats.HitRatio())
}
