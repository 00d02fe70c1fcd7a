// Package metrics bridges a base.Engine's counters onto Prometheus, in the
// style of the teacher's pkg/metrics.PrometheusCollector: a prometheus.Desc
// per series and prometheus.MustNewConstMetric built straight from the
// engine's own snapshot, rather than a parallel set of atomic counters that
// could drift from the engine's bookkeeping.
//
// There is no TTL, jitter, shard, or per-reason eviction breakdown here —
// those are teacher concepts this cache's design explicitly excludes (no
// TTL, no resizing, no sharding). Eviction has exactly one cause: capacity
// pressure.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kvcache/kvcache/pkg/base"
)

// sizeByter is implemented by pkg/sieve.Cache, pkg/s3fifo.Cache and the
// pkg/safe.Cache wrapper. It is not part of base.Engine because size
// accounting is a diagnostic extra, not a cache-contract operation;
// Collector degrades gracefully (omits the series) for an engine that
// doesn't implement it.
type sizeByter interface {
	SizeBytes() int64
}

// Collector implements prometheus.Collector over a base.Engine snapshot.
// Register it with a prometheus.Registry to expose hit/miss/insertion/
// eviction counters and length/capacity/size gauges for one cache instance.
type Collector[K comparable, V any] struct {
	engine base.Engine[K, V]
	labels prometheus.Labels

	hitsDesc       *prometheus.Desc
	missesDesc     *prometheus.Desc
	insertionsDesc *prometheus.Desc
	evictionsDesc  *prometheus.Desc
	lengthDesc     *prometheus.Desc
	capacityDesc   *prometheus.Desc
	sizeDesc       *prometheus.Desc
}

var _ prometheus.Collector = (*Collector[string, int])(nil)

// NewCollector creates a Collector for engine, labelled with name so that
// multiple caches can be registered against the same Prometheus registry
// without series collisions.
func NewCollector[K comparable, V any](name string, engine base.Engine[K, V]) *Collector[K, V] {
	labels := prometheus.Labels{
		"name":      name,
		"algorithm": engine.Algorithm(),
	}

	return &Collector[K, V]{
		engine: engine,
		labels: labels,

		hitsDesc: prometheus.NewDesc(
			"kvcache_hits_total", "Total number of cache hits.", nil, labels),
		missesDesc: prometheus.NewDesc(
			"kvcache_misses_total", "Total number of cache misses.", nil, labels),
		insertionsDesc: prometheus.NewDesc(
			"kvcache_insertions_total", "Total number of new keys admitted.", nil, labels),
		evictionsDesc: prometheus.NewDesc(
			"kvcache_evictions_total", "Total number of keys evicted under capacity pressure.", nil, labels),
		lengthDesc: prometheus.NewDesc(
			"kvcache_length", "Current number of resident entries.", nil, labels),
		capacityDesc: prometheus.NewDesc(
			"kvcache_capacity", "Maximum number of entries the cache can hold.", nil, labels),
		sizeDesc: prometheus.NewDesc(
			"kvcache_size_bytes", "Estimated heap footprint of the resident index.", nil, labels),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector[K, V]) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.hitsDesc
	ch <- c.missesDesc
	ch <- c.insertionsDesc
	ch <- c.evictionsDesc
	ch <- c.lengthDesc
	ch <- c.capacityDesc
	ch <- c.sizeDesc
}

// Collect implements prometheus.Collector, reading a fresh snapshot of the
// engine's stats on every scrape.
func (c *Collector[K, V]) Collect(ch chan<- prometheus.Metric) {
	stats := c.engine.Stats()

	ch <- prometheus.MustNewConstMetric(c.hitsDesc, prometheus.CounterValue, float64(stats.Hits))
	ch <- prometheus.MustNewConstMetric(c.missesDesc, prometheus.CounterValue, float64(stats.Misses))
	ch <- prometheus.MustNewConstMetric(c.insertionsDesc, prometheus.CounterValue, float64(stats.Insertions))
	ch <- prometheus.MustNewConstMetric(c.evictionsDesc, prometheus.CounterValue, float64(stats.Evictions))
	ch <- prometheus.MustNewConstMetric(c.lengthDesc, prometheus.GaugeValue, float64(c.engine.Len()))
	ch <- prometheus.MustNewConstMetric(c.capacityDesc, prometheus.GaugeValue, float64(c.engine.Capacity()))

	if sb, ok := c.engine.(sizeByter); ok {
		ch <- prometheus.MustNewConstMetric(c.sizeDesc, prometheus.GaugeValue, float64(sb.SizeBytes()))
	}
}
