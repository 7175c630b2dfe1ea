// Package metrics exports memory system statistics to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/joshuapare/hunkkit/pkg/memsys"
)

// Namespace prefixes every metric name.
const Namespace = "hunkkit"

const (
	descHunkSize = iota
	descHunkLowMark
	descHunkHighMark
	descZoneSize
	descZoneFree
	descZoneUsedBlocks
	descCacheEntries
	descCacheBytes
	descCacheEvictions
	descCacheMoves
	descZoneFailedAllocs
)

var descriptors = []*prometheus.Desc{
	descHunkSize: prometheus.NewDesc(
		prometheus.BuildFQName(Namespace, "hunk", "size_bytes"),
		"Size of the arena.",
		nil, nil,
	),
	descHunkLowMark: prometheus.NewDesc(
		prometheus.BuildFQName(Namespace, "hunk", "low_mark_bytes"),
		"Bytes used by the low stack.",
		nil, nil,
	),
	descHunkHighMark: prometheus.NewDesc(
		prometheus.BuildFQName(Namespace, "hunk", "high_mark_bytes"),
		"Bytes used by the high stack.",
		nil, nil,
	),
	descZoneSize: prometheus.NewDesc(
		prometheus.BuildFQName(Namespace, "zone", "size_bytes"),
		"Usable size of the zone.",
		nil, nil,
	),
	descZoneFree: prometheus.NewDesc(
		prometheus.BuildFQName(Namespace, "zone", "free_bytes"),
		"Bytes held by free zone blocks.",
		nil, nil,
	),
	descZoneUsedBlocks: prometheus.NewDesc(
		prometheus.BuildFQName(Namespace, "zone", "used_blocks"),
		"Number of allocated zone blocks.",
		nil, nil,
	),
	descCacheEntries: prometheus.NewDesc(
		prometheus.BuildFQName(Namespace, "cache", "entries"),
		"Number of resident cache entries.",
		nil, nil,
	),
	descCacheBytes: prometheus.NewDesc(
		prometheus.BuildFQName(Namespace, "cache", "bytes"),
		"Bytes held by resident cache entries, headers included.",
		nil, nil,
	),
	descCacheEvictions: prometheus.NewDesc(
		prometheus.BuildFQName(Namespace, "cache", "evictions_total"),
		"Cache entries evicted since startup.",
		nil, nil,
	),
	descCacheMoves: prometheus.NewDesc(
		prometheus.BuildFQName(Namespace, "cache", "moves_total"),
		"Cache entries relocated since startup.",
		nil, nil,
	),
	descZoneFailedAllocs: prometheus.NewDesc(
		prometheus.BuildFQName(Namespace, "zone", "failed_allocs_total"),
		"Zone allocations that found no free block.",
		nil, nil,
	),
}

// Collector polls a System on every scrape.
type Collector struct {
	sys *memsys.System
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector returns a collector for sys.
func NewCollector(sys *memsys.System) *Collector {
	return &Collector{sys: sys}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range descriptors {
		ch <- d
	}
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	var (
		hs = c.sys.Hunk.Stats()
		zs = c.sys.Zone.Stats()
		cs = c.sys.Cache.Stats()
	)

	gauge := func(idx int, v float64) {
		ch <- prometheus.MustNewConstMetric(descriptors[idx], prometheus.GaugeValue, v)
	}
	counter := func(idx int, v float64) {
		ch <- prometheus.MustNewConstMetric(descriptors[idx], prometheus.CounterValue, v)
	}

	gauge(descHunkSize, float64(hs.Size))
	gauge(descHunkLowMark, float64(hs.Low))
	gauge(descHunkHighMark, float64(hs.High))
	gauge(descZoneSize, float64(zs.Size))
	gauge(descZoneFree, float64(zs.FreeBytes))
	gauge(descZoneUsedBlocks, float64(zs.UsedBlocks))
	gauge(descCacheEntries, float64(cs.Entries))
	gauge(descCacheBytes, float64(cs.Bytes))
	counter(descCacheEvictions, float64(cs.Evictions))
	counter(descCacheMoves, float64(cs.Moves))
	counter(descZoneFailedAllocs, float64(zs.FailedAllocs))

	c.sys.Console().Debug("collected memory metrics", "count", len(descriptors))
}

// NewRegistry returns a registry holding only a collector for sys.
func NewRegistry(sys *memsys.System) *prometheus.Registry {
	r := prometheus.NewPedanticRegistry()
	r.MustRegister(NewCollector(sys))
	return r
}
