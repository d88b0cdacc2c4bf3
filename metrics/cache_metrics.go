package metrics

import (
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// storeCollector holds the process-wide prometheus instruments for the
// key-value stores. prometheus rejects duplicate registration, so the
// instruments are created once and shared across every CacheMetrics
// instance, partitioned by the store_type label.
type storeCollector struct {
	hits     *prometheus.CounterVec
	misses   *prometheus.CounterVec
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	hitRatio *prometheus.GaugeVec
}

var (
	storeCollectorOnce sync.Once
	storeInstruments   *storeCollector
)

func getStoreCollector() *storeCollector {
	storeCollectorOnce.Do(func() {
		storeLabel := []string{"store_type"}
		storeInstruments = &storeCollector{
			hits: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "weather_cache_hits_total",
				Help: "The total number of cache hits",
			}, storeLabel),
			misses: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "weather_cache_misses_total",
				Help: "The total number of cache misses",
			}, storeLabel),
			requests: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "weather_cache_requests_total",
				Help: "The total number of cache requests",
			}, storeLabel),
			latency: promauto.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "weather_cache_duration_seconds",
				Help:    "Cache operation duration in seconds",
				Buckets: prometheus.DefBuckets,
			}, []string{"store_type", "operation"}),
			hitRatio: promauto.NewGaugeVec(prometheus.GaugeOpts{
				Name: "weather_cache_hit_ratio",
				Help: "Cache hit ratio (hits/total requests)",
			}, storeLabel),
		}
	})
	return storeInstruments
}

// CacheMetrics counts hits and misses for one store instance. The local
// counters are atomic; the hit ratio is derived from them on each record
// rather than tracked separately, so hits+misses is always the request
// total.
type CacheMetrics struct {
	storeType string
	hits      atomic.Int64
	misses    atomic.Int64
	collector *storeCollector
}

func NewCacheMetrics(storeType string) *CacheMetrics {
	return &CacheMetrics{
		storeType: storeType,
		collector: getStoreCollector(),
	}
}

func (m *CacheMetrics) RecordHit() {
	m.hits.Add(1)
	m.collector.hits.WithLabelValues(m.storeType).Inc()
	m.record()
}

func (m *CacheMetrics) RecordMiss() {
	m.misses.Add(1)
	m.collector.misses.WithLabelValues(m.storeType).Inc()
	m.record()
}

func (m *CacheMetrics) RecordLatency(operation string, duration float64) {
	m.collector.latency.WithLabelValues(m.storeType, operation).Observe(duration)
}

// record bumps the request counter and refreshes the ratio gauge after a
// hit or miss has been counted.
func (m *CacheMetrics) record() {
	m.collector.requests.WithLabelValues(m.storeType).Inc()
	hits, total := m.snapshot()
	if total > 0 {
		m.collector.hitRatio.WithLabelValues(m.storeType).Set(float64(hits) / float64(total))
	}
}

func (m *CacheMetrics) snapshot() (hits, total int64) {
	hits = m.hits.Load()
	return hits, hits + m.misses.Load()
}

func (m *CacheMetrics) GetStats() map[string]interface{} {
	hits, total := m.snapshot()
	misses := total - hits

	var hitRatio float64
	if total > 0 {
		hitRatio = float64(hits) / float64(total)
	}

	return map[string]interface{}{
		"store_type": m.storeType,
		"hits":       hits,
		"misses":     misses,
		"total":      total,
		"hit_ratio":  hitRatio,
	}
}
