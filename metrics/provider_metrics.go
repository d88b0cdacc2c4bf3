package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type ProviderMetricsCollector struct {
	Requests  *prometheus.CounterVec
	Failures  *prometheus.CounterVec
	Fallbacks prometheus.Counter
	Latency   *prometheus.HistogramVec
}

var providerCollector *ProviderMetricsCollector

func getProviderCollector() *ProviderMetricsCollector {
	if providerCollector == nil {
		providerCollector = &ProviderMetricsCollector{
			Requests: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "weather_provider_requests_total",
					Help: "The total number of upstream provider requests",
				},
				[]string{"provider"},
			),
			Failures: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "weather_provider_failures_total",
					Help: "The total number of failed upstream provider requests",
				},
				[]string{"provider"},
			),
			Fallbacks: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "weather_provider_fallbacks_total",
					Help: "The total number of fallbacks to a secondary provider",
				},
			),
			Latency: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "weather_provider_duration_seconds",
					Help:    "Upstream provider request duration in seconds",
					Buckets: prometheus.DefBuckets,
				},
				[]string{"provider"},
			),
		}
	}
	return providerCollector
}

type ProviderMetrics struct {
	provider  string
	collector *ProviderMetricsCollector
}

func NewProviderMetrics(provider string) *ProviderMetrics {
	return &ProviderMetrics{
		provider:  provider,
		collector: getProviderCollector(),
	}
}

func (m *ProviderMetrics) RecordRequest() {
	m.collector.Requests.WithLabelValues(m.provider).Inc()
}

func (m *ProviderMetrics) RecordFailure() {
	m.collector.Failures.WithLabelValues(m.provider).Inc()
}

func (m *ProviderMetrics) RecordFallback() {
	m.collector.Fallbacks.Inc()
}

func (m *ProviderMetrics) RecordLatency(duration float64) {
	m.collector.Latency.WithLabelValues(m.provider).Observe(duration)
}
