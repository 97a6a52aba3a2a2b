package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusExporter exports metrics to Prometheus format.
type PrometheusExporter struct {
	collector *Collector

	// Prometheus metrics
	cacheHits    prometheus.Gauge
	cacheMisses  prometheus.Gauge
	cacheHitRate prometheus.Gauge
	cacheKeys    prometheus.Gauge
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	httpErrors   *prometheus.CounterVec
}

// NewPrometheusExporter creates a new Prometheus exporter.
func NewPrometheusExporter(collector *Collector) *PrometheusExporter {
	return &PrometheusExporter{
		collector: collector,
		cacheHits: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "garrison_schema_cache_hits_total",
			Help: "Total number of schema cache hits",
		}),
		cacheMisses: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "garrison_schema_cache_misses_total",
			Help: "Total number of schema cache misses",
		}),
		cacheHitRate: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "garrison_schema_cache_hit_rate",
			Help: "Current schema cache hit rate (0.0 to 1.0)",
		}),
		cacheKeys: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "garrison_schema_cache_keys_current",
			Help: "Current number of cached schemas",
		}),
		httpRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "garrison_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"route", "method"},
		),
		httpDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "garrison_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0, 10.0},
			},
			[]string{"route", "method"},
		),
		httpErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "garrison_http_errors_total",
				Help: "Total number of HTTP error responses",
			},
			[]string{"route", "method"},
		),
	}
}

// Update refreshes gauge metrics from the collector.
// Counters are updated via middleware, so only gauges are touched here.
// This should be called periodically (e.g., every 10 seconds).
func (e *PrometheusExporter) Update() {
	cacheMetrics := e.collector.GetCacheMetrics()
	e.cacheHits.Set(float64(cacheMetrics.Hits))
	e.cacheMisses.Set(float64(cacheMetrics.Misses))
	e.cacheHitRate.Set(cacheMetrics.HitRate)
	e.cacheKeys.Set(float64(cacheMetrics.KeysCurrent))
}

// RecordRequest records a request in Prometheus.
func (e *PrometheusExporter) RecordRequest(route, method string) {
	e.httpRequests.WithLabelValues(route, method).Inc()
}

// RecordDuration records a duration in Prometheus.
func (e *PrometheusExporter) RecordDuration(route, method string, durationSeconds float64) {
	e.httpDuration.WithLabelValues(route, method).Observe(durationSeconds)
}

// RecordError records an error response in Prometheus.
func (e *PrometheusExporter) RecordError(route, method string) {
	e.httpErrors.WithLabelValues(route, method).Inc()
}
