// Package metrics exposes prometheus collectors for the service layer.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors shared across the HTTP layer and the
// realtime watcher.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	inFlight      prometheus.Gauge
	realtimeEvent *prometheus.CounterVec
	refetchTotal  *prometheus.CounterVec
	staleDropped  prometheus.Counter
	recomputes    prometheus.Counter
}

// New creates and registers the service collectors.
func New(namespace string) *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, path, and status.",
		}, []string{"method", "path", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"method", "path"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_in_flight_requests",
			Help:      "HTTP requests currently being served.",
		}),
		realtimeEvent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "realtime_events_total",
			Help:      "Change notifications received, by channel.",
		}, []string{"channel"}),
		refetchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "collection_refetch_total",
			Help:      "Collection refetches triggered by notifications.",
		}, []string{"collection", "outcome"}),
		staleDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_snapshots_dropped_total",
			Help:      "Refetch results discarded by the version guard.",
		}),
		recomputes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "availability_recomputes_total",
			Help:      "Bulk menu availability recomputes requested.",
		}),
	}
	registry.MustRegister(
		m.httpRequests, m.httpDuration, m.inFlight,
		m.realtimeEvent, m.refetchTotal, m.staleDropped, m.recomputes,
	)
	return m
}

// Handler returns the /metrics HTTP handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// IncrementInFlight bumps the in-flight gauge.
func (m *Metrics) IncrementInFlight() { m.inFlight.Inc() }

// DecrementInFlight lowers the in-flight gauge.
func (m *Metrics) DecrementInFlight() { m.inFlight.Dec() }

// RecordHTTPRequest records one served request.
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.httpRequests.WithLabelValues(method, path, status).Inc()
	m.httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordRealtimeEvent counts a change notification on a channel.
func (m *Metrics) RecordRealtimeEvent(channel string) {
	m.realtimeEvent.WithLabelValues(channel).Inc()
}

// RecordRefetch counts a collection refetch with its outcome.
func (m *Metrics) RecordRefetch(collection, outcome string) {
	m.refetchTotal.WithLabelValues(collection, outcome).Inc()
}

// RecordStaleDrop counts a snapshot discarded by the version guard.
func (m *Metrics) RecordStaleDrop() { m.staleDropped.Inc() }

// RecordRecompute counts a bulk availability recompute.
func (m *Metrics) RecordRecompute() { m.recomputes.Inc() }
