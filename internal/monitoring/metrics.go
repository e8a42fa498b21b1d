package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus metrics for the terminal service.
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Session metrics
	SessionsActive prometheus.Gauge
	SessionsTotal  *prometheus.CounterVec
	SpawnFailures  prometheus.Counter

	// Output metrics
	OutputBytes  prometheus.Counter
	TrimmedBytes prometheus.Counter

	// WebSocket metrics
	WSConnections prometheus.Gauge

	registry *prometheus.Registry
}

// NewMetrics creates a metrics collector on its own registry, so multiple
// instances can coexist in one process (tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "termos_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "termos_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		SessionsActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "termos_sessions_active",
				Help: "Number of live terminal sessions",
			},
		),
		SessionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "termos_sessions_total",
				Help: "Total sessions created, by backend variant",
			},
			[]string{"backend"},
		),
		SpawnFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "termos_spawn_failures_total",
				Help: "Session creations that failed on both backends",
			},
		),
		OutputBytes: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "termos_output_bytes_total",
				Help: "Bytes of session output delivered",
			},
		),
		TrimmedBytes: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "termos_buffer_trimmed_bytes_total",
				Help: "Bytes dropped by output buffer trimming",
			},
		),
		WSConnections: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "termos_ws_connections",
				Help: "Open websocket connections",
			},
		),
		registry: reg,
	}

	reg.MustRegister(
		m.RequestsTotal,
		m.RequestDuration,
		m.SessionsActive,
		m.SessionsTotal,
		m.SpawnFailures,
		m.OutputBytes,
		m.TrimmedBytes,
		m.WSConnections,
	)

	return m
}

// Registry exposes the backing registry for the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordHTTPRequest records a completed HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// WSOpened records a websocket connection opening.
func (m *Metrics) WSOpened() {
	m.WSConnections.Inc()
}

// WSClosed records a websocket connection closing.
func (m *Metrics) WSClosed() {
	m.WSConnections.Dec()
}
