// Package metrics owns the Prometheus collectors for the assessment workflow.
//
// All methods are safe on a nil *Metrics so components can run without
// instrumentation.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "regaudit"

// Metrics bundles every collector exported by the service.
type Metrics struct {
	gatherer prometheus.Gatherer

	analyses       *prometheus.CounterVec
	recoveries     *prometheus.CounterVec
	files          *prometheus.CounterVec
	chunks         prometheus.Counter
	backendCalls   *prometheus.CounterVec
	backendLatency *prometheus.HistogramVec
	httpRequests   *prometheus.CounterVec
	httpLatency    *prometheus.HistogramVec
}

// New registers the collectors against reg. Passing a *prometheus.Registry
// also makes Handler serve exactly that registry.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	m := &Metrics{
		analyses: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Regulation analyses by regulation and outcome (ok, fallback, error, rejected).",
		}, []string{"regulation", "outcome"}),
		recoveries: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recovery_strategy_total",
			Help:      "Findings recoveries by winning strategy.",
		}, []string{"strategy"}),
		files: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_processed_total",
			Help:      "Documents handed to the chunker by result (ok, empty, skipped, failed).",
		}, []string{"result"}),
		chunks: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunks_produced_total",
			Help:      "Document chunks produced.",
		}),
		backendCalls: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backend_calls_total",
			Help:      "Model backend calls by operation and status.",
		}, []string{"operation", "status"}),
		backendLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "backend_latency_seconds",
			Help:      "Model backend call latency.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"operation"}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "status"}),
		httpLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}
	if g, ok := reg.(prometheus.Gatherer); ok {
		m.gatherer = g
	}
	return m
}

// Handler serves the registry the collectors were registered with, or the
// default gatherer.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveAnalysis(regulation, outcome string) {
	if m == nil {
		return
	}
	m.analyses.WithLabelValues(regulation, outcome).Inc()
}

func (m *Metrics) ObserveRecovery(strategy string) {
	if m == nil {
		return
	}
	m.recoveries.WithLabelValues(strategy).Inc()
}

func (m *Metrics) ObserveFile(result string) {
	if m == nil {
		return
	}
	m.files.WithLabelValues(result).Inc()
}

func (m *Metrics) AddChunks(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.chunks.Add(float64(n))
}

// ObserveBackend records one model call. err decides the status label.
func (m *Metrics) ObserveBackend(operation string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.backendCalls.WithLabelValues(operation, status).Inc()
	m.backendLatency.WithLabelValues(operation).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveHTTP(route, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpLatency.WithLabelValues(route).Observe(elapsed.Seconds())
}
