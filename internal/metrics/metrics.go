// Package metrics exposes Prometheus collectors for the API server and the
// scan worker. A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "bakatracker"

// Metrics holds every collector, registered on its own registry.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests       *prometheus.CounterVec
	httpDuration       *prometheus.HistogramVec
	extractions        prometheus.Counter
	candidates         prometheus.Histogram
	extractionDuration prometheus.Histogram
	scans              *prometheus.CounterVec
	scanDuration       *prometheus.HistogramVec
	upstreamErrors     *prometheus.CounterVec
	jobRetries         prometheus.Counter
}

// New creates and registers the collectors. Process and Go runtime
// collectors are included.
func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by method, route template and status code",
	}, []string{"method", "route", "status"})
	m.httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})
	m.extractions = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "extract",
		Name:      "runs_total",
		Help:      "Event extraction runs",
	})
	m.candidates = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "extract",
		Name:      "candidates",
		Help:      "Candidate events returned per extraction",
		Buckets:   []float64{0, 1, 2, 3, 5, 10},
	})
	m.extractionDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "extract",
		Name:      "duration_seconds",
		Help:      "Time spent extracting events from text",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
	})
	m.scans = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "scan",
		Name:      "total",
		Help:      "Scans by kind, mode (sync or async) and outcome",
	}, []string{"kind", "mode", "status"})
	m.scanDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "scan",
		Name:      "duration_seconds",
		Help:      "Recognition plus extraction latency by kind",
		Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
	}, []string{"kind"})
	m.upstreamErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "upstream",
		Name:      "errors_total",
		Help:      "Errors from recognition providers by provider and class",
	}, []string{"provider", "class"})
	m.jobRetries = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "worker",
		Name:      "job_retries_total",
		Help:      "Scan jobs re-enqueued after a retryable failure",
	})

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests, m.httpDuration,
		m.extractions, m.candidates, m.extractionDuration,
		m.scans, m.scanDuration,
		m.upstreamErrors, m.jobRetries,
	)
	return m
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the exposition format for this registry.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// ObserveExtraction records one extraction run.
func (m *Metrics) ObserveExtraction(candidates int, d time.Duration) {
	if m == nil {
		return
	}
	m.extractions.Inc()
	m.candidates.Observe(float64(candidates))
	m.extractionDuration.Observe(d.Seconds())
}

// ObserveScan records a finished scan.
func (m *Metrics) ObserveScan(kind, mode, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.scans.WithLabelValues(kind, mode, status).Inc()
	if d > 0 {
		m.scanDuration.WithLabelValues(kind).Observe(d.Seconds())
	}
}

// IncUpstreamError counts a provider failure. class is one of
// "rate_limit", "quota", "permanent" or "other".
func (m *Metrics) IncUpstreamError(provider, class string) {
	if m == nil {
		return
	}
	m.upstreamErrors.WithLabelValues(provider, class).Inc()
}

// IncJobRetry counts a re-enqueued scan job.
func (m *Metrics) IncJobRetry() {
	if m == nil {
		return
	}
	m.jobRetries.Inc()
}
