// Package metrics owns the Prometheus instruments of the service. Labels are
// kept low-cardinality: route patterns, never raw paths or ids.
package metrics

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	storeFailures   *prometheus.CounterVec
	storeConflicts  *prometheus.CounterVec
	aiCalls         *prometheus.CounterVec
}

var (
	defaultOnce    sync.Once
	defaultMetrics *Metrics
)

// Default returns the process-wide instruments registered on the default registerer.
func Default() *Metrics {
	defaultOnce.Do(func() {
		defaultMetrics = New(prometheus.DefaultRegisterer)
	})
	return defaultMetrics
}

// New creates and registers the instruments on registerer.
func New(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quote_drafter_http_requests_total",
			Help: "HTTP requests by route pattern, method and status code.",
		}, []string{"route", "method", "status_code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "quote_drafter_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern.",
			Buckets: []float64{0.005, 0.025, 0.1, 0.25, 1, 2.5, 10, 30, 60},
		}, []string{"route"}),
		storeFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quote_drafter_store_write_failures_total",
			Help: "Document and draft writes that failed, by backend.",
		}, []string{"backend"}),
		storeConflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quote_drafter_store_conflicts_total",
			Help: "Document saves rejected because the stored version moved on.",
		}, []string{"backend"}),
		aiCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quote_drafter_ai_calls_total",
			Help: "Calls to the text generation service by operation and result.",
		}, []string{"operation", "result"}),
	}
	registerer.MustRegister(m.requests, m.requestDuration, m.storeFailures, m.storeConflicts, m.aiCalls)
	return m
}

// RecordRequest counts one finished HTTP request.
func (m *Metrics) RecordRequest(route, method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	route = normalizeRoute(route)
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(route).Observe(d.Seconds())
}

func (m *Metrics) StoreWriteFailed(backend string) {
	if m == nil {
		return
	}
	m.storeFailures.WithLabelValues(backend).Inc()
}

func (m *Metrics) StoreConflict(backend string) {
	if m == nil {
		return
	}
	m.storeConflicts.WithLabelValues(backend).Inc()
}

// AICall counts a text generation call; result is "ok" or "error".
func (m *Metrics) AICall(operation string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.aiCalls.WithLabelValues(operation, result).Inc()
}

func normalizeRoute(route string) string {
	route = strings.TrimSpace(route)
	if route == "" {
		return "unknown"
	}
	return route
}
