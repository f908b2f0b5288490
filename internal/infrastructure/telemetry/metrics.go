// Package telemetry provides Prometheus metrics for the purchasing client and
// the development backend.
package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metric names.
const (
	MetricListQueriesTotal       = "purchasing_list_queries_total"
	MetricGatewayRequestDuration = "purchasing_gateway_request_duration_seconds"
	MetricGatewayRequestsTotal   = "purchasing_gateway_requests_total"
	MetricSubmissionsTotal       = "purchasing_order_submissions_total"
	MetricHTTPRequestsTotal      = "purchasing_http_requests_total"
	MetricHTTPRequestDuration    = "purchasing_http_request_duration_seconds"
)

// List query outcomes.
const (
	QueryIssued  = "issued"
	QueryApplied = "applied"
	QueryStale   = "stale"
	QueryFailed  = "failed"
)

// Metrics holds every collector on a private registry.
// All recording methods are safe on a nil receiver so metrics stay optional.
type Metrics struct {
	registry *prometheus.Registry

	listQueries     *prometheus.CounterVec
	gatewayRequests *prometheus.CounterVec
	gatewayDuration *prometheus.HistogramVec
	submissions     *prometheus.CounterVec
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

// NewMetrics creates and registers all collectors.
// withRuntime adds the Go and process collectors, which only make sense
// for long-running processes.
func NewMetrics(withRuntime bool) *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		listQueries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricListQueriesTotal,
			Help: "List queries by outcome (issued, applied, stale, failed)",
		}, []string{"outcome"}),
		gatewayRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricGatewayRequestsTotal,
			Help: "Backend gateway requests by operation and status code",
		}, []string{"operation", "status"}),
		gatewayDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    MetricGatewayRequestDuration,
			Help:    "Backend gateway request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricSubmissionsTotal,
			Help: "Order builder submissions by mode (create, update) and result",
		}, []string{"mode", "result"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricHTTPRequestsTotal,
			Help: "Development backend HTTP requests",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    MetricHTTPRequestDuration,
			Help:    "Development backend HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	registry.MustRegister(
		m.listQueries,
		m.gatewayRequests,
		m.gatewayDuration,
		m.submissions,
		m.httpRequests,
		m.httpDuration,
	)
	if withRuntime {
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return m
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler returns an HTTP handler exposing the registry
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ListQuery records a list query outcome
func (m *Metrics) ListQuery(outcome string) {
	if m == nil {
		return
	}
	m.listQueries.WithLabelValues(outcome).Inc()
}

// GatewayRequest records one backend call. status 0 means the request never
// got a response.
func (m *Metrics) GatewayRequest(operation string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.gatewayRequests.WithLabelValues(operation, statusLabel(status)).Inc()
	m.gatewayDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// Submission records an order builder submit
func (m *Metrics) Submission(mode string, err error) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "error"
	}
	m.submissions.WithLabelValues(mode, result).Inc()
}

// HTTPRequest records one request served by the development backend
func (m *Metrics) HTTPRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func statusLabel(status int) string {
	if status == 0 {
		return "none"
	}
	return strconv.Itoa(status)
}
