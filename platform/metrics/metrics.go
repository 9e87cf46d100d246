// Package metrics exposes prometheus collectors for intake, enrichment and
// HTTP traffic. This is part of the platform layer and contains no business logic.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Intake outcomes.
const (
	OutcomeStored       = "stored"
	OutcomeIgnored      = "ignored"
	OutcomeUnauthorized = "unauthorized"
	OutcomeInvalid      = "invalid"
	OutcomeFailed       = "failed"
)

// Enrichment outcomes.
const (
	EnrichmentApplied  = "applied"
	EnrichmentEmpty    = "empty"
	EnrichmentSkipped  = "skipped"
	EnrichmentConflict = "conflict"
	EnrichmentFailed   = "failed"
)

// Metrics owns a private registry so tests can build independent instances.
type Metrics struct {
	registry *prometheus.Registry

	intakeRequests  *prometheus.CounterVec
	enrichments     *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	dashboardCached *prometheus.CounterVec
}

// New creates and registers all collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		intakeRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flowlayer_intake_requests_total",
				Help: "Intake webhook requests by outcome and payload kind",
			},
			[]string{"outcome", "kind"},
		),
		enrichments: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flowlayer_lead_enrichments_total",
				Help: "Lead enrichment attempts by outcome",
			},
			[]string{"outcome"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "flowlayer_http_request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
		dashboardCached: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flowlayer_dashboard_cache_total",
				Help: "Dashboard snapshot cache lookups by result",
			},
			[]string{"result"},
		),
	}

	registry.MustRegister(
		m.intakeRequests,
		m.enrichments,
		m.httpDuration,
		m.dashboardCached,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// IntakeRequest counts one intake request.
func (m *Metrics) IntakeRequest(outcome, kind string) {
	if m == nil {
		return
	}
	m.intakeRequests.WithLabelValues(outcome, kind).Inc()
}

// Enrichment counts one enrichment attempt.
func (m *Metrics) Enrichment(outcome string) {
	if m == nil {
		return
	}
	m.enrichments.WithLabelValues(outcome).Inc()
}

// DashboardCache counts a cache hit or miss.
func (m *Metrics) DashboardCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.dashboardCached.WithLabelValues(result).Inc()
}

// Middleware records request latency keyed by the matched route template.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

// Handler serves the prometheus exposition format.
func (m *Metrics) Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
