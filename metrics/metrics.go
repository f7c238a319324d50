// Package metrics exposes Prometheus instrumentation for the workflow API.
package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds the collectors of one service instance.
type Registry struct {
	registry *prometheus.Registry

	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
	WorkflowsSaved       *prometheus.CounterVec
	ExecutionsRequested  prometheus.Counter
}

// NewRegistry creates a Registry with its own prometheus.Registry.
func NewRegistry() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}

	r.HTTPRequestsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "workflow_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)
	r.HTTPRequestDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "workflow_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	r.HTTPRequestsInFlight = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "workflow_http_requests_in_flight",
			Help: "Current number of HTTP requests being processed",
		},
	)
	r.WorkflowsSaved = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "workflow_saves_total",
			Help: "Workflows written, by operation",
		},
		[]string{"op"},
	)
	r.ExecutionsRequested = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "workflow_executions_requested_total",
			Help: "Execution requests accepted",
		},
	)
	return r
}

// Gatherer returns the underlying registry for exposition.
func (r *Registry) Gatherer() prometheus.Gatherer { return r.registry }

// Middleware records request count, latency and in-flight requests.
func (r *Registry) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()
		r.HTTPRequestsInFlight.Inc()
		defer r.HTTPRequestsInFlight.Dec()

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		route := c.Route().Path
		r.HTTPRequestsTotal.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		r.HTTPRequestDuration.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}
