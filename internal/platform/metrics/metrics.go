// Package metrics exposes Prometheus collectors for the API and background workers.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"event_backend/internal/shared/apperr"
)

const namespace = "event_backend"

// Metrics holds every collector registered on its own registry.
type Metrics struct {
	Registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	RegistrationsTotal *prometheus.CounterVec

	NotificationsTotal *prometheus.CounterVec
	NotificationQueue  prometheus.Gauge
}

// New creates a registry with Go/process collectors and the service metrics.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		HTTPRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "route"},
		),
		RegistrationsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "registration_operations_total",
				Help:      "Registration engine operations by outcome",
			},
			[]string{"op", "outcome"},
		),
		NotificationsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "notifications_total",
				Help:      "Notifications by kind and result (sent, failed, dropped)",
			},
			[]string{"kind", "result"},
		),
		NotificationQueue: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "notification_queue_depth",
				Help:      "Notifications waiting to be sent",
			},
		),
	}
}

// ObserveRegistration counts one registration engine operation. The outcome
// label is "ok" or the apperr kind of err.
func (m *Metrics) ObserveRegistration(op string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = apperr.KindOf(err).String()
	}
	m.RegistrationsTotal.WithLabelValues(op, outcome).Inc()
}

// ObserveNotification counts one notification outcome.
func (m *Metrics) ObserveNotification(kind, result string) {
	m.NotificationsTotal.WithLabelValues(kind, result).Inc()
}

// SetQueueDepth records the notification backlog.
func (m *Metrics) SetQueueDepth(n int) {
	m.NotificationQueue.Set(float64(n))
}

// Middleware records request count and latency per route template.
// Unmatched routes share the "unmatched" label to keep cardinality bounded.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.HTTPRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
