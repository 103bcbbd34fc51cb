package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Counter metrics
var (
	// Webhook event counter by event kind
	WebhookEventCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_webhook_events_total",
			Help: "Total number of webhook events processed by kind",
		},
		[]string{"kind"}, // kind can be "message", "comment", "story_mention", "mention"
	)

	// Outbound message counter by kind and outcome
	MessageCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_messages_total",
			Help: "Total number of outbound send attempts by kind and outcome",
		},
		[]string{"kind", "outcome"}, // outcome is "sent" or "failed"
	)

	// Quota rejection counter
	QuotaRejectionCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "agent_quota_rejections_total",
			Help: "Total number of sends blocked by the daily quota",
		},
	)

	// Tenant operation counter
	TenantOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_tenant_operations_total",
			Help: "Total number of tenant management operations",
		},
		[]string{"operation"}, // operation can be "create", "update", "deactivate", "delete", etc.
	)

	// HTTP request counter by endpoint and status
	HTTPRequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_http_requests_total",
			Help: "Total number of HTTP requests by endpoint and status",
		},
		[]string{"endpoint", "method", "status"},
	)
)

// Histogram metrics
var (
	// Request duration
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "agent_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)
)

// Gauge metrics
var (
	// Active tenants
	ActiveTenantsGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "agent_active_tenants",
			Help: "Number of currently active tenants",
		},
	)
)

func init() {
	prometheus.MustRegister(WebhookEventCounter)
	prometheus.MustRegister(MessageCounter)
	prometheus.MustRegister(QuotaRejectionCounter)
	prometheus.MustRegister(TenantOperationCounter)
	prometheus.MustRegister(HTTPRequestCounter)
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(ActiveTenantsGauge)
}

// RecordWebhookEvent records one processed webhook event by kind
func RecordWebhookEvent(kind string) {
	WebhookEventCounter.With(prometheus.Labels{"kind": kind}).Inc()
}

// RecordMessage records one outbound send attempt
func RecordMessage(kind string, sent bool) {
	outcome := "failed"
	if sent {
		outcome = "sent"
	}
	MessageCounter.With(prometheus.Labels{"kind": kind, "outcome": outcome}).Inc()
}

// RecordQuotaRejection records one send blocked by the daily quota
func RecordQuotaRejection() {
	QuotaRejectionCounter.Inc()
}

// RecordTenantOperation records a tenant management operation
func RecordTenantOperation(operation string) {
	TenantOperationCounter.With(prometheus.Labels{"operation": operation}).Inc()
}

// UpdateActiveTenants updates the active tenants gauge
func UpdateActiveTenants(count int64) {
	ActiveTenantsGauge.Set(float64(count))
}

// MetricsMiddleware creates a middleware function that captures metrics for each request
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			duration := time.Since(start).Seconds()
			status := strconv.Itoa(c.Response().Status)
			endpoint := c.Path()
			method := c.Request().Method

			RequestDuration.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Observe(duration)

			HTTPRequestCounter.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Inc()

			return err
		}
	}
}

// Handler returns an HTTP handler for exposing Prometheus metrics
func Handler() http.Handler {
	return promhttp.Handler()
}
