// Package observability exposes the service's Prometheus metrics and
// the gin middleware that feeds the HTTP ones.
package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// HTTPRequests counts requests by method, route template and status.
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vehicle_decoder_http_requests_total",
			Help: "Total number of HTTP requests processed.",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPDuration tracks request latency by method and route template.
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vehicle_decoder_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// ProviderRequests counts outbound decode calls by provider and result.
	ProviderRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vehicle_decoder_provider_requests_total",
			Help: "Total number of outbound decode provider calls.",
		},
		[]string{"provider", "status"},
	)

	// ProviderLatency tracks outbound decode call latency per provider.
	ProviderLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vehicle_decoder_provider_latency_seconds",
			Help:    "Outbound decode provider latency in seconds.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"provider"},
	)

	// FeedConnections gauges currently connected live feed clients.
	FeedConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "vehicle_decoder_feed_connections",
			Help: "Number of connected live feed clients.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequests,
		HTTPDuration,
		ProviderRequests,
		ProviderLatency,
		FeedConnections,
	)
}

// Middleware records request count and latency for every matched route.
// Unmatched requests are grouped under one label to keep cardinality
// bounded.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		HTTPRequests.WithLabelValues(c.Request.Method, path, status).Inc()
		HTTPDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
