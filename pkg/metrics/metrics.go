package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "notesapp", Name: "http_requests_total", Help: "Number of HTTP requests by method and status."},
		[]string{"method", "status"},
	)
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Namespace: "notesapp", Name: "http_request_duration_seconds", Help: "HTTP request latency.", Buckets: prometheus.DefBuckets},
		[]string{"method"},
	)
	RateLimitAllowed = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "notesapp", Name: "rate_limit_allowed_total", Help: "Number of requests admitted by the rate limiter."},
	)
	RateLimitRejected = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "notesapp", Name: "rate_limit_rejected_total", Help: "Number of requests rejected by the rate limiter."},
	)
	WebsocketConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{Namespace: "notesapp", Name: "websocket_connections", Help: "Currently registered websocket clients."},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(HTTPRequests)
	reg.MustRegister(HTTPDuration)
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(WebsocketConnections)
}
