// Package metrics exposes the Prometheus collectors of the API server.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gooners_http_requests_total",
			Help: "Total number of HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gooners_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	RateLimited = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "gooners_rate_limited_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
	)

	// Domain metrics
	PostsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "gooners_posts_created_total",
			Help: "Total number of posts created",
		},
	)

	LikesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gooners_likes_total",
			Help: "Total number of like and unlike operations",
		},
		[]string{"action"},
	)

	MessagesSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gooners_messages_sent_total",
			Help: "Total number of chat messages by room kind",
		},
		[]string{"room"},
	)

	NotificationsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gooners_notifications_created_total",
			Help: "Total number of notifications by type",
		},
		[]string{"type"},
	)

	// Realtime metrics
	WebsocketConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "gooners_websocket_connections",
			Help: "Number of open push connections",
		},
	)

	EventsDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "gooners_realtime_events_dropped_total",
			Help: "Events not delivered because a subscriber buffer was full",
		},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequestsTotal)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(RateLimited)
	prometheus.MustRegister(PostsCreated)
	prometheus.MustRegister(LikesTotal)
	prometheus.MustRegister(MessagesSent)
	prometheus.MustRegister(NotificationsCreated)
	prometheus.MustRegister(WebsocketConnections)
	prometheus.MustRegister(EventsDropped)
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}
