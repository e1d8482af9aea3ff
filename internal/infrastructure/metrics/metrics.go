// Package metrics provides Prometheus metrics for the chat service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ActiveConnections tracks live sessions subscribed to a room.
	ActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chat_active_connections",
			Help: "Number of websocket sessions currently subscribed to a room",
		},
	)

	// SessionStateTransitions tracks gateway state changes.
	SessionStateTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_session_state_transitions_total",
			Help: "Total number of session state transitions",
		},
		[]string{"from_state", "to_state"},
	)

	// ConnectionsRejected counts refused connects by reason.
	ConnectionsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_connections_rejected_total",
			Help: "Total number of refused session connects",
		},
		[]string{"reason"},
	)

	// MessagesPersisted counts stored messages by entry path.
	MessagesPersisted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_messages_persisted_total",
			Help: "Total number of messages durably stored",
		},
		[]string{"source"},
	)

	// MessagesRejected counts inbound messages refused by authorization or validation.
	MessagesRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_messages_rejected_total",
			Help: "Total number of messages refused before persistence",
		},
		[]string{"reason"},
	)

	// BroadcastDeliveries counts per-subscriber fan-out outcomes.
	BroadcastDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_broadcast_deliveries_total",
			Help: "Total number of per-subscriber broadcast attempts",
		},
		[]string{"outcome"},
	)

	// HTTPRequests counts API requests by route and status.
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPDuration tracks API latency by route.
	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chat_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// PersistDuration tracks the createMessage write path.
	PersistDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "chat_message_persist_duration_seconds",
			Help:    "Duration of message persistence",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
	)
)

// RecordStateTransition records a session state change.
func RecordStateTransition(fromState, toState string) {
	SessionStateTransitions.WithLabelValues(fromState, toState).Inc()
}

// RecordBroadcast records delivered and dropped subscribers of one fan-out.
func RecordBroadcast(delivered, dropped int) {
	if delivered > 0 {
		BroadcastDeliveries.WithLabelValues("delivered").Add(float64(delivered))
	}
	if dropped > 0 {
		BroadcastDeliveries.WithLabelValues("dropped").Add(float64(dropped))
	}
}

// RecordRequest records one finished HTTP request.
func RecordRequest(method, route, status string, seconds float64) {
	HTTPRequests.WithLabelValues(method, route, status).Inc()
	HTTPDuration.WithLabelValues(method, route).Observe(seconds)
}
