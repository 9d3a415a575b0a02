package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chat_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	// Business metrics
	MessagesPosted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_messages_posted_total",
			Help: "Total messages posted",
		},
		[]string{"kind"},
	)

	ActivitiesRecorded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_activities_recorded_total",
			Help: "Total activity log entries recorded",
		},
	)

	CommandsDispatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_commands_dispatched_total",
			Help: "Total agent commands dispatched",
		},
		[]string{"kind"}, // "command" or "owner-call"
	)

	GatewayFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_gateway_failures_total",
			Help: "Total agent responder failures masked into fallback replies",
		},
		[]string{"reason"}, // "timeout" or "error"
	)

	// Fan-out metrics
	EventsEmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_events_emitted_total",
			Help: "Total events emitted through the broadcaster",
		},
		[]string{"event"},
	)

	PushSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chat_push_sessions",
			Help: "Currently connected push sessions",
		},
	)

	GatewayDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "chat_gateway_call_duration_seconds",
			Help:    "Agent responder call duration",
			Buckets: []float64{.1, .5, 1, 5, 15, 30, 60, 120},
		},
	)
)
