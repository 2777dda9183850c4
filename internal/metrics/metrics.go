// Package metrics exposes Prometheus instrumentation for the chat and
// notification core: live sessions, handled events, fanout deliveries and
// notifications.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// SessionsActive tracks currently registered transport sessions.
	SessionsActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "matcha_ws_sessions_active",
		Help: "Current number of authenticated WebSocket sessions",
	})

	// HandshakesTotal counts connection attempts by result (ok or an error code).
	HandshakesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "matcha_ws_handshakes_total",
		Help: "WebSocket handshakes by result",
	}, []string{"result"})

	// EventsTotal counts inbound client events by event name and result code.
	EventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "matcha_ws_events_total",
		Help: "Inbound WebSocket events handled",
	}, []string{"event", "result"})

	// EventLatency records handler latency per inbound event.
	EventLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "matcha_ws_event_latency_seconds",
		Help:    "Inbound event handling latency in seconds",
		Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
	}, []string{"event"})

	// FanoutDeliveries counts frames queued to live sessions by event name.
	FanoutDeliveries = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "matcha_fanout_deliveries_total",
		Help: "Server events queued to live sessions",
	}, []string{"event"})

	// FanoutDropped counts frames dropped because a session queue was full.
	FanoutDropped = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "matcha_fanout_dropped_total",
		Help: "Server events dropped on a full session queue",
	}, []string{"event"})

	// NotificationsTotal counts persisted notifications by type.
	NotificationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "matcha_notifications_total",
		Help: "Notifications created",
	}, []string{"type"})
)

func init() {
	prometheus.MustRegister(
		SessionsActive,
		HandshakesTotal,
		EventsTotal,
		EventLatency,
		FanoutDeliveries,
		FanoutDropped,
		NotificationsTotal,
	)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
