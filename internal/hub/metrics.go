package hub

import "github.com/prometheus/client_golang/prometheus"

var (
	hubConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "chat_hub_connections",
			Help: "Current number of registered websocket connections.",
		},
	)
	hubOnlineIdentities = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "chat_hub_online_identities",
			Help: "Current number of distinct identities online.",
		},
	)
	hubFramesDelivered = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_hub_frames_delivered_total",
			Help: "Total frames delivered to client send buffers.",
		},
	)
	hubFramesDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_hub_frames_dropped_total",
			Help: "Total frames dropped because a client buffer was full.",
		},
	)
	hubRejectedHandshakes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_hub_rejected_handshakes_total",
			Help: "Total websocket handshakes refused at credential verification.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		hubConnections,
		hubOnlineIdentities,
		hubFramesDelivered,
		hubFramesDropped,
		hubRejectedHandshakes,
	)
}

func incConnections() {
	hubConnections.Inc()
}

func decConnections() {
	hubConnections.Dec()
}

func setOnlineIdentities(count int) {
	hubOnlineIdentities.Set(float64(count))
}

func addDelivered(count int) {
	hubFramesDelivered.Add(float64(count))
}

func addDropped(count int) {
	hubFramesDropped.Add(float64(count))
}

func incRejectedHandshakes() {
	hubRejectedHandshakes.Inc()
}
