package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WsConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "friendnet_ws_connections",
		Help: "Number of open websocket connections.",
	})

	MessagesBroadcast = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "friendnet_messages_broadcast_total",
		Help: "Events published to the room broadcast bus, by event type.",
	}, []string{"type"})

	FramesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "friendnet_ws_frames_dropped_total",
		Help: "Outbound frames dropped because a client's send buffer was full.",
	})
)
