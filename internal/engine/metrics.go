package engine

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metrics are the engine's Prometheus instruments. This engine serves a
// single stream per process, so the instruments carry no labels.
type metrics struct {
	clientsAttached prometheus.Gauge
	framesSent      prometheus.Counter
	online          prometheus.Gauge
	tickDuration    prometheus.Histogram
}

func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)
	return &metrics{
		clientsAttached: factory.NewGauge(prometheus.GaugeOpts{
			Name: "streamcore_clients_attached",
			Help: "Number of HTTP clients currently attached to /stream.",
		}),
		framesSent: factory.NewCounter(prometheus.CounterOpts{
			Name: "streamcore_frames_sent_total",
			Help: "Total multipart frames written across all streaming clients.",
		}),
		online: factory.NewGauge(prometheus.GaugeOpts{
			Name: "streamcore_online",
			Help: "1 if the exposed snapshot reflects a real producer frame, 0 if blank.",
		}),
		tickDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "streamcore_tick_duration_seconds",
			Help:    "Wall time spent in one refresh tick, including fanout to all clients.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (m *metrics) observeTick(start time.Time) {
	m.tickDuration.Observe(time.Since(start).Seconds())
}
