package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "notifier"

// Metrics holds the engine's counters.
type Metrics struct {
	NotificationsAdmitted *prometheus.CounterVec
	ChannelsSuppressed    *prometheus.CounterVec
	EventsReceived        *prometheus.CounterVec
	SnapshotSaves         *prometheus.CounterVec
	SnapshotSaveLatency   prometheus.Histogram
	ActiveStores          prometheus.Gauge
}

// New creates the metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		NotificationsAdmitted: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_admitted_total",
			Help:      "Notifications recorded, by category and whether any channel was admitted",
		}, []string{"category", "silenced"}),
		ChannelsSuppressed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "channels_suppressed_total",
			Help:      "Requested channels removed at admission, by channel and reason",
		}, []string{"channel", "reason"}),
		EventsReceived: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_received_total",
			Help:      "External events handled by the adapter, by kind and outcome",
		}, []string{"kind", "outcome"}),
		SnapshotSaves: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_saves_total",
			Help:      "Store snapshot writes, by status",
		}, []string{"status"}),
		SnapshotSaveLatency: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "snapshot_save_duration_seconds",
			Help:      "Time spent writing a store snapshot",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}),
		ActiveStores: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_stores",
			Help:      "User stores currently held in memory",
		}),
	}
}
