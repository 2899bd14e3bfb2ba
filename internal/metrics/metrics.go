// server/internal/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeAccepted = "accepted"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"

	BackendCache = "cache"
	BackendQueue = "queue"
)

var (
	// DispatchTotal counts dispatch requests by final outcome.
	DispatchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "logistics_dispatch_total",
			Help: "Urgent dispatch requests by outcome (accepted, rejected, failed).",
		},
		[]string{"outcome"},
	)

	// PublishLatency records how long the broker publish call took.
	PublishLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "logistics_dispatch_publish_seconds",
			Help:    "Latency of publishing a dispatch event to the broker.",
			Buckets: prometheus.DefBuckets,
		},
	)

	// EquipmentCacheLookups counts equipment list reads served from cache (hit) or registry (miss).
	EquipmentCacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "logistics_equipment_cache_lookups_total",
			Help: "Equipment list lookups by cache result.",
		},
		[]string{"result"},
	)

	// CacheErrors counts cache operations that failed and were swallowed.
	CacheErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "logistics_cache_errors_total",
			Help: "Cache operations that failed, by operation.",
		},
		[]string{"op"},
	)

	// BackendConnected mirrors the last known connectivity of each backing store.
	// 1 = connected, 0 = not connected.
	BackendConnected = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "logistics_backend_connected",
			Help: "Last known connectivity of a backing store (1=connected, 0=not).",
		},
		[]string{"backend"},
	)

	// AlertsForwarded counts sensor alerts forwarded to the events service.
	AlertsForwarded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sensors_alerts_forwarded_total",
			Help: "Sensor alerts forwarded to the events service, by status (success, failed).",
		},
		[]string{"status"},
	)
)

func init() {
	prometheus.MustRegister(DispatchTotal)
	prometheus.MustRegister(PublishLatency)
	prometheus.MustRegister(EquipmentCacheLookups)
	prometheus.MustRegister(CacheErrors)
	prometheus.MustRegister(BackendConnected)
	prometheus.MustRegister(AlertsForwarded)
}

// SetConnected updates the connectivity gauge of backend.
func SetConnected(backend string, connected bool) {
	v := 0.0
	if connected {
		v = 1
	}
	BackendConnected.WithLabelValues(backend).Set(v)
}
