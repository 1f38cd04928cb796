package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "swapdex"

// Index lifecycle and search Prometheus metrics.
var (
	HotSwapTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hotswap_total",
			Help:      "Total number of hot swaps",
		},
		[]string{"alias", "status"}, // "ok" / "error" / "busy"
	)

	HotSwapDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "hotswap_duration_seconds",
			Help:      "Hot swap duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300, 600},
		},
		[]string{"alias"},
	)

	BulkDocumentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bulk_documents_total",
			Help:      "Documents written during hot swaps",
		},
		[]string{"alias", "result"}, // "indexed" / "failed"
	)

	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_requests_total",
			Help:      "Total number of alias searches",
		},
		[]string{"alias", "status"}, // "ok" / "degraded" / "error"
	)

	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Alias search duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"alias"},
	)

	EngineSoftFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "engine_soft_failures_total",
			Help:      "Engine calls that failed without failing the operation",
		},
		[]string{"op"}, // "create_index" / "delete_index" / "refresh_index"
	)
)

var registerOnce sync.Once

// RegisterSwapMetrics registers index lifecycle metrics. Call once from main.
func RegisterSwapMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			HotSwapTotal,
			HotSwapDuration,
			BulkDocumentsTotal,
			SearchRequestsTotal,
			SearchDuration,
			EngineSoftFailuresTotal,
		)
	})
}
