package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// HTTP
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"route", "method", "status"},
	)

	// Batch operations
	BatchOpsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "batch_operations_total",
			Help: "Total batch operations",
		},
		[]string{"op"}, // status|records
	)
	BatchItemsFailed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "batch_items_failed_total",
			Help: "Total per-item failures inside batch operations",
		},
	)
	VersionConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "version_conflicts_total",
			Help: "Total optimistic-lock rejections at the repository",
		},
	)

	// Worker queue
	WorkerQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "worker_queue_depth",
			Help: "Current worker queue depth",
		},
	)
)

func Init() {
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(BatchOpsTotal)
	prometheus.MustRegister(BatchItemsFailed)
	prometheus.MustRegister(VersionConflicts)
	prometheus.MustRegister(WorkerQueueDepth)
}
