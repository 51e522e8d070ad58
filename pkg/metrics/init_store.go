package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// gauge registers a plain gauge under the owlgraph namespace.
func (r *Registry) gauge(subsystem, name, help string) prometheus.Gauge {
	return promauto.With(r.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: "owlgraph",
		Subsystem: subsystem,
		Name:      name,
		Help:      help,
	})
}

// initStoreMetrics covers the embedded class store and its snapshots.
func (r *Registry) initStoreMetrics() {
	r.StorageNodesTotal = r.gauge("storage", "nodes_total", "Class and root nodes held by the store")
	r.StorageEdgesTotal = r.gauge("storage", "edges_total", "Hierarchy edges held by the store")
	r.StorageSnapshotBytes = r.gauge("storage", "snapshot_bytes", "Size of the last written snapshot in bytes")

	r.StorageOperationsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "owlgraph",
			Subsystem: "storage",
			Name:      "operations_total",
			Help:      "Commits, rollbacks, snapshots and loads by outcome",
		},
		[]string{"operation", "status"},
	)
	r.StorageOperationDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "owlgraph",
			Subsystem: "storage",
			Name:      "operation_duration_seconds",
			Help:      "Storage operation duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
		},
		[]string{"operation"},
	)
}

// initProcessMetrics covers the CLI process itself; UpdateSystemMetrics refreshes them.
func (r *Registry) initProcessMetrics() {
	r.UptimeSeconds = r.gauge("", "uptime_seconds", "Time since the process started in seconds")
	r.GoRoutines = r.gauge("", "goroutines", "Number of goroutines")
	r.MemoryAllocBytes = r.gauge("", "memory_alloc_bytes", "Bytes of allocated heap objects")
	r.MemorySysBytes = r.gauge("", "memory_sys_bytes", "Total bytes of memory obtained from the OS")
}
