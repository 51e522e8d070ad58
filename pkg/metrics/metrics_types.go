package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for the application
type Registry struct {
	// Storage Metrics
	StorageNodesTotal        prometheus.Gauge
	StorageEdgesTotal        prometheus.Gauge
	StorageOperationsTotal   *prometheus.CounterVec
	StorageOperationDuration *prometheus.HistogramVec
	StorageSnapshotBytes     prometheus.Gauge

	// Materialization Metrics
	PassesTotal              *prometheus.CounterVec
	PassDuration             *prometheus.HistogramVec
	ClassesMaterialized      *prometheus.CounterVec
	HierarchyEdgesTotal      *prometheus.CounterVec
	ResolverLookupsTotal     *prometheus.CounterVec
	AnnotationChannelsAbsent *prometheus.CounterVec
	IndividualsTotal         *prometheus.GaugeVec

	// Export Metrics
	ExportRowsTotal *prometheus.CounterVec
	ExportDuration  *prometheus.HistogramVec

	// System Metrics
	UptimeSeconds    prometheus.Gauge
	GoRoutines       prometheus.Gauge
	MemoryAllocBytes prometheus.Gauge
	MemorySysBytes   prometheus.Gauge

	registry *prometheus.Registry
	started  time.Time
	mu       sync.RWMutex
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
		started:  time.Now(),
	}

	r.initStoreMetrics()
	r.initMaterializeMetrics()
	r.initExportMetrics()
	r.initProcessMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
