package metrics

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RecordStorageOperation records a storage operation
func (r *Registry) RecordStorageOperation(operation, status string, duration time.Duration) {
	r.StorageOperationsTotal.WithLabelValues(operation, status).Inc()
	r.StorageOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// UpdateStorageTotals sets the node and edge gauges
func (r *Registry) UpdateStorageTotals(nodes, edges uint64) {
	r.StorageNodesTotal.Set(float64(nodes))
	r.StorageEdgesTotal.Set(float64(edges))
}

// RecordPass records the outcome of one materialization pass
func (r *Registry) RecordPass(category, status string, duration time.Duration, classes int) {
	r.PassesTotal.WithLabelValues(category, status).Inc()
	r.PassDuration.WithLabelValues(category).Observe(duration.Seconds())
	r.ClassesMaterialized.WithLabelValues(category).Add(float64(classes))
}

// RecordHierarchyEdges adds n edges of the given type
func (r *Registry) RecordHierarchyEdges(edgeType string, n int) {
	r.HierarchyEdgesTotal.WithLabelValues(edgeType).Add(float64(n))
}

// RecordResolverLookup counts one resolver lookup; created reports whether a node was made
func (r *Registry) RecordResolverLookup(created bool) {
	result := "hit"
	if created {
		result = "created"
	}
	r.ResolverLookupsTotal.WithLabelValues(result).Inc()
}

// RecordAbsentChannel counts a channel dropped from a registry
func (r *Registry) RecordAbsentChannel(channel string) {
	r.AnnotationChannelsAbsent.WithLabelValues(channel).Inc()
}

// SetIndividuals sets the individuals gauge for a category
func (r *Registry) SetIndividuals(category string, n int) {
	r.IndividualsTotal.WithLabelValues(category).Set(float64(n))
}

// RecordExport records rows written to an export target and the run duration
func (r *Registry) RecordExport(target, kind, status string, rows int, duration time.Duration) {
	r.ExportRowsTotal.WithLabelValues(target, kind).Add(float64(rows))
	r.ExportDuration.WithLabelValues(target, status).Observe(duration.Seconds())
}

// UpdateSystemMetrics refreshes runtime gauges
func (r *Registry) UpdateSystemMetrics() {
	r.mu.Lock()
	defer r.mu.Unlock()

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	r.UptimeSeconds.Set(time.Since(r.started).Seconds())
	r.GoRoutines.Set(float64(runtime.NumGoroutine()))
	r.MemoryAllocBytes.Set(float64(ms.Alloc))
	r.MemorySysBytes.Set(float64(ms.Sys))
}

// WriteTextfile writes every metric to path in the Prometheus text format, for the node_exporter
// textfile collector.
func (r *Registry) WriteTextfile(path string) error {
	r.UpdateSystemMetrics()
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

// Handler serves the registry for scraping, refreshing runtime gauges first.
func (r *Registry) Handler() http.Handler {
	h := promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		r.UpdateSystemMetrics()
		h.ServeHTTP(w, req)
	})
}
