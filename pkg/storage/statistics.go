package storage

import (
	"sync/atomic"
)

// GetStatistics returns current database statistics
func (gs *GraphStorage) GetStatistics() Statistics {
	gs.mu.RLock()
	lastSnapshot := gs.stats.LastSnapshot
	gs.mu.RUnlock()

	return Statistics{
		NodeCount:      atomic.LoadUint64(&gs.stats.NodeCount),
		EdgeCount:      atomic.LoadUint64(&gs.stats.EdgeCount),
		TotalCommits:   atomic.LoadUint64(&gs.stats.TotalCommits),
		TotalRollbacks: atomic.LoadUint64(&gs.stats.TotalRollbacks),
		LastSnapshot:   lastSnapshot,
	}
}

// publishTotals pushes node and edge counts to the metrics registry, if any
func (gs *GraphStorage) publishTotals() {
	if gs.metricsRegistry == nil {
		return
	}
	gs.metricsRegistry.UpdateStorageTotals(
		atomic.LoadUint64(&gs.stats.NodeCount),
		atomic.LoadUint64(&gs.stats.EdgeCount),
	)
}
