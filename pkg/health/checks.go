package health

import (
	"errors"
	"io/fs"
	"os"
	"runtime"
	"time"
)

// GraphStats is the slice of store statistics the graph check reads.
type GraphStats struct {
	Nodes   uint64
	Edges   uint64
	Commits uint64
}

// GraphCheck reports unhealthy when the root class is missing and degraded
// when nothing beyond the root has been materialized.
func GraphCheck(stats func() GraphStats, hasRoot func() bool) CheckFunc {
	return func() Check {
		s := stats()
		check := Check{
			Name: "graph",
			Details: map[string]any{
				"nodes":   s.Nodes,
				"edges":   s.Edges,
				"commits": s.Commits,
			},
		}

		switch {
		case !hasRoot():
			check.Status = StatusUnhealthy
			check.Message = "root class missing"
		case s.Nodes <= 1:
			check.Status = StatusDegraded
			check.Message = "no classes materialized"
		default:
			check.Status = StatusHealthy
			check.Message = "hierarchy loaded"
		}
		return check
	}
}

// SnapshotCheck inspects the snapshot file backing the store. A snapshot
// older than maxAge is degraded; maxAge <= 0 disables the age test.
func SnapshotCheck(path string, maxAge time.Duration) CheckFunc {
	return func() Check {
		check := Check{
			Name:    "snapshot",
			Details: map[string]any{"path": path},
		}

		info, err := os.Stat(path)
		if err != nil {
			check.Status = StatusUnhealthy
			if errors.Is(err, fs.ErrNotExist) {
				check.Message = "snapshot missing"
			} else {
				check.Message = err.Error()
			}
			return check
		}

		age := time.Since(info.ModTime())
		check.Details["size_bytes"] = info.Size()
		check.Details["age_seconds"] = int64(age.Seconds())
		if maxAge > 0 && age > maxAge {
			check.Status = StatusDegraded
			check.Message = "snapshot is stale"
			return check
		}
		check.Status = StatusHealthy
		check.Message = "snapshot present"
		return check
	}
}

// MemoryCheck degrades when heap allocation exceeds 90% of memory obtained
// from the OS. A nil reader uses runtime.ReadMemStats.
func MemoryCheck(read func() (alloc, sys uint64)) CheckFunc {
	if read == nil {
		read = func() (uint64, uint64) {
			var m runtime.MemStats
			runtime.ReadMemStats(&m)
			return m.HeapAlloc, m.Sys
		}
	}
	return func() Check {
		alloc, sys := read()
		check := Check{
			Name: "memory",
			Details: map[string]any{
				"alloc_bytes": alloc,
				"sys_bytes":   sys,
			},
		}
		if sys > 0 && float64(alloc)/float64(sys) > 0.9 {
			check.Status = StatusDegraded
			check.Message = "high memory usage"
			return check
		}
		check.Status = StatusHealthy
		check.Message = "memory usage normal"
		return check
	}
}
