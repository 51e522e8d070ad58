package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync/atomic"
	"time"

	"github.com/golang/snappy"
)

const (
	// SnapshotFile is the uncompressed snapshot file name
	SnapshotFile = "snapshot.json"
	// CompressedSnapshotFile is the snappy-compressed snapshot file name
	CompressedSnapshotFile = "snapshot.json.sz"
)

// snapshot is the on-disk graph image. Indexes are rebuilt on load.
type snapshot struct {
	KeyProperty string
	Nodes       []*Node
	Edges       []*Edge
	NextNodeID  uint64
	NextEdgeID  uint64
	SavedAt     time.Time
}

// SnapshotPath returns the path the next snapshot is written to
func (gs *GraphStorage) SnapshotPath() string {
	if gs.compressSnapshots {
		return filepath.Join(gs.dataDir, CompressedSnapshotFile)
	}
	return filepath.Join(gs.dataDir, SnapshotFile)
}

// Snapshot saves the current state to disk with a write-then-rename
func (gs *GraphStorage) Snapshot() error {
	start := time.Now()
	if gs.dataDir == "" {
		return SnapshotError("Snapshot", "", fmt.Errorf("storage has no data directory"))
	}

	gs.mu.RLock()
	if err := gs.checkClosed(); err != nil {
		gs.mu.RUnlock()
		return SnapshotError("Snapshot", gs.dataDir, err)
	}
	image := snapshot{
		KeyProperty: gs.keyProperty,
		NextNodeID:  atomic.LoadUint64(&gs.nextNodeID),
		NextEdgeID:  atomic.LoadUint64(&gs.nextEdgeID),
		SavedAt:     start.UTC(),
	}
	data, err := func() ([]byte, error) {
		defer gs.mu.RUnlock()
		image.Nodes = gs.buildNodeListFromIDs(sortedIDs(gs.nodes))
		image.Edges = gs.buildEdgeListFromIDs(sortedIDs(gs.edges))
		return json.Marshal(image)
	}()
	if err != nil {
		gs.recordOperation("snapshot", "error", time.Since(start))
		return SnapshotError("Snapshot", gs.dataDir, fmt.Errorf("failed to marshal snapshot: %w", err))
	}

	if gs.compressSnapshots {
		data = snappy.Encode(nil, data)
	}

	snapshotPath := gs.SnapshotPath()
	tmpPath := snapshotPath + ".tmp"

	if err := os.WriteFile(tmpPath, data, filePermissions); err != nil {
		gs.recordOperation("snapshot", "error", time.Since(start))
		return SnapshotError("Snapshot", tmpPath, err)
	}
	if err := os.Rename(tmpPath, snapshotPath); err != nil {
		gs.recordOperation("snapshot", "error", time.Since(start))
		return SnapshotError("Snapshot", snapshotPath, err)
	}

	// Only one format may exist at a time
	stale := filepath.Join(gs.dataDir, SnapshotFile)
	if !gs.compressSnapshots {
		stale = filepath.Join(gs.dataDir, CompressedSnapshotFile)
	}
	if err := os.Remove(stale); err != nil && !os.IsNotExist(err) {
		return SnapshotError("Snapshot", stale, err)
	}

	gs.mu.Lock()
	gs.stats.LastSnapshot = time.Now()
	gs.mu.Unlock()

	gs.recordOperation("snapshot", "success", time.Since(start))
	if gs.metricsRegistry != nil {
		gs.metricsRegistry.StorageSnapshotBytes.Set(float64(len(data)))
	}

	return nil
}

// loadFromDisk loads the newest snapshot format present in dataDir.
// Returns an os.IsNotExist error when there is none.
func (gs *GraphStorage) loadFromDisk() error {
	path := filepath.Join(gs.dataDir, CompressedSnapshotFile)
	compressed := true
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		path = filepath.Join(gs.dataDir, SnapshotFile)
		compressed = false
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return err
	}

	if compressed {
		data, err = snappy.Decode(nil, data)
		if err != nil {
			return SnapshotError("Load", path, fmt.Errorf("%w: %v", ErrSnapshotCorrupt, err))
		}
	}

	var image snapshot
	if err := json.Unmarshal(data, &image); err != nil {
		return SnapshotError("Load", path, fmt.Errorf("%w: %v", ErrSnapshotCorrupt, err))
	}
	if image.KeyProperty != "" && image.KeyProperty != gs.keyProperty {
		return SnapshotError("Load", path, fmt.Errorf("snapshot keyed by %q, storage configured for %q", image.KeyProperty, gs.keyProperty))
	}

	gs.mu.Lock()
	defer gs.mu.Unlock()

	for _, node := range image.Nodes {
		if node.Properties == nil {
			node.Properties = make(map[string]Value)
		}
		if key, ok := gs.nodeKey(node); ok {
			if _, dup := gs.keyIndex[key]; dup {
				return SnapshotError("Load", path, fmt.Errorf("%w: key %q", ErrDuplicateKey, key))
			}
		}
		gs.nodes[node.ID] = node
		gs.indexNode(node)
	}
	for _, edge := range image.Edges {
		if _, ok := gs.nodes[edge.FromNodeID]; !ok {
			return SnapshotError("Load", path, fmt.Errorf("%w: edge %d references missing node %d", ErrSnapshotCorrupt, edge.ID, edge.FromNodeID))
		}
		if _, ok := gs.nodes[edge.ToNodeID]; !ok {
			return SnapshotError("Load", path, fmt.Errorf("%w: edge %d references missing node %d", ErrSnapshotCorrupt, edge.ID, edge.ToNodeID))
		}
		if edge.Properties == nil {
			edge.Properties = make(map[string]Value)
		}
		gs.edges[edge.ID] = edge
		gs.indexEdge(edge)
	}

	gs.nextNodeID = max(image.NextNodeID, 1)
	gs.nextEdgeID = max(image.NextEdgeID, 1)
	gs.stats.NodeCount = uint64(len(gs.nodes))
	gs.stats.EdgeCount = uint64(len(gs.edges))
	gs.stats.LastSnapshot = image.SavedAt

	return nil
}

func sortedIDs[T any](m map[uint64]T) []uint64 {
	ids := make([]uint64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
