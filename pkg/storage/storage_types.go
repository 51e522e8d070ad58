package storage

import (
	"sync"
	"time"

	"github.com/dd0wney/owlgraph/pkg/metrics"
)

const (
	// File and directory permissions
	dirPermissions  = 0755 // rwxr-xr-x: Owner can read/write/execute, others can read/execute
	filePermissions = 0644 // rw-r--r--: Owner can read/write, others can read

	// DefaultKeyProperty is the node property holding the unique node key
	DefaultKeyProperty = "key"

	shardCount = 256
)

// GraphStorage is the embedded in-memory graph storage engine. Nodes are addressable by a unique
// string key held in KeyProperty; state is persisted as a whole-graph snapshot.
type GraphStorage struct {
	// Core data structures
	nodes map[uint64]*Node
	edges map[uint64]*Edge

	// Indexes for fast lookups
	nodesByLabel    map[string][]uint64       // label -> node IDs
	edgesByType     map[string][]uint64       // edge type -> edge IDs
	outgoingEdges   map[uint64][]uint64       // node ID -> outgoing edge IDs
	incomingEdges   map[uint64][]uint64       // node ID -> incoming edge IDs
	keyIndex        map[string]uint64         // node key -> node ID
	propertyIndexes map[string]*PropertyIndex // property key -> index

	// ID generators
	nextNodeID uint64
	nextEdgeID uint64

	// Concurrency control
	mu         sync.RWMutex              // Global lock for the maps above
	shardLocks [shardCount]*sync.RWMutex // Key shard locks serializing get-or-create per key
	shardMask  uint64                    // Mask for efficient shard calculation (255 for 256 shards)
	closed     bool                      // Indicates if storage has been closed

	// Persistence
	dataDir           string
	compressSnapshots bool
	keyProperty       string

	// Statistics (using atomic operations for thread-safety)
	stats Statistics

	// Transaction management
	txIDCounter uint64

	// Metrics
	metricsRegistry *metrics.Registry
}

// StorageConfig holds configuration for GraphStorage
type StorageConfig struct {
	DataDir           string   // Snapshot directory; empty keeps the graph in memory only
	CompressSnapshots bool     // Write snappy-compressed snapshots
	KeyProperty       string   // Unique node key property (default "key")
	IndexedProperties []string // String properties indexed for case-insensitive lookup
	Metrics           *metrics.Registry
}

// Statistics tracks database statistics
type Statistics struct {
	NodeCount      uint64
	EdgeCount      uint64
	TotalCommits   uint64
	TotalRollbacks uint64
	LastSnapshot   time.Time
}
