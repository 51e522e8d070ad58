package storage

import (
	"fmt"
	"os"
	"strings"
	"sync"
)

// NewGraphStorage creates a graph storage engine persisting compressed snapshots under dataDir
func NewGraphStorage(dataDir string) (*GraphStorage, error) {
	return NewGraphStorageWithConfig(StorageConfig{
		DataDir:           dataDir,
		CompressSnapshots: true,
		KeyProperty:       DefaultKeyProperty,
		IndexedProperties: []string{"name"},
	})
}

// NewGraphStorageWithConfig creates a new graph storage engine with custom config
func NewGraphStorageWithConfig(config StorageConfig) (*GraphStorage, error) {
	keyProperty := strings.TrimSpace(config.KeyProperty)
	if keyProperty == "" {
		keyProperty = DefaultKeyProperty
	}

	gs := &GraphStorage{
		nodes:             make(map[uint64]*Node),
		edges:             make(map[uint64]*Edge),
		nodesByLabel:      make(map[string][]uint64),
		edgesByType:       make(map[string][]uint64),
		outgoingEdges:     make(map[uint64][]uint64),
		incomingEdges:     make(map[uint64][]uint64),
		keyIndex:          make(map[string]uint64),
		propertyIndexes:   make(map[string]*PropertyIndex),
		nextNodeID:        1,
		nextEdgeID:        1,
		shardMask:         shardCount - 1,
		dataDir:           config.DataDir,
		compressSnapshots: config.CompressSnapshots,
		keyProperty:       keyProperty,
		metricsRegistry:   config.Metrics,
	}
	for i := range gs.shardLocks {
		gs.shardLocks[i] = &sync.RWMutex{}
	}
	for _, name := range config.IndexedProperties {
		gs.propertyIndexes[name] = NewPropertyIndex(name)
	}

	if config.DataDir == "" {
		return gs, nil
	}

	if err := os.MkdirAll(config.DataDir, dirPermissions); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	if err := gs.loadFromDisk(); err != nil {
		// A missing snapshot is a fresh database
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load from disk: %w", err)
		}
	}

	return gs, nil
}

// KeyProperty returns the name of the unique node key property
func (gs *GraphStorage) KeyProperty() string {
	return gs.keyProperty
}

// DataDir returns the snapshot directory, or "" for an in-memory store
func (gs *GraphStorage) DataDir() string {
	return gs.dataDir
}

// Close writes a final snapshot (when persistent) and rejects further use
func (gs *GraphStorage) Close() error {
	gs.mu.RLock()
	closed := gs.closed
	gs.mu.RUnlock()
	if closed {
		return nil
	}

	if gs.dataDir != "" {
		if err := gs.Snapshot(); err != nil {
			return err
		}
	}

	gs.mu.Lock()
	gs.closed = true
	gs.mu.Unlock()
	return nil
}
