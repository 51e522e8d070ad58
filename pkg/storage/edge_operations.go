package storage

import (
	"sync/atomic"
	"time"
)

// CreateEdge creates an edge between two existing nodes outside any transaction
func (gs *GraphStorage) CreateEdge(fromID, toID uint64, edgeType string, properties map[string]Value) (*Edge, error) {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	if err := gs.checkClosed(); err != nil {
		return nil, NewError("CreateEdge").Cause(err).Err()
	}
	if _, exists := gs.nodes[fromID]; !exists {
		return nil, NewError("CreateEdge").Node(fromID).Context("source").Cause(ErrNodeNotFound).Err()
	}
	if _, exists := gs.nodes[toID]; !exists {
		return nil, NewError("CreateEdge").Node(toID).Context("target").Cause(ErrNodeNotFound).Err()
	}

	edgeID, err := gs.allocateEdgeID()
	if err != nil {
		return nil, NewError("CreateEdge").Cause(err).Err()
	}

	edge := &Edge{
		ID:         edgeID,
		FromNodeID: fromID,
		ToNodeID:   toID,
		Type:       edgeType,
		Properties: make(map[string]Value, len(properties)),
		CreatedAt:  time.Now().Unix(),
	}
	for k, v := range properties {
		edge.Properties[k] = v
	}

	gs.edges[edgeID] = edge
	gs.indexEdge(edge)
	atomic.AddUint64(&gs.stats.EdgeCount, 1)

	return edge.Clone(), nil
}

// GetEdge retrieves an edge by ID
func (gs *GraphStorage) GetEdge(edgeID uint64) (*Edge, error) {
	gs.mu.RLock()
	defer gs.mu.RUnlock()

	edge, exists := gs.edges[edgeID]
	if !exists {
		return nil, EdgeNotFoundError(edgeID)
	}

	return edge.Clone(), nil
}
