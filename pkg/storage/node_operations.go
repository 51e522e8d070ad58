package storage

import (
	"sync/atomic"
	"time"
)

// CreateNode creates a node outside any transaction. A node carrying the key property must not
// collide with an existing key.
func (gs *GraphStorage) CreateNode(labels []string, properties map[string]Value) (*Node, error) {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	if err := gs.checkClosed(); err != nil {
		return nil, NewError("CreateNode").Cause(err).Err()
	}

	nodeID, err := gs.allocateNodeID()
	if err != nil {
		return nil, NewError("CreateNode").Cause(err).Err()
	}

	now := time.Now().Unix()
	node := &Node{
		ID:         nodeID,
		Labels:     append([]string(nil), labels...),
		Properties: make(map[string]Value, len(properties)),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	for k, v := range properties {
		node.Properties[k] = v
	}

	if key, ok := gs.nodeKey(node); ok {
		if _, exists := gs.lookupKey(key); exists {
			return nil, NewError("CreateNode").NodeKey(key).Cause(ErrDuplicateKey).Err()
		}
	}

	gs.nodes[nodeID] = node
	gs.indexNode(node)
	atomic.AddUint64(&gs.stats.NodeCount, 1)

	return node.Clone(), nil
}

// GetNode retrieves a node by ID
func (gs *GraphStorage) GetNode(nodeID uint64) (*Node, error) {
	gs.mu.RLock()
	defer gs.mu.RUnlock()

	node, exists := gs.nodes[nodeID]
	if !exists {
		return nil, NodeNotFoundError(nodeID)
	}

	return node.Clone(), nil
}

// GetNodeByKey retrieves a node by its unique key
func (gs *GraphStorage) GetNodeByKey(key string) (*Node, error) {
	gs.mu.RLock()
	defer gs.mu.RUnlock()

	nodeID, ok := gs.lookupKey(key)
	if !ok {
		return nil, NewError("get").NodeKey(key).Cause(ErrNodeNotFound).Err()
	}
	return gs.nodes[nodeID].Clone(), nil
}

// UpdateNode merges properties into a node. The key property cannot be changed.
func (gs *GraphStorage) UpdateNode(nodeID uint64, properties map[string]Value) error {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	if err := gs.checkClosed(); err != nil {
		return NewError("UpdateNode").Node(nodeID).Cause(err).Err()
	}

	node, exists := gs.nodes[nodeID]
	if !exists {
		return NodeNotFoundError(nodeID)
	}
	if _, touchesKey := properties[gs.keyProperty]; touchesKey {
		return NewError("UpdateNode").Node(nodeID).Field(gs.keyProperty).Cause(ErrKeyImmutable).Err()
	}

	for k, v := range properties {
		gs.setNodeProperty(node, k, v)
	}
	node.UpdatedAt = time.Now().Unix()

	return nil
}
