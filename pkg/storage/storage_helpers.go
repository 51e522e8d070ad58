package storage

import (
	"hash/fnv"
	"sync/atomic"
)

// getShardIndex returns the shard index for a given ID
func (gs *GraphStorage) getShardIndex(id uint64) int {
	return int(id & gs.shardMask)
}

// keyShard returns the shard lock guarding get-or-create for a key
func (gs *GraphStorage) keyShard(key string) int {
	h := fnv.New64a()
	h.Write([]byte(key))
	return gs.getShardIndex(h.Sum64())
}

// allocateNodeID allocates a new node ID using atomic operations.
func (gs *GraphStorage) allocateNodeID() (uint64, error) {
	nodeID := atomic.AddUint64(&gs.nextNodeID, 1) - 1
	if nodeID >= ^uint64(0)-1 {
		return 0, ErrIDSpaceExhausted
	}
	return nodeID, nil
}

// allocateEdgeID allocates a new edge ID using atomic operations.
func (gs *GraphStorage) allocateEdgeID() (uint64, error) {
	edgeID := atomic.AddUint64(&gs.nextEdgeID, 1) - 1
	if edgeID >= ^uint64(0)-1 {
		return 0, ErrIDSpaceExhausted
	}
	return edgeID, nil
}

// checkClosed returns an error if the storage is closed.
// Assumes the caller holds gs.mu.
func (gs *GraphStorage) checkClosed() error {
	if gs.closed {
		return ErrStorageClosed
	}
	return nil
}

// lookupKey returns the committed node ID for key.
// Assumes the caller holds gs.mu.
func (gs *GraphStorage) lookupKey(key string) (uint64, bool) {
	id, ok := gs.keyIndex[key]
	return id, ok
}

// nodeKey extracts the unique key of a node, if it has one
func (gs *GraphStorage) nodeKey(node *Node) (string, bool) {
	val, ok := node.Properties[gs.keyProperty]
	if !ok {
		return "", false
	}
	key, err := val.AsString()
	if err != nil || key == "" {
		return "", false
	}
	return key, true
}

// indexNode adds a node to the label, key and property indexes.
// Assumes the caller holds gs.mu.Lock().
func (gs *GraphStorage) indexNode(node *Node) {
	for _, label := range node.Labels {
		gs.nodesByLabel[label] = append(gs.nodesByLabel[label], node.ID)
	}
	if key, ok := gs.nodeKey(node); ok {
		gs.keyIndex[key] = node.ID
	}
	for name, value := range node.Properties {
		if idx, exists := gs.propertyIndexes[name]; exists {
			idx.Insert(node.ID, value)
		}
	}
}

// indexEdge adds an edge to the type and adjacency indexes.
// Assumes the caller holds gs.mu.Lock().
func (gs *GraphStorage) indexEdge(edge *Edge) {
	gs.edgesByType[edge.Type] = append(gs.edgesByType[edge.Type], edge.ID)
	gs.outgoingEdges[edge.FromNodeID] = append(gs.outgoingEdges[edge.FromNodeID], edge.ID)
	gs.incomingEdges[edge.ToNodeID] = append(gs.incomingEdges[edge.ToNodeID], edge.ID)
}

// setNodeProperty writes one property on a stored node, keeping indexes current.
// Assumes the caller holds gs.mu.Lock().
func (gs *GraphStorage) setNodeProperty(node *Node, name string, value Value) {
	if idx, exists := gs.propertyIndexes[name]; exists {
		if old, had := node.Properties[name]; had {
			idx.Remove(node.ID, old)
		}
		idx.Insert(node.ID, value)
	}
	node.Properties[name] = value
}

// addNodeLabel adds a label to a stored node if missing.
// Assumes the caller holds gs.mu.Lock().
func (gs *GraphStorage) addNodeLabel(node *Node, label string) {
	if node.HasLabel(label) {
		return
	}
	node.Labels = append(node.Labels, label)
	gs.nodesByLabel[label] = append(gs.nodesByLabel[label], node.ID)
}
