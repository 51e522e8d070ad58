package storage

import (
	"sort"
)

// buildNodeListFromIDs clones the nodes for the given IDs, skipping missing ones.
// Assumes the caller holds gs.mu.RLock().
func (gs *GraphStorage) buildNodeListFromIDs(nodeIDs []uint64) []*Node {
	nodes := make([]*Node, 0, len(nodeIDs))
	for _, nodeID := range nodeIDs {
		if node, exists := gs.nodes[nodeID]; exists {
			nodes = append(nodes, node.Clone())
		}
	}
	return nodes
}

// buildEdgeListFromIDs clones the edges for the given IDs, skipping missing ones.
// Assumes the caller holds gs.mu.RLock().
func (gs *GraphStorage) buildEdgeListFromIDs(edgeIDs []uint64) []*Edge {
	edges := make([]*Edge, 0, len(edgeIDs))
	for _, edgeID := range edgeIDs {
		if edge, exists := gs.edges[edgeID]; exists {
			edges = append(edges, edge.Clone())
		}
	}
	return edges
}

// GetOutgoingEdges gets all outgoing edges from a node
func (gs *GraphStorage) GetOutgoingEdges(nodeID uint64) ([]*Edge, error) {
	gs.mu.RLock()
	defer gs.mu.RUnlock()

	if _, exists := gs.nodes[nodeID]; !exists {
		return nil, NodeNotFoundError(nodeID)
	}
	return gs.buildEdgeListFromIDs(gs.outgoingEdges[nodeID]), nil
}

// GetIncomingEdges gets all incoming edges to a node
func (gs *GraphStorage) GetIncomingEdges(nodeID uint64) ([]*Edge, error) {
	gs.mu.RLock()
	defer gs.mu.RUnlock()

	if _, exists := gs.nodes[nodeID]; !exists {
		return nil, NodeNotFoundError(nodeID)
	}
	return gs.buildEdgeListFromIDs(gs.incomingEdges[nodeID]), nil
}

// GetAllLabels returns every label in use, sorted
func (gs *GraphStorage) GetAllLabels() []string {
	gs.mu.RLock()
	defer gs.mu.RUnlock()

	labels := make([]string, 0, len(gs.nodesByLabel))
	for label, ids := range gs.nodesByLabel {
		if len(ids) > 0 {
			labels = append(labels, label)
		}
	}
	sort.Strings(labels)
	return labels
}

// GetAllNodes returns every node ordered by ID
func (gs *GraphStorage) GetAllNodes() []*Node {
	gs.mu.RLock()
	defer gs.mu.RUnlock()

	ids := make([]uint64, 0, len(gs.nodes))
	for id := range gs.nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return gs.buildNodeListFromIDs(ids)
}

// GetAllEdges returns every edge ordered by ID
func (gs *GraphStorage) GetAllEdges() []*Edge {
	gs.mu.RLock()
	defer gs.mu.RUnlock()

	ids := make([]uint64, 0, len(gs.edges))
	for id := range gs.edges {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return gs.buildEdgeListFromIDs(ids)
}

// NewestNodes returns up to limit nodes, most recently created first. IDs are allocated in
// creation order, so ties on CreatedAt resolve by descending ID. A limit <= 0 returns all nodes.
func (gs *GraphStorage) NewestNodes(limit int) []*Node {
	nodes := gs.GetAllNodes()
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].CreatedAt != nodes[j].CreatedAt {
			return nodes[i].CreatedAt > nodes[j].CreatedAt
		}
		return nodes[i].ID > nodes[j].ID
	})
	if limit > 0 && len(nodes) > limit {
		nodes = nodes[:limit]
	}
	return nodes
}

// FindNodesByLabel finds all nodes with a specific label
func (gs *GraphStorage) FindNodesByLabel(label string) ([]*Node, error) {
	gs.mu.RLock()
	defer gs.mu.RUnlock()

	return gs.buildNodeListFromIDs(gs.nodesByLabel[label]), nil
}

// FindNodesByProperty finds nodes with a specific property value
func (gs *GraphStorage) FindNodesByProperty(key string, value Value) ([]*Node, error) {
	gs.mu.RLock()
	defer gs.mu.RUnlock()

	nodes := make([]*Node, 0)
	for _, node := range gs.nodes {
		if prop, exists := node.Properties[key]; exists {
			if prop.Type == value.Type && string(prop.Data) == string(value.Data) {
				nodes = append(nodes, node.Clone())
			}
		}
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })

	return nodes, nil
}

// FindNodesByPropertyPrefix finds nodes whose indexed string property starts with prefix,
// ignoring case. The property must be indexed.
func (gs *GraphStorage) FindNodesByPropertyPrefix(key, prefix string) ([]*Node, error) {
	gs.mu.RLock()
	defer gs.mu.RUnlock()

	idx, exists := gs.propertyIndexes[key]
	if !exists {
		return nil, NewError("FindNodesByPropertyPrefix").Field(key).Cause(ErrNotIndexed).Err()
	}
	return gs.buildNodeListFromIDs(idx.PrefixLookup(prefix)), nil
}

// HasPropertyIndex reports whether a property is indexed
func (gs *GraphStorage) HasPropertyIndex(key string) bool {
	gs.mu.RLock()
	defer gs.mu.RUnlock()

	_, exists := gs.propertyIndexes[key]
	return exists
}

// GetIndexStatistics returns statistics for all property indexes
func (gs *GraphStorage) GetIndexStatistics() map[string]IndexStatistics {
	gs.mu.RLock()
	defer gs.mu.RUnlock()

	stats := make(map[string]IndexStatistics, len(gs.propertyIndexes))
	for key, idx := range gs.propertyIndexes {
		stats[key] = idx.GetStatistics()
	}
	return stats
}

// FindEdgesByType finds all edges of a specific type
func (gs *GraphStorage) FindEdgesByType(edgeType string) ([]*Edge, error) {
	gs.mu.RLock()
	defer gs.mu.RUnlock()

	return gs.buildEdgeListFromIDs(gs.edgesByType[edgeType]), nil
}
