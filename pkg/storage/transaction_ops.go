package storage

import (
	"time"
)

// GetOrCreateNode returns the node holding key, creating it (buffered) with only the key property
// when neither the store nor this transaction has one. created reports whether this call created it.
// Concurrent calls for the same key create exactly one node.
func (tx *Transaction) GetOrCreateNode(key string) (node *Node, created bool, err error) {
	if key == "" {
		return nil, false, NewError("GetOrCreateNode").NodeKey(key).Cause(ErrEmptyKey).Err()
	}

	shard := tx.gs.shardLocks[tx.gs.keyShard(key)]
	shard.Lock()
	defer shard.Unlock()

	tx.mu.RLock()
	active := tx.active
	pendingID, pending := tx.createdByKey[key]
	var pendingNode *Node
	if pending {
		pendingNode = tx.createdNodes[pendingID].Clone()
	}
	tx.mu.RUnlock()

	if !active {
		return nil, false, NewError("GetOrCreateNode").NodeKey(key).Cause(ErrTransactionNotActive).Err()
	}
	if pending {
		return pendingNode, false, nil
	}

	tx.gs.mu.RLock()
	if err := tx.gs.checkClosed(); err != nil {
		tx.gs.mu.RUnlock()
		return nil, false, NewError("GetOrCreateNode").NodeKey(key).Cause(err).Err()
	}
	if id, ok := tx.gs.lookupKey(key); ok {
		existing := tx.gs.nodes[id].Clone()
		tx.gs.mu.RUnlock()
		return existing, false, nil
	}
	tx.gs.mu.RUnlock()

	nodeID, err := tx.gs.allocateNodeID()
	if err != nil {
		return nil, false, NewError("GetOrCreateNode").NodeKey(key).Cause(err).Err()
	}

	now := time.Now().Unix()
	node = &Node{
		ID:         nodeID,
		Labels:     []string{},
		Properties: map[string]Value{tx.gs.keyProperty: StringValue(key)},
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	tx.mu.Lock()
	defer tx.mu.Unlock()
	if !tx.active {
		return nil, false, NewError("GetOrCreateNode").NodeKey(key).Cause(ErrTransactionNotActive).Err()
	}
	tx.createdNodes[nodeID] = node
	tx.createdByKey[key] = nodeID
	tx.nodeOrder = append(tx.nodeOrder, nodeID)

	return node.Clone(), true, nil
}

// nodeVisible reports whether a node exists in the store or in this transaction.
// Assumes the caller holds tx.mu.
func (tx *Transaction) nodeVisible(nodeID uint64) bool {
	if _, ok := tx.createdNodes[nodeID]; ok {
		return true
	}
	tx.gs.mu.RLock()
	defer tx.gs.mu.RUnlock()
	_, ok := tx.gs.nodes[nodeID]
	return ok
}

// SetProperty buffers a property write. The key property cannot be changed.
func (tx *Transaction) SetProperty(nodeID uint64, name string, value Value) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	if !tx.active {
		return NewError("SetProperty").Node(nodeID).Field(name).Cause(ErrTransactionNotActive).Err()
	}
	if name == tx.gs.keyProperty {
		return NewError("SetProperty").Node(nodeID).Field(name).Cause(ErrKeyImmutable).Err()
	}

	if node, ok := tx.createdNodes[nodeID]; ok {
		node.Properties[name] = value
		return nil
	}
	if !tx.nodeVisible(nodeID) {
		return NewError("SetProperty").Node(nodeID).Field(name).Cause(ErrNodeNotFound).Err()
	}

	if tx.updatedNodes[nodeID] == nil {
		tx.updatedNodes[nodeID] = make(map[string]Value)
	}
	tx.updatedNodes[nodeID][name] = value
	return nil
}

// AddLabel buffers a label addition. Adding a label twice is a no-op.
func (tx *Transaction) AddLabel(nodeID uint64, label string) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	if !tx.active {
		return NewError("AddLabel").Node(nodeID).Cause(ErrTransactionNotActive).Err()
	}

	if node, ok := tx.createdNodes[nodeID]; ok {
		if !node.HasLabel(label) {
			node.Labels = append(node.Labels, label)
		}
		return nil
	}
	if !tx.nodeVisible(nodeID) {
		return NewError("AddLabel").Node(nodeID).Context(label).Cause(ErrNodeNotFound).Err()
	}

	for _, l := range tx.addedLabels[nodeID] {
		if l == label {
			return nil
		}
	}
	tx.addedLabels[nodeID] = append(tx.addedLabels[nodeID], label)
	return nil
}

// CreateEdge buffers an edge between two nodes visible to this transaction
func (tx *Transaction) CreateEdge(fromID, toID uint64, edgeType string, properties map[string]Value) (*Edge, error) {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	if !tx.active {
		return nil, NewError("CreateEdge").Cause(ErrTransactionNotActive).Err()
	}
	if !tx.nodeVisible(fromID) {
		return nil, NewError("CreateEdge").Node(fromID).Context("source").Cause(ErrNodeNotFound).Err()
	}
	if !tx.nodeVisible(toID) {
		return nil, NewError("CreateEdge").Node(toID).Context("target").Cause(ErrNodeNotFound).Err()
	}

	edgeID, err := tx.gs.allocateEdgeID()
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

	tx.createdEdges[edgeID] = edge
	tx.edgeOrder = append(tx.edgeOrder, edgeID)

	return edge.Clone(), nil
}

// GetNode returns a node as this transaction sees it: committed state merged with buffered writes
func (tx *Transaction) GetNode(nodeID uint64) (*Node, error) {
	tx.mu.RLock()
	defer tx.mu.RUnlock()

	if !tx.active {
		return nil, NewError("GetNode").Node(nodeID).Cause(ErrTransactionNotActive).Err()
	}

	if node, ok := tx.createdNodes[nodeID]; ok {
		return node.Clone(), nil
	}

	node, err := tx.gs.GetNode(nodeID)
	if err != nil {
		return nil, err
	}
	for k, v := range tx.updatedNodes[nodeID] {
		node.Properties[k] = v
	}
	for _, label := range tx.addedLabels[nodeID] {
		if !node.HasLabel(label) {
			node.Labels = append(node.Labels, label)
		}
	}
	return node, nil
}

// PendingCounts returns the number of buffered node creations and edge creations
func (tx *Transaction) PendingCounts() (nodes, edges int) {
	tx.mu.RLock()
	defer tx.mu.RUnlock()
	return len(tx.createdNodes), len(tx.createdEdges)
}
