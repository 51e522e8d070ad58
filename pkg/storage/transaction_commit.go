package storage

import (
	"errors"
	"sync/atomic"
	"time"
)

// Commit applies every buffered write atomically under the global lock. If a key created in this
// transaction was committed by another transaction in the meantime, nothing is applied and the
// transaction ends rolled back.
func (tx *Transaction) Commit() error {
	start := time.Now()

	tx.mu.Lock()
	defer tx.mu.Unlock()

	if tx.committed || tx.rolledBack {
		return NewError("Commit").Transaction(tx.id).Cause(ErrTransactionAlreadyEnded).Err()
	}
	if !tx.active {
		return NewError("Commit").Transaction(tx.id).Cause(ErrTransactionNotActive).Err()
	}

	tx.gs.mu.Lock()
	err := tx.validate()
	if err == nil {
		tx.applyCreatedNodes()
		tx.applyLabelAdditions()
		tx.applyNodeUpdates()
		tx.applyCreatedEdges()
	}
	tx.gs.mu.Unlock()

	if err != nil {
		tx.discard()
		atomic.AddUint64(&tx.gs.stats.TotalRollbacks, 1)
		tx.gs.recordOperation("commit", "error", time.Since(start))
		return err
	}

	tx.committed = true
	tx.active = false
	atomic.AddUint64(&tx.gs.stats.TotalCommits, 1)
	tx.gs.recordOperation("commit", "success", time.Since(start))
	tx.gs.publishTotals()

	return nil
}

// validate checks buffered writes against committed state.
// Assumes the caller holds gs.mu.Lock().
func (tx *Transaction) validate() error {
	if err := tx.gs.checkClosed(); err != nil {
		return NewError("Commit").Transaction(tx.id).Cause(err).Err()
	}
	for key := range tx.createdByKey {
		if _, exists := tx.gs.lookupKey(key); exists {
			return NewError("Commit").NodeKey(key).Cause(ErrDuplicateKey).Err()
		}
	}
	for nodeID := range tx.updatedNodes {
		if _, exists := tx.gs.nodes[nodeID]; !exists {
			return NewError("Commit").Node(nodeID).Cause(ErrNodeNotFound).Err()
		}
	}
	for nodeID := range tx.addedLabels {
		if _, exists := tx.gs.nodes[nodeID]; !exists {
			return NewError("Commit").Node(nodeID).Cause(ErrNodeNotFound).Err()
		}
	}
	return nil
}

// applyCreatedNodes adds buffered node creations to storage in creation order
func (tx *Transaction) applyCreatedNodes() {
	for _, nodeID := range tx.nodeOrder {
		node := tx.createdNodes[nodeID]
		tx.gs.nodes[nodeID] = node
		tx.gs.indexNode(node)
		atomic.AddUint64(&tx.gs.stats.NodeCount, 1)
	}
}

// applyLabelAdditions adds buffered labels to existing nodes
func (tx *Transaction) applyLabelAdditions() {
	for nodeID, labels := range tx.addedLabels {
		node := tx.gs.nodes[nodeID]
		for _, label := range labels {
			tx.gs.addNodeLabel(node, label)
		}
	}
}

// applyNodeUpdates applies buffered property updates to existing nodes
func (tx *Transaction) applyNodeUpdates() {
	now := time.Now().Unix()
	for nodeID, properties := range tx.updatedNodes {
		node := tx.gs.nodes[nodeID]
		for k, v := range properties {
			tx.gs.setNodeProperty(node, k, v)
		}
		node.UpdatedAt = now
	}
}

// applyCreatedEdges adds buffered edge creations to storage in creation order
func (tx *Transaction) applyCreatedEdges() {
	for _, edgeID := range tx.edgeOrder {
		edge := tx.createdEdges[edgeID]
		tx.gs.edges[edgeID] = edge
		tx.gs.indexEdge(edge)
		atomic.AddUint64(&tx.gs.stats.EdgeCount, 1)
	}
}

// discard drops every buffer and ends the transaction.
// Assumes the caller holds tx.mu.Lock().
func (tx *Transaction) discard() {
	tx.rolledBack = true
	tx.active = false

	tx.createdNodes = make(map[uint64]*Node)
	tx.createdByKey = make(map[string]uint64)
	tx.nodeOrder = nil
	tx.updatedNodes = make(map[uint64]map[string]Value)
	tx.addedLabels = make(map[uint64][]string)
	tx.createdEdges = make(map[uint64]*Edge)
	tx.edgeOrder = nil
}

// Rollback discards the transaction. It is idempotent; rolling back a committed transaction is an error.
func (tx *Transaction) Rollback() error {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	if tx.committed {
		return NewError("Rollback").Transaction(tx.id).Cause(errors.New("cannot rollback a committed transaction")).Err()
	}
	if !tx.active {
		return nil
	}

	tx.discard()
	atomic.AddUint64(&tx.gs.stats.TotalRollbacks, 1)
	tx.gs.recordOperation("rollback", "success", 0)

	return nil
}

// recordOperation reports a storage operation to the metrics registry, if any
func (gs *GraphStorage) recordOperation(op, status string, d time.Duration) {
	if gs.metricsRegistry == nil {
		return
	}
	gs.metricsRegistry.RecordStorageOperation(op, status, d)
}
