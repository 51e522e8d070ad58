package storage

import (
	"errors"
	"sync"
)

// Transaction buffers writes until Commit. It is safe for concurrent use: get-or-create calls
// for the same key are serialized on the key's shard lock, and all other buffer updates take a
// short transaction-local lock.
type Transaction struct {
	gs         *GraphStorage
	id         uint64
	active     bool
	committed  bool
	rolledBack bool
	mu         sync.RWMutex

	// Pending operations
	createdNodes map[uint64]*Node
	createdByKey map[string]uint64
	nodeOrder    []uint64
	updatedNodes map[uint64]map[string]Value
	addedLabels  map[uint64][]string
	createdEdges map[uint64]*Edge
	edgeOrder    []uint64
}

var (
	ErrTransactionNotActive    = errors.New("transaction is not active")
	ErrTransactionAlreadyEnded = errors.New("transaction has already been committed or rolled back")
)

// BeginTransaction starts a new transaction
func (gs *GraphStorage) BeginTransaction() (*Transaction, error) {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	if err := gs.checkClosed(); err != nil {
		return nil, NewError("BeginTransaction").Cause(err).Err()
	}

	tx := &Transaction{
		gs:           gs,
		id:           gs.allocateTransactionID(),
		active:       true,
		createdNodes: make(map[uint64]*Node),
		createdByKey: make(map[string]uint64),
		updatedNodes: make(map[uint64]map[string]Value),
		addedLabels:  make(map[uint64][]string),
		createdEdges: make(map[uint64]*Edge),
	}

	return tx, nil
}

// ID returns the transaction ID
func (tx *Transaction) ID() uint64 {
	return tx.id
}

// allocateTransactionID allocates a new transaction ID.
// Assumes the caller holds gs.mu.Lock().
func (gs *GraphStorage) allocateTransactionID() uint64 {
	gs.txIDCounter++
	return gs.txIDCounter
}
