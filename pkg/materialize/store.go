package materialize

import (
	"context"
)

// NodeHandle refers to a node inside one transaction. Key is always set; ID is the store's
// numeric identifier when it has one.
type NodeHandle struct {
	Key string
	ID  uint64
}

// Store opens transactions against a graph store.
type Store interface {
	Begin(ctx context.Context) (Tx, error)
}

// Tx is one atomic unit of graph writes. Implementations must allow concurrent calls.
//
// SetProperty values are string, bool or []string.
type Tx interface {
	// GetOrCreateNode returns the node with key, creating it with only its key property when
	// absent. created reports whether this call created it.
	GetOrCreateNode(ctx context.Context, key string) (node NodeHandle, created bool, err error)
	SetProperty(ctx context.Context, node NodeHandle, name string, value any) error
	AddLabel(ctx context.Context, node NodeHandle, label string) error
	CreateEdge(ctx context.Context, from, to NodeHandle, edgeType string) error
	Commit(ctx context.Context) error
	// Rollback discards the transaction. Calling it after Commit or twice is a no-op.
	Rollback(ctx context.Context) error
}
