package materialize

import (
	"context"
	"sync/atomic"

	"github.com/dd0wney/owlgraph/pkg/storage"
)

// EmbeddedStore adapts the in-process graph storage to Store.
type EmbeddedStore struct {
	gs *storage.GraphStorage
}

// NewEmbeddedStore wraps gs.
func NewEmbeddedStore(gs *storage.GraphStorage) *EmbeddedStore {
	return &EmbeddedStore{gs: gs}
}

// Begin starts a buffered storage transaction.
func (s *EmbeddedStore) Begin(ctx context.Context) (Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tx, err := s.gs.BeginTransaction()
	if err != nil {
		return nil, err
	}
	return &embeddedTx{tx: tx}, nil
}

type embeddedTx struct {
	tx        *storage.Transaction
	committed atomic.Bool
}

func (t *embeddedTx) GetOrCreateNode(ctx context.Context, key string) (NodeHandle, bool, error) {
	if err := ctx.Err(); err != nil {
		return NodeHandle{}, false, err
	}
	node, created, err := t.tx.GetOrCreateNode(key)
	if err != nil {
		return NodeHandle{}, false, err
	}
	return NodeHandle{Key: key, ID: node.ID}, created, nil
}

func (t *embeddedTx) SetProperty(ctx context.Context, node NodeHandle, name string, value any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	v, err := storage.ValueOf(value)
	if err != nil {
		return err
	}
	return t.tx.SetProperty(node.ID, name, v)
}

func (t *embeddedTx) AddLabel(ctx context.Context, node NodeHandle, label string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return t.tx.AddLabel(node.ID, label)
}

func (t *embeddedTx) CreateEdge(ctx context.Context, from, to NodeHandle, edgeType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := t.tx.CreateEdge(from.ID, to.ID, edgeType, nil)
	return err
}

func (t *embeddedTx) Commit(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := t.tx.Commit(); err != nil {
		return err
	}
	t.committed.Store(true)
	return nil
}

func (t *embeddedTx) Rollback(context.Context) error {
	if t.committed.Load() {
		return nil
	}
	return t.tx.Rollback()
}
