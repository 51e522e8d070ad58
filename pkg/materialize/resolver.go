package materialize

import (
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/dd0wney/owlgraph/pkg/metrics"
)

// Resolver maps keys to nodes for one pass. The first Resolve of a key gets or creates the node
// in the transaction; later calls are served from the cache. Concurrent first calls for the same
// key share one store call, so each node is created exactly once.
type Resolver struct {
	tx      Tx
	cache   sync.Map // key -> NodeHandle
	group   singleflight.Group
	created atomic.Int64
	metrics *metrics.Registry
}

// NewResolver returns a resolver writing through tx. reg may be nil.
func NewResolver(tx Tx, reg *metrics.Registry) *Resolver {
	return &Resolver{tx: tx, metrics: reg}
}

// Resolve returns the node for key. Store failures are returned as *StorageError.
func (r *Resolver) Resolve(ctx context.Context, key string) (NodeHandle, error) {
	if h, ok := r.cache.Load(key); ok {
		r.record(false)
		return h.(NodeHandle), nil
	}

	v, err, _ := r.group.Do(key, func() (any, error) {
		if h, ok := r.cache.Load(key); ok {
			r.record(false)
			return h, nil
		}
		h, created, err := r.tx.GetOrCreateNode(ctx, key)
		if err != nil {
			return nil, &StorageError{Op: "resolve", Key: key, Cause: err}
		}
		if created {
			r.created.Add(1)
		}
		r.record(created)
		r.cache.Store(key, h)
		return h, nil
	})
	if err != nil {
		return NodeHandle{}, err
	}
	return v.(NodeHandle), nil
}

// Created returns how many nodes this resolver created.
func (r *Resolver) Created() int {
	return int(r.created.Load())
}

func (r *Resolver) record(created bool) {
	if r.metrics != nil {
		r.metrics.RecordResolverLookup(created)
	}
}
