package materialize

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dd0wney/owlgraph/pkg/ontology"
	"github.com/dd0wney/owlgraph/pkg/reasoner"
	"github.com/dd0wney/owlgraph/pkg/storage"
)

const ns = "http://example.org/onto#"

func iri(local string) ontology.IRI { return ontology.IRI(ns + local) }

var errInjected = errors.New("injected failure")

// stubReasoner answers from fixed tables.
type stubReasoner struct {
	consistent  bool
	supers      map[ontology.IRI][]ontology.IRI
	individuals []ontology.IRI
	failOn      ontology.IRI
}

func (r *stubReasoner) IsConsistent(ctx context.Context) (bool, error) {
	return r.consistent, ctx.Err()
}

func (r *stubReasoner) DirectSuperclasses(ctx context.Context, class ontology.IRI) ([]ontology.IRI, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if class == r.failOn {
		return nil, errInjected
	}
	return r.supers[class], nil
}

func (r *stubReasoner) Instances(ctx context.Context, class ontology.IRI, direct bool) ([]ontology.IRI, error) {
	return r.individuals, ctx.Err()
}

func (r *stubReasoner) Kind() reasoner.Kind { return "stub" }

// memStore is an in-memory Store recording every call. Writes become visible in nodes/edges only
// on commit.
type memStore struct {
	mu      sync.Mutex
	nodes   map[string]*memNode
	edges   []memEdge
	begins  int
	commits int
	// failSetProperty makes SetProperty fail for this property name.
	failSetProperty string
	failCommit      bool
}

type memNode struct {
	props  map[string]any
	labels map[string]bool
}

type memEdge struct {
	from, to, typ string
}

func newMemStore() *memStore {
	return &memStore{nodes: map[string]*memNode{}}
}

func (s *memStore) Begin(ctx context.Context) (Tx, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.begins++
	return &memTx{store: s, nodes: map[string]*memNode{}}, ctx.Err()
}

func (s *memStore) nodeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.nodes)
}

type memTx struct {
	store   *memStore
	mu      sync.Mutex
	nodes   map[string]*memNode
	edges   []memEdge
	creates map[string]int
	done    bool
}

func (t *memTx) node(key string) (*memNode, error) {
	if n, ok := t.nodes[key]; ok {
		return n, nil
	}
	return nil, fmt.Errorf("node %q not in transaction", key)
}

func (t *memTx) GetOrCreateNode(ctx context.Context, key string) (NodeHandle, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.nodes[key]; ok {
		return NodeHandle{Key: key}, false, nil
	}
	t.store.mu.Lock()
	existing, ok := t.store.nodes[key]
	t.store.mu.Unlock()
	n := &memNode{props: map[string]any{PropKey: key}, labels: map[string]bool{}}
	if ok {
		for k, v := range existing.props {
			n.props[k] = v
		}
		for l := range existing.labels {
			n.labels[l] = true
		}
	}
	t.nodes[key] = n
	if t.creates == nil {
		t.creates = map[string]int{}
	}
	if !ok {
		t.creates[key]++
	}
	return NodeHandle{Key: key}, !ok, nil
}

func (t *memTx) SetProperty(ctx context.Context, node NodeHandle, name string, value any) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if name == t.store.failSetProperty {
		return errInjected
	}
	n, err := t.node(node.Key)
	if err != nil {
		return err
	}
	n.props[name] = value
	return nil
}

func (t *memTx) AddLabel(ctx context.Context, node NodeHandle, label string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	n, err := t.node(node.Key)
	if err != nil {
		return err
	}
	n.labels[label] = true
	return nil
}

func (t *memTx) CreateEdge(ctx context.Context, from, to NodeHandle, edgeType string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, err := t.node(from.Key); err != nil {
		return err
	}
	if _, err := t.node(to.Key); err != nil {
		return err
	}
	t.edges = append(t.edges, memEdge{from: from.Key, to: to.Key, typ: edgeType})
	return nil
}

func (t *memTx) Commit(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.store.failCommit {
		return errInjected
	}
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	for k, n := range t.nodes {
		t.store.nodes[k] = n
	}
	t.store.edges = append(t.store.edges, t.edges...)
	t.store.commits++
	t.done = true
	return nil
}

func (t *memTx) Rollback(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.done = true
	t.nodes = map[string]*memNode{}
	t.edges = nil
	return nil
}

// newEmbedded returns an in-memory graph storage and its Store adapter.
func newEmbedded(t *testing.T) (*storage.GraphStorage, *EmbeddedStore) {
	t.Helper()

	gs, err := storage.NewGraphStorageWithConfig(storage.StorageConfig{IndexedProperties: []string{PropName}})
	require.NoError(t, err)
	t.Cleanup(func() { gs.Close() })
	return gs, NewEmbeddedStore(gs)
}

// outgoing returns the edges leaving the node with key, as "TYPE->key" strings.
func outgoing(t *testing.T, gs *storage.GraphStorage, key string) []string {
	t.Helper()

	node, err := gs.GetNodeByKey(key)
	require.NoError(t, err, "node %q", key)
	edges, err := gs.GetOutgoingEdges(node.ID)
	require.NoError(t, err)

	out := make([]string, 0, len(edges))
	for _, e := range edges {
		to, err := gs.GetNode(e.ToNodeID)
		require.NoError(t, err)
		out = append(out, e.Type+"->"+to.StringProperty(PropKey))
	}
	return out
}
