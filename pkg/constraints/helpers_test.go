package constraints

import (
	"testing"

	"github.com/dd0wney/owlgraph/pkg/materialize"
	"github.com/dd0wney/owlgraph/pkg/storage"
)

func setupTestGraph(t *testing.T) *storage.GraphStorage {
	t.Helper()

	gs, err := storage.NewGraphStorageWithConfig(storage.StorageConfig{})
	if err != nil {
		t.Fatalf("Failed to create GraphStorage: %v", err)
	}
	t.Cleanup(func() { gs.Close() })
	return gs
}

func addClass(t *testing.T, gs *storage.GraphStorage, key string, extra map[string]storage.Value) *storage.Node {
	t.Helper()

	props := map[string]storage.Value{
		materialize.PropKey: storage.StringValue(key),
		materialize.PropIRI: storage.StringValue("http://example.org/onto#" + key),
	}
	for k, v := range extra {
		props[k] = v
	}
	labels := []string{materialize.LabelClass}
	if key == materialize.RootKey {
		labels = []string{materialize.LabelRoot}
	}
	node, err := gs.CreateNode(labels, props)
	if err != nil {
		t.Fatalf("Failed to create node %s: %v", key, err)
	}
	return node
}

func link(t *testing.T, gs *storage.GraphStorage, from, to *storage.Node, edgeType materialize.EdgeType) {
	t.Helper()

	if _, err := gs.CreateEdge(from.ID, to.ID, string(edgeType), nil); err != nil {
		t.Fatalf("Failed to create edge: %v", err)
	}
}

// fakeGraph serves a fixed node list; it is used where the store itself would refuse the data.
type fakeGraph struct {
	nodes []*storage.Node
}

func (f *fakeGraph) GetNode(id uint64) (*storage.Node, error) {
	for _, n := range f.nodes {
		if n.ID == id {
			return n, nil
		}
	}
	return nil, storage.NodeNotFoundError(id)
}

func (f *fakeGraph) GetNodeByKey(key string) (*storage.Node, error) {
	for _, n := range f.nodes {
		if n.StringProperty(materialize.PropKey) == key {
			return n, nil
		}
	}
	return nil, storage.ErrNodeNotFound
}

func (f *fakeGraph) GetAllNodes() []*storage.Node { return f.nodes }

func (f *fakeGraph) FindNodesByLabel(label string) ([]*storage.Node, error) {
	var out []*storage.Node
	for _, n := range f.nodes {
		if n.HasLabel(label) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeGraph) GetOutgoingEdges(uint64) ([]*storage.Edge, error) { return nil, nil }
func (f *fakeGraph) GetIncomingEdges(uint64) ([]*storage.Edge, error) { return nil, nil }
