package materialize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildEdgesFallsBackToRoot(t *testing.T) {
	edges := BuildEdges("Biology", nil)
	assert.Equal(t, []HierarchyEdge{{From: "Biology", To: RootKey, Type: EdgeIsA}}, edges)
}

func TestBuildEdgesFansOut(t *testing.T) {
	edges := BuildEdges("X", []string{"A", "B", "C"})
	assert.Equal(t, []HierarchyEdge{
		{From: "X", To: "A", Type: EdgePartOf},
		{From: "X", To: "B", Type: EdgePartOf},
		{From: "X", To: "C", Type: EdgePartOf},
	}, edges)
}

func TestBuildEdgesKeepsRepeats(t *testing.T) {
	edges := BuildEdges("X", []string{"A", "A"})
	assert.Len(t, edges, 2)
	for _, e := range edges {
		assert.Equal(t, EdgePartOf, e.Type)
		assert.Equal(t, "A", e.To)
	}
}
