// Package algorithms walks the materialized class hierarchy: superclass
// cycles, distance to the root and bounded ancestor sets.
package algorithms

import (
	"sort"

	"github.com/dd0wney/owlgraph/pkg/storage"
)

// Walker follows edges from a known node.
type Walker interface {
	GetOutgoingEdges(nodeID uint64) ([]*storage.Edge, error)
	GetIncomingEdges(nodeID uint64) ([]*storage.Edge, error)
}

// Graph is a Walker that can also enumerate every node.
type Graph interface {
	Walker
	GetAllNodes() []*storage.Node
}

// edgeSet matches edge types; an empty set matches every type.
type edgeSet map[string]bool

func newEdgeSet(types []string) edgeSet {
	set := make(edgeSet, len(types))
	for _, t := range types {
		set[t] = true
	}
	return set
}

func (s edgeSet) match(edgeType string) bool {
	return len(s) == 0 || s[edgeType]
}

// sortedIDs returns every node ID in ascending order so traversals are
// deterministic.
func sortedIDs(graph Graph) []uint64 {
	nodes := graph.GetAllNodes()
	ids := make([]uint64, 0, len(nodes))
	for _, n := range nodes {
		ids = append(ids, n.ID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
