package constraints

import (
	"fmt"
	"slices"
	"strings"
)

// ReachabilityConstraint requires a directed path of EdgeTypes edges from every node with
// NodeLabel to the node whose key is RootKey.
type ReachabilityConstraint struct {
	NodeLabel   string
	RootKey     string
	EdgeTypes   []string // empty = any type
	KeyProperty string
}

// Name returns the constraint name
func (rc *ReachabilityConstraint) Name() string {
	return fmt.Sprintf("Reaches(%s->%s via %s)", rc.NodeLabel, rc.RootKey, strings.Join(rc.EdgeTypes, "|"))
}

// Validate walks incoming edges back from the root once and reports every labelled node the walk
// never visits.
func (rc *ReachabilityConstraint) Validate(graph GraphReader) ([]Violation, error) {
	nodes, err := graph.FindNodesByLabel(rc.NodeLabel)
	if err != nil {
		return nil, fmt.Errorf("failed to find nodes with label %s: %w", rc.NodeLabel, err)
	}
	if len(nodes) == 0 {
		return nil, nil
	}

	visited := make(map[uint64]bool)
	root, err := graph.GetNodeByKey(rc.RootKey)
	if err == nil {
		visited[root.ID] = true
		queue := []uint64{root.ID}
		for len(queue) > 0 {
			id := queue[0]
			queue = queue[1:]
			incoming, err := graph.GetIncomingEdges(id)
			if err != nil {
				return nil, fmt.Errorf("failed to read incoming edges of node %d: %w", id, err)
			}
			for _, e := range incoming {
				if len(rc.EdgeTypes) > 0 && !slices.Contains(rc.EdgeTypes, e.Type) {
					continue
				}
				if !visited[e.FromNodeID] {
					visited[e.FromNodeID] = true
					queue = append(queue, e.FromNodeID)
				}
			}
		}
	}

	var violations []Violation
	for _, node := range nodes {
		if visited[node.ID] {
			continue
		}
		violations = append(violations, nodeViolation(rc, Unreachable, node, rc.KeyProperty,
			fmt.Sprintf("Node %d has no path to %s", node.ID, rc.RootKey),
			map[string]any{"label": rc.NodeLabel, "root": rc.RootKey, "root_present": err == nil}))
	}
	return violations, nil
}
