package constraints

import (
	"fmt"
	"slices"
	"strings"

	"github.com/dd0wney/owlgraph/pkg/storage"
)

// Direction specifies edge direction for cardinality constraints
type Direction int

const (
	Outgoing Direction = iota // Edges from this node
	Incoming                  // Edges to this node
)

func (d Direction) String() string {
	switch d {
	case Outgoing:
		return "Outgoing"
	case Incoming:
		return "Incoming"
	default:
		return "Unknown"
	}
}

// CardinalityConstraint bounds the number of edges of the given types on every node with a label.
type CardinalityConstraint struct {
	NodeLabel string
	EdgeTypes []string // empty = any type
	Direction Direction
	Min       int // 0 = optional
	Max       int // 0 = unlimited
}

// Name returns the constraint name
func (cc *CardinalityConstraint) Name() string {
	types := "*"
	if len(cc.EdgeTypes) > 0 {
		types = strings.Join(cc.EdgeTypes, "|")
	}
	return fmt.Sprintf("Cardinality(%s,%s,%s,[%d,%d])", cc.NodeLabel, types, cc.Direction, cc.Min, cc.Max)
}

// Validate checks the cardinality constraint against all nodes with the target label
func (cc *CardinalityConstraint) Validate(graph GraphReader) ([]Violation, error) {
	var violations []Violation

	nodes, err := graph.FindNodesByLabel(cc.NodeLabel)
	if err != nil {
		return nil, fmt.Errorf("failed to find nodes with label %s: %w", cc.NodeLabel, err)
	}

	for _, node := range nodes {
		count, err := cc.countEdges(graph, node.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to count edges for node %d: %w", node.ID, err)
		}

		details := map[string]any{
			"label":      cc.NodeLabel,
			"edge_types": cc.EdgeTypes,
			"direction":  cc.Direction.String(),
			"count":      count,
		}
		if cc.Min > 0 && count < cc.Min {
			details["min"] = cc.Min
			violations = append(violations, nodeViolation(cc, CardinalityViolation, node, "key",
				fmt.Sprintf("Node %d has %d %s edge(s), minimum is %d", node.ID, count, cc.Direction, cc.Min), details))
		}
		if cc.Max > 0 && count > cc.Max {
			details["max"] = cc.Max
			violations = append(violations, nodeViolation(cc, CardinalityViolation, node, "key",
				fmt.Sprintf("Node %d has %d %s edge(s), maximum is %d", node.ID, count, cc.Direction, cc.Max), details))
		}
	}

	return violations, nil
}

func (cc *CardinalityConstraint) countEdges(graph GraphReader, nodeID uint64) (int, error) {
	var edges []*storage.Edge
	var err error
	if cc.Direction == Incoming {
		edges, err = graph.GetIncomingEdges(nodeID)
	} else {
		edges, err = graph.GetOutgoingEdges(nodeID)
	}
	if err != nil {
		return 0, err
	}

	count := 0
	for _, edge := range edges {
		if len(cc.EdgeTypes) == 0 || slices.Contains(cc.EdgeTypes, edge.Type) {
			count++
		}
	}
	return count, nil
}
