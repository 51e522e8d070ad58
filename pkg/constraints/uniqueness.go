package constraints

import (
	"fmt"
	"slices"
)

// UniquePropertyConstraint ensures a property value is unique across all nodes, or across the
// nodes with NodeLabel when it is set.
type UniquePropertyConstraint struct {
	PropertyKey string
	NodeLabel   string
}

// Name returns a human-readable name for this constraint
func (c *UniquePropertyConstraint) Name() string {
	if c.NodeLabel != "" {
		return fmt.Sprintf("Unique(%s.%s)", c.NodeLabel, c.PropertyKey)
	}
	return fmt.Sprintf("UniqueGlobal(%s)", c.PropertyKey)
}

// Validate reports every node whose value was already seen on a node with a lower ID.
func (c *UniquePropertyConstraint) Validate(graph GraphReader) ([]Violation, error) {
	nodes := graph.GetAllNodes()
	if c.NodeLabel != "" {
		var err error
		nodes, err = graph.FindNodesByLabel(c.NodeLabel)
		if err != nil {
			return nil, fmt.Errorf("failed to find nodes with label %s: %w", c.NodeLabel, err)
		}
	}

	seen := make(map[string][]uint64)
	var order []string
	for _, node := range nodes {
		prop, exists := node.Properties[c.PropertyKey]
		if !exists {
			continue
		}
		value := fmt.Sprint(prop.Native())
		if _, ok := seen[value]; !ok {
			order = append(order, value)
		}
		seen[value] = append(seen[value], node.ID)
	}

	var violations []Violation
	for _, value := range order {
		ids := seen[value]
		if len(ids) < 2 {
			continue
		}
		slices.Sort(ids)
		for _, id := range ids[1:] {
			nodeID := id
			violations = append(violations, Violation{
				Type:       UniquenessViolation,
				Severity:   Error,
				NodeID:     &nodeID,
				NodeKey:    value,
				Constraint: c.Name(),
				Message: fmt.Sprintf("Duplicate value '%s' for property '%s' (also exists on node %d)",
					value, c.PropertyKey, ids[0]),
				Details: map[string]any{
					"property":       c.PropertyKey,
					"value":          value,
					"duplicate_of":   ids[0],
					"all_duplicates": ids,
				},
			})
		}
	}
	return violations, nil
}
