package constraints

import (
	"fmt"
	"slices"

	"github.com/dd0wney/owlgraph/pkg/storage"
)

// PropertyConstraint checks presence and type of a property on every node with a label.
type PropertyConstraint struct {
	NodeLabel    string
	PropertyName string
	Types        []storage.ValueType // empty = any type
	Required     bool
}

// Name returns the constraint name
func (pc *PropertyConstraint) Name() string {
	return fmt.Sprintf("Property(%s.%s)", pc.NodeLabel, pc.PropertyName)
}

// Validate checks the property constraint against all nodes with the target label
func (pc *PropertyConstraint) Validate(graph GraphReader) ([]Violation, error) {
	var violations []Violation

	nodes, err := graph.FindNodesByLabel(pc.NodeLabel)
	if err != nil {
		return nil, fmt.Errorf("failed to find nodes with label %s: %w", pc.NodeLabel, err)
	}

	for _, node := range nodes {
		value, exists := node.GetProperty(pc.PropertyName)
		if !exists {
			if pc.Required {
				violations = append(violations, nodeViolation(pc, MissingProperty, node, "key",
					fmt.Sprintf("Node %d missing required property '%s'", node.ID, pc.PropertyName),
					map[string]any{"label": pc.NodeLabel, "property": pc.PropertyName}))
			}
			continue
		}

		if len(pc.Types) > 0 && !slices.Contains(pc.Types, value.Type) {
			violations = append(violations, nodeViolation(pc, InvalidType, node, "key",
				fmt.Sprintf("Node %d property '%s' is %s, want one of %v", node.ID, pc.PropertyName, value.Type, pc.Types),
				map[string]any{
					"label":          pc.NodeLabel,
					"property":       pc.PropertyName,
					"actual_type":    value.Type.String(),
					"expected_types": pc.Types,
				}))
		}
	}

	return violations, nil
}
