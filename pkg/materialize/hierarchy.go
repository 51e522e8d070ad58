package materialize

// EdgeType is a hierarchy relationship type.
type EdgeType string

const (
	// EdgeIsA links a class without direct superclasses to the root.
	EdgeIsA EdgeType = "IS_A"
	// EdgePartOf links a class to one of its direct superclasses.
	EdgePartOf EdgeType = "PART_OF"
)

// HierarchyEdge is a directed edge from a class to its superclass or to the root.
type HierarchyEdge struct {
	From string
	To   string
	Type EdgeType
}

// BuildEdges returns the hierarchy edges of classKey given the oracle's direct-superclass answer,
// already normalized to keys. An empty answer yields a single IS_A edge to the root; otherwise
// each element yields one PART_OF edge, repeats included.
func BuildEdges(classKey string, answer []string) []HierarchyEdge {
	if len(answer) == 0 {
		return []HierarchyEdge{{From: classKey, To: RootKey, Type: EdgeIsA}}
	}
	edges := make([]HierarchyEdge, 0, len(answer))
	for _, parent := range answer {
		edges = append(edges, HierarchyEdge{From: classKey, To: parent, Type: EdgePartOf})
	}
	return edges
}
