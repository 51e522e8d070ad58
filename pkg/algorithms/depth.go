package algorithms

// Depths returns the shortest number of edges from each node to rootID,
// following edges of the given types towards the root. Nodes that cannot
// reach the root are absent from the map.
func Depths(graph Walker, rootID uint64, edgeTypes ...string) (map[uint64]int, error) {
	types := newEdgeSet(edgeTypes)
	depth := map[uint64]int{rootID: 0}
	queue := []uint64{rootID}

	// edges point from subclass to superclass, so walk incoming edges down from the root
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		edges, err := graph.GetIncomingEdges(cur)
		if err != nil {
			return nil, err
		}
		for _, e := range edges {
			if !types.match(e.Type) {
				continue
			}
			if _, seen := depth[e.FromNodeID]; seen {
				continue
			}
			depth[e.FromNodeID] = depth[cur] + 1
			queue = append(queue, e.FromNodeID)
		}
	}
	return depth, nil
}

// HierarchyStats summarizes the shape of a hierarchy below one root.
type HierarchyStats struct {
	Nodes       int
	Reachable   int
	Unreachable []uint64
	MaxDepth    int
	Cycles      []Cycle
}

// Analyze computes depth and cycle statistics for the hierarchy under rootID.
func Analyze(graph Graph, rootID uint64, edgeTypes ...string) (HierarchyStats, error) {
	depths, err := Depths(graph, rootID, edgeTypes...)
	if err != nil {
		return HierarchyStats{}, err
	}
	cycles, err := DetectCycles(graph, edgeTypes...)
	if err != nil {
		return HierarchyStats{}, err
	}

	ids := sortedIDs(graph)
	stats := HierarchyStats{Nodes: len(ids), Reachable: len(depths), Cycles: cycles}
	for _, id := range ids {
		d, ok := depths[id]
		if !ok {
			stats.Unreachable = append(stats.Unreachable, id)
			continue
		}
		if d > stats.MaxDepth {
			stats.MaxDepth = d
		}
	}
	return stats, nil
}
