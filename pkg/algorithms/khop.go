package algorithms

import "fmt"

// Ancestors returns the nodes reachable from sourceID along outgoing edges of
// the given types within maxHops, closest first. The source is never
// included.
func Ancestors(graph Walker, sourceID uint64, maxHops int, edgeTypes ...string) ([]uint64, error) {
	if maxHops < 1 {
		return nil, fmt.Errorf("maxHops must be >= 1, got %d", maxHops)
	}

	type entry struct {
		id  uint64
		hop int
	}

	types := newEdgeSet(edgeTypes)
	visited := map[uint64]bool{sourceID: true}
	queue := []entry{{sourceID, 0}}
	var out []uint64

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.hop >= maxHops {
			continue
		}

		edges, err := graph.GetOutgoingEdges(cur.id)
		if err != nil {
			return nil, err
		}
		for _, e := range edges {
			if !types.match(e.Type) || visited[e.ToNodeID] {
				continue
			}
			visited[e.ToNodeID] = true
			out = append(out, e.ToNodeID)
			queue = append(queue, entry{e.ToNodeID, cur.hop + 1})
		}
	}
	return out, nil
}
