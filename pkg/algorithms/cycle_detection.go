package algorithms

// Cycle is a closed walk of node IDs along superclass edges.
type Cycle []uint64

const (
	white = iota // unvisited
	gray         // on the DFS stack
	black        // finished
)

// DetectCycles finds cycles among edges of the given types using DFS with
// three-color marking. A gray neighbour is a back edge and closes a cycle.
// Self-loops are reported as single-node cycles.
func DetectCycles(graph Graph, edgeTypes ...string) ([]Cycle, error) {
	d := &cycleDetector{
		graph:  graph,
		types:  newEdgeSet(edgeTypes),
		color:  make(map[uint64]int),
		parent: make(map[uint64]uint64),
	}
	for _, id := range sortedIDs(graph) {
		if d.color[id] != white {
			continue
		}
		if err := d.visit(id); err != nil {
			return nil, err
		}
	}
	return d.cycles, nil
}

type cycleDetector struct {
	graph  Graph
	types  edgeSet
	color  map[uint64]int
	parent map[uint64]uint64
	cycles []Cycle
}

func (d *cycleDetector) visit(id uint64) error {
	d.color[id] = gray
	edges, err := d.graph.GetOutgoingEdges(id)
	if err != nil {
		return err
	}

	for _, e := range edges {
		if !d.types.match(e.Type) {
			continue
		}
		next := e.ToNodeID
		switch {
		case next == id:
			d.cycles = append(d.cycles, Cycle{id})
		case d.color[next] == white:
			d.parent[next] = id
			if err := d.visit(next); err != nil {
				return err
			}
		case d.color[next] == gray:
			d.cycles = append(d.cycles, d.extract(next, id))
		}
	}

	d.color[id] = black
	return nil
}

// extract walks parent pointers from end back to start.
func (d *cycleDetector) extract(start, end uint64) Cycle {
	cycle := Cycle{start}
	for cur := end; cur != start; {
		cycle = append(cycle, cur)
		p, ok := d.parent[cur]
		if !ok {
			break
		}
		cur = p
	}
	return cycle
}
