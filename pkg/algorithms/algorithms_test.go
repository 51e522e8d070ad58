package algorithms

import (
	"testing"

	"github.com/dd0wney/owlgraph/pkg/storage"
)

func setupTestGraph(t *testing.T) *storage.GraphStorage {
	t.Helper()

	gs, err := storage.NewGraphStorageWithConfig(storage.StorageConfig{})
	if err != nil {
		t.Fatalf("Failed to create GraphStorage: %v", err)
	}
	t.Cleanup(func() { gs.Close() })
	return gs
}

func nodes(t *testing.T, gs *storage.GraphStorage, n int) []*storage.Node {
	t.Helper()

	out := make([]*storage.Node, n)
	for i := range out {
		node, err := gs.CreateNode([]string{"Class"}, nil)
		if err != nil {
			t.Fatalf("CreateNode failed: %v", err)
		}
		out[i] = node
	}
	return out
}

func edge(t *testing.T, gs *storage.GraphStorage, from, to *storage.Node, edgeType string) {
	t.Helper()

	if _, err := gs.CreateEdge(from.ID, to.ID, edgeType, nil); err != nil {
		t.Fatalf("CreateEdge failed: %v", err)
	}
}

// diamond builds root <- A <- {B, C} <- D with IS_A edges, plus D -SEE_ALSO-> root.
func diamond(t *testing.T) (*storage.GraphStorage, []*storage.Node) {
	gs := setupTestGraph(t)
	n := nodes(t, gs, 5)
	root, a, b, c, d := n[0], n[1], n[2], n[3], n[4]
	edge(t, gs, a, root, "IS_A")
	edge(t, gs, b, a, "IS_A")
	edge(t, gs, c, a, "PART_OF")
	edge(t, gs, d, b, "IS_A")
	edge(t, gs, d, c, "PART_OF")
	edge(t, gs, d, root, "SEE_ALSO")
	return gs, n
}

func TestDetectCyclesAcyclicHierarchy(t *testing.T) {
	gs, _ := diamond(t)

	cycles, err := DetectCycles(gs, "IS_A", "PART_OF")
	if err != nil {
		t.Fatalf("DetectCycles failed: %v", err)
	}
	if len(cycles) != 0 {
		t.Errorf("Expected no cycles, got %v", cycles)
	}
}

func TestDetectCyclesFiltersEdgeTypes(t *testing.T) {
	gs := setupTestGraph(t)
	n := nodes(t, gs, 3)
	edge(t, gs, n[0], n[1], "IS_A")
	edge(t, gs, n[1], n[2], "IS_A")
	edge(t, gs, n[2], n[0], "SEE_ALSO")

	cycles, err := DetectCycles(gs, "IS_A")
	if err != nil {
		t.Fatalf("DetectCycles failed: %v", err)
	}
	if len(cycles) != 0 {
		t.Errorf("Expected no IS_A cycles, got %v", cycles)
	}

	cycles, err = DetectCycles(gs)
	if err != nil {
		t.Fatalf("DetectCycles failed: %v", err)
	}
	if len(cycles) != 1 || len(cycles[0]) != 3 {
		t.Errorf("Expected one 3-node cycle over all edge types, got %v", cycles)
	}
}

func TestDetectCyclesSelfLoopAndPair(t *testing.T) {
	gs := setupTestGraph(t)
	n := nodes(t, gs, 3)
	edge(t, gs, n[0], n[0], "IS_A")
	edge(t, gs, n[1], n[2], "PART_OF")
	edge(t, gs, n[2], n[1], "PART_OF")

	cycles, err := DetectCycles(gs, "IS_A", "PART_OF")
	if err != nil {
		t.Fatalf("DetectCycles failed: %v", err)
	}
	if len(cycles) != 2 {
		t.Fatalf("Expected 2 cycles, got %v", cycles)
	}
	if len(cycles[0]) != 1 || cycles[0][0] != n[0].ID {
		t.Errorf("Expected self-loop on %d first, got %v", n[0].ID, cycles[0])
	}
	if len(cycles[1]) != 2 {
		t.Errorf("Expected 2-node cycle, got %v", cycles[1])
	}
}

func TestDepths(t *testing.T) {
	gs, n := diamond(t)
	root, a, b, c, d := n[0], n[1], n[2], n[3], n[4]

	depths, err := Depths(gs, root.ID, "IS_A", "PART_OF")
	if err != nil {
		t.Fatalf("Depths failed: %v", err)
	}
	want := map[uint64]int{root.ID: 0, a.ID: 1, b.ID: 2, c.ID: 2, d.ID: 3}
	if len(depths) != len(want) {
		t.Fatalf("Expected %d depths, got %v", len(want), depths)
	}
	for id, w := range want {
		if depths[id] != w {
			t.Errorf("depth[%d] = %d, want %d", id, depths[id], w)
		}
	}

	// SEE_ALSO gives D a direct route to the root.
	depths, err = Depths(gs, root.ID)
	if err != nil {
		t.Fatalf("Depths failed: %v", err)
	}
	if depths[d.ID] != 1 {
		t.Errorf("depth over all edges = %d, want 1", depths[d.ID])
	}
}

func TestAnalyze(t *testing.T) {
	gs, n := diamond(t)
	orphan := nodes(t, gs, 1)[0]

	stats, err := Analyze(gs, n[0].ID, "IS_A", "PART_OF")
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if stats.Nodes != 6 || stats.Reachable != 5 {
		t.Errorf("Nodes/Reachable = %d/%d, want 6/5", stats.Nodes, stats.Reachable)
	}
	if stats.MaxDepth != 3 {
		t.Errorf("MaxDepth = %d, want 3", stats.MaxDepth)
	}
	if len(stats.Unreachable) != 1 || stats.Unreachable[0] != orphan.ID {
		t.Errorf("Unreachable = %v, want [%d]", stats.Unreachable, orphan.ID)
	}
	if len(stats.Cycles) != 0 {
		t.Errorf("Cycles = %v, want none", stats.Cycles)
	}
}

func TestAncestors(t *testing.T) {
	gs, n := diamond(t)
	root, a, b, c, d := n[0], n[1], n[2], n[3], n[4]

	got, err := Ancestors(gs, d.ID, 1, "IS_A", "PART_OF")
	if err != nil {
		t.Fatalf("Ancestors failed: %v", err)
	}
	if len(got) != 2 || !contains(got, b.ID) || !contains(got, c.ID) {
		t.Errorf("1-hop ancestors = %v, want %d and %d", got, b.ID, c.ID)
	}

	got, err = Ancestors(gs, d.ID, 10, "IS_A", "PART_OF")
	if err != nil {
		t.Fatalf("Ancestors failed: %v", err)
	}
	if len(got) != 4 || got[len(got)-1] != root.ID || !contains(got, a.ID) {
		t.Errorf("all ancestors = %v, want B, C, A then root", got)
	}

	if _, err := Ancestors(gs, d.ID, 0); err == nil {
		t.Error("Expected error for maxHops 0")
	}
}

func contains(ids []uint64, id uint64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
