package storage

import (
	"errors"
	"fmt"
	"sync"
	"testing"
)

func TestTransaction_BuffersUntilCommit(t *testing.T) {
	gs := newTestStorage(t)
	tx := mustBegin(t, gs)

	node, created, err := tx.GetOrCreateNode("DRAO_0000001")
	if err != nil {
		t.Fatalf("GetOrCreateNode() error = %v", err)
	}
	if !created {
		t.Error("first GetOrCreateNode should create")
	}
	if err := tx.SetProperty(node.ID, "name", StringValue("Biomedical Science")); err != nil {
		t.Fatalf("SetProperty() error = %v", err)
	}
	if err := tx.AddLabel(node.ID, "Class"); err != nil {
		t.Fatalf("AddLabel() error = %v", err)
	}

	// Not visible outside the transaction yet
	if _, err := gs.GetNode(node.ID); !IsNotFound(err) {
		t.Error("Node should not be visible outside transaction before commit")
	}

	// Visible inside
	inside, err := tx.GetNode(node.ID)
	if err != nil {
		t.Fatalf("tx.GetNode() error = %v", err)
	}
	if inside.StringProperty("name") != "Biomedical Science" || !inside.HasLabel("Class") {
		t.Errorf("tx view = %+v", inside)
	}

	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	got, err := gs.GetNodeByKey("DRAO_0000001")
	if err != nil {
		t.Fatalf("GetNodeByKey() error = %v", err)
	}
	if got.ID != node.ID || !got.HasLabel("Class") {
		t.Errorf("committed node = %+v", got)
	}
}

func TestTransaction_GetOrCreateReturnsSameNode(t *testing.T) {
	gs := newTestStorage(t)

	// Committed node is found, not recreated
	existing, _ := gs.CreateNode(nil, map[string]Value{"key": StringValue("A")})

	tx := mustBegin(t, gs)
	n1, created, err := tx.GetOrCreateNode("A")
	if err != nil || created || n1.ID != existing.ID {
		t.Fatalf("GetOrCreateNode(committed) = %v, %v, %v", n1, created, err)
	}

	n2, created, _ := tx.GetOrCreateNode("B")
	if !created {
		t.Error("B should be created")
	}
	n3, created, _ := tx.GetOrCreateNode("B")
	if created || n3.ID != n2.ID {
		t.Errorf("second GetOrCreateNode(B) = %d created=%v, want %d", n3.ID, created, n2.ID)
	}

	nodes, edges := tx.PendingCounts()
	if nodes != 1 || edges != 0 {
		t.Errorf("PendingCounts() = %d, %d", nodes, edges)
	}
}

func TestTransaction_RollbackLeavesNoTrace(t *testing.T) {
	gs := newTestStorage(t)

	root, _ := gs.CreateNode([]string{"Root"}, map[string]Value{"key": StringValue("owl:Thing")})
	before := gs.GetStatistics()

	tx := mustBegin(t, gs)
	n, _, _ := tx.GetOrCreateNode("X")
	tx.SetProperty(n.ID, "name", StringValue("x"))
	tx.SetProperty(root.ID, "name", StringValue("changed"))
	tx.AddLabel(root.ID, "DOMAIN")
	if _, err := tx.CreateEdge(n.ID, root.ID, "IS_A", nil); err != nil {
		t.Fatalf("CreateEdge() error = %v", err)
	}

	if err := tx.Rollback(); err != nil {
		t.Fatalf("Rollback() error = %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Errorf("Rollback() should be idempotent, got %v", err)
	}

	after := gs.GetStatistics()
	if after.NodeCount != before.NodeCount || after.EdgeCount != before.EdgeCount {
		t.Errorf("counts changed: before %+v after %+v", before, after)
	}
	if after.TotalRollbacks != 1 {
		t.Errorf("TotalRollbacks = %d, want 1", after.TotalRollbacks)
	}
	if _, err := gs.GetNodeByKey("X"); !IsNotFound(err) {
		t.Error("rolled back node is visible")
	}
	got, _ := gs.GetNode(root.ID)
	if got.HasLabel("DOMAIN") || got.StringProperty("name") != "" {
		t.Errorf("root modified by rolled back tx: %+v", got)
	}

	if _, _, err := tx.GetOrCreateNode("Y"); !errors.Is(err, ErrTransactionNotActive) {
		t.Errorf("GetOrCreateNode after rollback = %v", err)
	}
	if err := tx.Commit(); !errors.Is(err, ErrTransactionAlreadyEnded) {
		t.Errorf("Commit after rollback = %v", err)
	}
}

func TestTransaction_CommitAppliesUpdatesToExistingNodes(t *testing.T) {
	gs := newTestStorage(t)
	root, _ := gs.CreateNode([]string{"Root"}, map[string]Value{"key": StringValue("owl:Thing")})

	tx := mustBegin(t, gs)
	if err := tx.SetProperty(root.ID, "name", StringValue("owl:Thing")); err != nil {
		t.Fatalf("SetProperty() error = %v", err)
	}
	if err := tx.AddLabel(root.ID, "Root"); err != nil {
		t.Fatalf("AddLabel() error = %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	got, _ := gs.GetNode(root.ID)
	if got.StringProperty("name") != "owl:Thing" {
		t.Errorf("name = %q", got.StringProperty("name"))
	}
	if len(got.Labels) != 1 {
		t.Errorf("labels = %v, want [Root]", got.Labels)
	}

	// Committed property is searchable through the index
	found, _ := gs.FindNodesByPropertyPrefix("name", "owl")
	if len(found) != 1 {
		t.Errorf("index not updated on commit: %d matches", len(found))
	}

	if err := tx.Rollback(); err == nil {
		t.Error("Rollback after commit should fail")
	}
}

func TestTransaction_KeyIsImmutable(t *testing.T) {
	gs := newTestStorage(t)
	tx := mustBegin(t, gs)
	defer tx.Rollback()

	n, _, _ := tx.GetOrCreateNode("A")
	if err := tx.SetProperty(n.ID, "key", StringValue("B")); !errors.Is(err, ErrKeyImmutable) {
		t.Errorf("SetProperty(key) = %v, want ErrKeyImmutable", err)
	}
	if _, _, err := tx.GetOrCreateNode(""); !errors.Is(err, ErrEmptyKey) {
		t.Errorf("GetOrCreateNode(\"\") = %v, want ErrEmptyKey", err)
	}
}

func TestTransaction_UnknownNodes(t *testing.T) {
	gs := newTestStorage(t)
	tx := mustBegin(t, gs)
	defer tx.Rollback()

	if err := tx.SetProperty(42, "name", StringValue("x")); !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("SetProperty(missing) = %v", err)
	}
	if err := tx.AddLabel(42, "Class"); !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("AddLabel(missing) = %v", err)
	}
	n, _, _ := tx.GetOrCreateNode("A")
	if _, err := tx.CreateEdge(n.ID, 42, "PART_OF", nil); !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("CreateEdge(missing target) = %v", err)
	}
}

func TestTransaction_ConflictingKeyAbortsCommit(t *testing.T) {
	gs := newTestStorage(t)

	tx1 := mustBegin(t, gs)
	tx2 := mustBegin(t, gs)

	a1, _, _ := tx1.GetOrCreateNode("A")
	a2, _, _ := tx2.GetOrCreateNode("A")
	other, _, _ := tx2.GetOrCreateNode("B")
	tx2.CreateEdge(other.ID, a2.ID, "PART_OF", nil)

	if err := tx1.Commit(); err != nil {
		t.Fatalf("tx1 Commit() error = %v", err)
	}
	err := tx2.Commit()
	if !errors.Is(err, ErrDuplicateKey) {
		t.Fatalf("tx2 Commit() = %v, want ErrDuplicateKey", err)
	}

	// tx2 applied nothing
	if _, err := gs.GetNodeByKey("B"); !IsNotFound(err) {
		t.Error("node from failed commit is visible")
	}
	if stats := gs.GetStatistics(); stats.NodeCount != 1 || stats.EdgeCount != 0 {
		t.Errorf("stats after conflict = %+v", stats)
	}
	got, _ := gs.GetNodeByKey("A")
	if got.ID != a1.ID {
		t.Errorf("A resolved to %d, want %d", got.ID, a1.ID)
	}
	if err := tx2.Rollback(); err != nil {
		t.Errorf("Rollback after failed commit = %v", err)
	}
}

func TestTransaction_ConcurrentGetOrCreateExactlyOnce(t *testing.T) {
	gs := newTestStorage(t)
	tx := mustBegin(t, gs)

	const workers = 32
	const keys = 50

	var wg sync.WaitGroup
	ids := make([][]uint64, workers)
	created := make([]int, workers)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			ids[w] = make([]uint64, keys)
			for k := 0; k < keys; k++ {
				n, c, err := tx.GetOrCreateNode(fmt.Sprintf("K%03d", k))
				if err != nil {
					t.Errorf("GetOrCreateNode() error = %v", err)
					return
				}
				ids[w][k] = n.ID
				if c {
					created[w]++
				}
			}
		}(w)
	}
	wg.Wait()

	total := 0
	for w := 0; w < workers; w++ {
		total += created[w]
		for k := 0; k < keys; k++ {
			if ids[w][k] != ids[0][k] {
				t.Fatalf("worker %d key %d resolved to %d, worker 0 to %d", w, k, ids[w][k], ids[0][k])
			}
		}
	}
	if total != keys {
		t.Errorf("created = %d, want %d", total, keys)
	}

	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	if stats := gs.GetStatistics(); stats.NodeCount != keys {
		t.Errorf("NodeCount = %d, want %d", stats.NodeCount, keys)
	}
}
