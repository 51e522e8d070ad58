package storage

import (
	"testing"
)

// newTestStorage creates a persistent storage in a temp dir that is closed when the test ends
func newTestStorage(t *testing.T) *GraphStorage {
	t.Helper()

	gs, err := NewGraphStorage(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create graph storage: %v", err)
	}
	t.Cleanup(func() { gs.Close() })
	return gs
}

// newMemoryStorage creates a storage without a data directory
func newMemoryStorage(t *testing.T) *GraphStorage {
	t.Helper()

	gs, err := NewGraphStorageWithConfig(StorageConfig{IndexedProperties: []string{"name"}})
	if err != nil {
		t.Fatalf("Failed to create graph storage: %v", err)
	}
	return gs
}

// mustBegin starts a transaction or fails the test
func mustBegin(t *testing.T, gs *GraphStorage) *Transaction {
	t.Helper()

	tx, err := gs.BeginTransaction()
	if err != nil {
		t.Fatalf("Failed to begin transaction: %v", err)
	}
	return tx
}
