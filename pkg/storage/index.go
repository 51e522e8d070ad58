package storage

import (
	"sort"
	"strings"
	"sync"
)

// PropertyIndex maintains a case-insensitive index on a string node property.
// String list values are indexed element by element.
type PropertyIndex struct {
	propertyKey string

	// Index maps folded value -> node IDs
	index map[string][]uint64

	mu sync.RWMutex
}

// IndexStatistics holds statistics about an index
type IndexStatistics struct {
	PropertyKey    string
	UniqueValues   int
	TotalNodes     int
	AvgNodesPerKey float64
}

// NewPropertyIndex creates a new property index
func NewPropertyIndex(propertyKey string) *PropertyIndex {
	return &PropertyIndex{
		propertyKey: propertyKey,
		index:       make(map[string][]uint64),
	}
}

// indexKeys returns the folded index keys for a value; non-string values are not indexed
func indexKeys(value Value) []string {
	switch value.Type {
	case TypeString:
		s, _ := value.AsString()
		return []string{strings.ToLower(s)}
	case TypeStringList:
		list, err := value.AsStringList()
		if err != nil {
			return nil
		}
		keys := make([]string, 0, len(list))
		for _, s := range list {
			keys = append(keys, strings.ToLower(s))
		}
		return keys
	default:
		return nil
	}
}

// Insert adds a node to the index
func (idx *PropertyIndex) Insert(nodeID uint64, value Value) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	for _, key := range indexKeys(value) {
		ids := idx.index[key]
		if n := len(ids); n > 0 && ids[n-1] == nodeID {
			continue
		}
		idx.index[key] = append(ids, nodeID)
	}
}

// Remove removes a node from the index
func (idx *PropertyIndex) Remove(nodeID uint64, value Value) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	for _, key := range indexKeys(value) {
		nodeIDs := idx.index[key]
		for i, id := range nodeIDs {
			if id == nodeID {
				idx.index[key] = append(nodeIDs[:i], nodeIDs[i+1:]...)
				break
			}
		}
		if len(idx.index[key]) == 0 {
			delete(idx.index, key)
		}
	}
}

// Lookup finds all nodes whose value equals s, ignoring case
func (idx *PropertyIndex) Lookup(s string) []uint64 {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	ids := idx.index[strings.ToLower(s)]
	out := make([]uint64, len(ids))
	copy(out, ids)
	return out
}

// PrefixLookup finds all nodes whose value starts with prefix, ignoring case. Results are
// ordered by matching value, then by insertion.
func (idx *PropertyIndex) PrefixLookup(prefix string) []uint64 {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	prefix = strings.ToLower(prefix)
	keys := make([]string, 0)
	for key := range idx.index {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	seen := make(map[uint64]struct{})
	out := make([]uint64, 0, len(keys))
	for _, key := range keys {
		for _, id := range idx.index[key] {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}

// GetStatistics returns index statistics
func (idx *PropertyIndex) GetStatistics() IndexStatistics {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	total := 0
	for _, ids := range idx.index {
		total += len(ids)
	}
	stats := IndexStatistics{
		PropertyKey:  idx.propertyKey,
		UniqueValues: len(idx.index),
		TotalNodes:   total,
	}
	if stats.UniqueValues > 0 {
		stats.AvgNodesPerKey = float64(total) / float64(stats.UniqueValues)
	}
	return stats
}
