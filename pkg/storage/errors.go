package storage

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	ErrNodeNotFound     = errors.New("node not found")
	ErrEdgeNotFound     = errors.New("edge not found")
	ErrStorageClosed    = errors.New("storage is closed")
	ErrDuplicateKey     = errors.New("duplicate node key")
	ErrEmptyKey         = errors.New("empty node key")
	ErrKeyImmutable     = errors.New("node key cannot be changed")
	ErrIDSpaceExhausted = errors.New("ID space exhausted")
	ErrSnapshotCorrupt  = errors.New("snapshot corrupt")
	ErrNotIndexed       = errors.New("property is not indexed")
)

// StorageError provides structured error information for storage operations.
type StorageError struct {
	Op      string // Operation that failed (e.g., "GetOrCreateNode", "Commit")
	Entity  string // Entity type (e.g., "node", "edge", "snapshot")
	ID      uint64 // Entity ID (if applicable)
	Key     string // Node key (for key-addressed operations)
	Field   string // Field name (for property operations)
	Cause   error  // Underlying error
	Context string // Additional context
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	subject := e.Entity
	if e.ID != 0 {
		subject = fmt.Sprintf("%s %d", subject, e.ID)
	}
	if e.Key != "" {
		subject = fmt.Sprintf("%s %q", subject, e.Key)
	}
	switch {
	case e.Field != "":
		return fmt.Sprintf("%s %s (field %s): %v", e.Op, subject, e.Field, e.Cause)
	case e.Context != "":
		return fmt.Sprintf("%s %s (%s): %v", e.Op, subject, e.Context, e.Cause)
	default:
		return fmt.Sprintf("%s %s: %v", e.Op, subject, e.Cause)
	}
}

// Unwrap returns the underlying cause for error chain support.
func (e *StorageError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target error matches this error's cause.
func (e *StorageError) Is(target error) bool {
	if target == nil {
		return false
	}
	return errors.Is(e.Cause, target)
}

// ErrorBuilder provides a fluent interface for building StorageErrors.
type ErrorBuilder struct {
	err StorageError
}

// NewError creates a new error builder with the given operation.
func NewError(op string) *ErrorBuilder {
	return &ErrorBuilder{err: StorageError{Op: op}}
}

// Node sets the entity to "node" with the given ID.
func (b *ErrorBuilder) Node(id uint64) *ErrorBuilder {
	b.err.Entity = "node"
	b.err.ID = id
	return b
}

// NodeKey sets the entity to "node" addressed by key.
func (b *ErrorBuilder) NodeKey(key string) *ErrorBuilder {
	b.err.Entity = "node"
	b.err.Key = key
	return b
}

// Edge sets the entity to "edge" with the given ID.
func (b *ErrorBuilder) Edge(id uint64) *ErrorBuilder {
	b.err.Entity = "edge"
	b.err.ID = id
	return b
}

// Snapshot sets the entity to "snapshot".
func (b *ErrorBuilder) Snapshot() *ErrorBuilder {
	b.err.Entity = "snapshot"
	return b
}

// Transaction sets the entity to "transaction" with the given ID.
func (b *ErrorBuilder) Transaction(id uint64) *ErrorBuilder {
	b.err.Entity = "transaction"
	b.err.ID = id
	return b
}

// Field sets the field name for property operations.
func (b *ErrorBuilder) Field(name string) *ErrorBuilder {
	b.err.Field = name
	return b
}

// Context sets additional context information.
func (b *ErrorBuilder) Context(ctx string) *ErrorBuilder {
	b.err.Context = ctx
	return b
}

// Cause sets the underlying error cause.
func (b *ErrorBuilder) Cause(err error) *ErrorBuilder {
	b.err.Cause = err
	return b
}

// Build returns the constructed StorageError.
func (b *ErrorBuilder) Build() *StorageError {
	return &b.err
}

// Err returns the error as an error interface.
func (b *ErrorBuilder) Err() error {
	return &b.err
}

// NodeNotFoundError creates a node not found error.
func NodeNotFoundError(nodeID uint64) error {
	return NewError("get").Node(nodeID).Cause(ErrNodeNotFound).Err()
}

// EdgeNotFoundError creates an edge not found error.
func EdgeNotFoundError(edgeID uint64) error {
	return NewError("get").Edge(edgeID).Cause(ErrEdgeNotFound).Err()
}

// SnapshotError creates a snapshot read/write error.
func SnapshotError(op, path string, cause error) error {
	return NewError(op).Snapshot().Context(path).Cause(cause).Err()
}

// IsNotFound returns true if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNodeNotFound) || errors.Is(err, ErrEdgeNotFound)
}

// IsClosed returns true if the error indicates the storage is closed.
func IsClosed(err error) bool {
	return errors.Is(err, ErrStorageClosed)
}
