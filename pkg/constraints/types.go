// Package constraints checks the graph invariants a committed materialization must satisfy.
package constraints

import (
	"github.com/dd0wney/owlgraph/pkg/storage"
)

// GraphReader defines the read-only operations needed for constraint validation.
// *storage.GraphStorage satisfies it.
type GraphReader interface {
	GetNode(nodeID uint64) (*storage.Node, error)
	GetNodeByKey(key string) (*storage.Node, error)
	GetAllNodes() []*storage.Node
	FindNodesByLabel(label string) ([]*storage.Node, error)

	GetOutgoingEdges(nodeID uint64) ([]*storage.Edge, error)
	GetIncomingEdges(nodeID uint64) ([]*storage.Edge, error)
}

// Severity indicates the importance of a violation
type Severity int

const (
	Info Severity = iota
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "Info"
	case Warning:
		return "Warning"
	case Error:
		return "Error"
	default:
		return "Unknown"
	}
}

// ViolationType categorizes the type of constraint violation
type ViolationType int

const (
	MissingProperty ViolationType = iota
	InvalidType
	CardinalityViolation
	UniquenessViolation
	Unreachable
)

func (vt ViolationType) String() string {
	switch vt {
	case MissingProperty:
		return "MissingProperty"
	case InvalidType:
		return "InvalidType"
	case CardinalityViolation:
		return "CardinalityViolation"
	case UniquenessViolation:
		return "UniquenessViolation"
	case Unreachable:
		return "Unreachable"
	default:
		return "Unknown"
	}
}

// Violation represents a constraint violation
type Violation struct {
	Type       ViolationType
	Severity   Severity
	NodeID     *uint64
	NodeKey    string
	Constraint string
	Message    string
	Details    map[string]any
}

// Constraint is the interface that all constraint types must implement.
type Constraint interface {
	// Validate returns the violations found, empty if the graph satisfies the constraint.
	Validate(graph GraphReader) ([]Violation, error)
	Name() string
}

func nodeViolation(c Constraint, vt ViolationType, node *storage.Node, keyProperty, msg string, details map[string]any) Violation {
	id := node.ID
	return Violation{
		Type:       vt,
		Severity:   Error,
		NodeID:     &id,
		NodeKey:    node.StringProperty(keyProperty),
		Constraint: c.Name(),
		Message:    msg,
		Details:    details,
	}
}
