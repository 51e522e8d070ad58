package constraints

import (
	"time"

	"github.com/dd0wney/owlgraph/pkg/materialize"
	"github.com/dd0wney/owlgraph/pkg/storage"
)

// ValidationResult contains the results of validating a graph against constraints
type ValidationResult struct {
	Valid      bool        // True if no violations found
	Violations []Violation // List of all violations
	CheckedAt  time.Time   // When validation was performed
}

// GetViolationsByType returns violations filtered by type
func (vr *ValidationResult) GetViolationsByType(violationType ViolationType) []Violation {
	var filtered []Violation
	for _, v := range vr.Violations {
		if v.Type == violationType {
			filtered = append(filtered, v)
		}
	}
	return filtered
}

// Validator manages a set of constraints and validates graphs against them
type Validator struct {
	constraints []Constraint
}

// NewValidator creates a validator holding constraints.
func NewValidator(constraints ...Constraint) *Validator {
	return &Validator{constraints: constraints}
}

// AddConstraint adds a constraint to the validator
func (v *Validator) AddConstraint(constraint Constraint) {
	v.constraints = append(v.constraints, constraint)
}

// GetConstraints returns all constraints in the validator
func (v *Validator) GetConstraints() []Constraint {
	return v.constraints
}

// Validate runs all constraints against the graph and returns the results
func (v *Validator) Validate(graph GraphReader) (*ValidationResult, error) {
	result := &ValidationResult{
		Valid:     true,
		CheckedAt: time.Now(),
	}

	for _, constraint := range v.constraints {
		violations, err := constraint.Validate(graph)
		if err != nil {
			return nil, err
		}
		if len(violations) > 0 {
			result.Valid = false
			result.Violations = append(result.Violations, violations...)
		}
	}

	return result, nil
}

// HierarchyConstraints returns the invariants of a materialized class graph: unique keys, at least
// one outgoing hierarchy edge per class, reachability of the root and, when checkSubject is set,
// a boolean subject flag on every class.
func HierarchyConstraints(checkSubject bool) []Constraint {
	hierarchy := []string{string(materialize.EdgeIsA), string(materialize.EdgePartOf)}
	out := []Constraint{
		&UniquePropertyConstraint{PropertyKey: materialize.PropKey},
		&CardinalityConstraint{
			NodeLabel: materialize.LabelClass,
			EdgeTypes: hierarchy,
			Direction: Outgoing,
			Min:       1,
		},
		&ReachabilityConstraint{
			NodeLabel:   materialize.LabelClass,
			RootKey:     materialize.RootKey,
			EdgeTypes:   hierarchy,
			KeyProperty: materialize.PropKey,
		},
		&PropertyConstraint{
			NodeLabel:    materialize.LabelClass,
			PropertyName: materialize.PropIRI,
			Types:        []storage.ValueType{storage.TypeString},
			Required:     true,
		},
	}
	if checkSubject {
		out = append(out, &PropertyConstraint{
			NodeLabel:    materialize.LabelClass,
			PropertyName: materialize.PropSubjectFlag,
			Types:        []storage.ValueType{storage.TypeBool},
			Required:     true,
		})
	}
	return out
}
