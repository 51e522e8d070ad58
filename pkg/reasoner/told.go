package reasoner

import (
	"context"

	"github.com/dd0wney/owlgraph/pkg/ontology"
)

// ToldReasoner answers with asserted axioms only. It performs no closure, so DirectSuperclasses may
// include a class that is also an indirect ancestor.
type ToldReasoner struct {
	ont *ontology.Ontology
}

// NewTold builds a told reasoner over ont.
func NewTold(ont *ontology.Ontology) *ToldReasoner {
	return &ToldReasoner{ont: ont}
}

// Kind returns Told.
func (r *ToldReasoner) Kind() Kind { return Told }

// DirectSuperclasses returns the asserted named superclasses of class, in document order.
func (r *ToldReasoner) DirectSuperclasses(ctx context.Context, class ontology.IRI) ([]ontology.IRI, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c, ok := r.ont.LookupClass(class)
	if !ok {
		return nil, nil
	}
	out := make([]ontology.IRI, 0, len(c.SubClassOf))
	for _, super := range c.SubClassOf {
		if !super.IsBuiltin() {
			out = append(out, super)
		}
	}
	return out, nil
}

// IsConsistent checks asserted types only.
func (r *ToldReasoner) IsConsistent(ctx context.Context) (bool, error) {
	for _, ind := range r.ont.Individuals() {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		members := make(map[ontology.IRI]struct{}, len(ind.Types))
		for _, t := range ind.Types {
			members[t] = struct{}{}
		}
		if disjointViolation(r.ont, members) {
			return false, nil
		}
	}
	return true, nil
}

// Instances returns the individuals asserted to be of class, sorted. Every individual is an
// instance of owl:Thing. direct is ignored.
func (r *ToldReasoner) Instances(ctx context.Context, class ontology.IRI, direct bool) ([]ontology.IRI, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make(map[ontology.IRI]struct{})
	for _, ind := range r.ont.Individuals() {
		if class == ontology.Thing {
			out[ind.IRI] = struct{}{}
			continue
		}
		for _, t := range ind.Types {
			if t == class {
				out[ind.IRI] = struct{}{}
			}
		}
	}
	return sortedIRIs(out), nil
}
