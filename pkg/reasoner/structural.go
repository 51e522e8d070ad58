package reasoner

import (
	"context"
	"sync"

	"github.com/dd0wney/owlgraph/pkg/ontology"
)

// StructuralReasoner answers from the told class graph: subClassOf and equivalentClass axioms between
// named classes. Classes on a subsumption cycle are equivalent and form one group whose
// representative is the smallest IRI.
//
// Ancestor sets are computed lazily and cached; the reasoner is safe for concurrent use.
type StructuralReasoner struct {
	ont   *ontology.Ontology
	edges map[ontology.IRI][]ontology.IRI

	mu    sync.RWMutex
	reach map[ontology.IRI]map[ontology.IRI]struct{}
}

// NewStructural builds a structural reasoner over ont.
func NewStructural(ont *ontology.Ontology) *StructuralReasoner {
	edges := make(map[ontology.IRI][]ontology.IRI)
	for _, c := range ont.Classes() {
		for _, super := range c.SubClassOf {
			if super != ontology.Thing {
				edges[c.IRI] = append(edges[c.IRI], super)
			}
		}
		edges[c.IRI] = append(edges[c.IRI], c.Equivalent...)
	}
	return &StructuralReasoner{
		ont:   ont,
		edges: edges,
		reach: make(map[ontology.IRI]map[ontology.IRI]struct{}),
	}
}

// Kind returns Structural.
func (r *StructuralReasoner) Kind() Kind { return Structural }

// reachable returns every class reachable from c over told edges. c itself is included only when
// it lies on a cycle.
func (r *StructuralReasoner) reachable(c ontology.IRI) map[ontology.IRI]struct{} {
	r.mu.RLock()
	set, ok := r.reach[c]
	r.mu.RUnlock()
	if ok {
		return set
	}

	set = make(map[ontology.IRI]struct{})
	stack := append([]ontology.IRI(nil), r.edges[c]...)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, seen := set[n]; seen {
			continue
		}
		set[n] = struct{}{}
		stack = append(stack, r.edges[n]...)
	}

	r.mu.Lock()
	r.reach[c] = set
	r.mu.Unlock()
	return set
}

// equivalent reports whether a and b are in the same group.
func (r *StructuralReasoner) equivalent(a, b ontology.IRI) bool {
	if a == b {
		return true
	}
	_, ab := r.reachable(a)[b]
	_, ba := r.reachable(b)[a]
	return ab && ba
}

// DirectSuperclasses returns the minimal strict ancestors of class, one representative per group.
func (r *StructuralReasoner) DirectSuperclasses(ctx context.Context, class ontology.IRI) ([]ontology.IRI, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reach := r.reachable(class)
	strict := make([]ontology.IRI, 0, len(reach))
	for a := range reach {
		if a.IsBuiltin() || r.equivalent(class, a) {
			continue
		}
		strict = append(strict, a)
	}

	groups := make(map[ontology.IRI]ontology.IRI) // member -> representative
	for _, x := range strict {
		minimal := true
		for _, y := range strict {
			if x == y || r.equivalent(x, y) {
				continue
			}
			if _, below := r.reachable(y)[x]; below {
				minimal = false
				break
			}
		}
		if !minimal {
			continue
		}
		rep := x
		for _, y := range strict {
			if y < rep && r.equivalent(x, y) {
				rep = y
			}
		}
		groups[x] = rep
	}

	reps := make(map[ontology.IRI]struct{}, len(groups))
	for _, rep := range groups {
		reps[rep] = struct{}{}
	}
	return sortedIRIs(reps), nil
}

// memberships returns every class an individual belongs to through its asserted types.
func (r *StructuralReasoner) memberships(ind *ontology.Individual) map[ontology.IRI]struct{} {
	members := make(map[ontology.IRI]struct{})
	for _, t := range ind.Types {
		members[t] = struct{}{}
		for a := range r.reachable(t) {
			members[a] = struct{}{}
		}
	}
	return members
}

// IsConsistent reports false when some individual falls into owl:Nothing or into two disjoint classes.
func (r *StructuralReasoner) IsConsistent(ctx context.Context) (bool, error) {
	for _, ind := range r.ont.Individuals() {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		if disjointViolation(r.ont, r.memberships(ind)) {
			return false, nil
		}
	}
	return true, nil
}

// Instances returns the individuals of class, sorted. Every individual is an instance of owl:Thing;
// its direct instances are the individuals with no named type.
func (r *StructuralReasoner) Instances(ctx context.Context, class ontology.IRI, direct bool) ([]ontology.IRI, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make(map[ontology.IRI]struct{})
	for _, ind := range r.ont.Individuals() {
		if class == ontology.Thing {
			if !direct || len(ind.Types) == 0 {
				out[ind.IRI] = struct{}{}
			}
			continue
		}
		if direct {
			for _, t := range ind.Types {
				if r.equivalent(t, class) {
					out[ind.IRI] = struct{}{}
					break
				}
			}
			continue
		}
		if _, ok := r.memberships(ind)[class]; ok {
			out[ind.IRI] = struct{}{}
		}
	}
	return sortedIRIs(out), nil
}
