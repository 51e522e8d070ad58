// Package reasoner provides classification oracles over an ontology: logical consistency, direct
// superclasses and instances. Backends are selected by Kind and constructed through a registry so
// callers never switch on backend names.
package reasoner

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/dd0wney/owlgraph/pkg/ontology"
)

// Kind identifies a reasoner backend.
type Kind string

const (
	// Structural computes the told subsumption closure, collapses equivalence groups and answers
	// with the minimal strict ancestors.
	Structural Kind = "structural"
	// Told answers with asserted superclasses only.
	Told Kind = "told"
)

// ErrUnknownKind is returned when no backend is registered for a kind.
var ErrUnknownKind = errors.New("unknown reasoner kind")

// Reasoner is the classification oracle capability.
type Reasoner interface {
	// IsConsistent reports whether the ontology is logically consistent.
	IsConsistent(ctx context.Context) (bool, error)
	// DirectSuperclasses returns one representative IRI per direct superclass group.
	// owl:Thing is never returned; an empty answer means the class sits directly under the top.
	DirectSuperclasses(ctx context.Context, class ontology.IRI) ([]ontology.IRI, error)
	// Instances returns the individuals of class; direct restricts to asserted membership.
	Instances(ctx context.Context, class ontology.IRI, direct bool) ([]ontology.IRI, error)
	// Kind returns the backend kind.
	Kind() Kind
}

// Factory builds a reasoner over an ontology.
type Factory func(ont *ontology.Ontology) (Reasoner, error)

var (
	registryMu sync.RWMutex
	registry   = map[Kind]Factory{}
)

// Register makes a backend available under kind, replacing any previous registration.
func Register(kind Kind, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[kind] = factory
}

// ParseKind normalizes a backend name. Names are case-insensitive.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if k == "" {
		return Structural, nil
	}
	registryMu.RLock()
	_, ok := registry[k]
	registryMu.RUnlock()
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
	return k, nil
}

// Kinds lists the registered backends, sorted.
func Kinds() []Kind {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]Kind, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// New builds the reasoner registered for kind.
func New(kind Kind, ont *ontology.Ontology) (Reasoner, error) {
	registryMu.RLock()
	factory, ok := registry[kind]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return factory(ont)
}

func init() {
	Register(Structural, func(ont *ontology.Ontology) (Reasoner, error) { return NewStructural(ont), nil })
	Register(Told, func(ont *ontology.Ontology) (Reasoner, error) { return NewTold(ont), nil })
}

// disjointViolation reports whether a set of classes contains owl:Nothing or a disjoint pair.
func disjointViolation(ont *ontology.Ontology, members map[ontology.IRI]struct{}) bool {
	if _, ok := members[ontology.Nothing]; ok {
		return true
	}
	for iri := range members {
		c, ok := ont.LookupClass(iri)
		if !ok {
			continue
		}
		for _, other := range c.DisjointWith {
			if _, clash := members[other]; clash {
				return true
			}
		}
	}
	return false
}

func sortedIRIs(set map[ontology.IRI]struct{}) []ontology.IRI {
	out := make([]ontology.IRI, 0, len(set))
	for iri := range set {
		out = append(out, iri)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
