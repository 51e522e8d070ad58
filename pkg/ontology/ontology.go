// Package ontology holds the in-memory model of an OWL ontology document: named classes with their
// told axioms, annotation properties, annotations and individuals. Loaders for RDF/XML and YAML
// documents populate it; the reasoner and materialize packages only read it.
package ontology

import (
	"sort"
	"strings"
)

// IRI is a global identifier.
type IRI string

// Well-known vocabulary IRIs.
const (
	OWLNamespace  = "http://www.w3.org/2002/07/owl#"
	RDFNamespace  = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	RDFSNamespace = "http://www.w3.org/2000/01/rdf-schema#"
	XMLNamespace  = "http://www.w3.org/XML/1998/namespace"

	Thing   IRI = OWLNamespace + "Thing"
	Nothing IRI = OWLNamespace + "Nothing"

	RDFSLabel   IRI = RDFSNamespace + "label"
	RDFSComment IRI = RDFSNamespace + "comment"
)

// String returns the IRI text.
func (i IRI) String() string { return string(i) }

// IsBuiltin reports whether the IRI is owl:Thing or owl:Nothing.
func (i IRI) IsBuiltin() bool { return i == Thing || i == Nothing }

// Fragment returns the part after the last '#' or, failing that, the last '/'.
// An IRI without either separator is returned unchanged.
func (i IRI) Fragment() string {
	s := string(i)
	if idx := strings.LastIndex(s, "#"); idx >= 0 {
		return s[idx+1:]
	}
	if idx := strings.LastIndex(s, "/"); idx >= 0 {
		return s[idx+1:]
	}
	return s
}

// AnnotationValue is either a literal (with optional language tag and datatype) or an IRI.
type AnnotationValue struct {
	Literal  string
	Lang     string
	Datatype IRI
	IRI      IRI
}

// IsIRI reports whether the value is an IRI reference rather than a literal.
func (v AnnotationValue) IsIRI() bool { return v.IRI != "" }

// Lexical returns the literal text, or the IRI text for IRI values.
func (v AnnotationValue) Lexical() string {
	if v.IsIRI() {
		return string(v.IRI)
	}
	return v.Literal
}

// Annotation attaches a value to an entity through an annotation property.
type Annotation struct {
	Property IRI
	Value    AnnotationValue
}

// Class is a named class with its told (asserted) axioms.
type Class struct {
	IRI          IRI
	SubClassOf   []IRI
	Equivalent   []IRI
	DisjointWith []IRI
	Annotations  []Annotation
}

// Individual is a named individual with its asserted types.
type Individual struct {
	IRI   IRI
	Types []IRI
}

// Ontology is a parsed ontology document.
type Ontology struct {
	IRI    IRI
	Source string

	classes              map[IRI]*Class
	classOrder           []IRI
	individuals          map[IRI]*Individual
	individualOrder      []IRI
	annotationProperties map[IRI]struct{}
}

// New returns an empty ontology.
func New(iri IRI, source string) *Ontology {
	return &Ontology{
		IRI:                  iri,
		Source:               source,
		classes:              make(map[IRI]*Class),
		individuals:          make(map[IRI]*Individual),
		annotationProperties: make(map[IRI]struct{}),
	}
}

// Class returns the class with the given IRI, creating it when absent.
// Builtins are returned as detached values and never enter the signature.
func (o *Ontology) Class(iri IRI) *Class {
	if c, ok := o.classes[iri]; ok {
		return c
	}
	c := &Class{IRI: iri}
	if iri.IsBuiltin() {
		return c
	}
	o.classes[iri] = c
	o.classOrder = append(o.classOrder, iri)
	return c
}

// LookupClass returns the class with the given IRI if it is in the signature.
func (o *Ontology) LookupClass(iri IRI) (*Class, bool) {
	c, ok := o.classes[iri]
	return c, ok
}

// Individual returns the individual with the given IRI, creating it when absent.
func (o *Ontology) Individual(iri IRI) *Individual {
	if ind, ok := o.individuals[iri]; ok {
		return ind
	}
	ind := &Individual{IRI: iri}
	o.individuals[iri] = ind
	o.individualOrder = append(o.individualOrder, iri)
	return ind
}

// DeclareAnnotationProperty adds an annotation property to the vocabulary.
func (o *Ontology) DeclareAnnotationProperty(iri IRI) {
	o.annotationProperties[iri] = struct{}{}
}

// AddSubClassOf records sub ⊑ super. Both classes enter the signature.
func (o *Ontology) AddSubClassOf(sub, super IRI) {
	c := o.Class(sub)
	o.Class(super)
	c.SubClassOf = appendUnique(c.SubClassOf, super)
}

// AddEquivalent records a ≡ b on both classes.
func (o *Ontology) AddEquivalent(a, b IRI) {
	ca, cb := o.Class(a), o.Class(b)
	ca.Equivalent = appendUnique(ca.Equivalent, b)
	cb.Equivalent = appendUnique(cb.Equivalent, a)
}

// AddDisjoint records that a and b share no instances, on both classes.
func (o *Ontology) AddDisjoint(a, b IRI) {
	ca, cb := o.Class(a), o.Class(b)
	ca.DisjointWith = appendUnique(ca.DisjointWith, b)
	cb.DisjointWith = appendUnique(cb.DisjointWith, a)
}

// AddAnnotation attaches an annotation to a class. The property is counted as used vocabulary.
func (o *Ontology) AddAnnotation(class IRI, prop IRI, value AnnotationValue) {
	c := o.Class(class)
	c.Annotations = append(c.Annotations, Annotation{Property: prop, Value: value})
	o.annotationProperties[prop] = struct{}{}
}

// AddClassAssertion records that the individual is an instance of class.
func (o *Ontology) AddClassAssertion(individual, class IRI) {
	ind := o.Individual(individual)
	o.Class(class)
	ind.Types = appendUnique(ind.Types, class)
}

// Classes returns the named classes in the signature, in document order.
// owl:Thing and owl:Nothing are never included.
func (o *Ontology) Classes() []*Class {
	out := make([]*Class, 0, len(o.classOrder))
	for _, iri := range o.classOrder {
		out = append(out, o.classes[iri])
	}
	return out
}

// Individuals returns the named individuals, in document order.
func (o *Ontology) Individuals() []*Individual {
	out := make([]*Individual, 0, len(o.individualOrder))
	for _, iri := range o.individualOrder {
		out = append(out, o.individuals[iri])
	}
	return out
}

// HasAnnotationProperty reports whether the property is declared or used in the document.
// rdfs:label and rdfs:comment are always part of the vocabulary.
func (o *Ontology) HasAnnotationProperty(iri IRI) bool {
	if iri == RDFSLabel || iri == RDFSComment {
		return true
	}
	_, ok := o.annotationProperties[iri]
	return ok
}

// AnnotationProperties returns the vocabulary, sorted.
func (o *Ontology) AnnotationProperties() []IRI {
	out := make([]IRI, 0, len(o.annotationProperties))
	for iri := range o.annotationProperties {
		out = append(out, iri)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// AnnotationValues returns the values of prop on the class, in document order.
func (c *Class) AnnotationValues(prop IRI) []AnnotationValue {
	var out []AnnotationValue
	for _, a := range c.Annotations {
		if a.Property == prop {
			out = append(out, a.Value)
		}
	}
	return out
}

func appendUnique(list []IRI, iri IRI) []IRI {
	for _, existing := range list {
		if existing == iri {
			return list
		}
	}
	return append(list, iri)
}
