package ontology

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
)

// ErrNotRDF is returned when a document has no rdf:RDF root element.
var ErrNotRDF = errors.New("document is not RDF/XML")

// xmlElement is a generic element tree; encoding/xml resolves namespace prefixes into Name.Space.
type xmlElement struct {
	XMLName  xml.Name
	Attrs    []xml.Attr   `xml:",any,attr"`
	Children []xmlElement `xml:",any"`
	Text     string       `xml:",chardata"`
}

func (e *xmlElement) iri() IRI {
	return IRI(e.XMLName.Space + e.XMLName.Local)
}

func (e *xmlElement) attr(space, local string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name.Space == space && a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}

type rdfReader struct {
	ont  *Ontology
	base string
}

// ParseRDFXML reads an RDF/XML ontology document (the OWL 2 RDF/XML serialization).
// Only named classes and individuals are modelled: anonymous class expressions, restrictions and
// axiom annotations are skipped.
func ParseRDFXML(r io.Reader, source string) (*Ontology, error) {
	var root xmlElement
	dec := xml.NewDecoder(r)
	if err := dec.Decode(&root); err != nil {
		return nil, fmt.Errorf("decode %s: %w", source, err)
	}
	if root.XMLName.Space != RDFNamespace || root.XMLName.Local != "RDF" {
		return nil, fmt.Errorf("%s: %w (root element %s)", source, ErrNotRDF, root.XMLName.Local)
	}

	rd := &rdfReader{ont: New("", source)}
	rd.base, _ = root.attr(XMLNamespace, "base")

	for i := range root.Children {
		rd.readNode(&root.Children[i])
	}
	return rd.ont, nil
}

// subject returns the IRI a node element describes, or "" for blank nodes.
func (rd *rdfReader) subject(e *xmlElement) IRI {
	if about, ok := e.attr(RDFNamespace, "about"); ok {
		return rd.resolve(about)
	}
	if id, ok := e.attr(RDFNamespace, "ID"); ok {
		return rd.resolve("#" + id)
	}
	return ""
}

func (rd *rdfReader) resolve(ref string) IRI {
	ref = strings.TrimSpace(ref)
	if rd.base == "" {
		return IRI(ref)
	}
	if u, err := url.Parse(ref); err == nil && u.IsAbs() {
		return IRI(ref)
	}
	base, err := url.Parse(rd.base)
	if err != nil {
		return IRI(ref)
	}
	rel, err := url.Parse(ref)
	if err != nil {
		return IRI(ref)
	}
	return IRI(base.ResolveReference(rel).String())
}

// types collects the node element's own type plus any rdf:type children.
func (rd *rdfReader) types(e *xmlElement) []IRI {
	var out []IRI
	if !(e.XMLName.Space == RDFNamespace && e.XMLName.Local == "Description") {
		out = append(out, e.iri())
	}
	for i := range e.Children {
		c := &e.Children[i]
		if c.XMLName.Space == RDFNamespace && c.XMLName.Local == "type" {
			if res, ok := c.attr(RDFNamespace, "resource"); ok {
				out = append(out, rd.resolve(res))
			}
		}
	}
	return out
}

func (rd *rdfReader) readNode(e *xmlElement) {
	subj := rd.subject(e)
	if subj == "" {
		return
	}

	var isClass, isIndividual bool
	var classTypes []IRI
	for _, t := range rd.types(e) {
		switch t {
		case OWLNamespace + "Ontology":
			rd.ont.IRI = subj
			return
		case OWLNamespace + "Class", RDFSNamespace + "Class":
			isClass = true
		case OWLNamespace + "AnnotationProperty":
			rd.ont.DeclareAnnotationProperty(subj)
			return
		case OWLNamespace + "ObjectProperty", OWLNamespace + "DatatypeProperty",
			RDFNamespace + "Property", OWLNamespace + "Axiom":
			return
		case OWLNamespace + "NamedIndividual":
			isIndividual = true
		default:
			classTypes = append(classTypes, t)
		}
	}

	switch {
	case isClass:
		rd.readClass(subj, e)
	case isIndividual || len(classTypes) > 0:
		rd.ont.Individual(subj)
		for _, t := range classTypes {
			rd.ont.AddClassAssertion(subj, t)
		}
	}
}

func (rd *rdfReader) readClass(subj IRI, e *xmlElement) {
	rd.ont.Class(subj)
	for i := range e.Children {
		p := &e.Children[i]
		prop := p.iri()
		switch prop {
		case RDFNamespace + "type":
			continue
		case RDFSNamespace + "subClassOf":
			if super := rd.objectIRI(p); super != "" {
				rd.ont.AddSubClassOf(subj, super)
			}
		case OWLNamespace + "equivalentClass":
			if eq := rd.objectIRI(p); eq != "" {
				rd.ont.AddEquivalent(subj, eq)
			}
		case OWLNamespace + "disjointWith":
			if other := rd.objectIRI(p); other != "" {
				rd.ont.AddDisjoint(subj, other)
			}
		default:
			if value, ok := rd.annotationValue(p); ok {
				rd.ont.AddAnnotation(subj, prop, value)
			}
		}
	}
}

// objectIRI returns the named object of a property element: rdf:resource, or a nested node
// element with rdf:about. Anonymous expressions yield "".
func (rd *rdfReader) objectIRI(p *xmlElement) IRI {
	if res, ok := p.attr(RDFNamespace, "resource"); ok {
		return rd.resolve(res)
	}
	for i := range p.Children {
		if subj := rd.subject(&p.Children[i]); subj != "" {
			return subj
		}
	}
	return ""
}

func (rd *rdfReader) annotationValue(p *xmlElement) (AnnotationValue, bool) {
	if res, ok := p.attr(RDFNamespace, "resource"); ok {
		return AnnotationValue{IRI: rd.resolve(res)}, true
	}
	if len(p.Children) > 0 {
		return AnnotationValue{}, false
	}
	v := AnnotationValue{Literal: strings.TrimSpace(p.Text)}
	if lang, ok := p.attr(XMLNamespace, "lang"); ok {
		v.Lang = lang
	}
	if dt, ok := p.attr(RDFNamespace, "datatype"); ok {
		v.Datatype = rd.resolve(dt)
	}
	return v, true
}
