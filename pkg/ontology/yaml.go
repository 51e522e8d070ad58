package ontology

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// yamlDocument is the YAML interchange format. IRIs may be written as CURIEs using the
// document's prefixes (e.g. "obo:IAO_0000115").
type yamlDocument struct {
	IRI                  string            `yaml:"iri"`
	Prefixes             map[string]string `yaml:"prefixes"`
	AnnotationProperties []string          `yaml:"annotationProperties"`
	Classes              []yamlClass       `yaml:"classes"`
	Individuals          []yamlIndividual  `yaml:"individuals"`
}

type yamlClass struct {
	IRI          string           `yaml:"iri"`
	SubClassOf   []string         `yaml:"subClassOf"`
	EquivalentTo []string         `yaml:"equivalentTo"`
	DisjointWith []string         `yaml:"disjointWith"`
	Annotations  []yamlAnnotation `yaml:"annotations"`
}

type yamlAnnotation struct {
	Property string `yaml:"property"`
	Value    string `yaml:"value"`
	Lang     string `yaml:"lang"`
	IRI      string `yaml:"iri"`
}

type yamlIndividual struct {
	IRI   string   `yaml:"iri"`
	Types []string `yaml:"types"`
}

var builtinPrefixes = map[string]string{
	"owl":  OWLNamespace,
	"rdf":  RDFNamespace,
	"rdfs": RDFSNamespace,
}

// ParseYAML reads an ontology in the YAML interchange format.
func ParseYAML(r io.Reader, source string) (*Ontology, error) {
	var doc yamlDocument
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", source, err)
	}

	expand := func(s string) IRI {
		s = strings.TrimSpace(s)
		if prefix, local, ok := strings.Cut(s, ":"); ok && !strings.HasPrefix(local, "//") {
			if ns, found := doc.Prefixes[prefix]; found {
				return IRI(ns + local)
			}
			if ns, found := builtinPrefixes[prefix]; found {
				return IRI(ns + local)
			}
		}
		return IRI(s)
	}

	ont := New(expand(doc.IRI), source)
	for _, p := range doc.AnnotationProperties {
		ont.DeclareAnnotationProperty(expand(p))
	}
	for i, c := range doc.Classes {
		if c.IRI == "" {
			return nil, fmt.Errorf("%s: class #%d has no iri", source, i)
		}
		iri := expand(c.IRI)
		ont.Class(iri)
		for _, s := range c.SubClassOf {
			ont.AddSubClassOf(iri, expand(s))
		}
		for _, e := range c.EquivalentTo {
			ont.AddEquivalent(iri, expand(e))
		}
		for _, d := range c.DisjointWith {
			ont.AddDisjoint(iri, expand(d))
		}
		for _, a := range c.Annotations {
			value := AnnotationValue{Literal: a.Value, Lang: a.Lang}
			if a.IRI != "" {
				value = AnnotationValue{IRI: expand(a.IRI)}
			}
			ont.AddAnnotation(iri, expand(a.Property), value)
		}
	}
	for _, ind := range doc.Individuals {
		ont.Individual(expand(ind.IRI))
		for _, t := range ind.Types {
			ont.AddClassAssertion(expand(ind.IRI), expand(t))
		}
	}
	return ont, nil
}
