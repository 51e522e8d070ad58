package materialize

import (
	"context"
	"strings"

	"github.com/dd0wney/owlgraph/pkg/ontology"
)

// Node property names.
const (
	PropKey              = "key"
	PropIRI              = "iri"
	PropName             = "name"
	PropDisplayName      = "displayName"
	PropDefinition       = "definition"
	PropSubjectFlag      = "isInSubjectFAIRsharing"
	PropAlternativeNames = "alternativeNames"
	PropSynonyms         = "synonyms"
	PropExactSynonyms    = "exactSynonyms"
	PropRelatedSynonyms  = "relatedSynonyms"
	PropBroadSynonyms    = "broadSynonyms"
)

// Node labels.
const (
	LabelClass = "Class"
	LabelRoot  = "Root"
)

// ClassRecord is the harvested lexical metadata of one class.
type ClassRecord struct {
	Key         string
	IRI         string
	Name        string
	DisplayName string
	Definition  string
	// SubjectFlag is nil only when no subject channel is configured.
	SubjectFlag      *bool
	AlternativeNames []string
	Synonyms         []string
	ExactSynonyms    []string
	RelatedSynonyms  []string
	BroadSynonyms    []string
}

// Harvest reads the class's annotations through the resolved channels, applying label,
// alternative terms, synonyms, subject and definition in that order.
func Harvest(key string, class *ontology.Class, ch Channels) ClassRecord {
	rec := ClassRecord{Key: key, IRI: string(class.IRI)}

	// Nothing outranks the label for displayName when it runs, so it always follows name.
	if ch.Label != nil {
		for _, v := range class.AnnotationValues(ch.Label.IRI) {
			rec.Name = v.Lexical()
			rec.DisplayName = rec.Name
		}
	}

	for _, c := range ch.AlternativeTerms.Channels() {
		for _, v := range class.AnnotationValues(c.IRI) {
			text := v.Lexical()
			rec.AlternativeNames = append(rec.AlternativeNames, text)
			if c.Display {
				rec.DisplayName = text
			}
		}
	}

	for _, c := range ch.Synonyms.Channels() {
		for _, v := range class.AnnotationValues(c.IRI) {
			text := v.Lexical()
			rec.Synonyms = append(rec.Synonyms, text)
			switch c.Kind {
			case SynonymExact:
				rec.ExactSynonyms = append(rec.ExactSynonyms, text)
			case SynonymRelated:
				rec.RelatedSynonyms = append(rec.RelatedSynonyms, text)
			case SynonymBroad:
				rec.BroadSynonyms = append(rec.BroadSynonyms, text)
			}
		}
	}

	if ch.SubjectConfigured {
		flag := false
		if ch.Subject != nil {
			for _, v := range class.AnnotationValues(ch.Subject.IRI) {
				if subjectMatches(v, ch.SubjectValue) {
					flag = true
				}
			}
		}
		rec.SubjectFlag = &flag
	}

	if ch.Definition != nil {
		if values := class.AnnotationValues(ch.Definition.IRI); len(values) > 0 {
			rec.Definition = values[0].Lexical()
		}
	}
	return rec
}

func subjectMatches(v ontology.AnnotationValue, want string) bool {
	if strings.EqualFold(v.Lexical(), want) {
		return true
	}
	return v.IsIRI() && strings.EqualFold(v.IRI.Fragment(), want)
}

// Write stores the record's properties on node. iri is always written, the subject flag whenever
// it was harvested, everything else only when non-empty.
func (rec ClassRecord) Write(ctx context.Context, tx Tx, node NodeHandle) error {
	set := func(name string, value any) error {
		if err := tx.SetProperty(ctx, node, name, value); err != nil {
			return &StorageError{Op: "set " + name, Key: node.Key, Cause: err}
		}
		return nil
	}

	if err := set(PropIRI, rec.IRI); err != nil {
		return err
	}
	for _, p := range []struct {
		name  string
		value string
	}{
		{PropName, rec.Name},
		{PropDisplayName, rec.DisplayName},
		{PropDefinition, rec.Definition},
	} {
		if p.value == "" {
			continue
		}
		if err := set(p.name, p.value); err != nil {
			return err
		}
	}
	if rec.SubjectFlag != nil {
		if err := set(PropSubjectFlag, *rec.SubjectFlag); err != nil {
			return err
		}
	}
	for _, p := range []struct {
		name   string
		values []string
	}{
		{PropAlternativeNames, rec.AlternativeNames},
		{PropSynonyms, rec.Synonyms},
		{PropExactSynonyms, rec.ExactSynonyms},
		{PropRelatedSynonyms, rec.RelatedSynonyms},
		{PropBroadSynonyms, rec.BroadSynonyms},
	} {
		if len(p.values) == 0 {
			continue
		}
		if err := set(p.name, p.values); err != nil {
			return err
		}
	}
	return nil
}
