package materialize

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/owlgraph/pkg/logging"
	"github.com/dd0wney/owlgraph/pkg/ontology"
)

const (
	altTerm  = ontology.IRI(obo + "IAO_0000118")
	altLabel = ontology.IRI(skos + "altLabel")
	exactSyn = ontology.IRI(oboInOwl + "hasExactSynonym")
	relSyn   = ontology.IRI(oboInOwl + "hasRelatedSynonym")
	broadSyn = ontology.IRI(oboInOwl + "hasBroadSynonym")
	plainSyn = ontology.IRI(oboInOwl + "hasSynonym")
	inSubset = ontology.IRI(oboInOwl + "inSubset")
	defn     = ontology.IRI(obo + "IAO_0000115")
)

func lit(s string) ontology.AnnotationValue { return ontology.AnnotationValue{Literal: s} }

func defaultChannels(t *testing.T, ont *ontology.Ontology) Channels {
	t.Helper()

	ch, err := ResolveChannels(ont, DefaultChannelConfig(), logging.NewNopLogger(), nil)
	require.NoError(t, err)
	return ch
}

func TestHarvestAlternativeTermWinsDisplayName(t *testing.T) {
	ont := ontology.New("urn:onto", "test.owl")
	ont.AddAnnotation(iri("X"), ontology.RDFSLabel, lit("Foo"))
	ont.AddAnnotation(iri("X"), altTerm, lit("Bar"))

	rec := Harvest("X", ont.Class(iri("X")), defaultChannels(t, ont))

	assert.Equal(t, "Foo", rec.Name)
	assert.Equal(t, "Bar", rec.DisplayName)
	assert.Equal(t, []string{"Bar"}, rec.AlternativeNames)
}

func TestHarvestLastLabelWins(t *testing.T) {
	ont := ontology.New("urn:onto", "test.owl")
	ont.AddAnnotation(iri("X"), ontology.RDFSLabel, lit("First"))
	ont.AddAnnotation(iri("X"), ontology.RDFSLabel, ontology.AnnotationValue{Literal: "Second", Lang: "en"})

	rec := Harvest("X", ont.Class(iri("X")), defaultChannels(t, ont))

	assert.Equal(t, "Second", rec.Name)
	assert.Equal(t, "Second", rec.DisplayName)
	assert.Empty(t, rec.AlternativeNames)
}

func TestHarvestNonDisplayAlternativeTermKeepsLabel(t *testing.T) {
	ont := ontology.New("urn:onto", "test.owl")
	ont.AddAnnotation(iri("X"), ontology.RDFSLabel, lit("Foo"))
	ont.AddAnnotation(iri("X"), altLabel, lit("Baz"))
	ont.AddAnnotation(iri("X"), altTerm, lit("Bar"))

	rec := Harvest("X", ont.Class(iri("X")), defaultChannels(t, ont))

	assert.Equal(t, "Bar", rec.DisplayName)
	// Registry order, not document order.
	assert.Equal(t, []string{"Bar", "Baz"}, rec.AlternativeNames)

	ont2 := ontology.New("urn:onto", "test.owl")
	ont2.AddAnnotation(iri("Y"), ontology.RDFSLabel, lit("Foo"))
	ont2.AddAnnotation(iri("Y"), altLabel, lit("Baz"))
	rec = Harvest("Y", ont2.Class(iri("Y")), defaultChannels(t, ont2))
	assert.Equal(t, "Foo", rec.DisplayName)
}

func TestHarvestSynonymKinds(t *testing.T) {
	ont := ontology.New("urn:onto", "test.owl")
	x := iri("X")
	ont.AddAnnotation(x, plainSyn, lit("generic"))
	ont.AddAnnotation(x, broadSyn, lit("broad"))
	ont.AddAnnotation(x, exactSyn, lit("exact-1"))
	ont.AddAnnotation(x, relSyn, lit("related"))
	ont.AddAnnotation(x, exactSyn, lit("exact-2"))

	rec := Harvest("X", ont.Class(x), defaultChannels(t, ont))

	assert.Equal(t, []string{"exact-1", "exact-2", "related", "broad", "generic"}, rec.Synonyms)
	assert.Equal(t, []string{"exact-1", "exact-2"}, rec.ExactSynonyms)
	assert.Equal(t, []string{"related"}, rec.RelatedSynonyms)
	assert.Equal(t, []string{"broad"}, rec.BroadSynonyms)
}

func TestHarvestSubjectFlag(t *testing.T) {
	tests := []struct {
		name   string
		values []ontology.AnnotationValue
		want   bool
	}{
		{"no annotation", nil, false},
		{"exact literal", []ontology.AnnotationValue{lit("FAIRsharing")}, true},
		{"case-insensitive", []ontology.AnnotationValue{lit("fairSHARING")}, true},
		{"other subset", []ontology.AnnotationValue{lit("slim")}, false},
		{"iri value", []ontology.AnnotationValue{{IRI: "http://example.org/subsets#FAIRsharing"}}, true},
		{"one of many", []ontology.AnnotationValue{lit("slim"), lit("FAIRsharing"), lit("other")}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ont := ontology.New("urn:onto", "test.owl")
			ont.DeclareAnnotationProperty(inSubset)
			for _, v := range tt.values {
				ont.AddAnnotation(iri("X"), inSubset, v)
			}

			rec := Harvest("X", ont.Class(iri("X")), defaultChannels(t, ont))

			require.NotNil(t, rec.SubjectFlag)
			assert.Equal(t, tt.want, *rec.SubjectFlag)
		})
	}
}

func TestHarvestSubjectFlagWithoutChannelInSource(t *testing.T) {
	ont := ontology.New("urn:onto", "test.owl")
	rec := Harvest("X", ont.Class(iri("X")), defaultChannels(t, ont))

	require.NotNil(t, rec.SubjectFlag)
	assert.False(t, *rec.SubjectFlag)

	cfg := DefaultChannelConfig()
	cfg.Subject = nil
	ch, err := ResolveChannels(ont, cfg, logging.NewNopLogger(), nil)
	require.NoError(t, err)
	assert.Nil(t, Harvest("X", ont.Class(iri("X")), ch).SubjectFlag)
}

func TestHarvestFirstDefinitionWins(t *testing.T) {
	ont := ontology.New("urn:onto", "test.owl")
	ont.AddAnnotation(iri("X"), defn, lit("first"))
	ont.AddAnnotation(iri("X"), defn, lit("second"))

	rec := Harvest("X", ont.Class(iri("X")), defaultChannels(t, ont))

	assert.Equal(t, "first", rec.Definition)
}

func TestHarvestWithoutChannels(t *testing.T) {
	ont := ontology.New("urn:onto", "test.owl")
	ont.AddAnnotation(iri("X"), ontology.RDFSLabel, lit("Foo"))

	rec := Harvest("X", ont.Class(iri("X")), Channels{})

	assert.Equal(t, ClassRecord{Key: "X", IRI: string(iri("X"))}, rec)
}

func TestClassRecordWrite(t *testing.T) {
	store := newMemStore()
	tx, err := store.Begin(context.Background())
	require.NoError(t, err)
	node, _, err := tx.GetOrCreateNode(context.Background(), "X")
	require.NoError(t, err)

	flag := false
	rec := ClassRecord{
		Key:           "X",
		IRI:           string(iri("X")),
		Name:          "Foo",
		DisplayName:   "Foo",
		SubjectFlag:   &flag,
		ExactSynonyms: []string{"F"},
		Synonyms:      []string{"F"},
	}
	require.NoError(t, rec.Write(context.Background(), tx, node))
	require.NoError(t, tx.Commit(context.Background()))

	props := store.nodes["X"].props
	assert.Equal(t, map[string]any{
		PropKey:           "X",
		PropIRI:           string(iri("X")),
		PropName:          "Foo",
		PropDisplayName:   "Foo",
		PropSubjectFlag:   false,
		PropSynonyms:      []string{"F"},
		PropExactSynonyms: []string{"F"},
	}, props)
}

func TestClassRecordWriteWrapsStoreErrors(t *testing.T) {
	store := newMemStore()
	store.failSetProperty = PropName
	tx, err := store.Begin(context.Background())
	require.NoError(t, err)
	node, _, err := tx.GetOrCreateNode(context.Background(), "X")
	require.NoError(t, err)

	err = ClassRecord{Key: "X", IRI: "urn:x", Name: "Foo"}.Write(context.Background(), tx, node)

	var se *StorageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "X", se.Key)
	assert.ErrorIs(t, err, errInjected)
}
