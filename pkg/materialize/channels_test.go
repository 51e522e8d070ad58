package materialize

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/owlgraph/pkg/logging"
	"github.com/dd0wney/owlgraph/pkg/metrics"
	"github.com/dd0wney/owlgraph/pkg/ontology"
)

type vocab map[ontology.IRI]bool

func (v vocab) HasAnnotationProperty(iri ontology.IRI) bool { return v[iri] }

func TestChannelRegistryDropsAbsentChannels(t *testing.T) {
	reg := metrics.NewRegistry()
	specs := []ChannelSpec{
		{IRI: "urn:a", Name: "a", Role: RoleSynonym, Kind: SynonymExact},
		{IRI: "urn:missing", Name: "missing", Role: RoleSynonym},
		{IRI: "urn:b", Name: "b", Role: RoleSynonym, Kind: SynonymBroad},
	}

	r := NewChannelRegistry(vocab{"urn:a": true, "urn:b": true}, specs, logging.NewNopLogger(), reg)

	require.Equal(t, 2, r.Len())
	assert.Equal(t, ontology.IRI("urn:a"), r.Channels()[0].IRI)
	assert.Equal(t, ontology.IRI("urn:b"), r.Channels()[1].IRI)
	_, ok := r.Lookup("urn:missing")
	assert.False(t, ok)
	b, ok := r.Lookup("urn:b")
	require.True(t, ok)
	assert.Equal(t, SynonymBroad, b.Kind)

	assert.Equal(t, 1.0, testutil.ToFloat64(reg.AnnotationChannelsAbsent.WithLabelValues("missing")))
}

func TestChannelRegistryIsIdempotent(t *testing.T) {
	specs := []ChannelSpec{{IRI: "urn:a"}, {IRI: "urn:a", Display: true}}
	v := vocab{"urn:a": true}

	first := NewChannelRegistry(v, specs, logging.NewNopLogger(), nil)
	second := NewChannelRegistry(v, specs, logging.NewNopLogger(), nil)

	assert.Equal(t, first.Channels(), second.Channels())
	require.Equal(t, 1, first.Len())
	assert.False(t, first.Channels()[0].Display, "first spec for an IRI wins")
}

func TestNilChannelRegistry(t *testing.T) {
	var r *ChannelRegistry
	assert.Zero(t, r.Len())
	assert.Empty(t, r.Channels())
	_, ok := r.Lookup("urn:a")
	assert.False(t, ok)
}

func TestResolveChannelsDefaults(t *testing.T) {
	ont := ontology.New("urn:onto", "test.owl")
	ont.DeclareAnnotationProperty(obo + "IAO_0000118")
	ont.DeclareAnnotationProperty(oboInOwl + "hasExactSynonym")

	ch, err := ResolveChannels(ont, DefaultChannelConfig(), logging.NewNopLogger(), nil)
	require.NoError(t, err)

	require.NotNil(t, ch.Label, "rdfs:label is always part of the vocabulary")
	assert.Equal(t, ontology.RDFSLabel, ch.Label.IRI)
	require.Equal(t, 1, ch.AlternativeTerms.Len())
	assert.True(t, ch.AlternativeTerms.Channels()[0].Display)
	require.Equal(t, 1, ch.Synonyms.Len())
	assert.Equal(t, SynonymExact, ch.Synonyms.Channels()[0].Kind)

	assert.Nil(t, ch.Subject)
	assert.True(t, ch.SubjectConfigured)
	assert.Equal(t, "FAIRsharing", ch.SubjectValue)
	assert.Nil(t, ch.Definition)
}

func TestResolveChannelsDefaultsRolesAndKinds(t *testing.T) {
	cfg := ChannelConfig{
		Synonyms:         []ChannelSpec{{IRI: "urn:syn"}},
		AlternativeTerms: []ChannelSpec{{IRI: "urn:alt"}},
	}
	ch, err := ResolveChannels(vocab{"urn:syn": true, "urn:alt": true}, cfg, logging.NewNopLogger(), nil)
	require.NoError(t, err)

	syn := ch.Synonyms.Channels()[0]
	assert.Equal(t, RoleSynonym, syn.Role)
	assert.Equal(t, SynonymGeneric, syn.Kind)
	assert.Equal(t, RoleAlternativeTerm, ch.AlternativeTerms.Channels()[0].Role)
	assert.False(t, ch.SubjectConfigured)
	assert.Nil(t, ch.Label)
}

func TestChannelConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  ChannelConfig
	}{
		{"two display channels", ChannelConfig{AlternativeTerms: []ChannelSpec{
			{IRI: "urn:a", Display: true}, {IRI: "urn:b", Display: true},
		}}},
		{"unknown synonym kind", ChannelConfig{Synonyms: []ChannelSpec{{IRI: "urn:a", Kind: "narrow"}}}},
		{"subject without value", ChannelConfig{Subject: &ChannelSpec{IRI: "urn:s"}}},
		{"label without IRI", ChannelConfig{Label: &ChannelSpec{}}},
		{"wrong role", ChannelConfig{Definition: &ChannelSpec{IRI: "urn:d", Role: RoleLabel}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			assert.ErrorIs(t, err, ErrInvalidChannels)

			_, err = ResolveChannels(vocab{}, tt.cfg, logging.NewNopLogger(), nil)
			assert.ErrorIs(t, err, ErrInvalidChannels)
		})
	}

	assert.NoError(t, DefaultChannelConfig().Validate())
}
