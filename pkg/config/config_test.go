package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/owlgraph/pkg/logging"
	"github.com/dd0wney/owlgraph/pkg/materialize"
	"github.com/dd0wney/owlgraph/pkg/ontology"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "owlgraph.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "owlgraph-db", cfg.Store.Dir)
	assert.False(t, cfg.Store.DisableCompression)
	assert.False(t, cfg.Store.Keep)
	assert.Equal(t, "structural", cfg.Reasoner.Kind)
	assert.Equal(t, 1, cfg.Materialize.Workers)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "owlgraph", cfg.Export.Schema)
	assert.Equal(t, "owlgraph/", cfg.Backup.Prefix)
	assert.False(t, cfg.Neo4j.Enabled())

	channels, err := cfg.Channels.ChannelConfig()
	require.NoError(t, err)
	assert.Equal(t, materialize.DefaultChannelConfig(), channels)
}

func TestLoadYAMLWithEnvOverride(t *testing.T) {
	path := writeConfig(t, `
store:
  dir: /var/lib/owlgraph
  keep: true
reasoner:
  kind: told
materialize:
  workers: 4
  category: DOMAIN
log:
  level: debug
channels:
  subject_value: Curated
  synonyms:
    - iri: http://example.org/vocab#synonym
      kind: exact
`)
	t.Setenv("OWLGRAPH_WORKERS", "8")
	t.Setenv("OWLGRAPH_NEO4J_URI", "bolt://localhost:7687")
	t.Setenv("OWLGRAPH_NEO4J_PASSWORD", "secret")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/owlgraph", cfg.Store.Dir)
	assert.True(t, cfg.Store.Keep)
	assert.Equal(t, "told", cfg.Reasoner.Kind)
	assert.Equal(t, 8, cfg.Materialize.Workers, "environment wins over YAML")
	assert.Equal(t, logging.DebugLevel, cfg.LogLevel())
	assert.True(t, cfg.Neo4j.Enabled())
	assert.Equal(t, "secret", cfg.Neo4j.Password)

	mc, err := cfg.MaterializerConfig(logging.NewNopLogger(), nil)
	require.NoError(t, err)
	assert.Equal(t, 8, mc.Workers)
	assert.Equal(t, materialize.CategoryDomain, mc.Category)
	require.NotNil(t, mc.Channels)
	assert.Equal(t, "Curated", mc.Channels.SubjectValue)
	require.Len(t, mc.Channels.Synonyms, 1)
	assert.Equal(t, materialize.ChannelSpec{
		IRI:  "http://example.org/vocab#synonym",
		Name: "synonym",
		Role: materialize.RoleSynonym,
		Kind: materialize.SynonymExact,
	}, mc.Channels.Synonyms[0])
	assert.Equal(t, materialize.DefaultChannelConfig().AlternativeTerms, mc.Channels.AlternativeTerms)
}

func TestChannelConfigWithoutDefaults(t *testing.T) {
	c := ChannelsConfig{
		NoDefaults: true,
		Label:      "http://www.w3.org/2004/02/skos/core#prefLabel",
	}

	out, err := c.ChannelConfig()
	require.NoError(t, err)

	require.NotNil(t, out.Label)
	assert.Equal(t, ontology.IRI("http://www.w3.org/2004/02/skos/core#prefLabel"), out.Label.IRI)
	assert.Empty(t, out.AlternativeTerms)
	assert.Empty(t, out.Synonyms)
	assert.Nil(t, out.Subject)
	assert.Nil(t, out.Definition)
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown reasoner", "reasoner:\n  kind: hermit\n"},
		{"zero workers", "materialize:\n  workers: -1\n"},
		{"bad category", "materialize:\n  category: ANIMALS\n"},
		{"bad log level", "log:\n  level: loud\n"},
		{"relative channel IRI", "channels:\n  label: rdfs:label extra\n"},
		{"two display channels", `
channels:
  alternative_terms:
    - iri: http://example.org/a
      display: true
    - iri: http://example.org/b
      display: true
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestValidateBackupCredentialsPair(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	cfg.Backup.AccessKeyID = "AKIA"
	assert.ErrorContains(t, cfg.Validate(), "backup.secret_access_key")

	cfg.Backup.SecretAccessKey = "shh"
	assert.NoError(t, cfg.Validate())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestUsageListsEnvironment(t *testing.T) {
	usage := Usage()
	for _, env := range []string{"OWLGRAPH_DB", "OWLGRAPH_REASONER", "OWLGRAPH_WORKERS"} {
		assert.Contains(t, usage, env)
	}
}
