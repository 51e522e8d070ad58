// Package config loads owlgraph settings from an optional YAML file with OWLGRAPH_* environment
// overrides.
package config

import (
	"fmt"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/dd0wney/owlgraph/pkg/logging"
	"github.com/dd0wney/owlgraph/pkg/materialize"
	"github.com/dd0wney/owlgraph/pkg/metrics"
	"github.com/dd0wney/owlgraph/pkg/ontology"
	"github.com/dd0wney/owlgraph/pkg/validation"
)

// Config holds all configuration for owlgraph.
// Environment variables always override YAML values. Secrets only come from the environment.
type Config struct {
	Store       StoreConfig       `yaml:"store"`
	Reasoner    ReasonerConfig    `yaml:"reasoner"`
	Materialize MaterializeConfig `yaml:"materialize"`
	Channels    ChannelsConfig    `yaml:"channels"`
	Log         LogConfig         `yaml:"log"`
	Metrics     MetricsConfig     `yaml:"metrics"`
	Neo4j       Neo4jConfig       `yaml:"neo4j"`
	Backup      BackupConfig      `yaml:"backup"`
	Export      ExportConfig      `yaml:"export"`
	Notify      NotifyConfig      `yaml:"notify"`
}

// StoreConfig configures the embedded graph store.
type StoreConfig struct {
	Dir string `yaml:"dir" env:"OWLGRAPH_DB" env-default:"owlgraph-db" validate:"required"`

	// Defaults are applied to zero values, so boolean switches default to false.
	DisableCompression bool `yaml:"disable_compression" env:"OWLGRAPH_DB_NO_COMPRESS"`

	// Keep disables the wipe of Dir before an import.
	Keep bool `yaml:"keep" env:"OWLGRAPH_DB_KEEP"`
}

// ReasonerConfig selects the classification oracle backend.
type ReasonerConfig struct {
	Kind string `yaml:"kind" env:"OWLGRAPH_REASONER" env-default:"structural" validate:"reasoner_kind"`
}

// MaterializeConfig tunes materialization passes.
type MaterializeConfig struct {
	Workers int `yaml:"workers" env:"OWLGRAPH_WORKERS" env-default:"1" validate:"min=1,max=256"`

	// Category overrides the tag derived from each source's file name.
	Category string `yaml:"category" env:"OWLGRAPH_CATEGORY" validate:"omitempty,oneof=DISCIPLINE DOMAIN SPECIES GENERIC"`

	// Verify runs the graph invariants after every committed import.
	Verify bool `yaml:"verify" env:"OWLGRAPH_VERIFY"`
}

// ChannelsConfig overrides the annotation channels. Unset fields keep the defaults unless
// NoDefaults is set.
type ChannelsConfig struct {
	NoDefaults       bool           `yaml:"no_defaults" env:"OWLGRAPH_NO_DEFAULT_CHANNELS"`
	Label            string         `yaml:"label" validate:"omitempty,abs_iri"`
	AlternativeTerms []ChannelEntry `yaml:"alternative_terms" validate:"dive"`
	Synonyms         []ChannelEntry `yaml:"synonyms" validate:"dive"`
	Subject          string         `yaml:"subject" validate:"omitempty,abs_iri"`
	SubjectValue     string         `yaml:"subject_value" env:"OWLGRAPH_SUBJECT_VALUE"`
	Definition       string         `yaml:"definition" validate:"omitempty,abs_iri"`
}

// ChannelEntry is one alternative-term or synonym channel.
type ChannelEntry struct {
	IRI     string `yaml:"iri" validate:"required,abs_iri"`
	Name    string `yaml:"name"`
	Display bool   `yaml:"display"`
	Kind    string `yaml:"kind" validate:"omitempty,oneof=exact related broad generic"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level string `yaml:"level" env:"OWLGRAPH_LOG_LEVEL" env-default:"info" validate:"oneof=debug info warn error"`
}

// MetricsConfig configures the Prometheus textfile export.
type MetricsConfig struct {
	TextfilePath string `yaml:"textfile_path" env:"OWLGRAPH_METRICS_FILE"`
}

// Neo4jConfig points imports at a Neo4j server instead of the embedded store.
type Neo4jConfig struct {
	URI      string `yaml:"uri" env:"OWLGRAPH_NEO4J_URI"`
	Username string `yaml:"username" env:"OWLGRAPH_NEO4J_USER" env-default:"neo4j"`
	Password string `yaml:"-" env:"OWLGRAPH_NEO4J_PASSWORD"` // Secret - not in YAML
	Database string `yaml:"database" env:"OWLGRAPH_NEO4J_DATABASE"`
}

// Enabled reports whether a Neo4j server is configured.
func (c Neo4jConfig) Enabled() bool {
	return c.URI != ""
}

// BackupConfig configures snapshot offload to S3.
type BackupConfig struct {
	Bucket          string `yaml:"bucket" env:"OWLGRAPH_BACKUP_BUCKET"`
	Prefix          string `yaml:"prefix" env:"OWLGRAPH_BACKUP_PREFIX" env-default:"owlgraph/"`
	Region          string `yaml:"region" env:"OWLGRAPH_BACKUP_REGION"`
	Endpoint        string `yaml:"endpoint" env:"OWLGRAPH_BACKUP_ENDPOINT"`
	UsePathStyle    bool   `yaml:"use_path_style" env:"OWLGRAPH_BACKUP_PATH_STYLE"`
	AccessKeyID     string `yaml:"-" env:"OWLGRAPH_BACKUP_ACCESS_KEY_ID"`     // Secret - not in YAML
	SecretAccessKey string `yaml:"-" env:"OWLGRAPH_BACKUP_SECRET_ACCESS_KEY"` // Secret - not in YAML
}

// ExportConfig configures the PostgreSQL export.
type ExportConfig struct {
	DSN    string `yaml:"-" env:"OWLGRAPH_PG_DSN"` // Secret - not in YAML
	Schema string `yaml:"schema" env:"OWLGRAPH_PG_SCHEMA" env-default:"owlgraph" validate:"required"`
}

// NotifyConfig configures the pass-completion publisher.
type NotifyConfig struct {
	URL string `yaml:"url" env:"OWLGRAPH_NOTIFY_URL"`
}

// Load reads path (when non-empty) and applies environment overrides, then validates.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Usage describes the environment variables Config understands.
func Usage() string {
	var b strings.Builder
	cleanenv.FUsage(&b, &Config{}, nil)()
	return b.String()
}

// Validate checks struct tags and cross-field rules.
func (c *Config) Validate() error {
	if err := validation.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	cv := validation.NewConfigValidator("config").
		When(c.Neo4j.Enabled(), func(cv *validation.ConfigValidator) {
			cv.Required("neo4j.username", c.Neo4j.Username)
		}).
		When(c.Backup.AccessKeyID != "" || c.Backup.SecretAccessKey != "", func(cv *validation.ConfigValidator) {
			cv.Required("backup.access_key_id", c.Backup.AccessKeyID)
			cv.Required("backup.secret_access_key", c.Backup.SecretAccessKey)
		}).
		Custom("channels", func() error {
			_, err := c.Channels.ChannelConfig()
			return err
		})
	if err := cv.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// MaterializerConfig returns the materializer settings for a pass.
func (c *Config) MaterializerConfig(logger logging.Logger, reg *metrics.Registry) (materialize.Config, error) {
	channels, err := c.Channels.ChannelConfig()
	if err != nil {
		return materialize.Config{}, err
	}
	return materialize.Config{
		Workers:  c.Materialize.Workers,
		Channels: &channels,
		Category: materialize.Category(c.Materialize.Category),
		Logger:   logger,
		Metrics:  reg,
	}, nil
}

// LogLevel returns the configured logging level.
func (c *Config) LogLevel() logging.Level {
	return logging.ParseLevel(c.Log.Level)
}

// ChannelConfig builds the materializer's channel configuration.
func (c ChannelsConfig) ChannelConfig() (materialize.ChannelConfig, error) {
	var out materialize.ChannelConfig
	if !c.NoDefaults {
		out = materialize.DefaultChannelConfig()
	}

	if c.Label != "" {
		out.Label = &materialize.ChannelSpec{IRI: ontology.IRI(c.Label), Name: "label", Role: materialize.RoleLabel}
	}
	if len(c.AlternativeTerms) > 0 {
		out.AlternativeTerms = entries(c.AlternativeTerms, materialize.RoleAlternativeTerm)
	}
	if len(c.Synonyms) > 0 {
		out.Synonyms = entries(c.Synonyms, materialize.RoleSynonym)
	}
	if c.Subject != "" {
		out.Subject = &materialize.ChannelSpec{IRI: ontology.IRI(c.Subject), Name: "subject", Role: materialize.RoleSubject}
	}
	if c.SubjectValue != "" {
		out.SubjectValue = c.SubjectValue
	}
	if c.Definition != "" {
		out.Definition = &materialize.ChannelSpec{IRI: ontology.IRI(c.Definition), Name: "definition", Role: materialize.RoleDefinition}
	}

	if err := out.Validate(); err != nil {
		return materialize.ChannelConfig{}, err
	}
	return out, nil
}

func entries(list []ChannelEntry, role materialize.Role) []materialize.ChannelSpec {
	out := make([]materialize.ChannelSpec, 0, len(list))
	for _, e := range list {
		out = append(out, materialize.ChannelSpec{
			IRI:     ontology.IRI(e.IRI),
			Name:    validation.DefaultOr(e.Name, ontology.IRI(e.IRI).Fragment()),
			Role:    role,
			Display: e.Display,
			Kind:    materialize.SynonymKind(e.Kind),
		})
	}
	return out
}
