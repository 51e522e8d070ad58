package materialize

import (
	"fmt"

	"github.com/dd0wney/owlgraph/pkg/logging"
	"github.com/dd0wney/owlgraph/pkg/metrics"
	"github.com/dd0wney/owlgraph/pkg/ontology"
)

// Role is what a channel contributes to.
type Role string

const (
	RoleLabel           Role = "label"
	RoleAlternativeTerm Role = "alternative-term"
	RoleSynonym         Role = "synonym"
	RoleSubject         Role = "subject"
	RoleDefinition      Role = "definition"
)

// SynonymKind selects the specific synonym list a synonym channel also feeds.
type SynonymKind string

const (
	SynonymExact   SynonymKind = "exact"
	SynonymRelated SynonymKind = "related"
	SynonymBroad   SynonymKind = "broad"
	// SynonymGeneric feeds only the generic synonyms list.
	SynonymGeneric SynonymKind = "generic"
)

// ChannelSpec describes one candidate annotation property.
type ChannelSpec struct {
	IRI  ontology.IRI
	Name string // short name used in logs and metrics
	Role Role
	// Display marks the alternative-term channel that overrides displayName.
	Display bool
	// Kind applies to synonym channels.
	Kind SynonymKind
}

// Channel is a spec the current source declares.
type Channel struct {
	ChannelSpec
}

// Vocabulary reports which annotation properties a source declares or uses.
type Vocabulary interface {
	HasAnnotationProperty(iri ontology.IRI) bool
}

// ChannelRegistry holds the channels of one role that a source declares, in configured order.
type ChannelRegistry struct {
	channels []Channel
	byIRI    map[ontology.IRI]int
}

// NewChannelRegistry keeps each spec whose IRI vocab declares, preserving order. Absent specs are
// dropped and logged at debug level; the first spec for an IRI wins.
func NewChannelRegistry(vocab Vocabulary, specs []ChannelSpec, logger logging.Logger, reg *metrics.Registry) *ChannelRegistry {
	r := &ChannelRegistry{byIRI: make(map[ontology.IRI]int, len(specs))}
	for _, spec := range specs {
		if _, dup := r.byIRI[spec.IRI]; dup {
			continue
		}
		if !vocab.HasAnnotationProperty(spec.IRI) {
			logger.Debug("annotation channel skipped",
				logging.Channel(string(spec.IRI)),
				logging.String("role", string(spec.Role)),
				logging.Error(fmt.Errorf("%w: %s", ErrChannelNotFound, spec.IRI)))
			if reg != nil {
				reg.RecordAbsentChannel(spec.Name)
			}
			continue
		}
		r.byIRI[spec.IRI] = len(r.channels)
		r.channels = append(r.channels, Channel{ChannelSpec: spec})
	}
	return r
}

// Channels returns the registered channels in order.
func (r *ChannelRegistry) Channels() []Channel {
	if r == nil {
		return nil
	}
	return r.channels
}

// Lookup returns the channel registered for iri.
func (r *ChannelRegistry) Lookup(iri ontology.IRI) (Channel, bool) {
	if r == nil {
		return Channel{}, false
	}
	i, ok := r.byIRI[iri]
	if !ok {
		return Channel{}, false
	}
	return r.channels[i], true
}

// Len returns the number of registered channels.
func (r *ChannelRegistry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.channels)
}

// ChannelConfig is the set of candidate channels for every role.
type ChannelConfig struct {
	Label            *ChannelSpec
	AlternativeTerms []ChannelSpec
	Synonyms         []ChannelSpec
	Subject          *ChannelSpec
	// SubjectValue is the recognized subject literal, compared case-insensitively.
	SubjectValue string
	Definition   *ChannelSpec
}

// Channels is the resolved channel set of one pass.
type Channels struct {
	Label            *Channel
	AlternativeTerms *ChannelRegistry
	Synonyms         *ChannelRegistry
	Subject          *Channel
	SubjectValue     string
	// SubjectConfigured is true when a subject channel was configured, present or not; the
	// subject flag is then written on every class.
	SubjectConfigured bool
	Definition        *Channel
}

const (
	oboInOwl = "http://www.geneontology.org/formats/oboInOwl#"
	obo      = "http://purl.obolibrary.org/obo/"
	skos     = "http://www.w3.org/2004/02/skos/core#"
	efo      = "http://www.ebi.ac.uk/efo/"
)

// DefaultChannelConfig returns the channels used for FAIRsharing-style ontologies.
func DefaultChannelConfig() ChannelConfig {
	return ChannelConfig{
		Label: &ChannelSpec{IRI: ontology.RDFSLabel, Name: "label", Role: RoleLabel},
		AlternativeTerms: []ChannelSpec{
			{IRI: obo + "IAO_0000118", Name: "alternativeTerm", Role: RoleAlternativeTerm, Display: true},
			{IRI: skos + "altLabel", Name: "altLabel", Role: RoleAlternativeTerm},
			{IRI: efo + "alternative_term", Name: "efoAlternativeTerm", Role: RoleAlternativeTerm},
		},
		Synonyms: []ChannelSpec{
			{IRI: oboInOwl + "hasExactSynonym", Name: "exactSynonym", Role: RoleSynonym, Kind: SynonymExact},
			{IRI: oboInOwl + "hasRelatedSynonym", Name: "relatedSynonym", Role: RoleSynonym, Kind: SynonymRelated},
			{IRI: oboInOwl + "hasBroadSynonym", Name: "broadSynonym", Role: RoleSynonym, Kind: SynonymBroad},
			{IRI: oboInOwl + "hasNarrowSynonym", Name: "narrowSynonym", Role: RoleSynonym, Kind: SynonymGeneric},
			{IRI: oboInOwl + "hasSynonym", Name: "synonym", Role: RoleSynonym, Kind: SynonymGeneric},
		},
		Subject:      &ChannelSpec{IRI: oboInOwl + "inSubset", Name: "subject", Role: RoleSubject},
		SubjectValue: "FAIRsharing",
		Definition:   &ChannelSpec{IRI: obo + "IAO_0000115", Name: "definition", Role: RoleDefinition},
	}
}

// Validate checks roles, synonym kinds and that at most one alternative-term channel is the display one.
func (c ChannelConfig) Validate() error {
	check := func(spec *ChannelSpec, role Role) error {
		if spec == nil {
			return nil
		}
		if spec.IRI == "" {
			return fmt.Errorf("%w: %s channel without IRI", ErrInvalidChannels, role)
		}
		if spec.Role != "" && spec.Role != role {
			return fmt.Errorf("%w: %s configured as %s", ErrInvalidChannels, spec.IRI, role)
		}
		return nil
	}
	if err := check(c.Label, RoleLabel); err != nil {
		return err
	}
	if err := check(c.Subject, RoleSubject); err != nil {
		return err
	}
	if err := check(c.Definition, RoleDefinition); err != nil {
		return err
	}
	if c.Subject != nil && c.SubjectValue == "" {
		return fmt.Errorf("%w: subject channel without a recognized value", ErrInvalidChannels)
	}

	displays := 0
	for i := range c.AlternativeTerms {
		if err := check(&c.AlternativeTerms[i], RoleAlternativeTerm); err != nil {
			return err
		}
		if c.AlternativeTerms[i].Display {
			displays++
		}
	}
	if displays > 1 {
		return fmt.Errorf("%w: %d display alternative-term channels, want at most one", ErrInvalidChannels, displays)
	}
	for i := range c.Synonyms {
		spec := &c.Synonyms[i]
		if err := check(spec, RoleSynonym); err != nil {
			return err
		}
		switch spec.Kind {
		case "", SynonymExact, SynonymRelated, SynonymBroad, SynonymGeneric:
		default:
			return fmt.Errorf("%w: unknown synonym kind %q for %s", ErrInvalidChannels, spec.Kind, spec.IRI)
		}
	}
	return nil
}

// ResolveChannels resolves cfg against the source vocabulary once for a pass.
func ResolveChannels(vocab Vocabulary, cfg ChannelConfig, logger logging.Logger, reg *metrics.Registry) (Channels, error) {
	if err := cfg.Validate(); err != nil {
		return Channels{}, err
	}

	single := func(spec *ChannelSpec, role Role) *Channel {
		if spec == nil {
			return nil
		}
		s := *spec
		s.Role = role
		r := NewChannelRegistry(vocab, []ChannelSpec{s}, logger, reg)
		if r.Len() == 0 {
			return nil
		}
		ch := r.Channels()[0]
		return &ch
	}
	withRole := func(specs []ChannelSpec, role Role) []ChannelSpec {
		out := make([]ChannelSpec, len(specs))
		for i, s := range specs {
			s.Role = role
			if role == RoleSynonym && s.Kind == "" {
				s.Kind = SynonymGeneric
			}
			out[i] = s
		}
		return out
	}

	return Channels{
		Label:             single(cfg.Label, RoleLabel),
		AlternativeTerms:  NewChannelRegistry(vocab, withRole(cfg.AlternativeTerms, RoleAlternativeTerm), logger, reg),
		Synonyms:          NewChannelRegistry(vocab, withRole(cfg.Synonyms, RoleSynonym), logger, reg),
		Subject:           single(cfg.Subject, RoleSubject),
		SubjectValue:      cfg.SubjectValue,
		SubjectConfigured: cfg.Subject != nil,
		Definition:        single(cfg.Definition, RoleDefinition),
	}, nil
}
