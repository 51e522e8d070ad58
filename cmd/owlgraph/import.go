package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dd0wney/owlgraph/pkg/constraints"
	"github.com/dd0wney/owlgraph/pkg/logging"
	"github.com/dd0wney/owlgraph/pkg/materialize"
	"github.com/dd0wney/owlgraph/pkg/neo4jstore"
	"github.com/dd0wney/owlgraph/pkg/notify"
	"github.com/dd0wney/owlgraph/pkg/ontology"
	"github.com/dd0wney/owlgraph/pkg/reasoner"
	"github.com/dd0wney/owlgraph/pkg/storage"
)

type importOptions struct {
	sources     []string
	reasoner    string
	workers     int
	category    string
	keep        bool
	verify      bool
	metricsFile string
	notifyURL   string
	neo4jURI    string
}

func newImportCommand(a *app) *cobra.Command {
	opts := &importOptions{}
	cmd := &cobra.Command{
		Use:   "import [paths...]",
		Short: "Materialize one or more ontologies into the store",
		Long: `Runs one materialization pass per source. Each pass is tagged with a category derived
from the file name and either commits completely or leaves no trace. Failing sources
do not stop later ones; the command exits non-zero if any source failed.

The embedded store directory is wiped first unless --keep is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.sources = append(opts.sources, args...)
			return runImport(cmd, a, opts)
		},
	}

	f := cmd.Flags()
	f.StringArrayVarP(&opts.sources, "ontology", "o", nil, "Ontology file (repeatable)")
	f.StringVar(&opts.reasoner, "reasoner", "", "Reasoner backend (overrides reasoner.kind)")
	f.IntVar(&opts.workers, "workers", 0, "Concurrent class workers per pass (overrides materialize.workers)")
	f.StringVar(&opts.category, "category", "", "Category label for every pass instead of the derived one")
	f.BoolVar(&opts.keep, "keep", false, "Keep existing store contents")
	f.BoolVar(&opts.verify, "verify", false, "Check graph invariants after the import")
	f.StringVar(&opts.metricsFile, "metrics-file", "", "Write Prometheus metrics to this textfile")
	f.StringVar(&opts.notifyURL, "notify", "", "Publish pass events on this nanomsg URL, e.g. tcp://127.0.0.1:7450")
	f.StringVar(&opts.neo4jURI, "neo4j-uri", "", "Write to a Neo4j server instead of the embedded store")
	return cmd
}

// apply folds flag values into the loaded configuration.
func (o *importOptions) apply(cmd *cobra.Command, a *app) error {
	cfg := a.cfg
	if o.reasoner != "" {
		cfg.Reasoner.Kind = o.reasoner
	}
	if o.workers != 0 {
		cfg.Materialize.Workers = o.workers
	}
	if o.category != "" {
		cfg.Materialize.Category = o.category
	}
	if cmd.Flags().Changed("keep") {
		cfg.Store.Keep = o.keep
	}
	if cmd.Flags().Changed("verify") {
		cfg.Materialize.Verify = o.verify
	}
	if o.metricsFile != "" {
		cfg.Metrics.TextfilePath = o.metricsFile
	}
	if o.notifyURL != "" {
		cfg.Notify.URL = o.notifyURL
	}
	if o.neo4jURI != "" {
		cfg.Neo4j.URI = o.neo4jURI
	}
	return cfg.Validate()
}

// importTarget is the store a run writes to, with the hooks that differ between backends.
type importTarget struct {
	store    materialize.Store
	embedded *storage.GraphStorage
	close    func() error
}

func openTarget(ctx context.Context, a *app) (*importTarget, error) {
	cfg := a.cfg
	if cfg.Neo4j.Enabled() {
		s, err := neo4jstore.Open(ctx, neo4jstore.Config{
			URI:      cfg.Neo4j.URI,
			Username: cfg.Neo4j.Username,
			Password: cfg.Neo4j.Password,
			Database: cfg.Neo4j.Database,
		}, a.logger)
		if err != nil {
			return nil, err
		}
		if !cfg.Store.Keep {
			if err := s.Wipe(ctx); err != nil {
				s.Close(ctx)
				return nil, err
			}
		}
		if err := s.EnsureSchema(ctx); err != nil {
			s.Close(ctx)
			return nil, err
		}
		return &importTarget{store: s, close: func() error { return s.Close(context.WithoutCancel(ctx)) }}, nil
	}

	if !cfg.Store.Keep {
		if err := os.RemoveAll(cfg.Store.Dir); err != nil {
			return nil, fmt.Errorf("failed to wipe %s: %w", cfg.Store.Dir, err)
		}
		a.logger.Info("store wiped", logging.Path(cfg.Store.Dir))
	}
	gs, err := a.openStore(false)
	if err != nil {
		return nil, err
	}
	return &importTarget{store: materialize.NewEmbeddedStore(gs), embedded: gs, close: gs.Close}, nil
}

func runImport(cmd *cobra.Command, a *app, opts *importOptions) error {
	if len(opts.sources) == 0 {
		return errors.New("no ontology sources given")
	}
	if err := opts.apply(cmd, a); err != nil {
		return err
	}
	ctx := cmd.Context()
	cfg := a.cfg

	kind, err := reasoner.ParseKind(cfg.Reasoner.Kind)
	if err != nil {
		return err
	}
	mcfg, err := cfg.MaterializerConfig(a.logger, a.metrics)
	if err != nil {
		return err
	}

	var publisher *notify.Publisher
	if cfg.Notify.URL != "" {
		publisher, err = notify.NewPublisher(cfg.Notify.URL, a.logger)
		if err != nil {
			return err
		}
		defer publisher.Close()
	}

	target, err := openTarget(ctx, a)
	if err != nil {
		return err
	}
	defer func() {
		if err := target.close(); err != nil {
			a.logger.Warn("failed to close store", logging.Error(err))
		}
	}()

	m := materialize.NewMaterializer(target.store, mcfg)
	failed := 0
	for _, path := range opts.sources {
		res, err := importSource(ctx, m, kind, mcfg.Category, path)
		if err != nil {
			failed++
			a.logger.Error("source failed",
				logging.Source(path),
				logging.Step(string(materialize.FailedStep(err))),
				logging.Error(err))
			fmt.Fprintf(a.stdout, "FAIL\t%s\t%v\n", path, err)
		} else {
			fmt.Fprintf(a.stdout, "OK\t%s\t%s\tclasses=%d nodes=%d is_a=%d part_of=%d individuals=%d\n",
				path, res.Category, res.Classes, res.NodesCreated,
				res.Edges[materialize.EdgeIsA], res.Edges[materialize.EdgePartOf], res.Individuals)
		}
		if publisher != nil {
			if perr := publisher.Publish(notify.EventFromResult(res, err)); perr != nil {
				a.logger.Warn("failed to publish pass event", logging.Source(path), logging.Error(perr))
			}
		}
	}

	var verifyErr error
	if gs := target.embedded; gs != nil {
		if err := gs.Snapshot(); err != nil {
			return err
		}
		stats := gs.GetStatistics()
		a.metrics.UpdateStorageTotals(stats.NodeCount, stats.EdgeCount)

		if cfg.Materialize.Verify {
			if verifyErr = verifyGraph(a, gs); verifyErr != nil {
				a.logger.Error("verification failed", logging.Error(verifyErr))
			}
		}
	} else if cfg.Materialize.Verify {
		a.logger.Warn("verification is only available for the embedded store")
	}

	if path := cfg.Metrics.TextfilePath; path != "" {
		if err := a.metrics.WriteTextfile(path); err != nil {
			a.logger.Warn("failed to write metrics textfile", logging.Path(path), logging.Error(err))
		}
	}

	var sourcesErr error
	if failed > 0 {
		sourcesErr = fmt.Errorf("%d of %d sources failed", failed, len(opts.sources))
	}
	return errors.Join(sourcesErr, verifyErr)
}

// importSource loads, classifies and materializes one document. Load and reasoner errors carry
// the source path but no pass step.
func importSource(ctx context.Context, m *materialize.Materializer, kind reasoner.Kind, category materialize.Category, path string) (materialize.Result, error) {
	if category == "" {
		category = materialize.Classify(path)
	}
	res := materialize.Result{Source: path, Category: category}
	ont, err := ontology.Load(path)
	if err != nil {
		return res, err
	}
	r, err := reasoner.New(kind, ont)
	if err != nil {
		return res, err
	}
	return m.Run(ctx, materialize.Source{Path: path, Ontology: ont, Reasoner: r})
}

// verifyGraph runs the hierarchy invariants and prints every violation.
func verifyGraph(a *app, graph constraints.GraphReader) error {
	v := constraints.NewValidator(constraints.HierarchyConstraints(a.subjectConfigured())...)
	result, err := v.Validate(graph)
	if err != nil {
		return err
	}
	for _, viol := range result.Violations {
		fmt.Fprintf(a.stdout, "%s\t%s\t%s\n", viol.Type, viol.NodeKey, viol.Message)
	}
	if !result.Valid {
		return fmt.Errorf("%d constraint violations", len(result.Violations))
	}
	return nil
}
