package materialize

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dd0wney/owlgraph/pkg/logging"
	"github.com/dd0wney/owlgraph/pkg/metrics"
	"github.com/dd0wney/owlgraph/pkg/ontology"
	"github.com/dd0wney/owlgraph/pkg/reasoner"
)

// Config configures a Materializer.
type Config struct {
	// Workers bounds concurrent per-class work. Values below 1 mean 1. Classes collapsing onto
	// one key write their records one at a time, in no particular order.
	Workers int
	// Channels are the candidate annotation channels. Nil means DefaultChannelConfig.
	Channels *ChannelConfig
	// Category overrides the tag derived from the source path.
	Category Category
	Logger   logging.Logger
	Metrics  *metrics.Registry
}

// Source is one ontology document to materialize together with its oracle.
type Source struct {
	Path     string
	Ontology *ontology.Ontology
	Reasoner reasoner.Reasoner
}

// Result summarizes a committed pass.
type Result struct {
	PassID       string
	Source       string
	Category     Category
	Classes      int
	NodesCreated int
	Edges        map[EdgeType]int
	Individuals  int
	Duration     time.Duration
}

// Materializer runs materialization passes against a store.
type Materializer struct {
	store Store
	cfg   Config
}

// NewMaterializer returns a Materializer writing to store.
func NewMaterializer(store Store, cfg Config) *Materializer {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNopLogger()
	}
	if cfg.Channels == nil {
		def := DefaultChannelConfig()
		cfg.Channels = &def
	}
	return &Materializer{store: store, cfg: cfg}
}

// pass holds the state of one Run.
type pass struct {
	m        *Materializer
	src      Source
	id       string
	category Category
	logger   logging.Logger
	tx       Tx
	resolver *Resolver
	channels Channels
	isA      atomic.Int64
	partOf   atomic.Int64
	// keyLocks holds a *sync.Mutex per key so each record lands on its node whole.
	keyLocks sync.Map
}

// Run materializes src in a single transaction. Nothing is written when the source is
// inconsistent, and any failure after the transaction began rolls it back. Errors are
// *MaterializationError.
func (m *Materializer) Run(ctx context.Context, src Source) (Result, error) {
	category := m.cfg.Category
	if category == "" {
		category = Classify(src.Path)
	}
	p := &pass{
		m:        m,
		src:      src,
		id:       uuid.NewString(),
		category: category,
	}
	p.logger = m.cfg.Logger.With(
		logging.Component("materialize"),
		logging.PassID(p.id),
		logging.Source(src.Path),
		logging.String("category", string(category)),
	)

	timer := logging.StartTimer(p.logger, "materialization pass")
	res, err := p.run(ctx)
	res.Duration = timer.Elapsed()

	status := PassStatus(err)
	if err != nil {
		timer.EndError(err, logging.Step(string(FailedStep(err))))
	} else {
		timer.End(
			logging.Int("classes", res.Classes),
			logging.Int("nodes_created", res.NodesCreated),
			logging.Int("is_a", res.Edges[EdgeIsA]),
			logging.Int("part_of", res.Edges[EdgePartOf]),
		)
	}
	if reg := m.cfg.Metrics; reg != nil {
		reg.RecordPass(string(category), status, res.Duration, res.Classes)
		if err == nil {
			reg.RecordHierarchyEdges(string(EdgeIsA), res.Edges[EdgeIsA])
			reg.RecordHierarchyEdges(string(EdgePartOf), res.Edges[EdgePartOf])
			reg.SetIndividuals(string(category), res.Individuals)
		}
	}
	return res, err
}

func (p *pass) fail(step Step, class string, cause error) error {
	return &MaterializationError{Source: p.src.Path, Step: step, Class: class, Cause: cause}
}

func (p *pass) run(ctx context.Context) (res Result, err error) {
	res = Result{PassID: p.id, Source: p.src.Path, Category: p.category}

	if p.src.Ontology == nil || p.src.Reasoner == nil {
		return res, p.fail(StepConsistency, "", errors.New("source has no ontology or reasoner"))
	}

	consistent, err := p.src.Reasoner.IsConsistent(ctx)
	if err != nil {
		return res, p.fail(StepConsistency, "", err)
	}
	if !consistent {
		return res, p.fail(StepConsistency, "", &InconsistentSourceError{Source: p.src.Path})
	}

	individuals, err := p.src.Reasoner.Instances(ctx, ontology.Thing, false)
	if err != nil {
		p.logger.Warn("individual enumeration failed", logging.Error(err))
	}
	res.Individuals = len(individuals)

	p.tx, err = p.m.store.Begin(ctx)
	if err != nil {
		return res, p.fail(StepBegin, "", &StorageError{Op: "begin", Cause: err})
	}
	committed := false
	defer func() {
		if committed {
			return
		}
		// The caller's context may already be done; rollback must still run.
		if rbErr := p.tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil {
			p.logger.Warn("rollback failed", logging.Error(rbErr))
		}
	}()
	p.resolver = NewResolver(p.tx, p.m.cfg.Metrics)

	p.channels, err = ResolveChannels(p.src.Ontology, *p.m.cfg.Channels, p.logger, p.m.cfg.Metrics)
	if err != nil {
		return res, p.fail(StepChannels, "", err)
	}
	p.logger.Debug("annotation channels resolved",
		logging.Bool("label", p.channels.Label != nil),
		logging.Int("alternative_terms", p.channels.AlternativeTerms.Len()),
		logging.Int("synonyms", p.channels.Synonyms.Len()),
		logging.Bool("subject", p.channels.Subject != nil),
		logging.Bool("definition", p.channels.Definition != nil))

	if err := p.writeRoot(ctx); err != nil {
		return res, p.fail(StepRoot, RootKey, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.m.cfg.Workers)
	for _, class := range p.src.Ontology.Classes() {
		if class.IRI.IsBuiltin() {
			continue
		}
		res.Classes++
		g.Go(func() error {
			return p.processClass(gctx, class)
		})
	}
	if err := g.Wait(); err != nil {
		return res, err
	}

	if err := p.tx.Commit(ctx); err != nil {
		return res, p.fail(StepCommit, "", &StorageError{Op: "commit", Cause: err})
	}
	committed = true

	res.NodesCreated = p.resolver.Created()
	res.Edges = map[EdgeType]int{
		EdgeIsA:    int(p.isA.Load()),
		EdgePartOf: int(p.partOf.Load()),
	}
	return res, nil
}

func (p *pass) writeRoot(ctx context.Context) error {
	root, err := p.resolver.Resolve(ctx, RootKey)
	if err != nil {
		return err
	}
	if err := p.tx.SetProperty(ctx, root, PropIRI, string(ontology.Thing)); err != nil {
		return &StorageError{Op: "set " + PropIRI, Key: RootKey, Cause: err}
	}
	if err := p.tx.SetProperty(ctx, root, PropName, RootKey); err != nil {
		return &StorageError{Op: "set " + PropName, Key: RootKey, Cause: err}
	}
	if err := p.tx.AddLabel(ctx, root, LabelRoot); err != nil {
		return &StorageError{Op: "label", Key: RootKey, Cause: err}
	}
	return nil
}

func (p *pass) classKey(iri ontology.IRI) string {
	key, ok := NormalizeKey(string(iri))
	if !ok {
		p.logger.Debug("class identifier has no fragment, using it as key", logging.IRI(string(iri)))
	}
	return key
}

// writeRecord harvests class and writes its properties and labels while holding the key's lock.
func (p *pass) writeRecord(ctx context.Context, key string, class *ontology.Class, node NodeHandle) error {
	mu, _ := p.keyLocks.LoadOrStore(key, &sync.Mutex{})
	mu.(*sync.Mutex).Lock()
	defer mu.(*sync.Mutex).Unlock()

	rec := Harvest(key, class, p.channels)
	if err := rec.Write(ctx, p.tx, node); err != nil {
		return err
	}
	for _, label := range []string{LabelClass, string(p.category)} {
		if err := p.tx.AddLabel(ctx, node, label); err != nil {
			return &StorageError{Op: "label", Key: key, Cause: err}
		}
	}
	return nil
}

func (p *pass) processClass(ctx context.Context, class *ontology.Class) error {
	if err := ctx.Err(); err != nil {
		return p.fail(StepClass, string(class.IRI), err)
	}
	key := p.classKey(class.IRI)

	node, err := p.resolver.Resolve(ctx, key)
	if err != nil {
		return p.fail(StepClass, key, err)
	}

	if err := p.writeRecord(ctx, key, class, node); err != nil {
		return p.fail(StepClass, key, err)
	}

	supers, err := p.src.Reasoner.DirectSuperclasses(ctx, class.IRI)
	if err != nil {
		return p.fail(StepClass, key, err)
	}
	answer := make([]string, 0, len(supers))
	for _, super := range supers {
		answer = append(answer, p.classKey(super))
	}

	for _, edge := range BuildEdges(key, answer) {
		to, err := p.resolver.Resolve(ctx, edge.To)
		if err != nil {
			return p.fail(StepClass, key, err)
		}
		if err := p.tx.CreateEdge(ctx, node, to, string(edge.Type)); err != nil {
			return p.fail(StepClass, key, &StorageError{Op: "edge " + string(edge.Type), Key: key, Cause: err})
		}
		if edge.Type == EdgeIsA {
			p.isA.Add(1)
		} else {
			p.partOf.Add(1)
		}
	}

	p.logger.Debug("class materialized",
		logging.ClassKey(key),
		logging.Int("parents", len(answer)))
	return nil
}
