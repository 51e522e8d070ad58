// Package neo4jstore writes materialization passes to a Neo4j server over Bolt.
package neo4jstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/dd0wney/owlgraph/pkg/logging"
	"github.com/dd0wney/owlgraph/pkg/materialize"
)

// Config holds the connection settings.
type Config struct {
	URI      string
	Username string
	Password string
	Database string
}

// Store implements materialize.Store on a Neo4j database.
type Store struct {
	driver   neo4j.DriverWithContext
	database string
	logger   logging.Logger
}

// Open connects to the server and verifies connectivity.
func Open(ctx context.Context, cfg Config, logger logging.Logger) (*Store, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.Username, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("neo4j connectivity %s: %w", cfg.URI, err)
	}
	return New(driver, cfg.Database, logger), nil
}

// New wraps an existing driver. An empty database selects the server default.
func New(driver neo4j.DriverWithContext, database string, logger logging.Logger) *Store {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Store{driver: driver, database: database, logger: logger.With(logging.Component("neo4jstore"))}
}

// Close releases the driver.
func (s *Store) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

func (s *Store) session(ctx context.Context, mode neo4j.AccessMode) neo4j.SessionWithContext {
	return s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: mode, DatabaseName: s.database})
}

// EnsureSchema creates the key uniqueness constraints MERGE relies on.
func (s *Store) EnsureSchema(ctx context.Context) error {
	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	for _, q := range schemaQueries() {
		if _, err := session.Run(ctx, q, nil); err != nil {
			return fmt.Errorf("neo4j schema: %w", err)
		}
	}
	return nil
}

// Wipe deletes every node and relationship in the database.
func (s *Store) Wipe(ctx context.Context) error {
	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, "MATCH (n) DETACH DELETE n", nil)
		if err != nil {
			return nil, err
		}
		return res.Consume(ctx)
	})
	if err != nil {
		return fmt.Errorf("neo4j wipe: %w", err)
	}
	s.logger.Info("neo4j database wiped", logging.String("database", s.database))
	return nil
}

// Begin opens a write session with an explicit transaction.
func (s *Store) Begin(ctx context.Context) (materialize.Tx, error) {
	session := s.session(ctx, neo4j.AccessModeWrite)
	tx, err := session.BeginTransaction(ctx)
	if err != nil {
		_ = session.Close(ctx)
		return nil, fmt.Errorf("neo4j begin: %w", err)
	}
	return &storeTx{session: session, tx: tx}, nil
}

// storeTx serializes calls: a Bolt transaction is not safe for concurrent use.
type storeTx struct {
	mu      sync.Mutex
	session neo4j.SessionWithContext
	tx      neo4j.ExplicitTransaction
	done    bool
}

// exec runs q and drains its result before releasing the transaction.
func (t *storeTx) exec(ctx context.Context, q query) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return fmt.Errorf("neo4j transaction already ended")
	}
	res, err := t.tx.Run(ctx, q.cypher, q.params)
	if err != nil {
		return err
	}
	_, err = res.Consume(ctx)
	return err
}

func (t *storeTx) GetOrCreateNode(ctx context.Context, key string) (materialize.NodeHandle, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return materialize.NodeHandle{}, false, fmt.Errorf("neo4j transaction already ended")
	}

	q := mergeNodeQuery(key)
	res, err := t.tx.Run(ctx, q.cypher, q.params)
	if err != nil {
		return materialize.NodeHandle{}, false, err
	}
	record, err := res.Single(ctx)
	if err != nil {
		return materialize.NodeHandle{}, false, err
	}
	id, _, err := neo4j.GetRecordValue[int64](record, "id")
	if err != nil {
		return materialize.NodeHandle{}, false, err
	}
	created, _, err := neo4j.GetRecordValue[bool](record, "created")
	if err != nil {
		return materialize.NodeHandle{}, false, err
	}
	return materialize.NodeHandle{Key: key, ID: uint64(id)}, created, nil
}

func (t *storeTx) SetProperty(ctx context.Context, node materialize.NodeHandle, name string, value any) error {
	q, err := setPropertyQuery(node, name, value)
	if err != nil {
		return err
	}
	return t.exec(ctx, q)
}

func (t *storeTx) AddLabel(ctx context.Context, node materialize.NodeHandle, label string) error {
	q, err := addLabelQuery(node, label)
	if err != nil {
		return err
	}
	return t.exec(ctx, q)
}

func (t *storeTx) CreateEdge(ctx context.Context, from, to materialize.NodeHandle, edgeType string) error {
	q, err := createEdgeQuery(from, to, edgeType)
	if err != nil {
		return err
	}
	return t.exec(ctx, q)
}

func (t *storeTx) Commit(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return fmt.Errorf("neo4j transaction already ended")
	}
	err := t.tx.Commit(ctx)
	t.done = true
	if closeErr := t.session.Close(ctx); err == nil {
		err = closeErr
	}
	return err
}

func (t *storeTx) Rollback(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return nil
	}
	t.done = true
	err := t.tx.Rollback(ctx)
	if closeErr := t.session.Close(ctx); err == nil {
		err = closeErr
	}
	return err
}
