// Package pgexport copies a materialized class graph into PostgreSQL tables.
package pgexport

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dd0wney/owlgraph/pkg/logging"
	"github.com/dd0wney/owlgraph/pkg/metrics"
	"github.com/dd0wney/owlgraph/pkg/storage"
)

// Graph is the read side of the embedded store the export walks.
type Graph interface {
	GetAllNodes() []*storage.Node
	GetAllEdges() []*storage.Edge
	KeyProperty() string
}

// Stats counts the rows written by one export.
type Stats struct {
	Nodes int
	Edges int
}

var (
	nodeColumns = []string{"id", "key", "labels", "properties"}
	edgeColumns = []string{"id", "from_id", "to_id", "type"}
)

// execCopier is the part of pgx.Tx the export needs.
type execCopier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

// Exporter writes graphs into one PostgreSQL schema.
type Exporter struct {
	pool    *pgxpool.Pool
	schema  string
	logger  logging.Logger
	metrics *metrics.Registry
}

// Open connects to dsn and verifies the connection.
func Open(ctx context.Context, dsn, schema string, logger logging.Logger, reg *metrics.Registry) (*Exporter, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}
	config.MaxConns = 4
	config.MaxConnLifetime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}

	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Exporter{
		pool:    pool,
		schema:  schema,
		logger:  logger.With(logging.Component("pgexport")),
		metrics: reg,
	}, nil
}

// Close closes the connection pool
func (e *Exporter) Close() {
	e.pool.Close()
}

// Export replaces the contents of the nodes and edges tables with graph in one transaction.
func (e *Exporter) Export(ctx context.Context, graph Graph) (Stats, error) {
	timer := logging.StartTimer(e.logger, "graph exported", logging.String("schema", e.schema))
	start := time.Now()

	var stats Stats
	err := pgx.BeginFunc(ctx, e.pool, func(tx pgx.Tx) error {
		var err error
		stats, err = write(ctx, tx, e.schema, graph)
		return err
	})
	e.record(stats, err, time.Since(start))
	if err != nil {
		timer.EndError(err)
		return Stats{}, err
	}
	timer.End(logging.Int("nodes", stats.Nodes), logging.Int("edges", stats.Edges))
	return stats, nil
}

func (e *Exporter) record(stats Stats, err error, d time.Duration) {
	if e.metrics == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	e.metrics.RecordExport("postgres", "nodes", status, stats.Nodes, d)
	e.metrics.RecordExport("postgres", "edges", status, stats.Edges, d)
}

// schemaStatements creates the tables on first use and empties them on every export.
func schemaStatements(schema string) []string {
	s := pgx.Identifier{schema}.Sanitize()
	nodes := pgx.Identifier{schema, "nodes"}.Sanitize()
	edges := pgx.Identifier{schema, "edges"}.Sanitize()
	return []string{
		"CREATE SCHEMA IF NOT EXISTS " + s,
		`CREATE TABLE IF NOT EXISTS ` + nodes + ` (
			id BIGINT PRIMARY KEY,
			key TEXT UNIQUE,
			labels TEXT[] NOT NULL,
			properties JSONB NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS ` + edges + ` (
			id BIGINT PRIMARY KEY,
			from_id BIGINT NOT NULL REFERENCES ` + nodes + `(id) DEFERRABLE INITIALLY DEFERRED,
			to_id BIGINT NOT NULL REFERENCES ` + nodes + `(id) DEFERRABLE INITIALLY DEFERRED,
			type TEXT NOT NULL
		)`,
		"CREATE INDEX IF NOT EXISTS edges_from_idx ON " + edges + " (from_id)",
		"CREATE INDEX IF NOT EXISTS edges_to_idx ON " + edges + " (to_id)",
		"TRUNCATE " + edges + ", " + nodes,
	}
}

func write(ctx context.Context, tx execCopier, schema string, graph Graph) (Stats, error) {
	for _, stmt := range schemaStatements(schema) {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return Stats{}, fmt.Errorf("failed to prepare schema %s: %w", schema, err)
		}
	}

	nodeRows, err := nodeRows(graph.GetAllNodes(), graph.KeyProperty())
	if err != nil {
		return Stats{}, err
	}
	nodes, err := tx.CopyFrom(ctx, pgx.Identifier{schema, "nodes"}, nodeColumns, pgx.CopyFromRows(nodeRows))
	if err != nil {
		return Stats{}, fmt.Errorf("failed to copy nodes: %w", err)
	}

	edges, err := tx.CopyFrom(ctx, pgx.Identifier{schema, "edges"}, edgeColumns, pgx.CopyFromRows(edgeRows(graph.GetAllEdges())))
	if err != nil {
		return Stats{}, fmt.Errorf("failed to copy edges: %w", err)
	}
	return Stats{Nodes: int(nodes), Edges: int(edges)}, nil
}

// nodeRows converts nodes to COPY rows. The key column is NULL for nodes without a key.
func nodeRows(nodes []*storage.Node, keyProperty string) ([][]any, error) {
	rows := make([][]any, 0, len(nodes))
	for _, n := range nodes {
		props := make(map[string]any, len(n.Properties))
		for name, v := range n.Properties {
			props[name] = v.Native()
		}
		raw, err := json.Marshal(props)
		if err != nil {
			return nil, fmt.Errorf("failed to encode properties of node %d: %w", n.ID, err)
		}

		var key any
		if k := n.StringProperty(keyProperty); k != "" {
			key = k
		}
		rows = append(rows, []any{int64(n.ID), key, n.Labels, raw})
	}
	return rows, nil
}

func edgeRows(edges []*storage.Edge) [][]any {
	rows := make([][]any, 0, len(edges))
	for _, e := range edges {
		rows = append(rows, []any{int64(e.ID), int64(e.FromNodeID), int64(e.ToNodeID), e.Type})
	}
	return rows
}
