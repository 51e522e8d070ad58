package pgexport

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/owlgraph/pkg/storage"
)

// recordingTx captures statements and drains copied rows.
type recordingTx struct {
	stmts   []string
	copied  map[string][][]any
	failOn  string
	failErr error
}

func (r *recordingTx) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	r.stmts = append(r.stmts, sql)
	return pgconn.CommandTag{}, nil
}

func (r *recordingTx) CopyFrom(_ context.Context, table pgx.Identifier, _ []string, src pgx.CopyFromSource) (int64, error) {
	name := table[len(table)-1]
	if name == r.failOn {
		return 0, r.failErr
	}
	if r.copied == nil {
		r.copied = make(map[string][][]any)
	}
	var n int64
	for src.Next() {
		values, err := src.Values()
		if err != nil {
			return n, err
		}
		r.copied[name] = append(r.copied[name], values)
		n++
	}
	return n, src.Err()
}

func testGraph(t *testing.T) *storage.GraphStorage {
	t.Helper()

	gs, err := storage.NewGraphStorageWithConfig(storage.StorageConfig{})
	require.NoError(t, err)
	t.Cleanup(func() { gs.Close() })

	root, err := gs.CreateNode([]string{"Root"}, map[string]storage.Value{"key": storage.StringValue("owl:Thing")})
	require.NoError(t, err)
	class, err := gs.CreateNode([]string{"Class", "DOMAIN"}, map[string]storage.Value{
		"key":                    storage.StringValue("DRAO_1"),
		"synonyms":               storage.StringListValue([]string{"a", "b"}),
		"isInSubjectFAIRsharing": storage.BoolValue(true),
	})
	require.NoError(t, err)
	_, err = gs.CreateNode([]string{"Orphan"}, nil)
	require.NoError(t, err)
	_, err = gs.CreateEdge(class.ID, root.ID, "IS_A", nil)
	require.NoError(t, err)
	return gs
}

func TestWrite(t *testing.T) {
	gs := testGraph(t)
	tx := &recordingTx{}

	stats, err := write(context.Background(), tx, "owlgraph", gs)
	require.NoError(t, err)
	assert.Equal(t, Stats{Nodes: 3, Edges: 1}, stats)

	require.Len(t, tx.stmts, len(schemaStatements("owlgraph")))
	assert.Equal(t, `CREATE SCHEMA IF NOT EXISTS "owlgraph"`, tx.stmts[0])
	assert.True(t, strings.HasPrefix(tx.stmts[len(tx.stmts)-1], `TRUNCATE "owlgraph"."edges", "owlgraph"."nodes"`))

	nodes := tx.copied["nodes"]
	require.Len(t, nodes, 3)
	assert.Equal(t, int64(2), nodes[1][0])
	assert.Equal(t, "DRAO_1", nodes[1][1])
	assert.Equal(t, []string{"Class", "DOMAIN"}, nodes[1][2])
	var props map[string]any
	require.NoError(t, json.Unmarshal(nodes[1][3].([]byte), &props))
	assert.Equal(t, true, props["isInSubjectFAIRsharing"])
	assert.Equal(t, []any{"a", "b"}, props["synonyms"])
	assert.Nil(t, nodes[2][1], "nodes without a key export a NULL key")

	assert.Equal(t, [][]any{{int64(1), int64(2), int64(1), "IS_A"}}, tx.copied["edges"])
}

func TestWriteCopyFailure(t *testing.T) {
	gs := testGraph(t)
	tx := &recordingTx{failOn: "edges", failErr: errors.New("disk full")}

	_, err := write(context.Background(), tx, "owlgraph", gs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to copy edges")
}

func TestSchemaStatementsQuoteIdentifiers(t *testing.T) {
	stmts := schemaStatements(`we"ird`)
	assert.Equal(t, `CREATE SCHEMA IF NOT EXISTS "we""ird"`, stmts[0])
}

func TestExportIntegration(t *testing.T) {
	dsn := os.Getenv("OWLGRAPH_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("OWLGRAPH_TEST_PG_DSN not set")
	}
	ctx := context.Background()

	exp, err := Open(ctx, dsn, "owlgraph_test", nil, nil)
	require.NoError(t, err)
	defer exp.Close()

	gs := testGraph(t)
	for range 2 {
		stats, err := exp.Export(ctx, gs)
		require.NoError(t, err)
		assert.Equal(t, Stats{Nodes: 3, Edges: 1}, stats)
	}

	var count int
	require.NoError(t, exp.pool.QueryRow(ctx, `SELECT count(*) FROM "owlgraph_test"."nodes"`).Scan(&count))
	assert.Equal(t, 3, count)
}
