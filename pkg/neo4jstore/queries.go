package neo4jstore

import (
	"fmt"
	"strings"

	"github.com/dd0wney/owlgraph/pkg/materialize"
	"github.com/dd0wney/owlgraph/pkg/validation"
)

type query struct {
	cypher string
	params map[string]any
}

// nodeLabel is the label a node is merged under so the key constraint serves the lookup.
func nodeLabel(key string) string {
	if key == materialize.RootKey {
		return materialize.LabelRoot
	}
	return materialize.LabelClass
}

func schemaQueries() []string {
	var out []string
	for _, label := range []string{materialize.LabelClass, materialize.LabelRoot} {
		out = append(out, fmt.Sprintf(
			"CREATE CONSTRAINT %s_key IF NOT EXISTS FOR (n:%s) REQUIRE n.%s IS UNIQUE",
			strings.ToLower(label), quote(label), quote(materialize.PropKey)))
	}
	return out
}

func mergeNodeQuery(key string) query {
	return query{
		cypher: fmt.Sprintf(`MERGE (n:%s {%s: $key})
ON CREATE SET n.__created = true
WITH n, n.__created IS NOT NULL AS created
REMOVE n.__created
RETURN id(n) AS id, created`, quote(nodeLabel(key)), quote(materialize.PropKey)),
		params: map[string]any{"key": key},
	}
}

func setPropertyQuery(node materialize.NodeHandle, name string, value any) (query, error) {
	if err := validation.ValidatePropertyKey(name); err != nil {
		return query{}, err
	}
	switch value.(type) {
	case string, bool, []string:
	default:
		return query{}, fmt.Errorf("unsupported property value %T for %s", value, name)
	}
	return query{
		cypher: fmt.Sprintf("MATCH (n) WHERE id(n) = $id SET n.%s = $value", quote(name)),
		params: map[string]any{"id": int64(node.ID), "value": value},
	}, nil
}

func addLabelQuery(node materialize.NodeHandle, label string) (query, error) {
	if err := validation.ValidateLabel(label); err != nil {
		return query{}, err
	}
	return query{
		cypher: fmt.Sprintf("MATCH (n) WHERE id(n) = $id SET n:%s", quote(label)),
		params: map[string]any{"id": int64(node.ID)},
	}, nil
}

func createEdgeQuery(from, to materialize.NodeHandle, edgeType string) (query, error) {
	if err := validation.ValidateLabel(edgeType); err != nil {
		return query{}, err
	}
	return query{
		cypher: fmt.Sprintf("MATCH (a), (b) WHERE id(a) = $from AND id(b) = $to CREATE (a)-[:%s]->(b)", quote(edgeType)),
		params: map[string]any{"from": int64(from.ID), "to": int64(to.ID)},
	}, nil
}

// quote backtick-escapes an identifier. Callers validate identifiers first.
func quote(ident string) string {
	return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
}
