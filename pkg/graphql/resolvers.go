package graphql

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/dd0wney/owlgraph/pkg/algorithms"
	"github.com/dd0wney/owlgraph/pkg/materialize"
	"github.com/dd0wney/owlgraph/pkg/storage"
	"github.com/graphql-go/graphql"
)

type resolver struct {
	gs     GraphReader
	limits *LimitConfig
}

// classType is self-referential through parents and children, so its fields are a thunk.
func (r *resolver) classType() *graphql.Object {
	var classType *graphql.Object
	classType = graphql.NewObject(graphql.ObjectConfig{
		Name:        "Class",
		Description: "A materialized ontology class, or the owl:Thing root",
		Fields: (graphql.FieldsThunk)(func() graphql.Fields {
			edgeArgs := graphql.FieldConfigArgument{
				"type": &graphql.ArgumentConfig{
					Type:        graphql.String,
					Description: "Restrict to IS_A or PART_OF edges",
				},
			}
			return graphql.Fields{
				"id": &graphql.Field{
					Type: graphql.NewNonNull(graphql.ID),
					Resolve: func(p graphql.ResolveParams) (any, error) {
						return strconv.FormatUint(p.Source.(*storage.Node).ID, 10), nil
					},
				},
				"labels": &graphql.Field{
					Type: graphql.NewList(graphql.String),
					Resolve: func(p graphql.ResolveParams) (any, error) {
						return p.Source.(*storage.Node).Labels, nil
					},
				},
				"key":              stringProperty(materialize.PropKey),
				"iri":              stringProperty(materialize.PropIRI),
				"name":             stringProperty(materialize.PropName),
				"displayName":      stringProperty(materialize.PropDisplayName),
				"definition":       stringProperty(materialize.PropDefinition),
				"alternativeNames": listProperty(materialize.PropAlternativeNames),
				"synonyms":         listProperty(materialize.PropSynonyms),
				"exactSynonyms":    listProperty(materialize.PropExactSynonyms),
				"relatedSynonyms":  listProperty(materialize.PropRelatedSynonyms),
				"broadSynonyms":    listProperty(materialize.PropBroadSynonyms),
				materialize.PropSubjectFlag: &graphql.Field{
					Type: graphql.Boolean,
					Resolve: func(p graphql.ResolveParams) (any, error) {
						v, ok := p.Source.(*storage.Node).GetProperty(materialize.PropSubjectFlag)
						if !ok {
							return nil, nil
						}
						return v.AsBool()
					},
				},
				"parents": &graphql.Field{
					Type:    graphql.NewList(classType),
					Args:    edgeArgs,
					Resolve: r.parents,
				},
				"children": &graphql.Field{
					Type:    graphql.NewList(classType),
					Args:    edgeArgs,
					Resolve: r.children,
				},
				"ancestors": &graphql.Field{
					Type:        graphql.NewList(classType),
					Description: "Superclasses reachable over IS_A and PART_OF, closest first",
					Args: graphql.FieldConfigArgument{
						"maxDepth": &graphql.ArgumentConfig{
							Type:         graphql.Int,
							DefaultValue: r.limits.MaxDepth,
						},
					},
					Resolve: r.ancestors,
				},
			}
		}),
	})
	return classType
}

func stringProperty(name string) *graphql.Field {
	return &graphql.Field{
		Type: graphql.String,
		Resolve: func(p graphql.ResolveParams) (any, error) {
			v, ok := p.Source.(*storage.Node).GetProperty(name)
			if !ok {
				return nil, nil
			}
			return v.AsString()
		},
	}
}

func listProperty(name string) *graphql.Field {
	return &graphql.Field{
		Type: graphql.NewList(graphql.String),
		Resolve: func(p graphql.ResolveParams) (any, error) {
			v, ok := p.Source.(*storage.Node).GetProperty(name)
			if !ok {
				return nil, nil
			}
			return v.AsStringList()
		},
	}
}

// byKey returns nil without error for unknown keys.
func (r *resolver) byKey(key string) (any, error) {
	node, err := r.gs.GetNodeByKey(key)
	if errors.Is(err, storage.ErrNodeNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return node, nil
}

func (r *resolver) class(p graphql.ResolveParams) (any, error) {
	key, ok := p.Args["key"].(string)
	if !ok {
		return nil, fmt.Errorf("key argument is required")
	}
	return r.byKey(key)
}

func (r *resolver) limit(p graphql.ResolveParams) int {
	requested := -1
	if l, ok := p.Args["limit"].(int); ok {
		requested = l
	}
	return applyLimit(requested, r.limits)
}

func (r *resolver) classes(p graphql.ResolveParams) (any, error) {
	label, _ := p.Args["label"].(string)
	nodes, err := r.gs.FindNodesByLabel(label)
	if err != nil {
		return nil, err
	}
	return truncate(nodes, r.limit(p)), nil
}

func (r *resolver) search(p graphql.ResolveParams) (any, error) {
	prefix, _ := p.Args["prefix"].(string)
	nodes, err := r.gs.FindNodesByPropertyPrefix(materialize.PropName, prefix)
	if err != nil {
		return nil, err
	}
	return truncate(nodes, r.limit(p)), nil
}

// parents follows outgoing hierarchy edges: a class points at its superclasses.
func (r *resolver) parents(p graphql.ResolveParams) (any, error) {
	node := p.Source.(*storage.Node)
	edges, err := r.gs.GetOutgoingEdges(node.ID)
	if err != nil {
		return nil, err
	}
	return r.endpoints(edges, edgeFilter(p), func(e *storage.Edge) uint64 { return e.ToNodeID })
}

func (r *resolver) children(p graphql.ResolveParams) (any, error) {
	node := p.Source.(*storage.Node)
	edges, err := r.gs.GetIncomingEdges(node.ID)
	if err != nil {
		return nil, err
	}
	return r.endpoints(edges, edgeFilter(p), func(e *storage.Edge) uint64 { return e.FromNodeID })
}

// unboundedAncestors caps the walk when no depth limit is configured.
const unboundedAncestors = 1 << 16

func (r *resolver) ancestors(p graphql.ResolveParams) (any, error) {
	node := p.Source.(*storage.Node)
	maxDepth, _ := p.Args["maxDepth"].(int)
	if limit := r.limits.MaxDepth; limit > 0 && (maxDepth < 1 || maxDepth > limit) {
		maxDepth = limit
	}
	if maxDepth < 1 {
		maxDepth = unboundedAncestors
	}
	ids, err := algorithms.Ancestors(r.gs, node.ID, maxDepth, string(materialize.EdgeIsA), string(materialize.EdgePartOf))
	if err != nil {
		return nil, err
	}
	out := make([]*storage.Node, 0, len(ids))
	for _, id := range ids {
		n, err := r.gs.GetNode(id)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func edgeFilter(p graphql.ResolveParams) func(string) bool {
	want, _ := p.Args["type"].(string)
	return func(edgeType string) bool {
		if want != "" {
			return edgeType == want
		}
		return edgeType == string(materialize.EdgeIsA) || edgeType == string(materialize.EdgePartOf)
	}
}

func (r *resolver) endpoints(edges []*storage.Edge, keep func(string) bool, end func(*storage.Edge) uint64) ([]*storage.Node, error) {
	seen := make(map[uint64]bool)
	var out []*storage.Node
	for _, e := range edges {
		id := end(e)
		if !keep(e.Type) || seen[id] {
			continue
		}
		seen[id] = true
		node, err := r.gs.GetNode(id)
		if err != nil {
			return nil, err
		}
		out = append(out, node)
	}
	return out, nil
}

func truncate(nodes []*storage.Node, limit int) []*storage.Node {
	if len(nodes) > limit {
		return nodes[:limit]
	}
	return nodes
}
