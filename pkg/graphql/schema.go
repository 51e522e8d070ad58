// Package graphql exposes a read-only GraphQL schema over a materialized class graph.
package graphql

import (
	"fmt"

	"github.com/dd0wney/owlgraph/pkg/materialize"
	"github.com/dd0wney/owlgraph/pkg/storage"
	"github.com/graphql-go/graphql"
)

// GraphReader is the part of the embedded store the schema resolves against.
type GraphReader interface {
	GetNode(nodeID uint64) (*storage.Node, error)
	GetNodeByKey(key string) (*storage.Node, error)
	FindNodesByLabel(label string) ([]*storage.Node, error)
	FindNodesByPropertyPrefix(key, prefix string) ([]*storage.Node, error)
	GetOutgoingEdges(nodeID uint64) ([]*storage.Edge, error)
	GetIncomingEdges(nodeID uint64) ([]*storage.Edge, error)
	GetStatistics() storage.Statistics
}

// NewSchema builds the query schema. A nil limits uses DefaultLimits.
func NewSchema(gs GraphReader, limits *LimitConfig) (graphql.Schema, error) {
	if limits == nil {
		limits = DefaultLimits()
	}
	if err := ValidateLimitConfig(limits); err != nil {
		return graphql.Schema{}, err
	}

	r := &resolver{gs: gs, limits: limits}
	classType := r.classType()

	limitArg := &graphql.ArgumentConfig{
		Type:        graphql.Int,
		Description: "Maximum number of classes returned",
	}

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"health": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return "ok", nil
				},
			},
			"class": &graphql.Field{
				Type: classType,
				Args: graphql.FieldConfigArgument{
					"key": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: r.class,
			},
			"root": &graphql.Field{
				Type: classType,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return r.byKey(materialize.RootKey)
				},
			},
			"classes": &graphql.Field{
				Type: graphql.NewList(classType),
				Args: graphql.FieldConfigArgument{
					"label": &graphql.ArgumentConfig{
						Type:         graphql.String,
						DefaultValue: materialize.LabelClass,
						Description:  "Node label, e.g. a category such as DOMAIN",
					},
					"limit": limitArg,
				},
				Resolve: r.classes,
			},
			"search": &graphql.Field{
				Type: graphql.NewList(classType),
				Args: graphql.FieldConfigArgument{
					"prefix": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"limit":  limitArg,
				},
				Resolve: r.search,
			},
			"stats": &graphql.Field{
				Type:    statsType,
				Resolve: func(p graphql.ResolveParams) (any, error) { return gs.GetStatistics(), nil },
			},
		},
	})

	schema, err := graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
	if err != nil {
		return graphql.Schema{}, fmt.Errorf("failed to create schema: %w", err)
	}
	return schema, nil
}

var statsType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Stats",
	Fields: graphql.Fields{
		"nodes": &graphql.Field{
			Type: graphql.Int,
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return int(p.Source.(storage.Statistics).NodeCount), nil
			},
		},
		"edges": &graphql.Field{
			Type: graphql.Int,
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return int(p.Source.(storage.Statistics).EdgeCount), nil
			},
		},
		"commits": &graphql.Field{
			Type: graphql.Int,
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return int(p.Source.(storage.Statistics).TotalCommits), nil
			},
		},
	},
})
