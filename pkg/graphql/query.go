package graphql

import (
	"context"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/gqlerrors"
)

// Executor runs queries against a schema, rejecting those nested deeper than maxDepth.
type Executor struct {
	schema   graphql.Schema
	maxDepth int
}

// NewExecutor builds the schema over gs and returns an executor for it.
func NewExecutor(gs GraphReader, limits *LimitConfig) (*Executor, error) {
	if limits == nil {
		limits = DefaultLimits()
	}
	schema, err := NewSchema(gs, limits)
	if err != nil {
		return nil, err
	}
	return &Executor{schema: schema, maxDepth: limits.MaxDepth}, nil
}

// Execute executes a GraphQL query with optional variables
func (e *Executor) Execute(ctx context.Context, query string, variables map[string]any) *graphql.Result {
	if e.maxDepth > 0 {
		if err := ValidateQueryDepth(query, e.maxDepth); err != nil {
			return &graphql.Result{
				Errors: []gqlerrors.FormattedError{gqlerrors.FormatError(err)},
			}
		}
	}

	return graphql.Do(graphql.Params{
		Schema:         e.schema,
		RequestString:  query,
		VariableValues: variables,
		Context:        ctx,
	})
}
