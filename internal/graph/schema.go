package graph

import (
	_ "embed"

	"github.com/graph-gophers/graphql-go"
)

//go:embed schema.graphql
var schemaSDL string

// NewSchema parses the embedded schema against r.
func NewSchema(r *Resolver, maxParallelism int) (*graphql.Schema, error) {
	opts := []graphql.SchemaOpt{graphql.UseFieldResolvers()}
	if maxParallelism > 0 {
		opts = append(opts, graphql.MaxParallelism(maxParallelism))
	}
	return graphql.ParseSchema(schemaSDL, r, opts...)
}
