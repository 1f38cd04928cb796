package search

import (
	"context"

	"github.com/kailas-cloud/swapdex/internal/engine"
)

// AliasResolver resolves an alias to its bound indexes.
type AliasResolver interface {
	Resolve(ctx context.Context, alias string) ([]string, error)
}

// Searcher runs a compiled query against one physical index.
type Searcher interface {
	Search(ctx context.Context, index string, body []byte) (*engine.Response, error)
}
