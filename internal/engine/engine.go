// Package engine defines the narrow REST contract swapdex needs from an
// Elasticsearch-class search engine.
package engine

import (
	"context"
	"net/http"
	"time"
)

// Store is the engine facade combining all sub-interfaces.
//
//nolint:interfacebloat // facade; consumers depend on the narrow sub-interfaces
type Store interface {
	Pinger
	IndexManager
	AliasManager
	Searcher
	BulkWriter
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Response is a fully read engine response.
type Response struct {
	StatusCode int
	Body       []byte
}

// IsSuccess reports a 2xx status.
func (r *Response) IsSuccess() bool {
	return r != nil && r.StatusCode >= http.StatusOK && r.StatusCode < http.StatusMultipleChoices
}

// Pinger checks engine connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// IndexManager manages physical indexes. Status checks return the raw HTTP
// status so callers can branch on found / not found.
type IndexManager interface {
	IndexStatus(ctx context.Context, index string) (int, error)
	CreateIndex(ctx context.Context, index string, body []byte) (*Response, error)
	DeleteIndex(ctx context.Context, index string) (*Response, error)
	RefreshIndex(ctx context.Context, index string) (*Response, error)
}

// AliasManager reads and rewrites alias bindings.
type AliasManager interface {
	AliasStatus(ctx context.Context, alias string) (int, error)
	GetAlias(ctx context.Context, alias string) (*Response, error)
	UpdateAliases(ctx context.Context, body []byte) (*Response, error)
}

// Searcher runs a compiled DSL query against one index.
type Searcher interface {
	Search(ctx context.Context, index string, body []byte) (*Response, error)
}

// BulkWriter opens bulk indexers bound to one index.
type BulkWriter interface {
	NewBulkIndexer(index string, workers int) (BulkIndexer, error)
}

// BulkIndexer accepts documents and flushes them with a bounded number of
// concurrent connections. Add is safe for concurrent use.
type BulkIndexer interface {
	Add(ctx context.Context, id string, body []byte) error
	Close(ctx context.Context) error
	Stats() BulkStats
}

// BulkStats counts documents handled by a BulkIndexer.
type BulkStats struct {
	Added   uint64
	Indexed uint64
	Failed  uint64
}
