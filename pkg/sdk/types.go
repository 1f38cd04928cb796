package swapdex

import (
	"encoding/json"

	"github.com/kailas-cloud/swapdex/internal/domain"
	"github.com/kailas-cloud/swapdex/internal/domain/hit"
	"github.com/kailas-cloud/swapdex/internal/source"
)

// Hit is the default scored search result.
type Hit = hit.Hit

// Record is one document to index. Its "id" entry becomes the document id.
type Record = source.Record

// FieldMapping is the engine type and norms setting of one field.
type FieldMapping = domain.FieldMapping

// Decoder turns one raw entry of hits.hits into H.
type Decoder[H any] func(raw json.RawMessage) (H, error)

// DefaultFieldType is used for fields without an explicit mapping.
const DefaultFieldType = domain.DefaultFieldType

// SwapResult reports a completed hot swap.
type SwapResult struct {
	Alias    string
	NewIndex string
	Retired  []string
	Indexed  uint64
	Failed   uint64
}

// IndexInfo reports an index creation.
type IndexInfo struct {
	Name    string
	Created bool
}

// IndexOption configures index creation and hot swaps.
type IndexOption func(*indexConfig)

type indexConfig struct {
	fields        []string
	mappings      domain.Mappings
	refresh       bool
	maxWriteConns int
	maxFailed     uint64
}

// WithFields lists the fields added to the index mapping.
func WithFields(names ...string) IndexOption {
	return func(c *indexConfig) {
		c.fields = append(c.fields, names...)
	}
}

// WithMapping overrides the engine type of one field. The field is added
// to the mapping if WithFields didn't list it.
func WithMapping(field, fieldType string, norms bool) IndexOption {
	return func(c *indexConfig) {
		if c.mappings == nil {
			c.mappings = domain.Mappings{}
		}
		c.mappings[field] = domain.FieldMapping{Type: fieldType, UseNorms: norms}
		for _, f := range c.fields {
			if f == field {
				return
			}
		}
		c.fields = append(c.fields, field)
	}
}

// WithRefresh refreshes the index right after CreateIndex.
func WithRefresh() IndexOption {
	return func(c *indexConfig) {
		c.refresh = true
	}
}

// WithSwapConnections overrides the client's bulk connection cap for one
// hot swap.
func WithSwapConnections(n int) IndexOption {
	return func(c *indexConfig) {
		c.maxWriteConns = n
	}
}

// WithMaxFailed lets a hot swap go through when at most n records fail to
// index. By default any failure abandons the swap and keeps the old index.
func WithMaxFailed(n uint64) IndexOption {
	return func(c *indexConfig) {
		c.maxFailed = n
	}
}
