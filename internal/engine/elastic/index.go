package elastic

import (
	"bytes"
	"context"

	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/kailas-cloud/swapdex/internal/engine"
)

// IndexStatus issues HEAD /{index}.
func (s *Store) IndexStatus(ctx context.Context, index string) (int, error) {
	return s.status(engine.OpIndexExists, func() (*esapi.Response, error) {
		return s.es.Indices.Exists([]string{index}, s.es.Indices.Exists.WithContext(ctx))
	})
}

// CreateIndex issues PUT /{index} with a mappings/aliases body.
func (s *Store) CreateIndex(ctx context.Context, index string, body []byte) (*engine.Response, error) {
	return s.do(engine.OpCreateIndex, func() (*esapi.Response, error) {
		return s.es.Indices.Create(index,
			s.es.Indices.Create.WithBody(bytes.NewReader(body)),
			s.es.Indices.Create.WithContext(ctx),
		)
	})
}

// DeleteIndex issues DELETE /{index}.
func (s *Store) DeleteIndex(ctx context.Context, index string) (*engine.Response, error) {
	return s.do(engine.OpDeleteIndex, func() (*esapi.Response, error) {
		return s.es.Indices.Delete([]string{index}, s.es.Indices.Delete.WithContext(ctx))
	})
}

// RefreshIndex issues POST /{index}/_refresh.
func (s *Store) RefreshIndex(ctx context.Context, index string) (*engine.Response, error) {
	return s.do(engine.OpRefreshIndex, func() (*esapi.Response, error) {
		return s.es.Indices.Refresh(
			s.es.Indices.Refresh.WithIndex(index),
			s.es.Indices.Refresh.WithContext(ctx),
		)
	})
}
