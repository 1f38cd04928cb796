package elastic

import (
	"bytes"
	"context"

	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/kailas-cloud/swapdex/internal/engine"
)

// Search issues POST /{index}/_search with a compiled DSL body.
func (s *Store) Search(ctx context.Context, index string, body []byte) (*engine.Response, error) {
	return s.do(engine.OpSearch, func() (*esapi.Response, error) {
		return s.es.Search(
			s.es.Search.WithIndex(index),
			s.es.Search.WithBody(bytes.NewReader(body)),
			s.es.Search.WithContext(ctx),
		)
	})
}
