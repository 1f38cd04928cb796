package elastic

import (
	"bytes"
	"context"

	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/kailas-cloud/swapdex/internal/engine"
)

// AliasStatus issues HEAD /_alias/{alias}.
func (s *Store) AliasStatus(ctx context.Context, alias string) (int, error) {
	return s.status(engine.OpAliasExists, func() (*esapi.Response, error) {
		return s.es.Indices.ExistsAlias([]string{alias}, s.es.Indices.ExistsAlias.WithContext(ctx))
	})
}

// GetAlias issues GET /_alias/{alias}.
func (s *Store) GetAlias(ctx context.Context, alias string) (*engine.Response, error) {
	return s.do(engine.OpGetAlias, func() (*esapi.Response, error) {
		return s.es.Indices.GetAlias(
			s.es.Indices.GetAlias.WithName(alias),
			s.es.Indices.GetAlias.WithContext(ctx),
		)
	})
}

// UpdateAliases issues POST /_aliases with an actions body.
func (s *Store) UpdateAliases(ctx context.Context, body []byte) (*engine.Response, error) {
	return s.do(engine.OpUpdateAliases, func() (*esapi.Response, error) {
		return s.es.Indices.UpdateAliases(bytes.NewReader(body),
			s.es.Indices.UpdateAliases.WithContext(ctx),
		)
	})
}
