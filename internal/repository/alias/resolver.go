// Package alias resolves aliases to physical indexes and swaps bindings.
package alias

import (
	"context"
	"fmt"
	"net/http"
	"sort"

	"go.uber.org/zap"

	"github.com/kailas-cloud/swapdex/internal/domain"
	"github.com/kailas-cloud/swapdex/internal/domain/codec"
	"github.com/kailas-cloud/swapdex/internal/engine"
)

// store is the consumer interface for alias operations (ISP).
type store interface {
	AliasStatus(ctx context.Context, alias string) (int, error)
	GetAlias(ctx context.Context, alias string) (*engine.Response, error)
	UpdateAliases(ctx context.Context, body []byte) (*engine.Response, error)
}

// Resolver reads alias bindings fresh on every call; nothing is cached.
type Resolver struct {
	store  store
	codec  codec.Codec
	logger *zap.Logger
}

// New creates an alias resolver.
func New(s store, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{store: s, codec: codec.JSON{}, logger: logger}
}

// WithCodec overrides the payload serializer.
func (r *Resolver) WithCodec(c codec.Codec) *Resolver {
	r.codec = codec.OrDefault(c)
	return r
}

// Resolve returns the sorted set of indexes bound to alias. An unbound alias
// yields an empty slice and no error.
func (r *Resolver) Resolve(ctx context.Context, alias string) ([]string, error) {
	code, err := r.store.AliasStatus(ctx, alias)
	if err != nil {
		return nil, fmt.Errorf("check alias %s: %w", alias, err)
	}
	switch code {
	case http.StatusNotFound:
		return []string{}, nil
	case http.StatusOK:
	default:
		return nil, fmt.Errorf("%w: HEAD /_alias/%s returned %d", domain.ErrUnexpectedEngineState, alias, code)
	}

	resp, err := r.store.GetAlias(ctx, alias)
	if err != nil {
		return nil, fmt.Errorf("get alias %s: %w", alias, err)
	}
	// The binding can vanish between the existence check and the fetch.
	if resp.StatusCode == http.StatusNotFound {
		return []string{}, nil
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("%w: GET /_alias/%s returned %d", domain.ErrUnexpectedEngineState, alias, resp.StatusCode)
	}

	var bound map[string]any
	if err := r.codec.Unmarshal(resp.Body, &bound); err != nil {
		return nil, fmt.Errorf("%w: alias %s: %w", domain.ErrDecodeFailure, alias, err)
	}
	out := make([]string, 0, len(bound))
	for name := range bound {
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}

type actions struct {
	Actions []action `json:"actions"`
}

type action struct {
	Add         *target `json:"add,omitempty"`
	RemoveIndex *target `json:"remove_index,omitempty"`
}

type target struct {
	Index string `json:"index"`
	Alias string `json:"alias,omitempty"`
}

// Swap binds alias to newIndex and retires every index in old within one
// atomic request. Readers never observe the alias unbound.
func (r *Resolver) Swap(ctx context.Context, alias, newIndex string, old []string) error {
	body, err := r.codec.Marshal(SwapActions(alias, newIndex, old))
	if err != nil {
		return fmt.Errorf("encode alias actions: %w", err)
	}

	resp, err := r.store.UpdateAliases(ctx, body)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrAliasSwapFailed, err)
	}
	if !resp.IsSuccess() {
		r.logger.Error("Alias swap rejected",
			zap.String("alias", alias),
			zap.String("index", newIndex),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", resp.Body),
		)
		return fmt.Errorf("%w: alias %s -> %s: status %d", domain.ErrAliasSwapFailed, alias, newIndex, resp.StatusCode)
	}
	return nil
}

// SwapActions builds the POST /_aliases body. The remove clauses are omitted
// when old is empty.
func SwapActions(alias, newIndex string, old []string) any {
	out := actions{Actions: []action{{Add: &target{Index: newIndex, Alias: alias}}}}
	for _, name := range old {
		if name == newIndex {
			continue
		}
		out.Actions = append(out.Actions, action{RemoveIndex: &target{Index: name}})
	}
	return out
}
