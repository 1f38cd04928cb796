// Package result turns raw engine search responses into typed hit records.
package result

import (
	"encoding/json"
	"fmt"

	"github.com/kailas-cloud/swapdex/internal/domain"
	"github.com/kailas-cloud/swapdex/internal/domain/codec"
)

// Decoder builds one hit record from a raw hits.hits entry.
type Decoder[H any] func(entry json.RawMessage) (H, error)

// Transformer decodes search responses into an ordered slice of H.
type Transformer[H any] struct {
	decode Decoder[H]
	codec  codec.Codec
}

// New creates a transformer. A nil codec selects JSON.
func New[H any](decode Decoder[H], c codec.Codec) *Transformer[H] {
	return &Transformer[H]{decode: decode, codec: codec.OrDefault(c)}
}

type envelope struct {
	Hits struct {
		Hits []json.RawMessage `json:"hits"`
	} `json:"hits"`
}

// Transform decodes every entry of hits.hits in order. The first entry that
// fails to decode aborts the whole transform; no partial results are returned.
func (t *Transformer[H]) Transform(body []byte) ([]H, error) {
	var env envelope
	if err := t.codec.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: response: %w", domain.ErrDecodeFailure, err)
	}

	out := make([]H, 0, len(env.Hits.Hits))
	for i, entry := range env.Hits.Hits {
		h, err := t.decode(entry)
		if err != nil {
			return nil, fmt.Errorf("%w: hit %d: %w", domain.ErrDecodeFailure, i, err)
		}
		out = append(out, h)
	}
	return out, nil
}
