// Package hit defines the default scored search hit and its decoder.
package hit

import (
	"encoding/json"
	"fmt"

	"github.com/kailas-cloud/swapdex/internal/domain"
)

// Hit is a single scored result.
type Hit struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

type raw struct {
	ID    *string  `json:"_id"`
	Score *float64 `json:"_score"`
}

// Decode builds a Hit from one raw entry of hits.hits.
// Both _id and _score are required.
func Decode(entry json.RawMessage) (Hit, error) {
	var r raw
	if err := json.Unmarshal(entry, &r); err != nil {
		return Hit{}, fmt.Errorf("%w: %w", domain.ErrDecodeFailure, err)
	}
	if r.ID == nil {
		return Hit{}, fmt.Errorf("%w: missing _id", domain.ErrDecodeFailure)
	}
	if r.Score == nil {
		return Hit{}, fmt.Errorf("%w: missing _score", domain.ErrDecodeFailure)
	}
	return Hit{ID: *r.ID, Score: *r.Score}, nil
}
