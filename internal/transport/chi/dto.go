package chi

import (
	"github.com/kailas-cloud/swapdex/internal/domain"
	"github.com/kailas-cloud/swapdex/internal/source"
)

// ErrorCode is a machine-readable error classification.
type ErrorCode string

// Error codes returned in ErrorResponse.
const (
	ErrorCodeBadRequest            ErrorCode = "bad_request"
	ErrorCodeValidationFailed      ErrorCode = "validation_failed"
	ErrorCodeUnauthorized          ErrorCode = "unauthorized"
	ErrorCodeAliasNotFound         ErrorCode = "alias_not_found"
	ErrorCodeSwapInProgress        ErrorCode = "swap_in_progress"
	ErrorCodeAliasSwapFailed       ErrorCode = "alias_swap_failed"
	ErrorCodeDecodeFailure         ErrorCode = "decode_failure"
	ErrorCodeUnexpectedEngineState ErrorCode = "unexpected_engine_state"
	ErrorCodeEngineError           ErrorCode = "engine_error"
	ErrorCodeInternal              ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// AliasResponse lists the indexes bound to an alias.
type AliasResponse struct {
	Alias   string   `json:"alias"`
	Indices []string `json:"indices"`
}

// DeleteAliasResponse reports an alias deletion.
type DeleteAliasResponse struct {
	Alias   string `json:"alias"`
	Deleted bool   `json:"deleted"`
}

// HitResponse is one scored search hit.
type HitResponse struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

// SearchResponse is returned by POST /aliases/{alias}/_search.
type SearchResponse struct {
	Items []HitResponse `json:"items"`
	Total int           `json:"total"`
}

// CreateIndexRequest is the body of POST /aliases/{alias}/indices.
type CreateIndexRequest struct {
	DocType  string          `json:"doc_type"`
	Fields   []string        `json:"fields"`
	Mappings domain.Mappings `json:"mappings,omitempty"`
}

// CreateIndexResponse reports a created index.
type CreateIndexResponse struct {
	Index   string `json:"index"`
	Created bool   `json:"created"`
}

// HotSwapRequest is the body of POST /aliases/{alias}/_hotswap. Records are
// taken inline, or loaded from Collection when no records are given.
type HotSwapRequest struct {
	DocType             string          `json:"doc_type"`
	Fields              []string        `json:"fields"`
	Mappings            domain.Mappings `json:"mappings,omitempty"`
	Records             []source.Record `json:"records,omitempty"`
	Collection          string          `json:"collection,omitempty"`
	IDField             string          `json:"id_field,omitempty"`
	Partitions          int             `json:"partitions,omitempty"`
	MaxWriteConnections int             `json:"max_write_connections,omitempty"`
	MaxFailed           uint64          `json:"max_failed,omitempty"`
}

// HotSwapResponse reports a completed hot swap.
type HotSwapResponse struct {
	Alias    string   `json:"alias"`
	NewIndex string   `json:"new_index"`
	Retired  []string `json:"retired"`
	Indexed  uint64   `json:"indexed"`
	Failed   uint64   `json:"failed"`
}
