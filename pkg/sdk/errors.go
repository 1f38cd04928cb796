package swapdex

import "github.com/kailas-cloud/swapdex/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrAliasNotFound         = domain.ErrAliasNotFound
	ErrUnexpectedEngineState = domain.ErrUnexpectedEngineState
	ErrDecodeFailure         = domain.ErrDecodeFailure
	ErrEngine                = domain.ErrEngine
	ErrAliasSwapFailed       = domain.ErrAliasSwapFailed
	ErrSwapInProgress        = domain.ErrSwapInProgress
	ErrInvalidRequest        = domain.ErrInvalidRequest
)
