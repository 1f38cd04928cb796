package domain

import "errors"

var (
	// ErrAliasNotFound signals that no physical index is bound to an alias.
	ErrAliasNotFound = errors.New("alias not found")
	// ErrUnexpectedEngineState signals an existence check status other than found/not-found.
	ErrUnexpectedEngineState = errors.New("unexpected engine state")
	// ErrDecodeFailure signals a search response missing required hit fields.
	ErrDecodeFailure = errors.New("decode failure")
	// ErrEngine classifies failures talking to the search engine.
	ErrEngine = errors.New("engine communication failure")
	// ErrAliasSwapFailed signals that the atomic alias update was rejected.
	ErrAliasSwapFailed = errors.New("alias swap failed")
	// ErrSwapInProgress signals that another hot swap holds the alias.
	ErrSwapInProgress = errors.New("hot swap in progress")
	// ErrInvalidRequest signals a malformed caller request.
	ErrInvalidRequest = errors.New("invalid request")
)
