package engine

// Op names the engine REST call for error context.
const (
	OpPing          = "GET /"
	OpIndexExists   = "HEAD /{index}"
	OpCreateIndex   = "PUT /{index}"
	OpDeleteIndex   = "DELETE /{index}"
	OpRefreshIndex  = "POST /{index}/_refresh"
	OpAliasExists   = "HEAD /_alias/{alias}"
	OpGetAlias      = "GET /_alias/{alias}"
	OpUpdateAliases = "POST /_aliases"
	OpSearch        = "POST /{index}/_search"
	OpBulk          = "POST /{index}/_bulk"
)

// Error wraps a transport error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
