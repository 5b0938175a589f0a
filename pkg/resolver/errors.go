package resolver

import "errors"

// Error categories, matching spec §7's taxonomy. The coordinator package
// maps these onto gRPC status codes at the RPC boundary.
var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrNotFound      = errors.New("not found")
	ErrStateConflict = errors.New("state conflict")
	ErrInternal      = errors.New("internal error")
)
