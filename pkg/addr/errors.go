package addr

import "errors"

// ErrInvalidInput classifies malformed addresses/prefixes and illegal
// interface scoping, matching the InvalidInput category in spec §7.
var ErrInvalidInput = errors.New("invalid input")
