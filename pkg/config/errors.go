package config

import "errors"

// Error categories, matching spec §7's taxonomy.
var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrStateConflict = errors.New("state conflict")
)
