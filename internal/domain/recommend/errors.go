package recommend

import "errors"

// Sentinel kinds for recommendation errors.
var (
	// ErrInvalidInput marks filter values rejected at the validation
	// boundary, before any store or remote call.
	ErrInvalidInput = errors.New("invalid recommendation input")
)
