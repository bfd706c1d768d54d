package app

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	// ErrInvalidTitle marks a problem title that does not start with a
	// numeric frontend id ("123. Two Sum").
	ErrInvalidTitle = errors.New("title has no leading problem id")

	// ErrMissingCredentials marks a user record without a stored session.
	ErrMissingCredentials = errors.New("user has no stored session credentials")
)
