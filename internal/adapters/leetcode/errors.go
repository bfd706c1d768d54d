package leetcode

import "errors"

// Sentinel kinds for remote source errors.
var (
	// ErrMissingCredentials marks a call rejected before reaching the
	// network because the credential pair is incomplete.
	ErrMissingCredentials = errors.New("missing leetcode credentials")

	// ErrUpstream marks a failed remote call: network error, non-2xx
	// status, rate limit, or an open circuit.
	ErrUpstream = errors.New("leetcode request failed")
)
