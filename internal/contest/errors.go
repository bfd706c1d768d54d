package contest

import "errors"

// Sentinel kinds for contest-history errors.
var (
	// ErrRebuildFailed marks a rebuild that could not complete and found
	// no prior cache to degrade to.
	ErrRebuildFailed = errors.New("contest history rebuild failed")
)
