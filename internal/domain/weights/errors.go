package weights

import "errors"

// Sentinel kinds for weight-table errors.
var (
	errDegenerateArtifact = errors.New("artifact has no usable score spread")
)
