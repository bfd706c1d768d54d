package config

import "errors"

// Sentinels distinguishing a config that could not be read from one that
// read fine but fails validation.
var (
	ErrLoadConfig    = errors.New("config: load failed")
	ErrInvalidConfig = errors.New("config: invalid value")
)
