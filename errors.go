package flowquery

import "errors"

// Configuration errors
var (
	// ErrConfigValidation is returned when configuration validation fails
	ErrConfigValidation = errors.New("configuration validation failed")
	// ErrUnknownEnvironment is returned when a database environment is not configured.
	ErrUnknownEnvironment = errors.New("unknown database environment")
)
