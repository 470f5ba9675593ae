package store

import "errors"

// Connection errors
var (
	ErrEmptyDatabaseURL    = errors.New("database URL cannot be empty")
	ErrInvalidDatabaseURL  = errors.New("invalid database URL")
	ErrUnsupportedDatabase = errors.New("unsupported database type")
	ErrStoreUnavailable    = errors.New("flow store unavailable")
)

// Content errors
var (
	// ErrCorruptStore is returned when stored rows do not form valid flows.
	ErrCorruptStore = errors.New("flow store content is corrupt")
)
