package main

import "errors"

// Sentinel errors for command operations
var (
	ErrNoDataSource         = errors.New("no flow data: pass --data, --db or configure traces")
	ErrConflictingSources   = errors.New("--data and --db are mutually exclusive")
	ErrNoQuery              = errors.New("no query: pass QUERY, --query-file or pipe the query on stdin")
	ErrConflictingQueries   = errors.New("QUERY and --query-file are mutually exclusive")
	ErrNoDatabaseConfigured = errors.New("no flow store: pass --db or configure databases")
)
