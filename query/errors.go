package query

import (
	"errors"
	"fmt"
)

// Compile errors. A *CompileError wraps one of these.
var (
	ErrEmptyQuery            = errors.New("query has no predicates")
	ErrInvalidTypeVarCount   = errors.New("invalid type-variable count")
	ErrInvalidConstructorArg = errors.New("invalid constructor-arg syntax")
	ErrInvalidType           = errors.New("invalid type syntax")
	ErrInvalidDescription    = errors.New("invalid description syntax")
	ErrInvalidGap            = errors.New("gap marker '*' must stand alone")
	ErrUnknownSigil          = errors.New("unknown leading sigil")
	ErrUnterminatedQuote     = errors.New("unterminated description string")
)

// Query file errors.
var (
	ErrQueryFileUnavailable = errors.New("query file unavailable")
	ErrInvalidQueryFile     = errors.New("invalid query file")
)

// CompileError reports the first malformed field of a query.
type CompileError struct {
	// Field is the 1-based position of the comma-separated field, counting
	// empty fields too.
	Field int
	// Fragment is the offending field text, trimmed.
	Fragment string
	Reason   error
}

func (e *CompileError) Error() string {
	if e.Field == 0 {
		return e.Reason.Error()
	}

	return fmt.Sprintf("field %d %q: %v", e.Field, e.Fragment, e.Reason)
}

func (e *CompileError) Unwrap() error {
	return e.Reason
}
