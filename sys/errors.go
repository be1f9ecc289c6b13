package sys

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is the expected "no such row" result. It is never wrapped in a DatabaseError.
	ErrNotFound = errors.New("not found")

	// ErrPatternNotFound means an otherwise recognized game message lacked a piece we expected,
	// usually because the game changed its wording.
	ErrPatternNotFound = errors.New("pattern not found")
)

// DatabaseError carries the table and operation of a failed persistence call.
type DatabaseError struct {
	Op    string
	Table string
	Err   error
}

func (e *DatabaseError) Error() string {
	return fmt.Sprintf("database %s on %s: %v", e.Op, e.Table, e.Err)
}

func (e *DatabaseError) Unwrap() error { return e.Err }

// DBError wraps err with operation context. A nil err stays nil.
func DBError(op, table string, err error) error {
	if err == nil {
		return nil
	}
	return &DatabaseError{Op: op, Table: table, Err: err}
}

// PatternError reports which piece of a game message could not be extracted.
func PatternError(what string) error {
	return fmt.Errorf("%w: %s", ErrPatternNotFound, what)
}
