package service

import (
	"errors"
	"fmt"
)

var (
	// ErrIDRequired is returned when an operation is called with an empty id.
	ErrIDRequired = errors.New("id is required")

	// ErrNotFound means the presentation or version does not exist. This is
	// a normal outcome, not a fault; callers branch on it.
	ErrNotFound = errors.New("presentation not found")

	// ErrNotSupported is returned by backends that lack version history
	// (the filesystem fallback).
	ErrNotSupported = errors.New("operation not supported by this storage backend")
)

// PersistenceError marks an infrastructure-level failure of the durable
// backend. It is fatal to the operation in progress and is never downgraded
// to ErrNotFound: a write that silently failed to persist would corrupt the
// document's version history.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// IsPersistenceError reports whether err is (or wraps) a PersistenceError.
func IsPersistenceError(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}
