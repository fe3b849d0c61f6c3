package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation indicates malformed input; the caller must correct and retry.
	ErrValidation = errors.New("validation failed")
	// ErrIllegalState indicates the operation is not permitted in the current status.
	ErrIllegalState = errors.New("illegal state")
	// ErrVersionConflict indicates an optimistic-lock mismatch at the storage boundary.
	ErrVersionConflict = errors.New("version conflict")
	// ErrNotFound indicates the referenced transaction does not exist.
	ErrNotFound = errors.New("transaction not found")
)

// ValidationError tags an error as input validation failure.
func ValidationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// IllegalStateError tags an error as a status rule violation.
func IllegalStateError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrIllegalState, fmt.Sprintf(format, args...))
}

// VersionConflictError tags an error as a stale-version rejection.
func VersionConflictError(id string, expected Version) error {
	return fmt.Errorf("%w: transaction %s expected version %d", ErrVersionConflict, id, expected)
}

// NotFoundError tags an error as a missing transaction.
func NotFoundError(id string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}
