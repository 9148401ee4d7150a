// Package errs defines the error taxonomy shared by all services.
// Not-found and state-conflict errors map to client-facing statuses at
// the HTTP edge; everything else is treated as a store failure.
package errs

import (
	"errors"
	"fmt"
)

// NotFoundError reports a referenced entity that does not exist.
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// NotFound builds a NotFoundError for the given entity and id.
func NotFound(entity string, id int64) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// ValidationError reports input that fails a service-level validity
// check, distinct from store failures.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// Validation wraps a validity-check failure.
func Validation(err error) error {
	return &ValidationError{Reason: err.Error()}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// StateConflictError reports an operation precondition violated by the
// current state of an entity.
type StateConflictError struct {
	Entity string
	ID     int64
	Reason string
}

func (e *StateConflictError) Error() string {
	return fmt.Sprintf("%s %d: %s", e.Entity, e.ID, e.Reason)
}

// StateConflict builds a StateConflictError.
func StateConflict(entity string, id int64, reason string) error {
	return &StateConflictError{Entity: entity, ID: id, Reason: reason}
}

// IsStateConflict reports whether err is (or wraps) a StateConflictError.
func IsStateConflict(err error) bool {
	var sc *StateConflictError
	return errors.As(err, &sc)
}
