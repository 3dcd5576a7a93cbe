// Package app implements the primary port services: the governance engine
// proper. Every state transition runs the same gate pipeline: role matrix,
// record load, state-machine guard, content validation, domain entitlement,
// then the transactional store transition.
package app

import (
	"errors"
	"fmt"

	"github.com/example/lcs/internal/ports/secondary"
)

// ValidationError marks malformed input: unknown enum values, missing
// required fields on write, bad version numbers.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a validation error.
func NewValidationError(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ForbiddenError marks a role-matrix or entitlement denial.
type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string {
	return e.Message
}

// NewForbiddenError creates a forbidden error.
func NewForbiddenError(format string, args ...any) error {
	return &ForbiddenError{Message: fmt.Sprintf(format, args...)}
}

// NotFoundError marks an unknown record, version, or registry row.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

// NewNotFoundError creates a not-found error.
func NewNotFoundError(format string, args ...any) error {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

// ConflictError marks a state-machine guard denial or a submit-time
// validation failure: the request is well-formed but the record's current
// state does not allow it.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// NewConflictError creates a conflict error.
func NewConflictError(format string, args ...any) error {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// translateStoreErr maps store sentinels onto the user-facing taxonomy.
// what names the record for the message, e.g. "task task-1@2".
func translateStoreErr(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, secondary.ErrNotFound):
		return NewNotFoundError("%s not found", what)
	case errors.Is(err, secondary.ErrStatusConflict):
		return NewConflictError("%s changed status concurrently; reload and retry", what)
	case errors.Is(err, secondary.ErrAlreadyExists):
		return NewConflictError("%s already exists", what)
	default:
		return err
	}
}
