package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("resource not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("resource conflict")
)

// ValidationError represents a field-level validation failure.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// InvalidTransitionError is returned when a lifecycle operation is attempted
// on a job that is not in the state the operation requires.
type InvalidTransitionError struct {
	Op       string
	Required JobStatus
	Actual   JobStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s requires status %q, job is %q", e.Op, e.Required, e.Actual)
}

// StoreError wraps a failure of the underlying job store.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return "store: " + e.Op + ": " + e.Err.Error()
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
