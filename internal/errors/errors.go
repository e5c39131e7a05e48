// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrTradeNotFound   = errors.New("trade not found")
	ErrInvalidTrade    = errors.New("invalid trade")
	ErrDuplicateMethod = errors.New("method already exists")
	ErrMethodNotFound  = errors.New("method not found")
	ErrEmptyMethod     = errors.New("method name is empty")
	ErrPersistence     = errors.New("persistence failure")
	ErrImage           = errors.New("image store failure")
	ErrImageNotFound   = errors.New("image not found")
	ErrNoData          = errors.New("no data")
	ErrConfigInvalid   = errors.New("invalid configuration")
)

// ValidationError represents a validation error.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s (%v): %s", e.Field, e.Value, e.Message)
}

// Unwrap lets callers match validation failures with ErrInvalidTrade.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidTrade
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// PersistenceError represents a failed write to a journal store.
type PersistenceError struct {
	Store     string
	Operation string
	Err       error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence error [%s] %s: %v", e.Store, e.Operation, e.Err)
}

func (e *PersistenceError) Unwrap() []error {
	return []error{ErrPersistence, e.Err}
}

// NewPersistenceError creates a new PersistenceError.
func NewPersistenceError(store, operation string, err error) *PersistenceError {
	return &PersistenceError{
		Store:     store,
		Operation: operation,
		Err:       err,
	}
}

// ImageError represents a failure to decode or store a trade image.
type ImageError struct {
	Reference string
	Reason    string
	Err       error
}

func (e *ImageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("image error [%s]: %s: %v", e.Reference, e.Reason, e.Err)
	}
	return fmt.Sprintf("image error [%s]: %s", e.Reference, e.Reason)
}

func (e *ImageError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrImage, e.Err}
	}
	return []error{ErrImage}
}

// NewImageError creates a new ImageError.
func NewImageError(reference, reason string, err error) *ImageError {
	return &ImageError{
		Reference: reference,
		Reason:    reason,
		Err:       err,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
