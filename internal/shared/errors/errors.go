// Package errors provides application-level error types and utilities.
// It defines the error kinds the workflows report back to chat users and operators.
package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrorTypeValidation    ErrorType = "validation_error"
	ErrorTypeNotFound      ErrorType = "not_found"
	ErrorTypeStateConflict ErrorType = "state_conflict"
	ErrorTypePersistence   ErrorType = "persistence_error"
	ErrorTypeProvisioning  ErrorType = "provisioning_error"
	ErrorTypeForbidden     ErrorType = "forbidden"
	ErrorTypeRateLimited   ErrorType = "rate_limited"
	ErrorTypeInternal      ErrorType = "internal_error"
)

// AppError represents an application error with additional context
type AppError struct {
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
	cause   error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *AppError) Unwrap() error {
	return e.cause
}

func newAppError(t ErrorType, message string, details []string) *AppError {
	detail := ""
	if len(details) > 0 {
		detail = details[0]
	}
	return &AppError{
		Type:    t,
		Message: message,
		Details: detail,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeValidation, message, details)
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeNotFound, message, details)
}

// NewStateConflictError creates an error for an operation that does not fit the record's current state.
func NewStateConflictError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeStateConflict, message, details)
}

// NewForbiddenError creates a new forbidden error
func NewForbiddenError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeForbidden, message, details)
}

// NewRateLimitedError creates a new rate limited error
func NewRateLimitedError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeRateLimited, message, details)
}

// NewInternalError creates a new internal error
func NewInternalError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeInternal, message, details)
}

// NewPersistenceError wraps a store write failure.
func NewPersistenceError(message string, cause error) *AppError {
	e := newAppError(ErrorTypePersistence, message, nil)
	e.cause = cause
	if cause != nil {
		e.Details = cause.Error()
	}
	return e
}

// NewProvisioningError wraps a failure to issue a command to a provisioning node.
func NewProvisioningError(message string, cause error) *AppError {
	e := newAppError(ErrorTypeProvisioning, message, nil)
	e.cause = cause
	if cause != nil {
		e.Details = cause.Error()
	}
	return e
}

// IsAppError checks if the error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError extracts AppError from error
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

func isType(err error, t ErrorType) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == t
}

// IsValidationError checks if the error is a validation error
func IsValidationError(err error) bool {
	return isType(err, ErrorTypeValidation)
}

// IsNotFoundError checks if the error is a not found error
func IsNotFoundError(err error) bool {
	return isType(err, ErrorTypeNotFound)
}

// IsStateConflictError checks if the error is a state conflict error
func IsStateConflictError(err error) bool {
	return isType(err, ErrorTypeStateConflict)
}

// IsPersistenceError checks if the error is a persistence error
func IsPersistenceError(err error) bool {
	return isType(err, ErrorTypePersistence)
}

// IsProvisioningError checks if the error is a provisioning error
func IsProvisioningError(err error) bool {
	return isType(err, ErrorTypeProvisioning)
}

// IsForbiddenError checks if the error is a forbidden error
func IsForbiddenError(err error) bool {
	return isType(err, ErrorTypeForbidden)
}
