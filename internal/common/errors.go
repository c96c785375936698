package common

import (
	"errors"
	"fmt"
)

// ValidationError reports a missing or malformed field, a bad amount,
// or a category/type mismatch. Maps to HTTP 400.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// NewValidationError creates a validation error for a field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// NotFoundError reports a missing entry, student, template or config.
// Maps to HTTP 404.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}

// NewNotFoundError creates a not-found error for a resource
func NewNotFoundError(resource string) *NotFoundError {
	return &NotFoundError{Resource: resource}
}

// InvalidStateError reports a lifecycle transition attempted on a
// document that is not in the required state. Maps to HTTP 409.
type InvalidStateError struct {
	Resource string
	Current  string
	Action   string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot %s %s in status '%s'", e.Action, e.Resource, e.Current)
}

// NewInvalidStateError creates an invalid-state error
func NewInvalidStateError(resource, current, action string) *InvalidStateError {
	return &InvalidStateError{Resource: resource, Current: current, Action: action}
}

// AuthorizationError reports an actor lacking the role an operation
// requires. Maps to HTTP 403.
type AuthorizationError struct {
	Message string
}

func (e *AuthorizationError) Error() string {
	return e.Message
}

// NewAuthorizationError creates an authorization error
func NewAuthorizationError(message string) *AuthorizationError {
	return &AuthorizationError{Message: message}
}

// IsValidation reports whether err is a ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound reports whether err is a NotFoundError
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsInvalidState reports whether err is an InvalidStateError
func IsInvalidState(err error) bool {
	var is *InvalidStateError
	return errors.As(err, &is)
}

// IsAuthorization reports whether err is an AuthorizationError
func IsAuthorization(err error) bool {
	var ae *AuthorizationError
	return errors.As(err, &ae)
}
