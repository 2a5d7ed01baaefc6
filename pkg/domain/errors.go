package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a domain-specific error with a code and message
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Error codes
const (
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeAIResponse    = "AI_RESPONSE_INVALID"
	ErrCodeAIUnavailable = "AI_PROVIDER_UNAVAILABLE"
	ErrCodeStoreWrite    = "STORE_WRITE_FAILED"
	ErrCodeInternal      = "INTERNAL_ERROR"
	ErrCodeConflict      = "CONFLICT"
	ErrCodeUnauthorized  = "UNAUTHORIZED"
)

// Error constructors

// NewNotFoundError creates a new not found error
func NewNotFoundError(resource string) error {
	return &DomainError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

// NewValidationError creates a new validation error
func NewValidationError(msg string) error {
	return &DomainError{
		Code:    ErrCodeValidation,
		Message: msg,
	}
}

// NewAIResponseError marks model output that was empty or did not
// match the expected schema. Job-fatal, never retried by the worker.
func NewAIResponseError(msg string, err error) error {
	return &DomainError{
		Code:    ErrCodeAIResponse,
		Message: msg,
		Err:     err,
	}
}

// NewAIUnavailableError marks a transport failure talking to the
// model provider, distinct from a malformed response.
func NewAIUnavailableError(err error) error {
	return &DomainError{
		Code:    ErrCodeAIUnavailable,
		Message: "AI provider request failed",
		Err:     err,
	}
}

// NewStoreWriteError marks a persistence failure that exhausted its
// retry budget.
func NewStoreWriteError(err error) error {
	return &DomainError{
		Code:    ErrCodeStoreWrite,
		Message: "persistent store write failed",
		Err:     err,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(err error) error {
	return &DomainError{
		Code:    ErrCodeInternal,
		Message: "An internal error occurred",
		Err:     err,
	}
}

// NewUnauthorizedError creates a new unauthorized error
func NewUnauthorizedError() error {
	return &DomainError{
		Code:    ErrCodeUnauthorized,
		Message: "Authentication required",
	}
}

// Helper functions to check error types

func codeOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// IsNotFound checks if the error is a not found error
func IsNotFound(err error) bool {
	return codeOf(err) == ErrCodeNotFound
}

// IsValidation checks if the error is a validation error
func IsValidation(err error) bool {
	return codeOf(err) == ErrCodeValidation
}

// IsAIResponse checks if the error is a malformed model output error
func IsAIResponse(err error) bool {
	return codeOf(err) == ErrCodeAIResponse
}

// IsAIUnavailable checks if the error is an AI transport error
func IsAIUnavailable(err error) bool {
	return codeOf(err) == ErrCodeAIUnavailable
}

// IsUnauthorized checks if the error is an unauthorized error
func IsUnauthorized(err error) bool {
	return codeOf(err) == ErrCodeUnauthorized
}
