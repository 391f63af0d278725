// Package shared contains common domain types and errors that are used across
// all domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Entity errors
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")

	// Validation errors
	ErrValidation      = errors.New("validation error")
	ErrInvalidInput    = errors.New("invalid input")
	ErrEmptyValue      = errors.New("value cannot be empty")
	ErrValueOutOfRange = errors.New("value out of range")
	ErrInvalidFormat   = errors.New("invalid format")

	// Authorization errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// Cache errors
	ErrCacheUnavailable = errors.New("cache unavailable")

	// External service errors
	ErrExternalService    = errors.New("external service error")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrTimeout            = errors.New("operation timeout")
	ErrRateLimited        = errors.New("rate limited")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "content", "progress", "user"
	Op      string // Operation that failed, e.g., "Generate", "Record"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Content domain errors
var (
	ErrTopicNotAppropriate = NewDomainError("content", "Validate", ErrValidation, "topic rejected, choose an educational topic")
	ErrTopicTooShort       = NewDomainError("content", "Validate", ErrValidation, "topic must be at least 2 characters")
	ErrInvalidSkillLevel   = NewDomainError("content", "Validate", ErrValidation, "unknown skill level")
	ErrGenerationFailed    = NewDomainError("content", "Generate", ErrExternalService, "content generation failed")
	ErrContentNotFound     = NewDomainError("content", "Resolve", ErrNotFound, "no article exists for this topic and dimension")
)

// Progress domain errors
var (
	ErrProgressWriteFailed = NewDomainError("progress", "Record", ErrServiceUnavailable, "failed to persist progress")
	ErrInvalidTimeSpent    = NewDomainError("progress", "Validate", ErrValueOutOfRange, "time spent cannot be negative")
)

// User domain errors
var (
	ErrUserNotFound       = NewDomainError("user", "Find", ErrNotFound, "user not found")
	ErrUserAlreadyExists  = NewDomainError("user", "Register", ErrAlreadyExists, "email already registered")
	ErrInvalidCredentials = NewDomainError("user", "Login", ErrUnauthorized, "invalid email or password")
	ErrInvalidToken       = NewDomainError("user", "Authenticate", ErrUnauthorized, "invalid or expired token")
)

// External service errors
var (
	ErrProviderUnavailable     = NewDomainError("openai", "Request", ErrServiceUnavailable, "generation provider is unavailable")
	ErrProviderRateLimited     = NewDomainError("openai", "Request", ErrRateLimited, "generation provider rate limit exceeded")
	ErrProviderTimeout         = NewDomainError("openai", "Request", ErrTimeout, "generation provider request timeout")
	ErrProviderInvalidResponse = NewDomainError("openai", "Parse", ErrInvalidFormat, "invalid response from generation provider")
)

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if the error is an "already exists" error.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrEmptyValue) ||
		errors.Is(err, ErrValueOutOfRange)
}

// IsUnauthorized checks if the error is an authorization failure.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrForbidden)
}

// IsExternalService checks if the error is from an external service.
func IsExternalService(err error) bool {
	return errors.Is(err, ErrExternalService) ||
		errors.Is(err, ErrServiceUnavailable) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrRateLimited)
}

// IsCacheUnavailable checks if the error is a degraded-cache condition.
// Callers treat this as a cache miss.
func IsCacheUnavailable(err error) bool {
	return errors.Is(err, ErrCacheUnavailable)
}

// IsRetryable checks if the operation can be retried.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrServiceUnavailable) ||
		errors.Is(err, ErrTimeout)
}
