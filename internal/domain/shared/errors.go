// Package shared contains common domain errors used across gradeform packages.
// This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Validation errors
	ErrValidation      = errors.New("validation error")
	ErrInvalidInput    = errors.New("invalid input")
	ErrEmptyValue      = errors.New("value cannot be empty")
	ErrValueOutOfRange = errors.New("value out of range")
	ErrInvalidFormat   = errors.New("invalid format")

	// State errors
	ErrInvalidState = errors.New("invalid state")

	// External service errors
	ErrExternalService    = errors.New("external service error")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrTimeout            = errors.New("operation timeout")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "grade", "calcapi", "controller"
	Op      string // Operation that failed, e.g., "ParseGrade", "Calculate"
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

// Grade domain errors
var (
	ErrEmptyGrade         = NewDomainError("grade", "ParseGrade", ErrEmptyValue, "grade is empty")
	ErrGradeNotNumeric    = NewDomainError("grade", "ParseGrade", ErrInvalidFormat, "grade is not a number")
	ErrGradeOutOfRange    = NewDomainError("grade", "ParseGrade", ErrValueOutOfRange, "grade must be between 0 and 10")
	ErrInvalidSubject     = NewDomainError("grade", "Validate", ErrValueOutOfRange, "subject index must be 1, 2 or 3")
	ErrEmptyStudentName   = NewDomainError("grade", "Validate", ErrEmptyValue, "student name is empty")
	ErrSubmissionInFlight = NewDomainError("controller", "Submit", ErrInvalidState, "a submission is already in flight")
)

// Calculation service errors
var (
	ErrCalcUnavailable     = NewDomainError("calcapi", "Request", ErrServiceUnavailable, "calculation server is unreachable")
	ErrCalcInvalidResponse = NewDomainError("calcapi", "Parse", ErrExternalService, "invalid response from calculation server")
)

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrEmptyValue) ||
		errors.Is(err, ErrValueOutOfRange) ||
		errors.Is(err, ErrInvalidFormat)
}

// IsExternalService checks if the error is from an external service.
func IsExternalService(err error) bool {
	return errors.Is(err, ErrExternalService) ||
		errors.Is(err, ErrServiceUnavailable) ||
		errors.Is(err, ErrTimeout)
}
