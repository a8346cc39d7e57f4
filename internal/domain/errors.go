package domain

import (
	"errors"
	"fmt"
)

// ErrorCode classifies a domain failure so callers can branch on it
// (field-level validation versus rule-level violations versus missing data).
type ErrorCode string

const (
	ErrCodeValidation ErrorCode = "VALIDATION"
	ErrCodeInvariant  ErrorCode = "INVARIANT_VIOLATION"
	ErrCodeNotFound   ErrorCode = "NOT_FOUND"
	ErrCodeContext    ErrorCode = "INVALID_CONTEXT"
)

// Error is the single error type returned for expected business failures.
// Field is set for validation failures that map to one input field.
type Error struct {
	Code    ErrorCode
	Field   string
	Message string
}

func (e *Error) Error() string {
	return string(e.Code) + ": " + e.Message
}

// NewValidationError reports malformed or missing input for a field.
func NewValidationError(field, format string, args ...any) *Error {
	return &Error{Code: ErrCodeValidation, Field: field, Message: fmt.Sprintf(format, args...)}
}

// NewInvariantError reports a business rule that the requested operation would break.
func NewInvariantError(format string, args ...any) *Error {
	return &Error{Code: ErrCodeInvariant, Message: fmt.Sprintf(format, args...)}
}

// NewNotFoundError reports an aggregate absent for the given tenant key.
func NewNotFoundError(entity, id string) *Error {
	return &Error{Code: ErrCodeNotFound, Message: fmt.Sprintf("%s %s not found", entity, id)}
}

// NewContextError reports a missing or malformed tenant/auth context.
func NewContextError(field, format string, args ...any) *Error {
	return &Error{Code: ErrCodeContext, Field: field, Message: fmt.Sprintf(format, args...)}
}

// CodeOf returns the ErrorCode carried by err, or "" for infrastructure errors.
func CodeOf(err error) ErrorCode {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

func IsValidation(err error) bool { return CodeOf(err) == ErrCodeValidation }

func IsInvariant(err error) bool { return CodeOf(err) == ErrCodeInvariant }

func IsNotFound(err error) bool { return CodeOf(err) == ErrCodeNotFound }

func IsContext(err error) bool { return CodeOf(err) == ErrCodeContext }

// FieldOf returns the offending field of a validation or context error.
func FieldOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Field
	}
	return ""
}
