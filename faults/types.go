package faults

import (
	"errors"
	"fmt"
	"strings"
)

type ErrorCategory string

const (
	ValidationError   ErrorCategory = "ValidationError"
	NotFoundError     ErrorCategory = "NotFoundError"
	PreconditionError ErrorCategory = "PreconditionError"
	FieldAccessError  ErrorCategory = "FieldAccessError"
	TransportError    ErrorCategory = "TransportError"
	ConstructionError ErrorCategory = "ConstructionError"
	InternalError     ErrorCategory = "InternalError"
)

type TypedError struct {
	Category ErrorCategory
	Message  string
	Cause    error

	// StatusCode and Body are set for remote failures only.
	StatusCode int
	Body       []byte
}

func (e *TypedError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Message != "" && e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return string(e.Category)
}

func (e *TypedError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func NewTypedError(category ErrorCategory, message string, cause error) *TypedError {
	return &TypedError{
		Category: category,
		Message:  message,
		Cause:    cause,
	}
}

// NewStatusError reports a non-success response. The body is kept verbatim.
func NewStatusError(statusCode int, body []byte) *TypedError {
	return &TypedError{
		Category:   TransportError,
		Message:    fmt.Sprintf("remote request failed with status %d: %s", statusCode, summarizeBody(body)),
		StatusCode: statusCode,
		Body:       append([]byte(nil), body...),
	}
}

func IsCategory(err error, category ErrorCategory) bool {
	if err == nil {
		return false
	}

	var typedErr *TypedError
	if !errors.As(err, &typedErr) {
		return false
	}
	return typedErr.Category == category
}

// StatusCode returns the remote status carried by err, or 0.
func StatusCode(err error) int {
	var typedErr *TypedError
	if !errors.As(err, &typedErr) {
		return 0
	}
	return typedErr.StatusCode
}

func summarizeBody(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return "<empty>"
	}
	if len(trimmed) > 512 {
		return trimmed[:512] + "..."
	}
	return trimmed
}
