package faults

import (
	"errors"
	"sort"
	"strings"
)

type ErrorCategory string

const (
	ValidationError ErrorCategory = "ValidationError"
	NotFoundError   ErrorCategory = "NotFoundError"
	ConflictError   ErrorCategory = "ConflictError"
	AuthError       ErrorCategory = "AuthError"
	TransportError  ErrorCategory = "TransportError"
	InternalError   ErrorCategory = "InternalError"
)

// TypedError carries the category used to classify remote failures plus any
// per-field validation messages extracted from the backend error payload.
type TypedError struct {
	Category ErrorCategory
	Message  string
	Fields   map[string][]string
	Cause    error
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

// FieldSummary flattens per-field validation messages into the
// "field: a, b | other: c" form surfaced to users.
func (e *TypedError) FieldSummary() string {
	if e == nil || len(e.Fields) == 0 {
		return ""
	}

	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		messages := e.Fields[name]
		if len(messages) == 0 {
			continue
		}
		parts = append(parts, name+": "+strings.Join(messages, ", "))
	}
	return strings.Join(parts, " | ")
}

func NewTypedError(category ErrorCategory, message string, cause error) *TypedError {
	return &TypedError{
		Category: category,
		Message:  message,
		Cause:    cause,
	}
}

func NewFieldError(category ErrorCategory, message string, fields map[string][]string) *TypedError {
	return &TypedError{
		Category: category,
		Message:  message,
		Fields:   fields,
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

// UserMessage extracts the user-facing message from any error, preferring the
// typed message when present.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var typedErr *TypedError
	if errors.As(err, &typedErr) && typedErr.Message != "" {
		return typedErr.Message
	}
	return err.Error()
}
