// Package domainerrors provides coded errors for the service layer.
//
// Services translate infrastructure sentinels (pkg/platform/sentinel) and
// model invariant failures into coded errors; the HTTP layer maps codes to
// status codes without inspecting messages. Import with the dErrors alias.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies an error for transport mapping and programmatic handling.
type Code string

const (
	CodeValidation         Code = "validation"
	CodeInvalidInput       Code = "invalid_input"
	CodeBadRequest         Code = "bad_request"
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
	CodeUnauthorized       Code = "unauthorized"
	CodeForbidden          Code = "forbidden"
	CodeInvariantViolation Code = "invariant_violation"
	CodeTimeout            Code = "timeout"
	CodeUnavailable        Code = "unavailable"
	CodeInternal           Code = "internal"
)

// Error is a coded domain error.
//
// Reason carries a stable machine-readable cause for errors that share a code
// but mean different things to the caller (admission gates all map to
// CodeConflict, distinguished by Reason). Fields carries per-field validation
// detail keyed by field or question ID so callers can render every problem at
// once instead of a single aggregate failure.
type Error struct {
	Code    Code
	Message string
	Reason  string
	Fields  map[string]string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// New creates a coded error with a message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error, preserving the
// cause for errors.Is / errors.As chains.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, cause: err}
}

// WithReason creates a coded error carrying a stable machine-readable reason.
func WithReason(code Code, reason, message string) *Error {
	return &Error{Code: code, Message: message, Reason: reason}
}

// WrapReason wraps an underlying error with a code and reason.
func WrapReason(err error, code Code, reason, message string) *Error {
	return &Error{Code: code, Message: message, Reason: reason, cause: err}
}

// WithFields creates a validation-style error carrying per-field detail.
func WithFields(code Code, message string, fields map[string]string) *Error {
	return &Error{Code: code, Message: message, Fields: fields}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// Is is an alias for HasCode kept for call-site readability.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// CodeOf extracts the code from err, defaulting to CodeInternal for uncoded
// errors so the transport layer always has a mapping.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// ReasonOf extracts the stable reason from err, or "" when absent.
func ReasonOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Reason
	}
	return ""
}

// FieldsOf extracts per-field detail from err, or nil when absent.
func FieldsOf(err error) map[string]string {
	var de *Error
	if errors.As(err, &de) {
		return de.Fields
	}
	return nil
}
