// Package domainerrors carries typed, code-bearing errors from services to transports.
//
// Services return *Error values so handlers can map them to HTTP responses without
// string matching. Stores never build these directly; they return sentinel errors
// (see pkg/platform/sentinel) which services translate.
package domainerrors

import (
	"errors"
	"maps"
)

// Code classifies an error for transport mapping and retry decisions.
type Code string

const (
	CodeBadRequest         Code = "bad_request"
	CodeInvalidInput       Code = "invalid_input"
	CodeValidation         Code = "validation_error"
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
	CodeInvariantViolation Code = "invariant_violation"
	CodeUnauthorized       Code = "unauthorized"
	CodeForbidden          Code = "forbidden"
	CodeTimeout            Code = "timeout"
	CodeInternal           Code = "internal_error"

	// CodeBlacklisted: credentials collide with an in-force blacklist entry.
	CodeBlacklisted Code = "blocked_blacklisted"
	// CodeDuplicateCredential: email, phone or license already held by another identity.
	CodeDuplicateCredential Code = "blocked_duplicate_credential"
)

// Retryable reports whether a caller may retry an operation that failed with this code.
// Only storage failures qualify; policy violations are terminal.
func (c Code) Retryable() bool {
	return c == CodeInternal || c == CodeTimeout
}

// Error is a domain error with a stable code and optional structured details.
type Error struct {
	Code    Code
	Message string
	Details map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message != "" {
		return e.Message + ": " + e.Err.Error()
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Code)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New builds a domain error with the given code and message.
func New(code Code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, Err: err}
}

// WithDetails returns a copy of e carrying the provided key/value details.
func (e *Error) WithDetails(details map[string]string) *Error {
	out := *e
	out.Details = make(map[string]string, len(e.Details)+len(details))
	maps.Copy(out.Details, e.Details)
	maps.Copy(out.Details, details)
	return &out
}

// HasCode reports whether any *Error in err's chain carries code.
func HasCode(err error, code Code) bool {
	var de *Error
	if !errors.As(err, &de) {
		return false
	}
	if de.Code == code {
		return true
	}
	return de.Err != nil && HasCode(de.Err, code)
}

// Is is an alias of HasCode kept for call sites that read better with it.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// CodeOf returns the code of the outermost *Error in err's chain, or CodeInternal.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// DetailsOf returns the structured details of the outermost *Error in err's chain.
func DetailsOf(err error) map[string]string {
	var de *Error
	if errors.As(err, &de) {
		return de.Details
	}
	return nil
}
