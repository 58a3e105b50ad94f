package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure for boundary status mapping.
type Kind int

const (
	// KindStorage covers opaque backend failures; the default for unclassified errors.
	KindStorage Kind = iota
	// KindValidation marks malformed or out-of-range input rejected before any store access.
	KindValidation
	// KindUnauthorized marks requests with no established caller identity.
	KindUnauthorized
	// KindForbidden marks mutations attempted by a caller who is not the record's creator.
	KindForbidden
	// KindNotFound marks a syntactically valid identifier with no matching row.
	KindNotFound
	// KindConflict marks mutations blocked by dependent rows.
	KindConflict
)

// Error carries a failure kind plus a dotted operation code such as
// "sites.update.forbidden".
type Error struct {
	kind    Kind
	code    string
	message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause == nil {
		return fmt.Sprintf("%s: %s", e.code, e.message)
	}
	return fmt.Sprintf("%s: %s: %v", e.code, e.message, e.cause)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Kind reports the failure classification.
func (e *Error) Kind() Kind {
	return e.kind
}

// Code returns the dotted operation code.
func (e *Error) Code() string {
	return e.code
}

// Message returns the caller-facing message.
func (e *Error) Message() string {
	return e.message
}

// Validation builds a KindValidation error.
func Validation(code, message string) *Error {
	return &Error{kind: KindValidation, code: code, message: message}
}

// Unauthorized builds a KindUnauthorized error.
func Unauthorized(code, message string) *Error {
	return &Error{kind: KindUnauthorized, code: code, message: message}
}

// Forbidden builds a KindForbidden error.
func Forbidden(code, message string) *Error {
	return &Error{kind: KindForbidden, code: code, message: message}
}

// NotFound builds a KindNotFound error.
func NotFound(code, message string) *Error {
	return &Error{kind: KindNotFound, code: code, message: message}
}

// Conflict builds a KindConflict error.
func Conflict(code, message string) *Error {
	return &Error{kind: KindConflict, code: code, message: message}
}

// Storage wraps an opaque backend failure without interpreting it.
func Storage(code string, cause error) *Error {
	return &Error{kind: KindStorage, code: code, message: "storage failure", cause: cause}
}

// KindOf extracts the kind from an error chain, defaulting to KindStorage.
func KindOf(err error) Kind {
	var appError *Error
	if errors.As(err, &appError) {
		return appError.Kind()
	}
	return KindStorage
}

// MessageOf extracts the caller-facing message from an error chain.
func MessageOf(err error) string {
	var appError *Error
	if errors.As(err, &appError) {
		return appError.Message()
	}
	return "internal error"
}

// CodeOf extracts the dotted operation code from an error chain.
func CodeOf(err error) string {
	var appError *Error
	if errors.As(err, &appError) {
		return appError.Code()
	}
	return ""
}
