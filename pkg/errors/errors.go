package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a unique error code
type ErrorCode int

// AppError represents an application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrNotFound ErrorCode = iota + 1000
	ErrBadRequest
	ErrUnauthorized
	ErrForbidden
	ErrInternal
	ErrRoleMismatch
	ErrUnprocessable
	ErrPayloadTooLarge
)

// RoleMismatchError is raised when a role profile is composed over an
// identity that declares a different role.
type RoleMismatchError struct {
	Expected string
	Actual   string
}

func (e *RoleMismatchError) Error() string {
	return fmt.Sprintf("role mismatch: expected %q, identity has %q", e.Expected, e.Actual)
}

// Error constructors
func NewNotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Err:     err,
	}
}

func NewBadRequest(message string, err error) *AppError {
	return &AppError{
		Code:    ErrBadRequest,
		Message: message,
		Err:     err,
	}
}

func NewInternal(err error) *AppError {
	return &AppError{
		Code:    ErrInternal,
		Message: "internal server error",
		Err:     err,
	}
}

// NewRoleMismatch wraps a RoleMismatchError so callers can match on either
// the code or the typed error.
func NewRoleMismatch(expected, actual string) *AppError {
	return &AppError{
		Code:    ErrRoleMismatch,
		Message: "role profile does not match identity",
		Err:     &RoleMismatchError{Expected: expected, Actual: actual},
	}
}

// Common errors
func NotFound(resource string, err error) *AppError {
	return NewNotFound(resource, err)
}

func BadRequest(message string, err error) *AppError {
	return NewBadRequest(message, err)
}

func Internal(err error) *AppError {
	return NewInternal(err)
}

func Unprocessable(message string, err error) *AppError {
	return &AppError{
		Code:    ErrUnprocessable,
		Message: message,
		Err:     err,
	}
}

func PayloadTooLarge(message string, err error) *AppError {
	return &AppError{
		Code:    ErrPayloadTooLarge,
		Message: message,
		Err:     err,
	}
}

// IsRoleMismatch reports whether err carries a RoleMismatchError.
func IsRoleMismatch(err error) bool {
	var rm *RoleMismatchError
	return stderrors.As(err, &rm)
}

// Code extracts the AppError code, or ErrInternal for foreign errors.
func Code(err error) ErrorCode {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrInternal
}

// HTTPStatus maps an error code onto a response status.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrNotFound:
		return http.StatusNotFound
	case ErrBadRequest:
		return http.StatusBadRequest
	case ErrUnauthorized:
		return http.StatusUnauthorized
	case ErrForbidden:
		return http.StatusForbidden
	case ErrRoleMismatch, ErrUnprocessable:
		return http.StatusUnprocessableEntity
	case ErrPayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusInternalServerError
}
