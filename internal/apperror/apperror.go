// Package apperror defines the application's error taxonomy.
//
// Every layer below HTTP returns these errors; the handler package maps
// them to status codes. Two pieces work together:
//
//   - Sentinel errors (ErrNotFound, ErrValidation, ...) checked with
//     errors.Is() anywhere in a wrapped chain.
//   - *AppError, which carries the sentinel plus a stable machine-readable
//     code, a human message, and optional details that are only shown to
//     clients in debug mode.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrValidation     = errors.New("validation error")
	ErrConflict       = errors.New("conflict")
	ErrAuthentication = errors.New("authentication failed")
	ErrAuthorization  = errors.New("authorization failed")
	ErrDatabase       = errors.New("database error")
)

// AppError is the concrete error type produced by the constructors below.
//
// Code is the stable machine-readable identifier ("NOT_FOUND_ERROR",
// "VALIDATION_ERROR", ...) that clients may switch on; Message is for
// humans. Details hold internal context (field breakdowns, wrapped driver
// errors) and MUST only reach a response body when debug mode is on — the
// HTTP layer enforces that.
type AppError struct {
	Err     error  // sentinel, for errors.Is
	Code    string // stable machine-readable code
	Message string // human-readable error message
	Field   string // optional: field causing a validation error
	Details string // optional: internal context, debug responses only
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound reports that a resource does not exist.
func NotFound(resource string, id int64) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Code:    "NOT_FOUND_ERROR",
		Message: fmt.Sprintf("%s not found with id %d", resource, id),
	}
}

// NotFoundByKey is NotFound keyed by a natural identifier (short code,
// email) instead of the numeric id.
func NotFoundByKey(resource, key string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Code:    "NOT_FOUND_ERROR",
		Message: fmt.Sprintf("%s not found: %s", resource, key),
	}
}

// ValidationFailed reports malformed or unsafe input.
func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Code:    "VALIDATION_ERROR",
		Message: message,
		Field:   field,
	}
}

// AuthenticationFailed reports bad credentials or a bad/expired token.
//
// The message is deliberately generic on the login path: callers must not
// reveal whether the email or the password was wrong. Internal context
// goes into Details, never into Message.
func AuthenticationFailed(message string) *AppError {
	return &AppError{
		Err:     ErrAuthentication,
		Code:    "AUTHENTICATION_ERROR",
		Message: message,
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden. Reserved for future role checks.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrAuthorization,
		Code:    "AUTHORIZATION_ERROR",
		Message: message,
	}
}

// Conflict reports a uniqueness clash, e.g. seeding a user whose email
// already exists.
func Conflict(message string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Code:    "CONFLICT_ERROR",
		Message: message,
	}
}

// Database wraps a storage failure. The driver error text lands in
// Details so production responses stay opaque while debug responses and
// server logs keep the cause.
func Database(message string, cause error) *AppError {
	e := &AppError{
		Err:     ErrDatabase,
		Code:    "DATABASE_ERROR",
		Message: message,
	}
	if cause != nil {
		e.Details = cause.Error()
	}
	return e
}
