// Package errors provides typed domain errors with machine-readable codes
// for the gift certificate API.
//
// Usage:
//
//	// In stores and services, return typed errors
//	if rows == 0 {
//	    return errors.WrongIDf("gift certificate", id)
//	}
//
//	// In handlers, check with errors.Is against the sentinels
//	if errors.Is(err, errors.ErrWrongID) {
//	    // translate to 404
//	}
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Re-export standard library functions for convenience.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
)

// Code represents a machine-readable error code.
type Code string

// Error codes used throughout the application.
const (
	CodeInvalidSortToken    Code = "INVALID_SORT_TOKEN"
	CodeInvalidTagName      Code = "INVALID_TAG_NAME"
	CodeDuplicateKey        Code = "DUPLICATE_KEY"
	CodeWrongID             Code = "WRONG_ID"
	CodeTagForUserNotFound  Code = "TAG_FOR_USER_NOT_FOUND"
	CodeWrongOrderIDForUser Code = "WRONG_ORDER_ID_FOR_USER"
	CodeWrongOrderFields    Code = "WRONG_ORDER_FIELDS"
	CodeUnsupported         Code = "UNSUPPORTED_OPERATION"
	CodeValidation          Code = "VALIDATION"
	CodeStorage             Code = "STORAGE"
)

// HTTPStatus returns the appropriate HTTP status code for an error code.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeWrongID, CodeTagForUserNotFound, CodeWrongOrderIDForUser:
		return http.StatusNotFound
	case CodeDuplicateKey:
		return http.StatusConflict
	case CodeInvalidSortToken, CodeInvalidTagName, CodeWrongOrderFields, CodeValidation:
		return http.StatusBadRequest
	case CodeUnsupported:
		return http.StatusMethodNotAllowed
	default:
		return http.StatusInternalServerError
	}
}

// Error is a domain error with a code, message, and optional details.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error  // unexported, for wrapping
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target matches this error.
// Matches if target is an *Error with the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// HTTPStatus returns the HTTP status code for this error.
func (e *Error) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// WithDetails returns a new error with additional details.
func (e *Error) WithDetails(details any) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		cause:   e.cause,
	}
}

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		cause:   err,
	}
}

// Sentinel errors for use with errors.Is().
var (
	ErrInvalidSortToken    = &Error{Code: CodeInvalidSortToken, Message: "invalid sort token"}
	ErrInvalidTagName      = &Error{Code: CodeInvalidTagName, Message: "invalid tag name"}
	ErrDuplicateKey        = &Error{Code: CodeDuplicateKey, Message: "duplicate key"}
	ErrWrongID             = &Error{Code: CodeWrongID, Message: "wrong id"}
	ErrTagForUserNotFound  = &Error{Code: CodeTagForUserNotFound, Message: "no tag found for user"}
	ErrWrongOrderIDForUser = &Error{Code: CodeWrongOrderIDForUser, Message: "order does not belong to user"}
	ErrWrongOrderFields    = &Error{Code: CodeWrongOrderFields, Message: "order references unknown user or certificate"}
	ErrUnsupported         = &Error{Code: CodeUnsupported, Message: "operation not supported"}
	ErrValidation          = &Error{Code: CodeValidation, Message: "validation error"}
	ErrStorage             = &Error{Code: CodeStorage, Message: "storage failure"}
)

// Constructor functions for creating errors with custom messages.

// InvalidSortToken creates an error for a malformed or disallowed sort token.
// The details carry the offending token, the required pattern and the
// allow-listed sortable fields.
func InvalidSortToken(token string, allowed []string) *Error {
	return &Error{
		Code:    CodeInvalidSortToken,
		Message: fmt.Sprintf("invalid sort token %q: expected field.(asc|desc)", token),
		Details: map[string]any{
			"token":          token,
			"pattern":        "field.(asc|desc)",
			"allowed_fields": allowed,
		},
	}
}

// InvalidTagName creates an error for a null or empty tag name in a filter
// or mutation.
func InvalidTagName() *Error {
	return &Error{Code: CodeInvalidTagName, Message: "tag name must be a non-empty string"}
}

// DuplicateKeyf creates a duplicate key error with a formatted message.
func DuplicateKeyf(format string, args ...any) *Error {
	return &Error{Code: CodeDuplicateKey, Message: fmt.Sprintf(format, args...)}
}

// WrongIDf creates a not-found error naming the resource kind and id.
func WrongIDf(kind string, id int64) *Error {
	return &Error{
		Code:    CodeWrongID,
		Message: fmt.Sprintf("requested %s not found (id=%d)", kind, id),
		Details: map[string]any{"resource": kind, "id": id},
	}
}

// TagForUserNotFound creates a not-found error for the aggregate tag query.
func TagForUserNotFound(userID int64) *Error {
	return &Error{
		Code:    CodeTagForUserNotFound,
		Message: fmt.Sprintf("no tag found for user (id=%d)", userID),
		Details: map[string]any{"user_id": userID},
	}
}

// WrongOrderIDForUser creates a not-found error for an order that does not
// exist or belongs to another user.
func WrongOrderIDForUser(orderID, userID int64) *Error {
	return &Error{
		Code:    CodeWrongOrderIDForUser,
		Message: fmt.Sprintf("order (id=%d) not found for user (id=%d)", orderID, userID),
		Details: map[string]any{"order_id": orderID, "user_id": userID},
	}
}

// WrongOrderFields creates an error for an order creation referencing an
// unknown user or certificate.
func WrongOrderFields(userID, certificateID int64) *Error {
	return &Error{
		Code:    CodeWrongOrderFields,
		Message: fmt.Sprintf("cannot create order: user (id=%d) or certificate (id=%d) does not exist", userID, certificateID),
		Details: map[string]any{"user_id": userID, "gift_certificate_id": certificateID},
	}
}

// Unsupported creates an error for an operation intentionally not
// implemented for an entity kind.
func Unsupported(op string) *Error {
	return &Error{Code: CodeUnsupported, Message: op + " is not supported"}
}

// Validation creates a validation error.
func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// ValidationWithDetails creates a validation error with details.
func ValidationWithDetails(msg string, details any) *Error {
	return &Error{Code: CodeValidation, Message: msg, Details: details}
}

// Storage wraps an unclassified storage-level error. The underlying error is
// preserved for logs but the message stays generic so storage internals do
// not leak to clients.
func Storage(err error) *Error {
	return &Error{Code: CodeStorage, Message: "storage failure", cause: err}
}
