// Package apperr defines the caller-visible error taxonomy. Every error that
// crosses the API boundary carries one machine-matchable Code; the Message is
// for logs and the optional human text, and Cause is never rendered.
package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies an error for transport mapping.
type Kind int

const (
	KindInternal Kind = iota
	KindUnauthenticated
	KindEntitlementRequired
	KindValidation
	KindConflict
	KindNotFound
	KindPersistence
)

// Code is a machine-readable error token.
type Code string

const (
	CodeUnauthenticated      Code = "unauthenticated"
	CodeSubscriptionRequired Code = "subscription_required"

	// Budget
	CodeIncomeInvalid Code = "income_invalid"
	CodeMonthInvalid  Code = "month_invalid"

	// Fast campaign
	CodeCategoriesRequired Code = "categories_required"
	CodeAmountInvalid      Code = "amount_invalid"
	CodeFastExists         Code = "fast_exists"
	CodeFastNotFound       Code = "fast_not_found"
	CodeFastClosed         Code = "fast_closed"
	CodeDayInvalid         Code = "day_invalid"
	CodeDayInFuture        Code = "day_in_future"
	CodeReflectionTooLong  Code = "reflection_too_long"

	// Request shape
	CodeBadRequest        Code = "bad_request"
	CodeUnsupportedAction Code = "unsupported_action"

	CodePersistence Code = "persistence_error"
	CodeInternal    Code = "internal_error"
)

// Error is the domain error type.
type Error struct {
	Code    Code
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// HTTPStatus maps the error kind to a response status. A conflict is reported
// as 400 because clients match on the code, not the status.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindEntitlementRequired:
		return http.StatusPaymentRequired
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func Validation(code Code, message string) *Error {
	return &Error{Code: code, Kind: KindValidation, Message: message}
}

func Conflict(code Code, message string) *Error {
	return &Error{Code: code, Kind: KindConflict, Message: message}
}

func NotFound(code Code, message string) *Error {
	return &Error{Code: code, Kind: KindNotFound, Message: message}
}

func Unauthenticated(message string) *Error {
	return &Error{Code: CodeUnauthenticated, Kind: KindUnauthenticated, Message: message}
}

func EntitlementRequired(message string) *Error {
	return &Error{Code: CodeSubscriptionRequired, Kind: KindEntitlementRequired, Message: message}
}

// Persistence wraps a datastore failure.
func Persistence(message string, cause error) *Error {
	return &Error{Code: CodePersistence, Kind: KindPersistence, Message: message, Cause: cause}
}

// As extracts an *Error from err. Anything else is reported as an internal
// error wrapping err.
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Code: CodeInternal, Kind: KindInternal, Message: "internal error", Cause: err}
}

// HasCode reports whether err carries code.
func HasCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}
