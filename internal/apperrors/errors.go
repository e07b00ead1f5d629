package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies an expected business failure. Callers switch on the kind,
// never on the message.
type Kind string

const (
	KindNotFound           Kind = "NOT_FOUND"
	KindOutOfStock         Kind = "OUT_OF_STOCK"
	KindInvalidState       Kind = "INVALID_STATE"
	KindExpired            Kind = "EXPIRED"
	KindBelowMinimum       Kind = "BELOW_MINIMUM"
	KindInsufficientPoints Kind = "INSUFFICIENT_POINTS"
	KindDuplicate          Kind = "DUPLICATE"
	KindEmptyCart          Kind = "EMPTY_CART"
	KindUnauthorized       Kind = "UNAUTHORIZED"
	KindValidation         Kind = "VALIDATION"
)

// Error is a business error with a stable kind and a user-facing message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an Error of the given kind.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message to an underlying error.
func Wrap(kind Kind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or "" when err
// is not a business error.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

func NotFound(entity, id string) *Error {
	return New(KindNotFound, "%s %s not found", entity, id)
}

func OutOfStock(productName string) *Error {
	return New(KindOutOfStock, "insufficient stock for product: %s", productName)
}

func InvalidState(format string, args ...interface{}) *Error {
	return New(KindInvalidState, format, args...)
}

func Expired(format string, args ...interface{}) *Error {
	return New(KindExpired, format, args...)
}

func BelowMinimum(format string, args ...interface{}) *Error {
	return New(KindBelowMinimum, format, args...)
}

func InsufficientPoints(required int64) *Error {
	return New(KindInsufficientPoints, "insufficient points, you need %d points", required)
}

func Duplicate(format string, args ...interface{}) *Error {
	return New(KindDuplicate, format, args...)
}

func EmptyCart() *Error {
	return New(KindEmptyCart, "cart is empty")
}

func Unauthorized(format string, args ...interface{}) *Error {
	return New(KindUnauthorized, format, args...)
}

func Validation(format string, args ...interface{}) *Error {
	return New(KindValidation, format, args...)
}
