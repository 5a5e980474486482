package apperror

import (
	"errors"
	"net/http"
)

type Kind string

const (
	KindValidation         Kind = "VALIDATION_ERROR"
	KindInsufficientStock  Kind = "INSUFFICIENT_STOCK"
	KindUserNotFound       Kind = "USER_NOT_FOUND"
	KindNotFound           Kind = "NOT_FOUND"
	KindPaymentNotCaptured Kind = "PAYMENT_NOT_CAPTURED"
	KindConflict           Kind = "CONFLICT"
	KindRepository         Kind = "REPOSITORY_ERROR"
	KindService            Kind = "SERVICE_ERROR"
)

// Error carries a stable symbolic kind plus a human explanation.
// Business errors travel through layers unchanged; anything else is
// wrapped once into a KindService error by Wrap.
type Error struct {
	Kind        Kind
	Message     string
	Explanation string
	Err         error
}

func (e *Error) Error() string {
	if e.Explanation == "" {
		return e.Message
	}
	return e.Message + ": " + e.Explanation
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on Kind so errors.Is(err, ErrInsufficientStock) works for any
// insufficient-stock error regardless of its message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrValidation         = &Error{Kind: KindValidation, Message: "validation error"}
	ErrInsufficientStock  = &Error{Kind: KindInsufficientStock, Message: "insufficient stock"}
	ErrUserNotFound       = &Error{Kind: KindUserNotFound, Message: "user not found"}
	ErrNotFound           = &Error{Kind: KindNotFound, Message: "not found"}
	ErrPaymentNotCaptured = &Error{Kind: KindPaymentNotCaptured, Message: "payment not captured"}
	ErrConflict           = &Error{Kind: KindConflict, Message: "conflict"}
	ErrRepository         = &Error{Kind: KindRepository, Message: "repository error"}
	ErrService            = &Error{Kind: KindService, Message: "service error"}
)

func New(kind Kind, message, explanation string) *Error {
	return &Error{Kind: kind, Message: message, Explanation: explanation}
}

func Validation(explanation string) *Error {
	return New(KindValidation, "Invalid request", explanation)
}

func InsufficientStock(message, explanation string) *Error {
	return New(KindInsufficientStock, message, explanation)
}

func UserNotFound(explanation string) *Error {
	return New(KindUserNotFound, "User not found", explanation)
}

func NotFound(explanation string) *Error {
	return New(KindNotFound, "Not found", explanation)
}

func PaymentNotCaptured(explanation string) *Error {
	return New(KindPaymentNotCaptured, "Payment not captured", explanation)
}

func Conflict(explanation string) *Error {
	return New(KindConflict, "Conflict", explanation)
}

// Repository marks a persistence failure. Errors that already carry a kind pass through.
func Repository(err error) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return err
	}
	return &Error{Kind: KindRepository, Message: "Repository error", Explanation: err.Error(), Err: err}
}

// Wrap turns an unexpected error into a service error that keeps the
// original message as its explanation.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return err
	}
	return &Error{Kind: KindService, Message: message, Explanation: err.Error(), Err: err}
}

func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindService
}

func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindInsufficientStock, KindConflict:
		return http.StatusConflict
	case KindUserNotFound, KindNotFound:
		return http.StatusNotFound
	case KindPaymentNotCaptured:
		return http.StatusPaymentRequired
	case KindRepository:
		return http.StatusInternalServerError
	default:
		return http.StatusBadGateway
	}
}
