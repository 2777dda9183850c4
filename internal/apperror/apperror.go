package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is the client-visible error category.
type Code string

const (
	CodeAuthRequired  Code = "AUTH_REQUIRED"
	CodeAuthInvalid   Code = "AUTH_INVALID"
	CodeNotAuthorized Code = "NOT_AUTHORIZED"
	CodeValidation    Code = "VALIDATION"
	CodeNotFound      Code = "NOT_FOUND"
	CodeInternal      Code = "INTERNAL"
	// CodeUnavailable marks a storage timeout or connection failure. The
	// caller may retry with bounded attempts.
	CodeUnavailable Code = "UNAVAILABLE"
)

type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error with the same code, so errors.Is(err, apperror.NotFound)
// style checks work against the sentinels below.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code && t.Message == ""
}

func (e *Error) Retryable() bool {
	return e.Code == CodeUnavailable
}

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Wrap(code Code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// Sentinels for errors.Is checks.
var (
	AuthRequired  = &Error{Code: CodeAuthRequired}
	AuthInvalid   = &Error{Code: CodeAuthInvalid}
	NotAuthorized = &Error{Code: CodeNotAuthorized}
	Validation    = &Error{Code: CodeValidation}
	NotFound      = &Error{Code: CodeNotFound}
	Internal      = &Error{Code: CodeInternal}
	Unavailable   = &Error{Code: CodeUnavailable}
)

// CodeOf returns the taxonomy code carried by err, INTERNAL for foreign errors.
func CodeOf(err error) Code {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeInternal
}

// MessageOf returns a client-safe message. Causes are never exposed.
func MessageOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) && ae.Message != "" {
		return ae.Message
	}
	return "internal error"
}

func IsRetryable(err error) bool {
	return CodeOf(err) == CodeUnavailable
}

func HTTPStatus(code Code) int {
	switch code {
	case CodeAuthRequired, CodeAuthInvalid:
		return http.StatusUnauthorized
	case CodeNotAuthorized:
		return http.StatusForbidden
	case CodeValidation:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
