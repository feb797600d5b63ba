// Package errors classifies failures of the attack lookup tool by code.
//
// A code tells callers whether to degrade or surface a failure. Network and
// timeout failures while checking for a newer ATT&CK release fall back to
// the cached dataset; NOT_FOUND on the cache directory means a first run;
// PARSE_ERROR on a dataset file aborts that load.
//
//	err := errors.Wrap(errors.ErrCodeNetwork, cause, "list tags")
//	if errors.IsNetwork(err) {
//	    // use the newest cached dataset
//	}
//
// HTTPStatus and ExitCode translate codes for the server and the CLI.
package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Code is a machine-readable failure class.
type Code string

const (
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"

	ErrCodeNotFound        Code = "NOT_FOUND"
	ErrCodeVersionNotFound Code = "VERSION_NOT_FOUND"

	ErrCodeNetwork Code = "NETWORK_ERROR"
	ErrCodeTimeout Code = "TIMEOUT"

	ErrCodeParse Code = "PARSE_ERROR"

	ErrCodeCancelled Code = "CANCELLED"
	ErrCodeInternal  Code = "INTERNAL_ERROR"
)

// Error carries a code, a message for people and an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return string(e.Code) + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an Error with a formatted message and no cause.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches code and message to cause. A cancelled context always
// yields CANCELLED, and an expired deadline under a network code yields
// TIMEOUT.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	switch {
	case errors.Is(cause, context.Canceled):
		code = ErrCodeCancelled
	case code == ErrCodeNetwork && errors.Is(cause, context.DeadlineExceeded):
		code = ErrCodeTimeout
	}
	e := New(code, format, args...)
	e.Cause = cause
	return e
}

// Is reports whether any *Error in err's chain has code.
func Is(err error, code Code) bool {
	var e *Error
	for errors.As(err, &e) {
		if e.Code == code {
			return true
		}
		err = e.Cause
	}
	return false
}

// IsNetwork reports whether err is a network or timeout failure.
func IsNetwork(err error) bool {
	return Is(err, ErrCodeNetwork) || Is(err, ErrCodeTimeout)
}

// GetCode returns the outermost code in err's chain, or "".
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns err's message without the code prefix or cause.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// HTTPStatus maps err to the status an API handler should answer with.
// Upstream failures become 502 or 504; uncoded errors become 500.
func HTTPStatus(err error) int {
	switch GetCode(err) {
	case ErrCodeInvalidInput:
		return http.StatusBadRequest
	case ErrCodeNotFound, ErrCodeVersionNotFound:
		return http.StatusNotFound
	case ErrCodeNetwork:
		return http.StatusBadGateway
	case ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case ErrCodeCancelled:
		return 499
	default:
		return http.StatusInternalServerError
	}
}

// ExitCode maps err to a process exit status. Cancellation uses the shell
// convention for SIGINT; bad input or configuration uses 2.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled), Is(err, ErrCodeCancelled):
		return 130
	case Is(err, ErrCodeInvalidInput), Is(err, ErrCodeInvalidConfig):
		return 2
	default:
		return 1
	}
}
