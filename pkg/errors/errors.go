package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
)

// ErrorType represents different types of errors that can occur
type ErrorType string

const (
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeTransport  ErrorType = "transport"
	ErrorTypeTimeout    ErrorType = "timeout"
	ErrorTypeHTTPStatus ErrorType = "http_status"
	ErrorTypeFilesystem ErrorType = "filesystem"
	ErrorTypeData       ErrorType = "data"
	ErrorTypeUnknown    ErrorType = "unknown"
)

// Error is a failure tagged with its category. Code carries the HTTP status
// for http_status errors and is zero otherwise.
type Error struct {
	Type    ErrorType
	Message string
	Code    int
	Err     error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s error: %s", e.Type, e.Message)
	if e.Code != 0 {
		msg = fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an Error without an underlying cause
func New(t ErrorType, message string) *Error {
	return &Error{Type: t, Message: message}
}

// Wrap tags err with a type and message. A nil err yields nil.
func Wrap(t ErrorType, message string, err error) *Error {
	if err == nil {
		return nil
	}
	return &Error{Type: t, Message: message, Err: err}
}

// Status creates an http_status error for a non-2xx response
func Status(code int, url string) *Error {
	return &Error{
		Type:    ErrorTypeHTTPStatus,
		Message: fmt.Sprintf("%s returned %d %s", url, code, http.StatusText(code)),
		Code:    code,
	}
}

// Classify maps a raw request failure and its status code (0 when no
// response arrived) to a typed Error. Already typed errors pass through.
func Classify(err error, statusCode int) *Error {
	if err == nil && statusCode == 0 {
		return nil
	}

	var typed *Error
	if stderrors.As(err, &typed) {
		return typed
	}

	if stderrors.Is(err, context.DeadlineExceeded) {
		return &Error{Type: ErrorTypeTimeout, Message: "request timed out", Err: err}
	}
	var netErr net.Error
	if stderrors.As(err, &netErr) && netErr.Timeout() {
		return &Error{Type: ErrorTypeTimeout, Message: "request timed out", Err: err}
	}
	var opErr *net.OpError
	if stderrors.As(err, &opErr) {
		return &Error{Type: ErrorTypeTransport, Message: "connection failed", Err: err}
	}

	if statusCode != 0 && (statusCode < 200 || statusCode > 299) {
		return &Error{
			Type:    ErrorTypeHTTPStatus,
			Message: fmt.Sprintf("unexpected status %d %s", statusCode, http.StatusText(statusCode)),
			Code:    statusCode,
			Err:     err,
		}
	}

	if err == nil {
		return nil
	}
	if stderrors.Is(err, context.Canceled) {
		return &Error{Type: ErrorTypeTransport, Message: "request cancelled", Err: err}
	}
	return &Error{Type: ErrorTypeTransport, Message: "request failed", Err: err}
}

// TypeOf returns the ErrorType carried by err, or unknown
func TypeOf(err error) ErrorType {
	var typed *Error
	if stderrors.As(err, &typed) {
		return typed.Type
	}
	return ErrorTypeUnknown
}

// Is reports whether err carries the given type
func Is(err error, t ErrorType) bool {
	return err != nil && TypeOf(err) == t
}

// Label returns the metric label for err
func Label(err error) string {
	return string(TypeOf(err))
}
