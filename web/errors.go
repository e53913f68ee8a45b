package web

import (
	"errors"
	"fmt"
	"net/http"
)

// Fault is a typed HTTP failure. Faults raised anywhere in a handler or the
// components it calls propagate unmodified to the dispatcher boundary, where
// they become the wire-format error envelope.
type Fault struct {
	Code    int
	Reason  string
	Message string
}

func (f *Fault) Error() string {
	return fmt.Sprintf("%d %s: %s", f.Code, f.Reason, f.Message)
}

// StatusLine is the numeric-code-plus-description form the error envelope
// carries in its code field.
func (f *Fault) StatusLine() string {
	return fmt.Sprintf("%d %s", f.Code, f.Reason)
}

func newFault(code int, message string) *Fault {
	return &Fault{Code: code, Reason: http.StatusText(code), Message: message}
}

func BadRequest(message string) *Fault {
	return newFault(http.StatusBadRequest, message)
}

func Unauthorized(message string) *Fault {
	return newFault(http.StatusUnauthorized, message)
}

func Forbidden(message string) *Fault {
	return newFault(http.StatusForbidden, message)
}

func NotFound(message string) *Fault {
	return newFault(http.StatusNotFound, message)
}

func MethodNotAllowed(message string) *Fault {
	return newFault(http.StatusMethodNotAllowed, message)
}

func TooManyRequests(message string) *Fault {
	return newFault(http.StatusTooManyRequests, message)
}

func NotImplemented(message string) *Fault {
	return newFault(http.StatusNotImplemented, message)
}

func InternalError(message string) *Fault {
	return newFault(http.StatusInternalServerError, message)
}

// asFault translates any error reaching the dispatcher boundary into a
// typed fault; untyped errors count as internal failures.
func asFault(err error) *Fault {
	var fault *Fault
	if errors.As(err, &fault) {
		return fault
	}
	return InternalError(err.Error())
}
