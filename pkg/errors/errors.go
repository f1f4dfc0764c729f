// Package errors provides the error type shared by the wallet client packages
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Standard error functions
var (
	Is     = errors.Is
	As     = errors.As
	Join   = errors.Join
	Unwrap = errors.Unwrap
)

// Error kinds
const (
	KindUnknown   = "Unknown"
	KindTransport = "Transport"
	KindStatus    = "Status"
	KindDecode    = "Decode"
	KindEncode    = "Encode"
	KindInvalid   = "Invalid"
)

var (
	Transport = NewWithKind(KindTransport)
	Status    = NewWithKind(KindStatus)
	Decode    = NewWithKind(KindDecode)
	Encode    = NewWithKind(KindEncode)
	Invalid   = NewWithKind(KindInvalid)
)

// Error is a custom error type for passing more information
type Error struct {
	// Kind is the returned error type
	Kind string `json:"kind"`
	// Message is the human readable string that indicate the error.
	// For status errors it holds the message reported by the remote service.
	Message string `json:"message"`
	// StatusCode is the HTTP status returned by the remote service, if any.
	StatusCode int `json:"status_code,omitempty"`

	cause error
}

var _ error = (*Error)(nil)

func New(message string) *Error {
	return &Error{Kind: KindUnknown, Message: message}
}

func NewWithKind(kind string) *Error {
	return &Error{Kind: kind}
}

func Wrap(err error) *Error {
	return &Error{Kind: KindUnknown, cause: err}
}

// Error implements error
func (e *Error) Error() string {
	str := fmt.Sprintf("[%s] ", e.Kind)
	if e.StatusCode != 0 {
		str += fmt.Sprintf("%d %s ", e.StatusCode, http.StatusText(e.StatusCode))
	}
	if e.Message != "" {
		str += e.Message
	}
	if e.cause != nil {
		str += fmt.Sprintf(" (%s)", e.cause)
	}
	return str
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// Wrap returns a copy of the error with the given cause
func (e *Error) Wrap(cause error) *Error {
	err := *e
	err.cause = cause
	return &err
}

// Explain makes a copy of the error with given message
func (e *Error) Explain(message string, args ...any) *Error {
	err := *e
	err.Message = fmt.Sprintf(message, args...)
	return &err
}

// WithStatus makes a copy of the error carrying the HTTP status code
func (e *Error) WithStatus(code int) *Error {
	err := *e
	err.StatusCode = code
	return &err
}

// Is implements the needed interface for errors.Is
// It checks kind for equality
func (e *Error) Is(target error) bool {
	if e == nil {
		return target == nil
	}
	if other, ok := target.(*Error); ok {
		return other.Kind == e.Kind
	}
	return false
}

// KindOf returns the kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) string {
	var e *Error
	if As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
