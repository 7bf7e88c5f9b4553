// Package errors carries coded errors from repos and services out to the HTTP layer.
// Import it as perr
package errors

import (
	stderrs "errors"
	"fmt"
	"net/http"
)

// ErrorCode classifies an Error for callers and clients. Values are serialized,
// append only
type ErrorCode uint16

const (
	CodeUnknown ErrorCode = iota
	CodePanic
	CodeUnavailable
	CodeTooManyRequests
	CodeConflict
	CodeUnauthorized
	CodeForbidden
	CodeInvalidArgument
	CodeValidation
	CodeJSON
	CodeNotFound
	CodeDuplicateKey
	CodeDB
)

// Status is the HTTP status for c. Codes without a mapping are server errors
func (c ErrorCode) Status() int {
	switch c {
	case CodeValidation, CodeJSON:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict, CodeDuplicateKey:
		return http.StatusConflict
	case CodeInvalidArgument:
		return http.StatusUnprocessableEntity
	case CodeTooManyRequests:
		return http.StatusTooManyRequests
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// ErrNotFound is returned by lookups that match nothing
var ErrNotFound = New(CodeNotFound, "not found")

// Error is a coded error. msg is safe to show a client; the cause is not
type Error struct {
	code  ErrorCode
	msg   string
	field string
	cause error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.cause != nil {
		return e.msg + ": " + e.cause.Error()
	}
	return e.msg
}

func (e *Error) Unwrap() error   { return e.cause }
func (e *Error) Code() ErrorCode { return e.code }
func (e *Error) Field() string   { return e.field }
func (e *Error) wire() Wire      { return Wire{Code: e.code, Message: e.msg, Field: e.field} }

// Wire is the client visible part of an error
type Wire struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Field   string    `json:"field,omitempty"`
}

// As returns the outermost *Error in err's chain
func As(err error) (*Error, bool) {
	var e *Error
	if stderrs.As(err, &e) {
		return e, true
	}
	return nil, false
}

// WireFrom renders err for a client. Errors without a code surface their text as Unknown
func WireFrom(err error) Wire {
	if err == nil {
		return Wire{}
	}
	if e, ok := As(err); ok {
		return e.wire()
	}
	return Wire{Code: CodeUnknown, Message: err.Error()}
}

// HTTP pairs WireFrom with the code's status. nil is a 200 with an empty Wire
func HTTP(err error) (int, Wire) {
	if err == nil {
		return http.StatusOK, Wire{}
	}
	w := WireFrom(err)
	return w.Code.Status(), w
}

// Root follows Unwrap until it runs out
func Root(err error) error {
	for next := stderrs.Unwrap(err); next != nil; next = stderrs.Unwrap(err) {
		err = next
	}
	return err
}

// CodeOf is the code of the outermost *Error, Unknown when there is none
func CodeOf(err error) ErrorCode {
	if e, ok := As(err); ok {
		return e.code
	}
	return CodeUnknown
}

func IsCode(err error, code ErrorCode) bool { return CodeOf(err) == code }

// WithField names the input field err is about, leaving err itself untouched.
// Errors without a code come back unchanged
func WithField(err error, field string) error {
	e, ok := As(err)
	if !ok {
		return err
	}
	cp := *e
	cp.field = field
	return &cp
}

func New(code ErrorCode, msg string) error { return &Error{code: code, msg: msg} }

func Newf(code ErrorCode, format string, a ...any) error {
	return &Error{code: code, msg: fmt.Sprintf(format, a...)}
}

// Wrap attaches code and msg to cause
func Wrap(cause error, code ErrorCode, msg string) error {
	return &Error{code: code, msg: msg, cause: cause}
}

// WrapIf is Wrap for a possibly nil error
func WrapIf(err error, code ErrorCode, msg string) error {
	if err == nil {
		return nil
	}
	return Wrap(err, code, msg)
}

func NotFoundf(format string, a ...any) error     { return Newf(CodeNotFound, format, a...) }
func InvalidArgf(format string, a ...any) error   { return Newf(CodeInvalidArgument, format, a...) }
func JSONErrf(format string, a ...any) error      { return Newf(CodeJSON, format, a...) }
func PanicErrf(format string, a ...any) error     { return Newf(CodePanic, format, a...) }
func Unauthorizedf(format string, a ...any) error { return Newf(CodeUnauthorized, format, a...) }
func Conflictf(format string, a ...any) error     { return Newf(CodeConflict, format, a...) }
func Unavailablef(format string, a ...any) error  { return Newf(CodeUnavailable, format, a...) }
func Internalf(format string, a ...any) error     { return Newf(CodeUnknown, format, a...) }

// Retryable reports whether trying again could succeed: Unavailable errors and
// transient Postgres failures
func Retryable(err error) bool { return IsCode(err, CodeUnavailable) || pgTransient(err) }
