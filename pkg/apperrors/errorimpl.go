package apperrors

import (
	"errors"
	"strings"
)

// appError is the concrete Error. Values are never mutated after construction; every
// builder method returns a new error.
type appError struct {
	msg           string
	base          error
	wrappedErrors []error
	statuscode    int
	body          string
}

// Error returns the message, followed by the response body when one is attached.
func (e *appError) Error() string {
	if e.body == "" {
		return e.msg
	}
	return e.msg + ": " + e.body
}

// ErrorAll returns the message followed by the messages of all attached errors.
func (e *appError) ErrorAll() string {
	var b strings.Builder
	b.WriteString(e.Error())
	for _, err := range e.wrappedErrors {
		if err == e.base {
			continue
		}
		b.WriteString("; ")
		b.WriteString(err.Error())
	}
	return b.String()
}

func (e *appError) Unwrap() error {
	return e.base
}

// Msg creates a new error with a new message that wraps the original.
func (e *appError) Msg(msg string) Error {
	return &appError{
		msg:           msg,
		base:          e,
		wrappedErrors: append([]error{e}, e.wrappedErrors...),
		statuscode:    e.statuscode,
		body:          e.body,
	}
}

// New creates a fresh error using the current error as a template. The new error matches
// the current one with errors.Is and inherits its status code.
func (e *appError) New(msg string) Error {
	return &appError{
		msg:        msg,
		base:       e,
		statuscode: e.statuscode,
	}
}

// MsgErr creates a new error with a message and attaches additional errors.
func (e *appError) MsgErr(msg string, errs ...error) Error {
	return &appError{
		msg:           msg,
		base:          e,
		wrappedErrors: append([]error{e}, errs...),
		statuscode:    e.statuscode,
		body:          e.body,
	}
}

// Err attaches additional errors while keeping the current message.
func (e *appError) Err(errs ...error) Error {
	return &appError{
		msg:           e.msg,
		base:          e,
		wrappedErrors: append([]error{e}, errs...),
		statuscode:    e.statuscode,
		body:          e.body,
	}
}

// SetStatusCode returns a shallow copy with an updated status code.
func (e *appError) SetStatusCode(code int) Error {
	cp := *e
	cp.statuscode = code
	return &cp
}

func (e *appError) StatusCode() int {
	return e.statuscode
}

// WithBody returns a shallow copy carrying the raw response body.
func (e *appError) WithBody(body string) Error {
	cp := *e
	cp.body = body
	return &cp
}

func (e *appError) Body() string {
	return e.body
}

// Is checks the base error and every attached error.
func (e *appError) Is(target error) bool {
	if target == nil {
		return false
	}
	if errors.Is(e.base, target) {
		return true
	}
	for _, err := range e.wrappedErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// New creates a root-level error with the given message.
func New(msg string) Error {
	return &appError{
		msg: msg,
	}
}
