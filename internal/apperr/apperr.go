// Package apperr defines the error type returned across package boundaries.
package apperr

import "fmt"

// Error is a user-presentable error. Package-level values act as sentinels:
// errors derived from them through Fmt or Wrap still match with errors.Is.
type Error struct {
	Cause   error
	root    *Error
	Message string
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

// Is reports whether target is e or the sentinel e was derived from.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return t == e || t == e.base()
}

// Fmt formats the message with args and returns a new error.
func (e *Error) Fmt(args ...any) *Error {
	return &Error{
		Message: fmt.Sprintf(e.Message, args...),
		Cause:   e.Cause,
		root:    e.base(),
	}
}

// Wrap attaches err as the cause.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		Message: e.Message,
		Cause:   err,
		root:    e.base(),
	}
}

func (e *Error) base() *Error {
	if e.root != nil {
		return e.root
	}

	return e
}
