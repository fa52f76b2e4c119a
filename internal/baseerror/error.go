package baseerror

import "fmt"

// Error is a node in an error hierarchy. A child created with New unwraps to
// its parent, so errors.Is(child, parent) holds for every ancestor.
type Error struct {
	parent error
	msg    string
}

func New(msg string) *Error {
	return &Error{msg: msg}
}

func (err *Error) New(msg string) *Error {
	return &Error{
		parent: err,
		msg:    msg,
	}
}

func (err *Error) Error() string {
	return err.msg
}

func (err *Error) Unwrap() error {
	return err.parent
}

// Wrap returns an error that matches both err and cause with errors.Is.
func (err *Error) Wrap(cause error) error {
	if cause == nil {
		return err
	}

	return &wrapped{kind: err, cause: cause}
}

// Wrapf is like Wrap, but adds a formatted context message.
func (err *Error) Wrapf(cause error, format string, args ...any) error {
	return &wrapped{
		kind:  err,
		cause: cause,
		msg:   fmt.Sprintf(format, args...),
	}
}

type wrapped struct {
	kind  *Error
	cause error
	msg   string
}

func (w *wrapped) Error() string {
	s := w.kind.Error()
	if w.msg != "" {
		s += ": " + w.msg
	}

	if w.cause != nil {
		s += ": " + w.cause.Error()
	}

	return s
}

func (w *wrapped) Unwrap() []error {
	if w.cause == nil {
		return []error{w.kind}
	}

	return []error{w.kind, w.cause}
}
