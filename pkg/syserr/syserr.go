// Package syserr turns a failed system call into an error that carries both
// what the caller was doing and the system's description of the failure.
//
// Go hands errno values back from each call instead of leaving them in a
// global, so this package keeps the process-wide last error itself: Record or
// SetLastErrno right after the failing call, then New.
//
//	f, err := os.Open(path)
//	if err != nil {
//		return syserr.Check("open "+path, err)
//	}
package syserr

import (
	"errors"
	"fmt"
	"sync/atomic"
	"syscall"
)

var lastErrno atomic.Uintptr

// SetLastErrno sets the process-wide last error code.
func SetLastErrno(errno syscall.Errno) {
	lastErrno.Store(uintptr(errno))
}

// LastErrno returns the process-wide last error code.
func LastErrno() syscall.Errno {
	return syscall.Errno(lastErrno.Load())
}

// Record stores the syscall.Errno found in err's chain as the last error
// code. It reports whether one was found.
func Record(err error) bool {
	var errno syscall.Errno
	if !errors.As(err, &errno) {
		return false
	}
	SetLastErrno(errno)
	return true
}

// Error is a system call failure. Its message is the caller's context
// followed by the system description of the error code, fixed when the
// Error is built.
type Error struct {
	context string
	errno   syscall.Errno
	msg     string
}

// New builds an Error from context and the current last error code.
// It never fails.
func New(context string) *Error {
	return NewErrno(context, LastErrno())
}

// NewErrno builds an Error from context and an explicit error code.
func NewErrno(context string, errno syscall.Errno) *Error {
	return &Error{
		context: context,
		errno:   errno,
		msg:     fmt.Sprintf("%s: %s", context, Describe(errno)),
	}
}

// Check converts err into an *Error when it carries an error code, recording
// the code as the last error. Other errors are wrapped with context. A nil
// err yields nil.
func Check(context string, err error) error {
	if err == nil {
		return nil
	}
	if Record(err) {
		return New(context)
	}
	return fmt.Errorf("%s: %w", context, err)
}

func (e *Error) Error() string { return e.msg }

// Message returns the composed message; same as Error.
func (e *Error) Message() string { return e.msg }

// Context returns the caller-supplied context.
func (e *Error) Context() string { return e.context }

// Errno returns the error code captured at construction.
func (e *Error) Errno() syscall.Errno { return e.errno }

// Name returns the symbolic name of the code, e.g. "ENOENT", or "" when the
// platform has none.
func (e *Error) Name() string { return errnoName(e.errno) }

// Unwrap exposes the error code so errors.Is(err, syscall.ENOENT) works.
func (e *Error) Unwrap() error { return e.errno }

// Describe returns the system description of errno. Codes the platform does
// not know get a generic "unknown error N".
func Describe(errno syscall.Errno) string {
	if errno == 0 {
		return "success"
	}
	if !errnoKnown(errno) {
		return fmt.Sprintf("unknown error %d", uintptr(errno))
	}
	return errno.Error()
}
