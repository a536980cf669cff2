package appgridlog

import (
	"fmt"
	"runtime"
	"strings"
)

const maxStackDepth = 32

// stackError attaches the call stack captured by WithStack to an error.
type stackError struct {
	err   error
	stack string
}

// WithStack returns err annotated with the caller's stack. When such an error
// is logged as metadata its stack text replaces the default %+v rendering.
// WithStack(nil) returns nil.
func WithStack(err error) error {
	if err == nil {
		return nil
	}
	return &stackError{err: err, stack: callers(3)}
}

func (e *stackError) Error() string { return e.err.Error() }

func (e *stackError) Unwrap() error { return e.err }

// ErrorName reports the name of the wrapped error.
func (e *stackError) ErrorName() string { return errorName(e.err) }

// StackTrace returns the captured stack, one frame per line.
func (e *stackError) StackTrace() string { return e.stack }

func callers(skip int) string {
	pcs := make([]uintptr, maxStackDepth)
	n := runtime.Callers(skip, pcs)
	frames := runtime.CallersFrames(pcs[:n])

	var b strings.Builder
	for {
		frame, more := frames.Next()
		fmt.Fprintf(&b, "    at %s (%s:%d)", frame.Function, frame.File, frame.Line)
		if !more {
			break
		}
		b.WriteByte('\n')
	}
	return b.String()
}
