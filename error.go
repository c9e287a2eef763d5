package whoops

import (
	"errors"
	"fmt"
	"runtime"
)

// ErrRender wraps every failure produced while rendering an error body.
var ErrRender = errors.New("whoops: render error")

// PanicError is the error a recovered panic is converted into.
type PanicError struct {
	Value any
	pcs   []uintptr
}

func newPanicError(value any, skip, maxFrames int) *PanicError {
	pcs := make([]uintptr, maxFrames)
	n := runtime.Callers(skip, pcs)

	return &PanicError{
		Value: value,
		pcs:   pcs[:n],
	}
}

// Error makes it compatible with an `error` interface.
func (e *PanicError) Error() string {
	if err, ok := e.Value.(error); ok {
		return err.Error()
	}
	return fmt.Sprintf("%v", e.Value)
}

// Unwrap returns the panic value when it is an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// Frames returns the stack of the panicking goroutine starting at the frame
// that called panic (runtime frames above it are dropped).
func (e *PanicError) Frames() []Frame {
	frames := framesFromPCs(e.pcs)

	start := 0
	for i, frame := range frames {
		if frame.Function == "runtime.gopanic" {
			start = i + 1
			break
		}
	}
	for start < len(frames) && isRuntimeFrame(frames[start]) {
		start++
	}
	if start >= len(frames) {
		return frames
	}

	return frames[start:]
}
