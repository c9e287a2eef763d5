package whoops

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"
)

// Frame is a single stack frame attached to an Event.
type Frame struct {
	Function string `json:"function" xml:"function"`
	File     string `json:"file" xml:"file"`
	Line     int    `json:"line" xml:"line"`
}

func (f Frame) String() string {
	return fmt.Sprintf("%s %s:%d", f.Function, f.File, f.Line)
}

// RequestInfo is the part of the inbound request that renderers may show.
type RequestInfo struct {
	Method     string
	URL        string
	Proto      string
	Host       string
	RemoteAddr string
	ClientIP   string
	RequestID  string
	Header     http.Header
}

// Event is an error caught by the boundary, ready to be rendered.
type Event struct {
	ID      string
	Err     error
	Panic   bool
	Time    time.Time
	Request *RequestInfo
	Frames  []Frame
}

// NewEvent builds an Event for err. r may be nil for errors caught outside
// a request. At most maxFrames frames are kept, 0 means no limit.
func NewEvent(r *http.Request, err error, maxFrames int) *Event {
	event := &Event{
		ID:   uuid.NewString(),
		Err:  err,
		Time: time.Now().UTC(),
	}

	var panicErr *PanicError
	if errors.As(err, &panicErr) {
		event.Panic = true
	}

	if st := deepestStackTrace(err); st != nil {
		pcs := make([]uintptr, len(st))
		for i, f := range st {
			pcs[i] = uintptr(f)
		}
		event.Frames = framesFromPCs(pcs)
	} else if panicErr != nil {
		event.Frames = panicErr.Frames()
	}

	if maxFrames > 0 && len(event.Frames) > maxFrames {
		event.Frames = event.Frames[:maxFrames]
	}

	if r != nil {
		event.Request = &RequestInfo{
			Method:     r.Method,
			URL:        r.URL.String(),
			Proto:      r.Proto,
			Host:       r.Host,
			RemoteAddr: r.RemoteAddr,
			ClientIP:   RemoteIP(r),
			RequestID:  CtxRequestID(r.Context()),
			Header:     r.Header.Clone(),
		}
	}

	return event
}

// Type names the kind of error, the panic value type for panics and the type
// of the innermost wrapped error otherwise.
func (e *Event) Type() string {
	if e.Err == nil {
		return "<nil>"
	}

	var panicErr *PanicError
	if errors.As(e.Err, &panicErr) {
		if _, ok := panicErr.Value.(error); !ok {
			return fmt.Sprintf("%T", panicErr.Value)
		}
	}

	err := e.Err
	for {
		next := errors.Unwrap(err)
		if next == nil {
			break
		}
		err = next
	}

	return fmt.Sprintf("%T", err)
}

func (e *Event) Message() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

// Origin returns the frame the error originates from.
func (e *Event) Origin() (Frame, bool) {
	if len(e.Frames) == 0 {
		return Frame{}, false
	}
	return e.Frames[0], true
}

type stackTracer interface {
	StackTrace() pkgerrors.StackTrace
}

// deepestStackTrace returns the stack recorded closest to where err was created.
func deepestStackTrace(err error) pkgerrors.StackTrace {
	var st pkgerrors.StackTrace
	for err != nil {
		if tracer, ok := err.(stackTracer); ok {
			st = tracer.StackTrace()
		}
		err = errors.Unwrap(err)
	}
	return st
}

func framesFromPCs(pcs []uintptr) []Frame {
	if len(pcs) == 0 {
		return nil
	}

	frames := make([]Frame, 0, len(pcs))
	callersFrames := runtime.CallersFrames(pcs)
	for {
		frame, more := callersFrames.Next()
		if frame.Function != "" || frame.File != "" {
			frames = append(frames, Frame{
				Function: frame.Function,
				File:     frame.File,
				Line:     frame.Line,
			})
		}
		if !more {
			break
		}
	}
	return frames
}

func isRuntimeFrame(f Frame) bool {
	return strings.HasPrefix(f.Function, "runtime.")
}
