package whoops

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"
	"slices"
	"sync"
	"sync/atomic"
)

var bufferPool = sync.Pool{New: func() any { return new(bytes.Buffer) }}

// Run is an ordered list of renderers handling the errors of one boundary invocation.
//
// The first renderer that is not logger-only decides the body and the
// Content-Type, logger-only renderers only record the event.
type Run struct {
	handlers      []Renderer
	output        io.Writer
	writeToOutput atomic.Bool
}

func NewRun(handlers ...Renderer) *Run {
	return &Run{
		handlers: slices.Clone(handlers),
		output:   os.Stderr,
	}
}

// PushHandler appends handler to the end of the list.
func (run *Run) PushHandler(handler Renderer) *Run {
	run.handlers = append(run.handlers, handler)
	return run
}

func (run *Run) Handlers() []Renderer {
	return slices.Clone(run.handlers)
}

func (run *Run) ClearHandlers() *Run {
	run.handlers = nil
	return run
}

// SetOutput sets where errors that escape every boundary are written.
// Default: os.Stderr.
func (run *Run) SetOutput(w io.Writer) *Run {
	if w != nil {
		run.output = w
	}
	return run
}

// WriteToOutput enables or disables writing escaped errors to the output.
func (run *Run) WriteToOutput(enabled bool) {
	run.writeToOutput.Store(enabled)
}

// Visible returns the first renderer that produces output, nil when every
// renderer is logger-only or the list is empty.
func (run *Run) Visible() Renderer {
	for _, handler := range run.handlers {
		if !handler.LoggerOnly() {
			return handler
		}
	}
	return nil
}

// HandleError writes the rendered event to w.
//
// Logger-only renderers record the event first. When there is no visible
// renderer, or it fails, w is left untouched; a failure is returned wrapped
// in ErrRender.
func (run *Run) HandleError(w http.ResponseWriter, event *Event) (Renderer, error) {
	run.record(event)

	visible := run.Visible()
	if visible == nil {
		return nil, nil
	}

	buf := bufferPool.Get().(*bytes.Buffer)
	defer func() {
		buf.Reset()
		bufferPool.Put(buf)
	}()

	if err := visible.Render(buf, event); err != nil {
		return visible, fmt.Errorf("%w: %T: %w", ErrRender, visible, err)
	}

	w.Header().Set(HeaderContentType, visible.ContentType())
	if _, err := w.Write(buf.Bytes()); err != nil {
		return visible, err
	}

	return visible, nil
}

// HandleEscaped is the terminal handler of the trap, it writes the rendered
// event to the output when writing to output is enabled.
func (run *Run) HandleEscaped(event *Event) error {
	run.record(event)

	visible := run.Visible()
	if visible == nil || !run.writeToOutput.Load() {
		return nil
	}

	if err := visible.Render(run.output, event); err != nil {
		return fmt.Errorf("%w: %T: %w", ErrRender, visible, err)
	}
	return nil
}

func (run *Run) record(event *Event) {
	for _, handler := range run.handlers {
		if handler.LoggerOnly() {
			_ = handler.Render(io.Discard, event)
		}
	}
}
