package whoops

import (
	"io"
	"log/slog"
	"strconv"
	"strings"
)

// PlainTextRenderer renders a human readable text report.
//
// When Logger is set every rendered event is also logged. With LogOnly and a
// Logger the renderer becomes logger-only and writes nothing.
type PlainTextRenderer struct {
	// Trace adds the stack frames to the output.
	Trace bool

	// LogOnly turns the renderer into a logger-only one, it requires Logger.
	LogOnly bool

	Logger *slog.Logger
}

func (r *PlainTextRenderer) Render(w io.Writer, event *Event) error {
	text := r.text(event)

	if r.Logger != nil {
		logEvent(r.Logger, "unhandled error", event, slog.String("report", text))
	}

	if r.LoggerOnly() {
		return nil
	}

	_, err := io.WriteString(w, text)
	return err
}

func (*PlainTextRenderer) ContentType() string {
	return MIMETextPlain
}

func (r *PlainTextRenderer) LoggerOnly() bool {
	return r.LogOnly && r.Logger != nil
}

func (r *PlainTextRenderer) text(event *Event) string {
	var b strings.Builder

	b.WriteString(event.Type())
	b.WriteString(": ")
	b.WriteString(event.Message())
	if origin, ok := event.Origin(); ok {
		b.WriteString(" in ")
		b.WriteString(origin.File)
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(origin.Line))
	}
	b.WriteByte('\n')

	b.WriteString("Event: ")
	b.WriteString(event.ID)
	b.WriteByte('\n')

	if event.Request != nil && event.Request.RequestID != "" {
		b.WriteString("Request: ")
		b.WriteString(event.Request.RequestID)
		b.WriteByte('\n')
	}

	if r.Trace && len(event.Frames) > 0 {
		b.WriteString("Stack trace:\n")
		for i, frame := range event.Frames {
			b.WriteString("  #")
			b.WriteString(strconv.Itoa(i))
			b.WriteByte(' ')
			b.WriteString(frame.String())
			b.WriteByte('\n')
		}
	}

	return b.String()
}
