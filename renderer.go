package whoops

import (
	"context"
	"encoding/xml"
	"io"
	"log/slog"

	"github.com/goccy/go-json"
)

// Renderer turns an Event into a response body of a declared content type.
//
// A logger-only renderer records the event for diagnostics and never
// contributes a body or a Content-Type to the response.
type Renderer interface {
	Render(w io.Writer, event *Event) error
	ContentType() string
	LoggerOnly() bool
}

var (
	_ Renderer = (*JSONRenderer)(nil)
	_ Renderer = (*XMLRenderer)(nil)
	_ Renderer = (*PlainTextRenderer)(nil)
	_ Renderer = (*PrettyPageRenderer)(nil)
)

type errorPayload struct {
	XMLName   xml.Name `json:"-" xml:"error"`
	ID        string   `json:"id" xml:"id"`
	RequestID string   `json:"requestId,omitempty" xml:"requestId,omitempty"`
	Type      string   `json:"type" xml:"type"`
	Message   string   `json:"message" xml:"message"`
	File      string   `json:"file,omitempty" xml:"file,omitempty"`
	Line      int      `json:"line,omitempty" xml:"line,omitempty"`
	Trace     []Frame  `json:"trace,omitempty" xml:"trace>frame,omitempty"`
}

func newErrorPayload(event *Event, trace bool) errorPayload {
	payload := errorPayload{
		ID:      event.ID,
		Type:    event.Type(),
		Message: event.Message(),
	}

	if event.Request != nil {
		payload.RequestID = event.Request.RequestID
	}

	if origin, ok := event.Origin(); ok {
		payload.File = origin.File
		payload.Line = origin.Line
	}

	if trace {
		payload.Trace = event.Frames
	}

	return payload
}

// JSONRenderer renders {"error": {...}} documents.
type JSONRenderer struct {
	// Trace adds the stack frames to the output.
	Trace bool
}

func (r *JSONRenderer) Render(w io.Writer, event *Event) error {
	return json.NewEncoder(w).Encode(struct {
		Error errorPayload `json:"error"`
	}{
		Error: newErrorPayload(event, r.Trace),
	})
}

func (*JSONRenderer) ContentType() string {
	return MIMEApplicationJSON
}

func (*JSONRenderer) LoggerOnly() bool {
	return false
}

// XMLRenderer renders <root><error>...</error></root> documents.
type XMLRenderer struct {
	// Trace adds the stack frames to the output.
	Trace bool
}

func (r *XMLRenderer) Render(w io.Writer, event *Event) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}

	return xml.NewEncoder(w).Encode(struct {
		XMLName xml.Name `xml:"root"`
		Error   errorPayload
	}{
		Error: newErrorPayload(event, r.Trace),
	})
}

// ContentType returns application/xml for every XML rendering,
// text/xml is only accepted on the negotiation side.
func (*XMLRenderer) ContentType() string {
	return MIMEApplicationXML
}

func (*XMLRenderer) LoggerOnly() bool {
	return false
}

func logEvent(logger *slog.Logger, msg string, event *Event, attrs ...slog.Attr) {
	attrs = append(attrs,
		slog.String("event_id", event.ID),
		slog.String("type", event.Type()),
		slog.Bool("panic", event.Panic),
		slog.Any("error", event.Err),
	)
	if event.Request != nil {
		attrs = append(attrs,
			slog.String("method", event.Request.Method),
			slog.String("url", event.Request.URL),
		)
		if event.Request.RequestID != "" {
			attrs = append(attrs, slog.String("request_id", event.Request.RequestID))
		}
	}
	logger.LogAttrs(context.Background(), slog.LevelError, msg, attrs...)
}
