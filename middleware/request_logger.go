package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gowool/whoops"
)

// RequestSummary is what RequestLogger knows about a finished request.
type RequestSummary struct {
	StatusCode int
	Size       int64
	Latency    time.Duration

	// Error is the error returned by the next handler, nil when a boundary consumed it.
	Error error

	// Event is the event a boundary mounted further in reported, nil for
	// requests that did not fail.
	Event *whoops.Event
}

type RequestLoggerAttrsFunc func(r *http.Request, summary RequestSummary) []slog.Attr

type RequestLoggerConfig struct {
	// AttrsFunc builds the attributes of the log line.
	// Optional. Default value RequestLoggerAttrs().
	AttrsFunc RequestLoggerAttrsFunc `json:"-" yaml:"-"`

	// Logger is the logger used to log the request.
	// Optional. Default value slog.Default().
	Logger *slog.Logger `json:"-" yaml:"-"`
}

func (c *RequestLoggerConfig) SetDefaults() {
	if c.AttrsFunc == nil {
		c.AttrsFunc = RequestLoggerAttrs()
	}

	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// RequestLogger writes one "incoming request" line per request.
//
// Mounted outside a whoops boundary it logs the 500 the boundary rendered
// together with the event_id found in the report, which links the access
// log to the "unhandled error" line. A request failing without a boundary in
// between is logged with status 500.
func RequestLogger(cfg RequestLoggerConfig, skippers ...whoops.Skipper) func(whoops.Handler) whoops.Handler {
	cfg.SetDefaults()

	skip := whoops.ChainSkipper(skippers...)

	return func(next whoops.Handler) whoops.Handler {
		return whoops.HandlerFunc(func(w http.ResponseWriter, r *http.Request) error {
			if skip(r) {
				return next.ServeHTTP(w, r)
			}

			ctx, event := whoops.TrackEvent(r.Context())
			rw := &responseRecorder{ResponseWriter: w}
			start := time.Now()

			err := next.ServeHTTP(rw, r.WithContext(ctx))

			summary := RequestSummary{
				StatusCode: rw.StatusCode(),
				Size:       rw.Size(),
				Latency:    time.Since(start),
				Error:      err,
				Event:      event(),
			}
			if err != nil {
				summary.StatusCode = http.StatusInternalServerError
			}

			cfg.Logger.LogAttrs(context.Background(), summary.level(), "incoming request", cfg.AttrsFunc(r, summary)...)

			return err
		})
	}
}

func (s RequestSummary) level() slog.Level {
	switch {
	case s.Event != nil || s.StatusCode >= http.StatusInternalServerError:
		return slog.LevelError
	case s.StatusCode >= http.StatusBadRequest:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

func RequestLoggerAttrs() RequestLoggerAttrsFunc {
	return func(r *http.Request, summary RequestSummary) []slog.Attr {
		attrs := make([]slog.Attr, 0, 13)
		attrs = append(attrs,
			slog.String("latency", summary.Latency.String()),
			slog.String("method", r.Method),
			slog.Int("status_code", summary.StatusCode),
			slog.String("protocol", r.Proto),
			slog.String("host", r.Host),
			slog.String("path", r.URL.Path),
			slog.String("remote_addr", r.RemoteAddr),
			slog.String("user_agent", r.UserAgent()),
			slog.Int64("response_size", summary.Size),
		)

		if id := whoops.CtxRequestID(r.Context()); id != "" {
			attrs = append(attrs, slog.String("request_id", id))
		}

		if referer := r.Referer(); referer != "" {
			attrs = append(attrs, slog.String("referer", referer))
		}

		if summary.Event != nil {
			attrs = append(attrs,
				slog.String("event_id", summary.Event.ID),
				slog.Bool("panic", summary.Event.Panic),
			)
		}

		if summary.Error != nil {
			attrs = append(attrs, slog.Any("error", summary.Error))
		}

		return attrs
	}
}

// responseRecorder records the status code and the size of what passes through it.
type responseRecorder struct {
	http.ResponseWriter
	code int
	size int64
}

var (
	_ whoops.StatusCoder = (*responseRecorder)(nil)
	_ whoops.Sizer       = (*responseRecorder)(nil)
)

func (rw *responseRecorder) WriteHeader(code int) {
	if rw.code == 0 {
		rw.code = code
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseRecorder) Write(b []byte) (int, error) {
	if rw.code == 0 {
		rw.code = http.StatusOK
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.size += int64(n)
	return n, err
}

// StatusCode returns the status sent, http.StatusOK when nothing was written.
func (rw *responseRecorder) StatusCode() int {
	if rw.code == 0 {
		return http.StatusOK
	}
	return rw.code
}

func (rw *responseRecorder) Size() int64 {
	return rw.size
}

func (rw *responseRecorder) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}
