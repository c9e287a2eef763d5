package whoops

import (
	"net/http"
)

// Handler is an http.Handler that may fail. A returned error is treated by
// the boundary exactly like a panic.
type Handler interface {
	ServeHTTP(http.ResponseWriter, *http.Request) error
}

type HandlerFunc func(http.ResponseWriter, *http.Request) error

func (f HandlerFunc) ServeHTTP(w http.ResponseWriter, r *http.Request) error {
	return f(w, r)
}

type ErrorHandlerFunc func(http.ResponseWriter, *http.Request, error)

// ErrorHandler answers errors that reach it without a boundary in between,
// e.g. from skipped requests. It never renders details of err.
func ErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	if committer, ok := w.(Committer); ok && committer.Committed() {
		return
	}

	code := http.StatusInternalServerError
	text := http.StatusText(code)

	if SelectFormat(r.Header.Get(HeaderAccept), false) == FormatJSON {
		w.Header().Set(HeaderContentType, MIMEApplicationJSON)
		w.Header().Set(HeaderXContentTypeOpts, "nosniff")
		w.WriteHeader(code)
		_, _ = w.Write([]byte(`{"error":{"message":"` + text + `"}}`))
		return
	}

	http.Error(w, text, code)
}

// ToHTTP adapts h to an http.Handler. Errors returned by h are passed to
// errorHandler, ErrorHandler when nil.
func ToHTTP(h Handler, errorHandler ErrorHandlerFunc) http.Handler {
	if errorHandler == nil {
		errorHandler = ErrorHandler
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := h.ServeHTTP(w, r); err != nil {
			errorHandler(w, r, err)
		}
	})
}
