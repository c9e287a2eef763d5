package whoops

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandlerFunc_ServeHTTP(t *testing.T) {
	errBoom := errors.New("boom")

	tests := []struct {
		name    string
		handler HandlerFunc
		wantErr error
	}{
		{
			name: "nil error",
			handler: func(w http.ResponseWriter, _ *http.Request) error {
				w.WriteHeader(http.StatusNoContent)
				return nil
			},
		},
		{
			name: "error",
			handler: func(http.ResponseWriter, *http.Request) error {
				return errBoom
			},
			wantErr: errBoom,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var h Handler = tt.handler

			err := h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
			assert.Equal(t, tt.wantErr, err)
		})
	}
}

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name      string
		accept    string
		committed bool
		wantCode  int
		wantType  string
		wantBody  string
	}{
		{
			name:     "json",
			accept:   "application/json, text/plain",
			wantCode: http.StatusInternalServerError,
			wantType: MIMEApplicationJSON,
			wantBody: `{"error":{"message":"Internal Server Error"}}`,
		},
		{
			name:     "json case insensitive",
			accept:   "Application/JSON",
			wantCode: http.StatusInternalServerError,
			wantType: MIMEApplicationJSON,
			wantBody: `{"error":{"message":"Internal Server Error"}}`,
		},
		{
			name:     "plain",
			accept:   "text/html",
			wantCode: http.StatusInternalServerError,
			wantType: "text/plain; charset=utf-8",
			wantBody: "Internal Server Error\n",
		},
		{
			name:      "committed",
			committed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set(HeaderAccept, tt.accept)

			if tt.committed {
				res := NewResponse(http.StatusOK)
				res.WriteHeader(http.StatusAccepted)

				ErrorHandler(res, req, errors.New("secret detail"))

				assert.Equal(t, http.StatusAccepted, res.StatusCode())
				assert.Empty(t, res.Body())
				return
			}

			rec := httptest.NewRecorder()
			ErrorHandler(rec, req, errors.New("secret detail"))

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantType, rec.Header().Get(HeaderContentType))
			assert.Equal(t, tt.wantBody, rec.Body.String())
			assert.NotContains(t, rec.Body.String(), "secret detail")
		})
	}
}

func TestToHTTP(t *testing.T) {
	errBoom := errors.New("boom")

	t.Run("default error handler", func(t *testing.T) {
		h := ToHTTP(HandlerFunc(func(http.ResponseWriter, *http.Request) error {
			return errBoom
		}), nil)

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("custom error handler", func(t *testing.T) {
		var got error
		h := ToHTTP(HandlerFunc(func(http.ResponseWriter, *http.Request) error {
			return errBoom
		}), func(w http.ResponseWriter, _ *http.Request, err error) {
			got = err
			w.WriteHeader(http.StatusBadGateway)
		})

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, errBoom, got)
		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})

	t.Run("no error", func(t *testing.T) {
		called := false
		h := ToHTTP(HandlerFunc(func(w http.ResponseWriter, _ *http.Request) error {
			_, err := w.Write([]byte("ok"))
			return err
		}), func(http.ResponseWriter, *http.Request, error) {
			called = true
		})

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.False(t, called)
		assert.Equal(t, "ok", rec.Body.String())
	})
}
