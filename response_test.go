package whoops

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockWriterWithUnwrap struct {
	http.ResponseWriter
	inner http.ResponseWriter
}

func (m *mockWriterWithUnwrap) Unwrap() http.ResponseWriter {
	return m.inner
}

type failingWriter struct {
	*httptest.ResponseRecorder
}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("connection reset")
}

func TestNewResponse(t *testing.T) {
	res := NewResponse(http.StatusTeapot)

	assert.Equal(t, http.StatusTeapot, res.StatusCode())
	assert.NotNil(t, res.Header())
	assert.False(t, res.Committed())
	assert.Zero(t, res.Size())
	assert.Empty(t, res.Body())
}

func TestResponse_WriteHeader(t *testing.T) {
	tests := []struct {
		name  string
		codes []int
		want  int
	}{
		{name: "single", codes: []int{http.StatusCreated}, want: http.StatusCreated},
		{name: "first call wins", codes: []int{http.StatusAccepted, http.StatusNotFound}, want: http.StatusAccepted},
		{name: "none", want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := NewResponse(http.StatusOK)
			for _, code := range tt.codes {
				res.WriteHeader(code)
			}

			assert.Equal(t, tt.want, res.StatusCode())
			assert.Equal(t, len(tt.codes) > 0, res.Committed())
		})
	}
}

func TestResponse_Write(t *testing.T) {
	res := NewResponse(http.StatusOK)

	n, err := res.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	n, err = res.WriteString(" world")
	require.NoError(t, err)
	assert.Equal(t, 6, n)

	assert.True(t, res.Committed())
	assert.Equal(t, "hello world", string(res.Body()))
	assert.Equal(t, int64(11), res.Size())

	res.WriteHeader(http.StatusNotFound)
	assert.Equal(t, http.StatusOK, res.StatusCode())
}

func TestResponse_Reset(t *testing.T) {
	res := NewResponse(http.StatusOK)
	res.Header().Set(HeaderContentType, MIMETextPlain)
	res.WriteHeader(http.StatusCreated)
	_, _ = res.WriteString("partial")

	res.Reset()

	assert.Empty(t, res.Header())
	assert.Empty(t, res.Body())
	assert.False(t, res.Committed())
	assert.Equal(t, http.StatusCreated, res.StatusCode())
}

func TestResponse_Send(t *testing.T) {
	t.Run("copies status headers and body", func(t *testing.T) {
		res := NewResponse(http.StatusOK)
		res.Header().Set(HeaderContentType, MIMEApplicationJSON)
		res.WriteHeader(http.StatusAccepted)
		_, _ = res.WriteString(`{"ok":true}`)

		rec := httptest.NewRecorder()
		rec.Header().Set(HeaderXRequestID, "rid")

		require.NoError(t, res.Send(rec))

		assert.Equal(t, http.StatusAccepted, rec.Code)
		assert.Equal(t, MIMEApplicationJSON, rec.Header().Get(HeaderContentType))
		assert.Equal(t, "11", rec.Header().Get(HeaderContentLength))
		assert.Equal(t, "rid", rec.Header().Get(HeaderXRequestID))
		assert.Equal(t, `{"ok":true}`, rec.Body.String())
	})

	t.Run("empty body", func(t *testing.T) {
		rec := httptest.NewRecorder()

		require.NoError(t, NewResponse(http.StatusInternalServerError).Send(rec))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Empty(t, rec.Header().Get(HeaderContentLength))
		assert.Empty(t, rec.Body.String())
	})

	t.Run("write error", func(t *testing.T) {
		res := NewResponse(http.StatusOK)
		_, _ = res.WriteString("body")

		assert.Error(t, res.Send(failingWriter{httptest.NewRecorder()}))
	})
}

func TestResponseStatusCode(t *testing.T) {
	res := NewResponse(http.StatusOK)
	res.WriteHeader(http.StatusNotFound)

	tests := []struct {
		name string
		w    http.ResponseWriter
		want int
	}{
		{name: "response", w: res, want: http.StatusNotFound},
		{name: "unwrapped", w: &mockWriterWithUnwrap{ResponseWriter: httptest.NewRecorder(), inner: res}, want: http.StatusNotFound},
		{name: "plain writer", w: httptest.NewRecorder(), want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResponseStatusCode(tt.w))
		})
	}
}
