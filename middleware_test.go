package whoops

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recordingMiddleware(name string, calls *[]string) func(Handler) Handler {
	return func(next Handler) Handler {
		return HandlerFunc(func(w http.ResponseWriter, r *http.Request) error {
			*calls = append(*calls, name+":before")
			err := next.ServeHTTP(w, r)
			*calls = append(*calls, name+":after")
			return err
		})
	}
}

func TestMiddlewares_Build(t *testing.T) {
	tests := []struct {
		name string
		mws  func(calls *[]string) Middlewares[Handler]
		want []string
	}{
		{
			name: "empty",
			mws: func(*[]string) Middlewares[Handler] {
				return nil
			},
			want: []string{"handler"},
		},
		{
			name: "sorted by priority",
			mws: func(calls *[]string) Middlewares[Handler] {
				return Middlewares[Handler]{
					{ID: "b", Priority: 20, Func: recordingMiddleware("b", calls)},
					{ID: "a", Priority: 10, Func: recordingMiddleware("a", calls)},
				}
			},
			want: []string{"a:before", "b:before", "handler", "b:after", "a:after"},
		},
		{
			name: "stable for equal priorities",
			mws: func(calls *[]string) Middlewares[Handler] {
				return Middlewares[Handler]{
					{Priority: 1, Func: recordingMiddleware("first", calls)},
					{Priority: 1, Func: recordingMiddleware("second", calls)},
				}
			},
			want: []string{"first:before", "second:before", "handler", "second:after", "first:after"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls []string

			mws := tt.mws(&calls)
			h := mws.Build(HandlerFunc(func(http.ResponseWriter, *http.Request) error {
				calls = append(calls, "handler")
				return nil
			}))

			require.NoError(t, h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil)))
			assert.Equal(t, tt.want, calls)

			for _, mw := range mws {
				assert.NotEmpty(t, mw.ID)
			}
		})
	}
}

func TestChain(t *testing.T) {
	var calls []string

	h := Chain(HandlerFunc(func(http.ResponseWriter, *http.Request) error {
		calls = append(calls, "handler")
		return nil
	}), recordingMiddleware("outer", &calls), recordingMiddleware("inner", &calls))

	require.NoError(t, h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil)))
	assert.Equal(t, []string{"outer:before", "inner:before", "handler", "inner:after", "outer:after"}, calls)
}
