// Package ginwhoops runs gin handlers behind a whoops boundary.
package ginwhoops

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/gowool/whoops"
)

const noWritten = -1

var writerPool = sync.Pool{New: func() any { return new(responseWriter) }}

// New returns a gin middleware running the rest of the chain behind wh.
//
// Panics and errors attached with c.Error are rendered by wh, unless the
// handlers already wrote a status or a body (e.g. c.AbortWithError).
func New(wh *whoops.Whoops) gin.HandlerFunc {
	return func(c *gin.Context) {
		original := c.Writer

		rw := writerPool.Get().(*responseWriter)
		defer func() {
			rw.reset(nil, nil)
			writerPool.Put(rw)
		}()

		res := wh.Process(c.Request, whoops.HandlerFunc(func(w http.ResponseWriter, r *http.Request) error {
			rw.reset(original, w)

			c.Request = r
			c.Writer = rw
			defer func() {
				c.Writer = original
			}()

			c.Next()

			if err := c.Errors.Last(); err != nil && !rw.Written() {
				return err
			}

			rw.WriteHeaderNow()
			return nil
		}))

		if err := res.Send(original); err != nil {
			_ = c.Error(err)
		}
	}
}

// responseWriter buffers the output of gin handlers into the boundary response.
type responseWriter struct {
	gin.ResponseWriter
	w      http.ResponseWriter
	status int
	size   int
}

func (rw *responseWriter) reset(original gin.ResponseWriter, w http.ResponseWriter) {
	rw.ResponseWriter = original
	rw.w = w
	rw.status = http.StatusOK
	rw.size = noWritten
}

func (rw *responseWriter) Header() http.Header {
	return rw.w.Header()
}

func (rw *responseWriter) WriteHeader(code int) {
	if code > 0 && !rw.Written() {
		rw.status = code
	}
}

func (rw *responseWriter) WriteHeaderNow() {
	if !rw.Written() {
		rw.size = 0
		rw.w.WriteHeader(rw.status)
	}
}

func (rw *responseWriter) Write(data []byte) (int, error) {
	rw.WriteHeaderNow()
	n, err := rw.w.Write(data)
	rw.size += n
	return n, err
}

func (rw *responseWriter) WriteString(s string) (int, error) {
	return rw.Write([]byte(s))
}

func (rw *responseWriter) Status() int {
	return rw.status
}

func (rw *responseWriter) Size() int {
	return rw.size
}

func (rw *responseWriter) Written() bool {
	return rw.size != noWritten
}

// Flush is a no-op, the output is buffered until the boundary returns.
func (rw *responseWriter) Flush() {}
