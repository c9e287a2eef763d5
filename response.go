package whoops

import (
	"bytes"
	"io"
	"net/http"
	"strconv"
)

var (
	_ http.ResponseWriter = (*Response)(nil)
	_ io.StringWriter     = (*Response)(nil)
	_ StatusCoder         = (*Response)(nil)
	_ Sizer               = (*Response)(nil)
	_ Committer           = (*Response)(nil)
)

type StatusCoder interface {
	StatusCode() int
}

type Sizer interface {
	Size() int64
}

type Committer interface {
	Committed() bool
}

// ResponseFactory constructs a blank response with the given status code.
type ResponseFactory func(code int) *Response

// Response is a buffered http.ResponseWriter.
//
// Nothing reaches the client until Send is called, which lets the
// boundary throw away whatever a failing handler has already written.
// It implements neither http.Flusher nor Unwrap, so streaming routes
// (server-sent events, long polling) must bypass the boundary through
// Config.SkipPaths, Config.SkipExpressions or WithSkipper.
type Response struct {
	header    http.Header
	body      bytes.Buffer
	code      int
	committed bool
}

// NewResponse is the default ResponseFactory.
func NewResponse(code int) *Response {
	return &Response{
		header: make(http.Header),
		code:   code,
	}
}

func (r *Response) Header() http.Header {
	return r.header
}

// WriteHeader records the status code, only the first call has an effect.
func (r *Response) WriteHeader(statusCode int) {
	if r.committed {
		return
	}

	r.committed = true
	r.code = statusCode
}

func (r *Response) Write(b []byte) (int, error) {
	if !r.committed {
		r.WriteHeader(r.code)
	}
	return r.body.Write(b)
}

func (r *Response) WriteString(s string) (int, error) {
	if !r.committed {
		r.WriteHeader(r.code)
	}
	return r.body.WriteString(s)
}

func (r *Response) StatusCode() int {
	return r.code
}

func (r *Response) Size() int64 {
	return int64(r.body.Len())
}

func (r *Response) Committed() bool {
	return r.committed
}

func (r *Response) Body() []byte {
	return r.body.Bytes()
}

// Reset discards the body, the headers and the committed state.
// The status code is kept.
func (r *Response) Reset() {
	r.body.Reset()
	clear(r.header)
	r.committed = false
}

// Send writes the buffered response to w.
func (r *Response) Send(w http.ResponseWriter) error {
	header := w.Header()
	for key, values := range r.header {
		header[key] = values
	}

	if r.body.Len() > 0 && header.Get(HeaderContentLength) == "" {
		header.Set(HeaderContentLength, strconv.Itoa(r.body.Len()))
	}

	w.WriteHeader(r.code)

	_, err := w.Write(r.body.Bytes())
	return err
}

func ResponseStatusCode(w http.ResponseWriter) int {
	if sc := ResponseStatusCoder(w); sc != nil {
		return sc.StatusCode()
	}
	return 0
}

func ResponseStatusCoder(w http.ResponseWriter) StatusCoder {
	for {
		switch t := w.(type) {
		case StatusCoder:
			return t
		case interface{ Unwrap() http.ResponseWriter }:
			w = t.Unwrap()
		default:
			return nil
		}
	}
}
