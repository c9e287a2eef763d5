//go:build integration

package whoops_test

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/goccy/go-json"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	pkgerrors "github.com/pkg/errors"

	"github.com/gowool/whoops"
	"github.com/gowool/whoops/middleware"
)

// syncBuffer is a bytes.Buffer safe for the server goroutines.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func get(url, accept string) (*http.Response, string) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	Expect(err).NotTo(HaveOccurred())
	if accept != "" {
		req.Header.Set(whoops.HeaderAccept, accept)
	}

	resp, err := http.DefaultClient.Do(req)
	Expect(err).NotTo(HaveOccurred())
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	Expect(err).NotTo(HaveOccurred())

	return resp, string(body)
}

var _ = Describe("Error boundary", func() {
	var (
		server *httptest.Server
		logs   *syncBuffer
	)

	BeforeEach(func() {
		logs = &syncBuffer{}
		logger := slog.New(slog.NewJSONHandler(logs, nil))

		wh := whoops.New(whoops.Config{SkipPaths: []string{"/raw"}}, whoops.WithLogger(logger))

		mws := whoops.Middlewares[whoops.Handler]{
			{ID: "request_id", Priority: 0, Func: middleware.RequestID(middleware.RequestIDConfig{})},
			{ID: "request_logger", Priority: 5, Func: middleware.RequestLogger(middleware.RequestLoggerConfig{Logger: logger})},
			{ID: "whoops", Priority: 10, Func: wh.Middleware},
		}

		mux := http.NewServeMux()
		mux.Handle("GET /ok", whoops.ToHTTP(mws.Build(whoops.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) error {
			_, err := io.WriteString(w, "fine")
			return err
		})), nil))
		mux.Handle("GET /error", whoops.ToHTTP(mws.Build(whoops.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) error {
			_, _ = io.WriteString(w, "partial")
			return pkgerrors.New("database unavailable")
		})), nil))
		mux.Handle("GET /panic", whoops.ToHTTP(mws.Build(whoops.HandlerFunc(func(http.ResponseWriter, *http.Request) error {
			panic("nil map write")
		})), nil))
		mux.Handle("GET /raw", whoops.ToHTTP(mws.Build(whoops.HandlerFunc(func(http.ResponseWriter, *http.Request) error {
			return pkgerrors.New("raw failure")
		})), nil))

		server = httptest.NewServer(mux)
	})

	AfterEach(func() {
		server.Close()
	})

	Context("when the handler succeeds", func() {
		It("passes the response through", func() {
			resp, body := get(server.URL+"/ok", whoops.MIMEApplicationJSON)

			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(body).To(Equal("fine"))
			Expect(resp.Header.Get(whoops.HeaderXRequestID)).NotTo(BeEmpty())
		})
	})

	Context("when the handler returns an error", func() {
		DescribeTable("renders a negotiated 500",
			func(accept, contentType, fragment string) {
				resp, body := get(server.URL+"/error", accept)

				Expect(resp.StatusCode).To(Equal(http.StatusInternalServerError))
				Expect(resp.Header.Get(whoops.HeaderContentType)).To(Equal(contentType))
				Expect(body).To(ContainSubstring(fragment))
				Expect(body).NotTo(ContainSubstring("partial"))
				Expect(resp.Header.Get(whoops.HeaderXRequestID)).NotTo(BeEmpty())
			},
			Entry("json", whoops.MIMEApplicationJSON, whoops.MIMEApplicationJSON, `"message":"database unavailable"`),
			Entry("xml", whoops.MIMETextXML, whoops.MIMEApplicationXML, "<message>database unavailable</message>"),
			Entry("plain", whoops.MIMETextPlain, whoops.MIMETextPlain, "database unavailable in "),
			Entry("html", whoops.MIMETextHTML, whoops.MIMETextHTML, "database unavailable"),
			Entry("anything else", "image/png", whoops.MIMETextHTML, "<!DOCTYPE html>"),
		)

		It("links the access log to the event", func() {
			resp, body := get(server.URL+"/error", whoops.MIMEApplicationJSON)
			requestID := resp.Header.Get(whoops.HeaderXRequestID)

			Expect(body).To(ContainSubstring(`"requestId":"` + requestID + `"`))

			var doc struct {
				Error struct {
					ID string `json:"id"`
				} `json:"error"`
			}
			Expect(json.Unmarshal([]byte(body), &doc)).To(Succeed())

			Expect(logs.String()).To(ContainSubstring(`"msg":"unhandled error"`))
			Expect(logs.String()).To(ContainSubstring(`"msg":"incoming request"`))
			Expect(logs.String()).To(ContainSubstring(`"status_code":500`))
			Expect(logs.String()).To(ContainSubstring(`"event_id":"` + doc.Error.ID + `"`))
			Expect(strings.Count(logs.String(), `"request_id":"`+requestID+`"`)).To(Equal(2))
		})
	})

	Context("when the handler panics", func() {
		It("recovers and releases the trap", func() {
			resp, body := get(server.URL+"/panic", whoops.MIMETextPlain)

			Expect(resp.StatusCode).To(Equal(http.StatusInternalServerError))
			Expect(body).To(HavePrefix("string: nil map write"))
			Expect(whoops.Installed()).To(BeNil())
		})
	})

	Context("when the path is skipped", func() {
		It("leaves the error to the outer error handler", func() {
			resp, body := get(server.URL+"/raw", whoops.MIMEApplicationJSON)

			Expect(resp.StatusCode).To(Equal(http.StatusInternalServerError))
			Expect(body).To(Equal(`{"error":{"message":"Internal Server Error"}}`))
		})
	})
})
