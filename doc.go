// Package whoops provides an error boundary middleware for net/http.
//
// The boundary buffers what the downstream handler writes. When the handler
// returns an error or panics, the buffered output is dropped and a 500
// response is rendered instead, in a format negotiated from the Accept header:
//
//	Accept                                  Format  Content-Type
//	application/json                        json    application/json
//	text/html                               html    text/html
//	text/xml, application/xml               xml     application/xml
//	text/plain, text/css, text/javascript,  plain   text/plain
//	application/javascript
//	anything else                           html    text/html
//
// Basic usage:
//
//	mux := http.NewServeMux()
//	handler := whoops.HTTPMiddleware(whoops.Config{})(mux)
//
// With error returning handlers:
//
//	wh := whoops.New(whoops.Config{}, whoops.WithLogger(logger))
//	h := whoops.Chain(whoops.HandlerFunc(func(w http.ResponseWriter, r *http.Request) error {
//	    return errors.New("boom")
//	}), wh.Middleware)
//
// While a request runs, its renderers are also registered as the process-wide
// trap. Goroutines started by the handler can defer Guard (or be started
// with Go) so that a panic escaping them is written to stderr by the trap
// before the process dies.
package whoops
