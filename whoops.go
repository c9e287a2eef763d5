package whoops

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"golang.org/x/term"

	"github.com/gowool/whoops/internal"
)

type Option func(*Whoops)

// WithRun uses run for every request instead of resolving a renderer from the Accept header.
func WithRun(run *Run) Option {
	return func(wh *Whoops) {
		wh.run = run
	}
}

func WithHandlerContainer(container HandlerContainer) Option {
	return func(wh *Whoops) {
		if container != nil {
			wh.container = container
		}
	}
}

// WithDefaultHandler replaces the renderer used for the html and unknown formats.
func WithDefaultHandler(renderer Renderer) Option {
	return func(wh *Whoops) {
		wh.defaultHandler = renderer
	}
}

func WithResponseFactory(factory ResponseFactory) Option {
	return func(wh *Whoops) {
		if factory != nil {
			wh.factory = factory
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(wh *Whoops) {
		wh.logger = logger
	}
}

// WithCLIDetector reports at request time whether the process is non-interactive.
func WithCLIDetector(detector func() bool) Option {
	return func(wh *Whoops) {
		wh.isCLI = detector
	}
}

func WithSkipper(skippers ...Skipper) Option {
	return func(wh *Whoops) {
		wh.skippers = append(wh.skippers, skippers...)
	}
}

// WithIPExtractor sets how the client IP shown in reports is resolved,
// RealIP(Config.TrustedProxy) by default.
func WithIPExtractor(extractor IPExtractor) Option {
	return func(wh *Whoops) {
		wh.clientIP = extractor
	}
}

// WithTrapOutput sets where errors escaping every boundary are written, os.Stderr by default.
// It also applies to the run given with WithRun.
func WithTrapOutput(w io.Writer) Option {
	return func(wh *Whoops) {
		wh.output = w
	}
}

// DetectTerminal returns a CLI detector reporting whether stdout is a terminal.
func DetectTerminal() func() bool {
	return func() bool {
		return term.IsTerminal(int(os.Stdout.Fd()))
	}
}

// Whoops is the error boundary middleware.
type Whoops struct {
	cfg            Config
	run            *Run
	container      HandlerContainer
	defaultHandler Renderer
	factory        ResponseFactory
	logger         *slog.Logger
	isCLI          func() bool
	skippers       []Skipper
	skip           Skipper
	clientIP       IPExtractor
	output         io.Writer
	steps          internal.Scope[*scope]
}

type scope struct {
	req    *http.Request
	res    *Response
	run    *Run
	failed bool
}

func New(cfg Config, opts ...Option) *Whoops {
	cfg.SetDefaults()

	wh := &Whoops{
		cfg:     cfg,
		factory: NewResponse,
	}

	for _, opt := range opts {
		opt(wh)
	}

	if wh.logger == nil {
		wh.logger = slog.New(slog.DiscardHandler)
	}
	wh.logger = wh.logger.WithGroup("whoops")

	if wh.container == nil {
		wh.container = &Container{
			Title:       cfg.PageTitle,
			HideHeaders: cfg.HideHeaders,
		}
	}
	if wh.defaultHandler != nil {
		wh.container = defaultOverride{HandlerContainer: wh.container, renderer: wh.defaultHandler}
	}

	if wh.run != nil {
		wh.run.SetOutput(wh.output)
	}

	if wh.clientIP == nil {
		wh.clientIP = RealIP(cfg.TrustedProxy)
	}

	wh.skip = ChainSkipper(append(cfg.skippers(), wh.skippers...)...)
	wh.steps = internal.Scope[*scope]{wh.capture, wh.resolve, wh.install}

	return wh
}

// Middleware is a shorthand for New(cfg, opts...).Middleware.
func Middleware(cfg Config, opts ...Option) func(Handler) Handler {
	return New(cfg, opts...).Middleware
}

// HTTPMiddleware is a shorthand for New(cfg, opts...).HTTPMiddleware.
func HTTPMiddleware(cfg Config, opts ...Option) func(http.Handler) http.Handler {
	return New(cfg, opts...).HTTPMiddleware
}

// Process runs next behind the boundary and returns the response to send.
//
// Whatever next writes is buffered. When next returns normally its response is
// returned as is. When it returns an error or panics, the buffered output is
// discarded and a 500 response rendered by the first visible renderer of the
// run is returned instead. http.ErrAbortHandler panics are not recovered.
func (wh *Whoops) Process(r *http.Request, next Handler) *Response {
	s, exit := wh.steps.Enter(&scope{req: r})
	defer exit()

	err := wh.serve(next, s.res, r)
	if err == nil {
		return s.res
	}

	s.failed = true

	return wh.handleError(s, err)
}

func (wh *Whoops) Middleware(next Handler) Handler {
	return HandlerFunc(func(w http.ResponseWriter, r *http.Request) error {
		if wh.skip(r) {
			return next.ServeHTTP(w, r)
		}

		return wh.Process(r, next).Send(w)
	})
}

func (wh *Whoops) HTTPMiddleware(next http.Handler) http.Handler {
	h := wh.Middleware(HandlerFunc(func(w http.ResponseWriter, r *http.Request) error {
		next.ServeHTTP(w, r)
		return nil
	}))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := h.ServeHTTP(w, r); err != nil {
			wh.logger.LogAttrs(r.Context(), slog.LevelWarn, "send response",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Any("error", err),
			)
		}
	})
}

// Run returns the run used for r.
func (wh *Whoops) Run(r *http.Request) *Run {
	if wh.run != nil {
		return wh.run
	}

	nonInteractive := wh.cfg.CLI || (wh.isCLI != nil && wh.isCLI())
	format := wh.container.SelectFormat(r.Header.Get(HeaderAccept), nonInteractive)

	return NewRun(wh.container.BuildRenderer(format)).SetOutput(wh.output)
}

func (wh *Whoops) serve(next Handler, w http.ResponseWriter, r *http.Request) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			if recErr, ok := rec.(error); ok && errors.Is(recErr, http.ErrAbortHandler) {
				// don't recover ErrAbortHandler so the response to the client can be aborted
				panic(recErr)
			}
			err = newPanicError(rec, 2, wh.cfg.MaxFrames+8)
		}
	}()

	return next.ServeHTTP(w, r)
}

func (wh *Whoops) handleError(s *scope, err error) *Response {
	event := NewEvent(s.req, err, wh.cfg.MaxFrames)
	event.Request.ClientIP = wh.clientIP(s.req)
	trackEvent(s.req.Context(), event)

	logEvent(wh.logger, "unhandled error", event)
	recordSpan(s.req.Context(), event)

	res := wh.factory(http.StatusInternalServerError)

	if renderer, err := s.run.HandleError(res, event); err != nil {
		wh.logger.LogAttrs(context.Background(), slog.LevelError, "render error",
			slog.String("event_id", event.ID),
			slog.String("renderer", fmt.Sprintf("%T", renderer)),
			slog.Any("error", err),
		)
	}

	return res
}

// capture opens the region the downstream handler writes into.
func (wh *Whoops) capture(s *scope) (*scope, func()) {
	s.res = wh.factory(http.StatusOK)

	return s, func() {
		if s.failed {
			s.res.Reset()
		}
	}
}

func (wh *Whoops) resolve(s *scope) (*scope, func()) {
	s.run = wh.Run(s.req)
	return s, nil
}

// install registers the run as the process-wide trap for the duration of the call.
func (wh *Whoops) install(s *scope) (*scope, func()) {
	if !*wh.cfg.CatchErrors {
		return s, nil
	}
	return s, s.run.Register()
}

type defaultOverride struct {
	HandlerContainer
	renderer Renderer
}

func (c defaultOverride) BuildRenderer(format Format) Renderer {
	if format == FormatHTML || format == FormatUnknown {
		return c.renderer
	}
	return c.HandlerContainer.BuildRenderer(format)
}
