// Command whoopsd serves a few demo endpoints behind the whoops error boundary.
//
//	GET /          plain response
//	GET /error     returns an error
//	GET /panic     panics
//	GET /partial   writes a partial body, then fails
//	GET /healthz   served without the boundary
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	pkgerrors "github.com/pkg/errors"
	"github.com/spf13/pflag"

	"github.com/gowool/whoops"
	"github.com/gowool/whoops/middleware"
	"github.com/gowool/whoops/server"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}

	logger := newLogger(cfg.Log, os.Stdout)

	srv, err := server.New(cfg.Server, newHandler(cfg, logger), logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.Run(ctx)
}

func newLogger(cfg logConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.level()}

	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func newHandler(cfg config, logger *slog.Logger) http.Handler {
	opts := []whoops.Option{whoops.WithLogger(logger)}
	if cfg.DetectTerminal {
		opts = append(opts, whoops.WithCLIDetector(whoops.DetectTerminal()))
	}

	wh := whoops.New(cfg.Whoops, opts...)

	mws := whoops.Middlewares[whoops.Handler]{
		{ID: "request_id", Priority: 0, Func: middleware.RequestID(middleware.RequestIDConfig{})},
		{ID: "request_logger", Priority: 5, Func: middleware.RequestLogger(middleware.RequestLoggerConfig{Logger: logger})},
		{ID: "whoops", Priority: 10, Func: wh.Middleware},
	}

	mux := http.NewServeMux()
	for pattern, h := range routes() {
		mux.Handle(pattern, whoops.ToHTTP(mws.Build(h), nil))
	}
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	return mux
}

func routes() map[string]whoops.Handler {
	return map[string]whoops.Handler{
		"GET /{$}": whoops.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) error {
			w.Header().Set(whoops.HeaderContentType, whoops.MIMETextPlain)
			_, err := io.WriteString(w, "whoopsd\n")
			return err
		}),
		"GET /error": whoops.HandlerFunc(func(http.ResponseWriter, *http.Request) error {
			return pkgerrors.Wrap(errDemo, "handle /error")
		}),
		"GET /panic": whoops.HandlerFunc(func(http.ResponseWriter, *http.Request) error {
			panic("whoopsd: deliberate panic")
		}),
		"GET /partial": whoops.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) error {
			_, _ = io.WriteString(w, "half a page")
			return pkgerrors.New("whoopsd: failed after writing")
		}),
	}
}

var errDemo = pkgerrors.New("whoopsd: deliberate error")
