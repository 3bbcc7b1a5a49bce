// Package server provides the development server for browser bundles.
// Shared-memory WASM requires cross-origin isolation, so every response
// carries the COOP/COEP headers, and .js/.wasm assets get the explicit
// content types browsers insist on for module and streaming-compile
// loading.
package server

import (
	"context"
	"mime"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/surfdeck/surfdeck/errors"
)

// DefaultAddr is the listen address when none is configured.
const DefaultAddr = ":4000"

// Config holds configuration for the dev server.
type Config struct {
	// Addr is the listen address, DefaultAddr when empty.
	Addr string

	// Dir is the bundle directory served at the root.
	Dir string

	// SlidesDir, when set with Watch, is observed for .slide changes;
	// changed slides are recompiled into Dir/surfaces.
	SlidesDir string

	Watch  bool
	Logger *zap.Logger
}

// Server serves a presentation bundle with cross-origin isolation.
type Server struct {
	cfg    Config
	logger *zap.Logger
}

// New creates a dev server.
func New(cfg Config) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{cfg: cfg, logger: logger}
}

// Handler builds the HTTP handler: request logging, panic recovery,
// isolation headers, then static files.
func (s *Server) Handler() http.Handler {
	r := chi.NewMux()
	r.Use(
		s.requestLogger,
		middleware.Recoverer,
		isolationHeaders,
	)
	r.Get("/*", s.serveFile)
	return r
}

// Serve runs the server and, when configured, the slide watcher, until
// the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("serving bundle",
		zap.String("addr", s.cfg.Addr),
		zap.String("dir", s.cfg.Dir),
		zap.Bool("watch", s.cfg.Watch))

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    s.cfg.Addr,
		Handler: s.Handler(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.cfg.Watch && s.cfg.SlidesDir != "" {
		eg.Go(func() error {
			return s.watchSlides(egctx)
		})
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return errors.Wrap(errors.PhaseServe, errors.KindIO, err, "listen")
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// isolationHeaders enables cross-origin isolation on every response,
// 404s included. Without these the browser refuses SharedArrayBuffer.
func isolationHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cross-Origin-Opener-Policy", "same-origin")
		w.Header().Set("Cross-Origin-Embedder-Policy", "require-corp")
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)))
	})
}

func (s *Server) serveFile(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/")
	if name == "" {
		name = "index.html"
	}

	if ct := contentType(name); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	http.ServeFile(w, r, filepath.Join(s.cfg.Dir, filepath.FromSlash(name)))
}

// contentType resolves the explicit types the bundle needs; anything
// unrecognized falls back to the platform MIME table.
func contentType(name string) string {
	switch filepath.Ext(name) {
	case ".js":
		return "application/javascript"
	case ".wasm":
		return "application/wasm"
	case ".html":
		return "text/html; charset=utf-8"
	case ".srf":
		return "application/octet-stream"
	default:
		return mime.TypeByExtension(filepath.Ext(name))
	}
}
