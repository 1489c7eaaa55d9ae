// Package httpserver wires the site routes onto a single HTTP listener.
package httpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"git.home.luguber.info/inful/docpages/internal/config"
	derrors "git.home.luguber.info/inful/docpages/internal/foundation/errors"
	"git.home.luguber.info/inful/docpages/internal/logfields"
	"git.home.luguber.info/inful/docpages/internal/metrics"
	handlers "git.home.luguber.info/inful/docpages/internal/server/handlers"
	smw "git.home.luguber.info/inful/docpages/internal/server/middleware"
)

// Server serves pages, assets and the monitoring endpoints.
type Server struct {
	cfg          config.ServerConfig
	opts         Options
	logger       *slog.Logger
	errorAdapter *derrors.HTTPErrorAdapter

	pageHandlers       *handlers.PageHandlers
	monitoringHandlers *handlers.MonitoringHandlers

	handler http.Handler

	mu   sync.Mutex
	srv  *http.Server
	addr net.Addr
}

// New constructs the server and its route table.
func New(cfg config.ServerConfig, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.MetricsPath == "" {
		opts.MetricsPath = "/metrics"
	}
	opts.Recorder = metrics.OrNoop(opts.Recorder)

	s := &Server{
		cfg:          cfg,
		opts:         opts,
		logger:       logger,
		errorAdapter: derrors.NewHTTPErrorAdapter(logger),
	}
	s.pageHandlers = handlers.NewPageHandlers(opts.Composer, opts.Recorder, logger)
	s.monitoringHandlers = handlers.NewMonitoringHandlers(opts.Composer.Repository().Scanner(), logger)

	s.handler = smw.Chain(logger, s.errorAdapter, opts.Recorder)(s.routes())
	return s
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.pageHandlers.HandleRoot)
	mux.HandleFunc("GET /projects/{project}", s.pageHandlers.HandlePage)
	mux.HandleFunc("GET /projects/{project}/{page}", s.pageHandlers.HandlePage)
	mux.Handle("GET /api/projects/{project}/{file}", s.opts.Assets)
	mux.HandleFunc("GET /api/projects/", s.pageHandlers.HandleInvalidAssetPath)
	mux.HandleFunc("GET "+handlers.NotFoundPath, s.pageHandlers.HandleNotFound)
	mux.HandleFunc("GET /healthz", s.monitoringHandlers.HandleHealthCheck)
	mux.HandleFunc("GET /readyz", s.monitoringHandlers.HandleReadiness)

	if s.opts.Registry != nil {
		mux.Handle("GET "+s.opts.MetricsPath, metrics.HTTPHandler(s.opts.Registry))
	}
	if s.opts.LiveReloadHub != nil {
		mux.Handle("GET /livereload", s.opts.LiveReloadHub)
	}

	mux.HandleFunc("/", s.pageHandlers.HandleNotFound)
	return mux
}

// Handler returns the full handler including middleware.
func (s *Server) Handler() http.Handler { return s.handler }

// Addr returns the bound address once Start succeeded.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Start binds the configured address and serves in the background. Binding
// happens synchronously so an address in use fails fast.
func (s *Server) Start(ctx context.Context) error {
	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", s.cfg.Address)
	if err != nil {
		return fmt.Errorf("http startup failed: %s: %w", s.cfg.Address, err)
	}

	srv := &http.Server{
		Handler:           s.handler,
		ReadTimeout:       s.cfg.ReadTimeout,
		ReadHeaderTimeout: s.cfg.ReadTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
		BaseContext:       baseContext(ctx),
	}
	if s.opts.LiveReloadHub != nil {
		// SSE streams outlive any write deadline.
		srv.WriteTimeout = 0
	}

	s.mu.Lock()
	s.srv = srv
	s.addr = ln.Addr()
	s.mu.Unlock()

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server error", logfields.Error(err))
		}
	}()
	s.logger.Info("HTTP server started", slog.String("address", ln.Addr().String()))
	return nil
}

// baseContext keeps ctx values for request contexts but not its
// cancellation, so in-flight requests finish while Stop drains them.
func baseContext(ctx context.Context) func(net.Listener) context.Context {
	base := context.WithoutCancel(ctx)
	return func(net.Listener) context.Context { return base }
}

// Stop gracefully shuts down the server and the live reload hub.
func (s *Server) Stop(ctx context.Context) error {
	if s.opts.LiveReloadHub != nil {
		s.opts.LiveReloadHub.Shutdown()
	}

	s.mu.Lock()
	srv := s.srv
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	s.logger.Info("HTTP server stopped")
	return nil
}
