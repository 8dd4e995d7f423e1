// Package server exposes resolved workspace menus over HTTP.
package server

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/onecx/workspace-menu/internal/cache"
	"github.com/onecx/workspace-menu/internal/domain"
	"github.com/onecx/workspace-menu/internal/menu"
	"github.com/onecx/workspace-menu/internal/metric"
)

const (
	// DefaultPort is the default HTTP server port.
	DefaultPort = 8080

	// DefaultReadTimeout is the maximum duration for reading the entire request,
	// including the body.
	DefaultReadTimeout = 10 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request
	// when keep-alives are enabled.
	DefaultIdleTimeout = 60 * time.Second

	// DefaultShutdownTimeout is the grace period for in-flight requests on shutdown.
	DefaultShutdownTimeout = 5 * time.Second

	// DefaultMaxHeaderBytes limits the size of request headers.
	DefaultMaxHeaderBytes = 1 << 20 // 1 MB
)

// MenuService is the subset of menu.Service the server needs.
type MenuService interface {
	Load(ctx context.Context, ref domain.MenuRef) *menu.LoadResult
	Construct(items []domain.MenuItemRecord, lang string) []domain.MenuEntry
	Tree(ctx context.Context, ref domain.MenuRef, state *domain.ExpansionState) []*domain.TreeNode
	Move(ctx context.Context, ref domain.MenuRef, req menu.MoveRequest, apply bool) (*menu.MoveResult, error)
}

// ReadinessChecker reports whether the server can handle requests.
type ReadinessChecker interface {
	Ready(ctx context.Context) error
}

// ReadyFunc adapts a function to ReadinessChecker.
type ReadyFunc func(ctx context.Context) error

// Ready calls f.
func (f ReadyFunc) Ready(ctx context.Context) error { return f(ctx) }

// Server serves menus of a MenuService with a resolved-menu cache in front.
type Server struct {
	svc    MenuService
	cache  cache.Cache
	langs  *Languages
	logger *slog.Logger
	ready  ReadinessChecker

	mux             *http.ServeMux
	port            int
	readTimeout     time.Duration
	writeTimeout    time.Duration
	idleTimeout     time.Duration
	shutdownTimeout time.Duration
	maxHeaderBytes  int

	mu      sync.RWMutex
	running bool
	addr    net.Addr

	registry     *prometheus.Registry
	requests     metric.IncrementalCounter
	cacheResults metric.IncrementalCounter
}

// Option configures a Server.
type Option func(*Server)

// WithPort sets the listen port. Zero picks a free port.
func WithPort(port int) Option {
	return func(s *Server) { s.port = port }
}

// WithShutdownTimeout sets the grace period for shutdown.
func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Server) { s.shutdownTimeout = d }
}

// WithCache replaces the default in-memory cache.
func WithCache(c cache.Cache) Option {
	return func(s *Server) { s.cache = c }
}

// WithLanguages sets the default and supported display languages.
func WithLanguages(defaultLang string, supported ...string) Option {
	return func(s *Server) { s.langs = NewLanguages(defaultLang, supported...) }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithReadiness sets the check behind /readyz.
func WithReadiness(r ReadinessChecker) Option {
	return func(s *Server) { s.ready = r }
}

// WithHandler registers an additional handler on the server mux.
func WithHandler(pattern string, handler http.Handler) Option {
	return func(s *Server) { s.mux.Handle(pattern, handler) }
}

// New creates a server for svc.
func New(svc MenuService, opts ...Option) *Server {
	reg := prometheus.NewRegistry()

	s := &Server{
		svc:             svc,
		logger:          slog.Default(),
		langs:           NewLanguages("en"),
		mux:             http.NewServeMux(),
		port:            DefaultPort,
		readTimeout:     DefaultReadTimeout,
		writeTimeout:    DefaultWriteTimeout,
		idleTimeout:     DefaultIdleTimeout,
		shutdownTimeout: DefaultShutdownTimeout,
		maxHeaderBytes:  DefaultMaxHeaderBytes,
		registry:        reg,
		requests: metric.NewCounterWithRegistry(reg, "wsm_requests_total",
			"HTTP requests by route pattern and status code.", "route", "code"),
		cacheResults: metric.NewCounterWithRegistry(reg, "wsm_menu_cache_total",
			"Resolved menu cache lookups by result.", "result"),
	}

	for _, opt := range opts {
		opt(s)
	}
	if s.cache == nil {
		s.cache = cache.NewMemoryCache(cache.DefaultTTL)
	}
	s.routes()

	s.logger.Info("server initialized",
		"port", s.port,
		"read_timeout", s.readTimeout,
		"write_timeout", s.writeTimeout)

	return s
}

// Handler returns the instrumented request handler.
func (s *Server) Handler() http.Handler {
	return s.instrument(s.mux)
}

// IsRunning reports whether the server is accepting connections.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Addr returns the bound listen address, or nil before Serve binds.
func (s *Server) Addr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.addr
}

// InvalidateWorkspace drops every cached menu of workspace.
func (s *Server) InvalidateWorkspace(ctx context.Context, workspace string) error {
	if err := s.cache.DeletePrefix(ctx, cache.WorkspacePrefix(workspace)); err != nil {
		return fmt.Errorf("invalidating workspace %s: %w", workspace, err)
	}
	s.logger.Info("menu cache invalidated", "workspace", workspace)
	return nil
}

// Serve listens on the configured port and blocks until ctx is canceled,
// then shuts down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:           fmt.Sprintf(":%d", s.port),
		Handler:        s.Handler(),
		ReadTimeout:    s.readTimeout,
		WriteTimeout:   s.writeTimeout,
		IdleTimeout:    s.idleTimeout,
		MaxHeaderBytes: s.maxHeaderBytes,
		ErrorLog:       log.New(&slogWriter{s.logger}, "", 0),
	}

	listener, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}
	s.logger.Info("starting server", "addr", listener.Addr().String())

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.mu.Lock()
		s.running = true
		s.addr = listener.Addr()
		s.mu.Unlock()

		defer func() {
			s.mu.Lock()
			s.running = false
			s.mu.Unlock()
		}()

		if err := srv.Serve(listener); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()

		s.logger.Info("shutting down server", "grace_period", s.shutdownTimeout)
		shutdownStart := time.Now()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("server shutdown error", "error", err)
		}

		s.logger.Info("server shutdown complete", "duration", time.Since(shutdownStart))
		return nil
	})

	return g.Wait()
}

// slogWriter routes net/http error log lines to a slog.Logger.
type slogWriter struct {
	logger *slog.Logger
}

func (w *slogWriter) Write(p []byte) (int, error) {
	w.logger.Error("http server", "error", string(p))
	return len(p), nil
}
