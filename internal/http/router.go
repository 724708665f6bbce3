// Package http owns the HTTP server lifecycle and route registration.
package http

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/solidprinciples/solid/internal/config"
	"github.com/solidprinciples/solid/internal/routes"
)

// Router handles HTTP server lifecycle and route registration.
//
// Invariants:
//   - config, mux and handlers are never nil after construction
//   - httpServer is set by NewRouter; isShutdown is guarded by serverMutex
type Router struct {
	config     *config.Config
	httpServer *http.Server
	mux        chi.Router

	serverMutex sync.RWMutex
	isShutdown  bool
	listenAddr  net.Addr

	handlers Handlers
}

// Handlers defines every HTTP handler the router dispatches to.
type Handlers interface {
	HandleHome(w http.ResponseWriter, r *http.Request)
	HandleAbout(w http.ResponseWriter, r *http.Request)
	HandlePrinciple(w http.ResponseWriter, r *http.Request)
	HandleExample(w http.ResponseWriter, r *http.Request)
	HandleNotFound(w http.ResponseWriter, r *http.Request)

	HandleHealth(w http.ResponseWriter, r *http.Request)
	HandleMetrics(w http.ResponseWriter, r *http.Request)
	HandleSitemap(w http.ResponseWriter, r *http.Request)
	HandleRobots(w http.ResponseWriter, r *http.Request)
	HandleStatic(w http.ResponseWriter, r *http.Request)
	HandleWebSocket(w http.ResponseWriter, r *http.Request)
}

// MiddlewareProvider supplies the middleware stack in execution order.
type MiddlewareProvider interface {
	Middlewares() []func(http.Handler) http.Handler
}

// URL parameter names used by the page routes.
const (
	ParamPrinciple = "principle"
	ParamLanguage  = "language"
)

// NewRouter creates a router with every route registered.
//
// Panics if any dependency is nil or the configured port is out of range.
func NewRouter(cfg *config.Config, handlers Handlers, middlewareProvider MiddlewareProvider) *Router {
	if cfg == nil {
		panic("Router: config cannot be nil")
	}
	if handlers == nil {
		panic("Router: handlers cannot be nil")
	}
	if middlewareProvider == nil {
		panic("Router: middlewareProvider cannot be nil")
	}
	if cfg.Server.Port < 0 || cfg.Server.Port > 65535 {
		panic(fmt.Sprintf("Router: invalid port %d, must be 0-65535", cfg.Server.Port))
	}

	router := &Router{
		config:   cfg,
		mux:      chi.NewRouter(),
		handlers: handlers,
	}
	router.mux.Use(middlewareProvider.Middlewares()...)
	router.mux.Use(chimw.RedirectSlashes)
	router.registerRoutes()

	router.httpServer = &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router.mux,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return router
}

func (r *Router) registerRoutes() {
	// Pages
	r.mux.Get("/", r.handlers.HandleHome)
	r.mux.Get("/about", r.handlers.HandleAbout)
	r.mux.Get("/404", r.handlers.HandleNotFound)
	r.mux.Get(routes.ExamplePrefix+"/{"+ParamPrinciple+"}", r.handlers.HandlePrinciple)
	r.mux.Get(routes.ExamplePrefix+"/{"+ParamPrinciple+"}/{"+ParamLanguage+"}", r.handlers.HandleExample)

	// Supporting endpoints
	r.mux.Get("/healthz", r.handlers.HandleHealth)
	r.mux.Get("/metrics", r.handlers.HandleMetrics)
	r.mux.Get("/sitemap.xml", r.handlers.HandleSitemap)
	r.mux.Get("/robots.txt", r.handlers.HandleRobots)
	r.mux.Get("/static/*", r.handlers.HandleStatic)

	if r.config.Development.HotReload {
		r.mux.Get("/ws", r.handlers.HandleWebSocket)
	}

	r.mux.NotFound(r.handlers.HandleNotFound)
	r.mux.MethodNotAllowed(r.handlers.HandleNotFound)
}

// Handler returns the routed handler with middleware applied.
func (r *Router) Handler() http.Handler {
	return r.mux
}

// SetErrorLog routes the server's internal errors to logger.
func (r *Router) SetErrorLog(logger *slog.Logger) {
	r.serverMutex.Lock()
	defer r.serverMutex.Unlock()
	r.httpServer.ErrorLog = slog.NewLogLogger(logger.Handler(), slog.LevelError)
}

// Start listens on the configured address and serves until ctx is cancelled
// or the server fails. Cancellation triggers a graceful shutdown.
func (r *Router) Start(ctx context.Context) error {
	if ctx == nil {
		return fmt.Errorf("Router.Start: context cannot be nil")
	}

	r.serverMutex.RLock()
	server := r.httpServer
	isShutdown := r.isShutdown
	r.serverMutex.RUnlock()

	if isShutdown {
		return fmt.Errorf("Router.Start: router has been shut down")
	}

	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		return fmt.Errorf("Router.Start: %w", err)
	}
	r.serverMutex.Lock()
	r.listenAddr = ln.Addr()
	r.serverMutex.Unlock()

	errChan := make(chan error, 1)
	go func() {
		if err := server.Serve(ln); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("Router: server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return r.Shutdown(shutdownCtx)
	case err := <-errChan:
		return err
	}
}

// Shutdown gracefully stops the server. It is idempotent.
func (r *Router) Shutdown(ctx context.Context) error {
	if ctx == nil {
		return fmt.Errorf("Router.Shutdown: context cannot be nil")
	}

	r.serverMutex.Lock()
	defer r.serverMutex.Unlock()

	if r.isShutdown {
		return nil
	}
	r.isShutdown = true

	if err := r.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("Router.Shutdown: server shutdown failed: %w", err)
	}
	return nil
}

// GetAddr returns the bound address once listening, else the configured one.
func (r *Router) GetAddr() string {
	r.serverMutex.RLock()
	defer r.serverMutex.RUnlock()

	if r.listenAddr != nil {
		return r.listenAddr.String()
	}
	return r.httpServer.Addr
}

// IsShutdown returns whether the router has been shut down
func (r *Router) IsShutdown() bool {
	r.serverMutex.RLock()
	defer r.serverMutex.RUnlock()
	return r.isShutdown
}

// URLParam returns the unescaped path parameter of the matched route.
// chi matches on the raw path, so "single%2Dresponsibility" arrives encoded.
func URLParam(req *http.Request, name string) string {
	v := chi.URLParam(req, name)
	if unescaped, err := url.PathUnescape(v); err == nil {
		return unescaped
	}
	return v
}
