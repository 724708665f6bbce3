// Package server serves the site over HTTP.
//
// Every request renders against the content snapshot current when it
// arrived. In development the snapshot can be swapped at runtime: content
// edits below Content.Dir rebuild it and a reload message is pushed to open
// browser tabs over /ws.
package server

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/solidprinciples/solid/internal/config"
	"github.com/solidprinciples/solid/internal/content"
	httprouter "github.com/solidprinciples/solid/internal/http"
	"github.com/solidprinciples/solid/internal/logging"
	"github.com/solidprinciples/solid/internal/middleware"
	"github.com/solidprinciples/solid/internal/renderer"
	"github.com/solidprinciples/solid/internal/views"
	"github.com/solidprinciples/solid/internal/watcher"
	"github.com/solidprinciples/solid/internal/websocket"
)

// Server serves the site with optional live reload.
//
// Invariants:
//   - pages always holds a fully prepared snapshot
//   - hub is nil unless dev reload is enabled
type Server struct {
	config  *config.Config
	logger  logging.Logger
	pages   atomic.Pointer[renderer.PageRenderer]
	metrics *middleware.Metrics
	hub     *websocket.Hub
	watcher *watcher.FileWatcher
	router  *httprouter.Router
	static  http.Handler

	started      time.Time
	year         int
	reloads      atomic.Int64
	shutdownOnce sync.Once
}

// New loads the configured content and wires the router.
func New(cfg *config.Config, logger logging.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("server: config cannot be nil")
	}
	if logger == nil {
		logger = logging.Discard()
	}

	now := time.Now()
	s := &Server{
		config:  cfg,
		logger:  logger.WithComponent("server"),
		metrics: middleware.NewMetrics(),
		static:  http.StripPrefix("/static/", http.FileServer(http.FS(views.Static()))),
		started: now,
		year:    now.Year(),
	}

	pages, err := s.loadPages()
	if err != nil {
		return nil, err
	}
	s.pages.Store(pages)

	if s.devReload() {
		s.hub = websocket.NewHub(originPatterns(cfg.Server.AllowedOrigins), logger)
	}

	chain := middleware.NewMiddlewareChain(middleware.MiddlewareDependencies{
		Config:    cfg,
		Logger:    logger,
		Metrics:   s.metrics,
		ErrorPage: http.HandlerFunc(s.handleError),
	})
	s.router = httprouter.NewRouter(cfg, s, chain)
	if sl, ok := logger.(*logging.SiteLogger); ok {
		s.router.SetErrorLog(sl.Slog())
	}

	return s, nil
}

func (s *Server) devReload() bool {
	return s.config.Development.HotReload && !s.config.IsProduction()
}

func (s *Server) loadPages() (*renderer.PageRenderer, error) {
	store, err := content.Open(s.config.Content.Dir)
	if err != nil {
		return nil, fmt.Errorf("load content: %w", err)
	}
	opts := renderer.ConfigOptions(s.config, s.year)
	opts.DevReload = s.devReload()
	return renderer.NewPageRenderer(store, opts)
}

// originPatterns turns allowed origins into the host patterns the websocket
// handshake checks. Invalid entries were already rejected by config validation.
func originPatterns(origins []string) []string {
	patterns := make([]string, 0, len(origins))
	for _, origin := range origins {
		u, err := url.Parse(origin)
		if err != nil || u.Host == "" {
			continue
		}
		patterns = append(patterns, u.Host)
	}
	return patterns
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.router.Handler()
}

// Addr returns the bound address once listening.
func (s *Server) Addr() string {
	return s.router.GetAddr()
}

// Pages returns the current snapshot.
func (s *Server) Pages() *renderer.PageRenderer {
	return s.pages.Load()
}

// Start serves until ctx is cancelled. The content watcher runs alongside
// when dev reload is enabled and a content directory is configured.
func (s *Server) Start(ctx context.Context) error {
	if s.devReload() && s.config.Content.Dir != "" {
		if err := s.startWatcher(ctx); err != nil {
			s.logger.Warn(ctx, err, "Content watcher disabled")
		}
	}

	s.logger.Info(ctx, "Server starting",
		"addr", s.config.Addr(),
		"environment", s.config.Server.Environment,
		"dev_reload", s.devReload(),
	)

	err := s.router.Start(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if shutdownErr := s.Shutdown(shutdownCtx); err == nil {
		err = shutdownErr
	}
	return err
}

func (s *Server) startWatcher(ctx context.Context) error {
	fw, err := watcher.NewFileWatcher(300*time.Millisecond, s.logger)
	if err != nil {
		return err
	}
	fw.AddFilter(watcher.NoHiddenFilter)
	fw.AddFilter(watcher.GlobFilter(s.config.Content.Dir, s.config.Development.Watch))
	fw.AddHandler(s.handleContentChange)

	if err := fw.AddRecursive(s.config.Content.Dir); err != nil {
		fw.Stop()
		return err
	}
	if err := fw.Start(ctx); err != nil {
		fw.Stop()
		return err
	}
	s.watcher = fw
	return nil
}

func (s *Server) handleContentChange(events []watcher.ChangeEvent) error {
	ctx := context.Background()
	for _, event := range events {
		s.logger.Debug(ctx, "Content changed", "path", event.Path, "type", event.Type.String())
	}
	return s.Reload(ctx)
}

// Reload rebuilds the snapshot from the content source. On failure the
// previous snapshot stays in service and the error is returned.
func (s *Server) Reload(ctx context.Context) error {
	perf := logging.StartOperation(s.logger, "content_reload")

	pages, err := s.loadPages()
	if err != nil {
		perf.EndWithError(ctx, err)
		return err
	}
	s.pages.Store(pages)
	s.reloads.Add(1)
	perf.End(ctx, "missing", len(pages.Store().Missing()))

	if s.hub != nil {
		s.hub.NotifyReload("content changed")
	}
	return nil
}

// Shutdown stops the watcher, the websocket hub and the HTTP server. It is
// idempotent.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.logger.Info(ctx, "Shutting down server")

		if s.watcher != nil {
			s.watcher.Stop()
		}
		if s.hub != nil {
			s.hub.Shutdown(ctx)
		}
		err = s.router.Shutdown(ctx)
	})
	return err
}
