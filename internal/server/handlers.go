package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/a-h/templ"
	httprouter "github.com/solidprinciples/solid/internal/http"
	"github.com/solidprinciples/solid/internal/middleware"
	"github.com/solidprinciples/solid/internal/registry"
	"github.com/solidprinciples/solid/internal/renderer"
	"github.com/solidprinciples/solid/internal/routes"
	"github.com/solidprinciples/solid/internal/version"
	"github.com/solidprinciples/solid/internal/views"
)

var _ httprouter.Handlers = (*Server)(nil)

// render writes route with status.
func (s *Server) render(w http.ResponseWriter, r *http.Request, route routes.Route, status int) {
	pages := s.pages.Load()
	s.serveComponent(w, r, pages, pages.Component(route), route.String(), status)
}

// serveComponent renders c into a buffer first, so a failing render never
// leaves a half written page behind. Failures serve the error page.
func (s *Server) serveComponent(w http.ResponseWriter, r *http.Request, pages *renderer.PageRenderer, c templ.Component, label string, status int) {
	handler := templ.Handler(c,
		templ.WithStatus(status),
		templ.WithErrorHandler(func(r *http.Request, err error) http.Handler {
			s.logger.Error(r.Context(), err, "Page render failed",
				"route", label,
				"request_id", middleware.GetRequestID(r.Context()),
			)
			return errorPageHandler(pages)
		}),
	)
	handler.ServeHTTP(w, r)
}

func errorPageHandler(pages *renderer.PageRenderer) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		pages.ErrorPage().Render(r.Context(), w)
	})
}

// handleError serves the generic error page after a recovered panic.
func (s *Server) handleError(w http.ResponseWriter, r *http.Request) {
	errorPageHandler(s.pages.Load()).ServeHTTP(w, r)
}

func (s *Server) HandleHome(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, routes.Home(), http.StatusOK)
}

func (s *Server) HandleAbout(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, routes.About(), http.StatusOK)
}

// HandlePrinciple serves the overview of one principle in the default language.
func (s *Server) HandlePrinciple(w http.ResponseWriter, r *http.Request) {
	p, err := registry.ParsePrinciple(httprouter.URLParam(r, httprouter.ParamPrinciple))
	if err != nil {
		s.notFound(w, r, err)
		return
	}
	s.render(w, r, routes.ForPrinciple(p), http.StatusOK)
}

// HandleExample serves one principle in one language. Unknown slugs get the
// not-found page; a known pair without content gets empty panels.
func (s *Server) HandleExample(w http.ResponseWriter, r *http.Request) {
	principle := httprouter.URLParam(r, httprouter.ParamPrinciple)
	language := httprouter.URLParam(r, httprouter.ParamLanguage)

	if _, err := s.pages.Load().Resolver().Resolve(principle, language); err != nil {
		if errors.Is(err, registry.ErrUnknownPrinciple) || errors.Is(err, registry.ErrUnknownLanguage) {
			s.notFound(w, r, err)
			return
		}
		s.logger.Error(r.Context(), err, "Resolve failed", "principle", principle, "language", language)
		s.handleError(w, r)
		return
	}
	s.render(w, r, routes.ForExample(registry.Principle(principle), registry.Language(language)), http.StatusOK)
}

func (s *Server) HandleNotFound(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, routes.NotFound(), http.StatusNotFound)
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Debug(r.Context(), "Unknown slug", "path", r.URL.Path, "reason", err.Error())
	s.HandleNotFound(w, r)
}

// HandleHealth returns the server health status for health checks
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	store := s.pages.Load().Store()
	cells := store.Coverage()
	present := 0
	for _, c := range cells {
		if c.Present {
			present++
		}
	}

	websocketCheck := map[string]interface{}{"status": "disabled"}
	if s.hub != nil {
		websocketCheck = map[string]interface{}{"status": "healthy", "clients": s.hub.ClientCount()}
	}

	health := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"version":   version.GetShortVersion(),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
		"checks": map[string]interface{}{
			"content": map[string]interface{}{
				"status":   "healthy",
				"examples": present,
				"pairs":    len(cells),
				"reloads":  s.reloads.Load(),
			},
			"websocket": websocketCheck,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(health); err != nil {
		s.logger.Warn(r.Context(), err, "Failed to encode health response")
	}
}

func (s *Server) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	s.metrics.Handler().ServeHTTP(w, r)
}

func (s *Server) HandleSitemap(w http.ResponseWriter, r *http.Request) {
	if !s.config.Build.Sitemap {
		s.HandleNotFound(w, r)
		return
	}

	var buf bytes.Buffer
	if err := s.pages.Load().Sitemap(&buf); err != nil {
		s.logger.Error(r.Context(), err, "Sitemap render failed")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Write(buf.Bytes())
}

func (s *Server) HandleRobots(w http.ResponseWriter, r *http.Request) {
	if !s.config.Build.Robots {
		s.HandleNotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(s.pages.Load().Robots(s.config.Build.Sitemap)))
}

// HandleStatic serves the embedded assets plus the generated highlight
// stylesheet. Missing files and directories get the not found page.
func (s *Server) HandleStatic(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/static/chroma.css" {
		w.Header().Set("Content-Type", "text/css; charset=utf-8")
		w.Write(s.pages.Load().ChromaCSS())
		return
	}
	name := strings.TrimPrefix(path.Clean(r.URL.Path), "/static/")
	info, err := fs.Stat(views.Static(), name)
	if err != nil || info.IsDir() {
		s.HandleNotFound(w, r)
		return
	}
	s.static.ServeHTTP(w, r)
}

func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		s.HandleNotFound(w, r)
		return
	}
	s.hub.HandleWebSocket(w, r)
}
