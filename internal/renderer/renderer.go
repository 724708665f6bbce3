// Package renderer turns routes into complete HTML documents.
//
// A PageRenderer is built from one content snapshot. Markdown bodies, page
// metadata templates and the highlighter stylesheet are prepared up front so
// rendering a route does no parsing and cannot fail on content. The server
// and the static export share it, so a page served live and the same page
// exported to disk are byte-identical.
package renderer

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"

	"github.com/a-h/templ"
	"github.com/solidprinciples/solid/internal/config"
	"github.com/solidprinciples/solid/internal/content"
	"github.com/solidprinciples/solid/internal/highlight"
	"github.com/solidprinciples/solid/internal/markdown"
	"github.com/solidprinciples/solid/internal/meta"
	"github.com/solidprinciples/solid/internal/resolver"
	"github.com/solidprinciples/solid/internal/routes"
	"github.com/solidprinciples/solid/internal/views"
)

// Options configures the document shell.
type Options struct {
	Site        meta.Site
	AnalyticsID string
	// DevReload injects the websocket reload client.
	DevReload bool
	// Year is printed in the footer.
	Year int
}

// ConfigOptions derives the shell options from cfg. DevReload is left off;
// only the dev server turns it on.
func ConfigOptions(cfg *config.Config, year int) Options {
	return Options{
		Site: meta.Site{
			Name:    cfg.Site.Name,
			BaseURL: cfg.Site.BaseURL,
			Author:  cfg.Site.Author,
		},
		AnalyticsID: cfg.Site.AnalyticsID,
		Year:        year,
	}
}

// PageRenderer renders routes against one immutable content snapshot. It is
// safe for concurrent use.
type PageRenderer struct {
	store    *content.Store
	resolver *resolver.Resolver
	meta     *meta.Generator
	opts     Options

	bodies    map[string]string
	chromaCSS []byte
}

// NewPageRenderer prepares a renderer for store.
func NewPageRenderer(store *content.Store, opts Options) (*PageRenderer, error) {
	if store == nil {
		return nil, fmt.Errorf("renderer: store cannot be nil")
	}

	gen, err := meta.NewGenerator(opts.Site, store)
	if err != nil {
		return nil, fmt.Errorf("renderer: %w", err)
	}

	r := &PageRenderer{
		store:    store,
		resolver: resolver.New(store),
		meta:     gen,
		opts:     opts,
		bodies:   make(map[string]string),
	}

	for _, kind := range []string{content.PageHome, content.PagePrinciple, content.PageExample, content.PageAbout} {
		src := store.Body(kind)
		if src == nil {
			continue
		}
		html, err := markdown.Render(src)
		if err != nil {
			return nil, fmt.Errorf("renderer: %s body: %w", kind, err)
		}
		r.bodies[kind] = html
	}

	var css bytes.Buffer
	if err := highlight.WriteCSS(&css); err != nil {
		return nil, fmt.Errorf("renderer: highlight css: %w", err)
	}
	r.chromaCSS = css.Bytes()

	return r, nil
}

// Store returns the snapshot the renderer reads from.
func (r *PageRenderer) Store() *content.Store {
	return r.store
}

// Resolver returns the resolver over the renderer's snapshot.
func (r *PageRenderer) Resolver() *resolver.Resolver {
	return r.resolver
}

// Meta returns the metadata of route.
func (r *PageRenderer) Meta(route routes.Route) meta.Meta {
	return r.meta.ForRoute(route)
}

// Component returns the full document of route.
func (r *PageRenderer) Component(route routes.Route) templ.Component {
	page := views.Page{
		SiteName:    r.opts.Site.Name,
		Meta:        r.meta.ForRoute(route),
		AnalyticsID: r.opts.AnalyticsID,
		Principle:   route.Principle,
		Year:        r.opts.Year,
		DevReload:   r.opts.DevReload,
	}
	return views.Layout(page, r.body(route))
}

func (r *PageRenderer) body(route routes.Route) templ.Component {
	kind := meta.PageKind(route.Kind)
	switch route.Kind {
	case routes.KindHome:
		return views.LandingPage(views.Landing{
			IntroHTML: r.bodies[kind],
			Language:  route.Language,
		})
	case routes.KindPrinciple, routes.KindExample:
		return views.LandingPage(views.Landing{
			IntroHTML: r.bodies[kind],
			Principle: route.Principle,
			Language:  route.Language,
			Example:   r.resolver.ResolvePair(route.Principle, route.Language),
		})
	case routes.KindAbout:
		return views.About(r.bodies[kind])
	default:
		return views.NotFound()
	}
}

// Render writes the document of route to w.
func (r *PageRenderer) Render(ctx context.Context, route routes.Route, w io.Writer) error {
	return r.Component(route).Render(ctx, w)
}

// RenderBytes renders route into memory. A failed render returns no partial
// output.
func (r *PageRenderer) RenderBytes(ctx context.Context, route routes.Route) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.Render(ctx, route, &buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", route, err)
	}
	return buf.Bytes(), nil
}

// ErrorPage returns the standalone document shown when rendering fails.
func (r *PageRenderer) ErrorPage() templ.Component {
	return views.ErrorPage(r.opts.Site.Name)
}

// ChromaCSS returns the stylesheet for highlighted code.
func (r *PageRenderer) ChromaCSS() []byte {
	return r.chromaCSS
}

type urlSet struct {
	XMLName xml.Name   `xml:"urlset"`
	Xmlns   string     `xml:"xmlns,attr"`
	URLs    []urlEntry `xml:"url"`
}

type urlEntry struct {
	Loc      string `xml:"loc"`
	Priority string `xml:"priority,omitempty"`
}

// Sitemap writes a sitemap of every enumerated route except the not-found page.
func (r *PageRenderer) Sitemap(w io.Writer) error {
	set := urlSet{Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	for _, route := range routes.Enumerate() {
		if route.Kind == routes.KindNotFound {
			continue
		}
		set.URLs = append(set.URLs, urlEntry{
			Loc:      r.meta.Canonical(route),
			Priority: priority(route.Kind),
		})
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(set); err != nil {
		return fmt.Errorf("encode sitemap: %w", err)
	}
	return enc.Close()
}

func priority(k routes.Kind) string {
	switch k {
	case routes.KindHome:
		return "1.0"
	case routes.KindPrinciple:
		return "0.8"
	case routes.KindExample:
		return "0.6"
	default:
		return "0.5"
	}
}

// Robots returns robots.txt, pointing at the sitemap when withSitemap is set.
func (r *PageRenderer) Robots(withSitemap bool) string {
	out := "User-agent: *\nAllow: /\n"
	if withSitemap {
		out += "\nSitemap: " + r.opts.Site.BaseURL + "/sitemap.xml\n"
	}
	return out
}
