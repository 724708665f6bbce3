// Package meta builds the SEO key/value set of every route from the page
// copy in the content store.
package meta

import (
	"fmt"
	"sort"
	"strings"
	"text/template"

	"github.com/solidprinciples/solid/internal/content"
	"github.com/solidprinciples/solid/internal/routes"
)

// Keys of a Meta set. The og:* and twitter:* names match the HTML attribute
// values the head renders.
const (
	KeyTitle              = "title"
	KeyDescription        = "description"
	KeyKeywords           = "keywords"
	KeyCanonical          = "canonical"
	KeyAuthor             = "author"
	KeyOGType             = "og:type"
	KeyOGTitle            = "og:title"
	KeyOGDescription      = "og:description"
	KeyOGURL              = "og:url"
	KeyTwitterCard        = "twitter:card"
	KeyTwitterTitle       = "twitter:title"
	KeyTwitterDescription = "twitter:description"
)

// Required lists the keys every rendered page must carry.
var Required = []string{KeyTitle, KeyDescription, KeyKeywords, KeyCanonical}

// Meta is a flat set of metadata keys and values for one page.
type Meta map[string]string

// Get returns the value of key, or "" when absent.
func (m Meta) Get(key string) string {
	return m[key]
}

// Missing returns the required keys that are absent or blank.
func (m Meta) Missing() []string {
	var missing []string
	for _, key := range Required {
		if strings.TrimSpace(m[key]) == "" {
			missing = append(missing, key)
		}
	}
	return missing
}

// Keys returns the keys in a stable order: required keys first, the rest
// sorted.
func (m Meta) Keys() []string {
	keys := make([]string, 0, len(m))
	seen := make(map[string]bool, len(Required))
	for _, key := range Required {
		if _, ok := m[key]; ok {
			keys = append(keys, key)
			seen[key] = true
		}
	}
	var rest []string
	for key := range m {
		if !seen[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}

// Site carries the site wide values used by the copy templates.
type Site struct {
	Name    string
	BaseURL string
	Author  string
}

// Source provides page copy per page kind. *content.Store satisfies it.
type Source interface {
	Page(kind string) (content.PageCopy, bool)
}

type pageTemplates struct {
	title              *template.Template
	description        *template.Template
	keywords           *template.Template
	ogTitle            *template.Template
	ogDescription      *template.Template
	twitterTitle       *template.Template
	twitterDescription *template.Template
}

// Generator renders Meta sets. Templates are parsed once by NewGenerator.
type Generator struct {
	site  Site
	pages map[string]pageTemplates
}

// data is the value copy templates execute against.
type data struct {
	Site      string
	Principle string
	Language  string
	URL       string
}

// NewGenerator parses the copy of every page kind the routes package can
// produce.
func NewGenerator(site Site, src Source) (*Generator, error) {
	site.BaseURL = strings.TrimSuffix(site.BaseURL, "/")
	g := &Generator{site: site, pages: make(map[string]pageTemplates)}

	for _, kind := range []string{content.PageHome, content.PagePrinciple, content.PageExample, content.PageAbout, content.PageNotFound} {
		page, ok := src.Page(kind)
		if !ok {
			return nil, fmt.Errorf("meta: no page copy for %q", kind)
		}
		pt, err := parsePage(kind, page)
		if err != nil {
			return nil, err
		}
		g.pages[kind] = pt
	}
	return g, nil
}

func parsePage(kind string, page content.PageCopy) (pageTemplates, error) {
	var pt pageTemplates
	fields := []struct {
		name string
		src  string
		dst  **template.Template
	}{
		{"title", page.Title, &pt.title},
		{"description", page.Description, &pt.description},
		{"keywords", page.Keywords, &pt.keywords},
		{"og_title", page.OGTitle, &pt.ogTitle},
		{"og_description", page.OGDescription, &pt.ogDescription},
		{"twitter_title", page.TwitterTitle, &pt.twitterTitle},
		{"twitter_description", page.TwitterDescription, &pt.twitterDescription},
	}
	for _, f := range fields {
		if f.src == "" {
			continue
		}
		tmpl, err := template.New(kind + "." + f.name).Option("missingkey=error").Parse(f.src)
		if err != nil {
			return pt, fmt.Errorf("meta: page %q field %s: %w", kind, f.name, err)
		}
		*f.dst = tmpl
	}
	return pt, nil
}

// Canonical returns the absolute URL of a route.
func (g *Generator) Canonical(r routes.Route) string {
	return g.site.BaseURL + r.Path()
}

// ForRoute returns the metadata of r. Fields whose copy is empty or fails to
// execute are left out, which Missing then reports.
func (g *Generator) ForRoute(r routes.Route) Meta {
	kind := PageKind(r.Kind)
	pt := g.pages[kind]

	d := data{
		Site: g.site.Name,
		URL:  g.Canonical(r),
	}
	if r.Principle.Valid() {
		d.Principle = r.Principle.Info().Name
	}
	if r.Language.Valid() {
		d.Language = r.Language.Info().Label
	}

	m := Meta{
		KeyCanonical:   d.URL,
		KeyOGURL:       d.URL,
		KeyOGType:      "website",
		KeyTwitterCard: "summary",
	}
	if g.site.Author != "" {
		m[KeyAuthor] = g.site.Author
	}

	set := func(key string, tmpl *template.Template) {
		if tmpl == nil {
			return
		}
		var sb strings.Builder
		if err := tmpl.Execute(&sb, d); err != nil {
			return
		}
		if v := strings.TrimSpace(sb.String()); v != "" {
			m[key] = v
		}
	}
	set(KeyTitle, pt.title)
	set(KeyDescription, pt.description)
	set(KeyKeywords, pt.keywords)
	set(KeyOGTitle, pt.ogTitle)
	set(KeyOGDescription, pt.ogDescription)
	set(KeyTwitterTitle, pt.twitterTitle)
	set(KeyTwitterDescription, pt.twitterDescription)

	return m
}

// PageKind maps a route kind onto the content page kind holding its copy.
func PageKind(k routes.Kind) string {
	switch k {
	case routes.KindHome:
		return content.PageHome
	case routes.KindAbout:
		return content.PageAbout
	case routes.KindPrinciple:
		return content.PagePrinciple
	case routes.KindExample:
		return content.PageExample
	default:
		return content.PageNotFound
	}
}

var _ Source = (*content.Store)(nil)
