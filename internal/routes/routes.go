// Package routes enumerates every page the site can serve or export.
//
// Enumeration only consults the registry, never the content store: a pair
// without authored content still gets a page, which renders an empty panel.
package routes

import (
	"fmt"
	"path"
	"strings"

	"github.com/solidprinciples/solid/internal/registry"
)

// Kind identifies the view a route renders.
type Kind int

const (
	KindHome Kind = iota
	KindAbout
	KindPrinciple
	KindExample
	KindNotFound
)

// String returns the string representation of the Kind
func (k Kind) String() string {
	switch k {
	case KindHome:
		return "home"
	case KindAbout:
		return "about"
	case KindPrinciple:
		return "principle"
	case KindExample:
		return "example"
	case KindNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// ExamplePrefix is the URL prefix shared by principle and example routes.
const ExamplePrefix = "/code-example"

// Route is one addressable page.
type Route struct {
	Kind      Kind
	Principle registry.Principle
	Language  registry.Language
}

// Pair is a principle and language combination.
type Pair struct {
	Principle registry.Principle
	Language  registry.Language
}

// Home is the global landing route.
func Home() Route { return Route{Kind: KindHome, Language: registry.DefaultLanguage} }

// About is the informational route.
func About() Route { return Route{Kind: KindAbout} }

// NotFound is the route rendered for unknown slugs and paths.
func NotFound() Route { return Route{Kind: KindNotFound} }

// ForPrinciple is the overview route of p, fixed to the default language.
func ForPrinciple(p registry.Principle) Route {
	return Route{Kind: KindPrinciple, Principle: p, Language: registry.DefaultLanguage}
}

// ForExample is the route of p shown in l.
func ForExample(p registry.Principle, l registry.Language) Route {
	return Route{Kind: KindExample, Principle: p, Language: l}
}

// Path returns the URL path of the route.
func (r Route) Path() string {
	switch r.Kind {
	case KindHome:
		return "/"
	case KindAbout:
		return "/about"
	case KindPrinciple:
		return path.Join(ExamplePrefix, string(r.Principle))
	case KindExample:
		return path.Join(ExamplePrefix, string(r.Principle), string(r.Language))
	default:
		return "/404"
	}
}

// File returns the slash separated file the route is exported to.
func (r Route) File() string {
	switch r.Kind {
	case KindHome:
		return "index.html"
	case KindNotFound:
		return "404.html"
	default:
		return strings.TrimPrefix(r.Path(), "/") + "/index.html"
	}
}

// String returns the string representation of the Route
func (r Route) String() string {
	return fmt.Sprintf("%s %s", r.Kind, r.Path())
}

// Pairs returns the full principle by language cross product in registry order.
func Pairs() []Pair {
	principles := registry.Principles()
	languages := registry.Languages()

	pairs := make([]Pair, 0, len(principles)*len(languages))
	for _, p := range principles {
		for _, l := range languages {
			pairs = append(pairs, Pair{Principle: p.Slug, Language: l.Slug})
		}
	}
	return pairs
}

// Enumerate returns every route of the site: home, about, not-found, one
// overview per principle, and one page per principle and language pair.
func Enumerate() []Route {
	principles := registry.Principles()
	pairs := Pairs()

	out := make([]Route, 0, 3+len(principles)+len(pairs))
	out = append(out, Home(), About(), NotFound())
	for _, p := range principles {
		out = append(out, ForPrinciple(p.Slug))
	}
	for _, pair := range pairs {
		out = append(out, ForExample(pair.Principle, pair.Language))
	}
	return out
}

// Match maps a URL path to a route. Paths with unknown slugs or an unknown
// shape match NotFound and report the reason.
func Match(urlPath string) (Route, error) {
	clean := path.Clean("/" + urlPath)
	switch clean {
	case "/":
		return Home(), nil
	case "/about":
		return About(), nil
	case "/404":
		return NotFound(), nil
	}

	rest, ok := strings.CutPrefix(clean, ExamplePrefix+"/")
	if !ok {
		return NotFound(), fmt.Errorf("no route for %q", urlPath)
	}

	segments := strings.Split(rest, "/")
	if len(segments) > 2 {
		return NotFound(), fmt.Errorf("no route for %q", urlPath)
	}

	p, err := registry.ParsePrinciple(segments[0])
	if err != nil {
		return NotFound(), err
	}
	if len(segments) == 1 {
		return ForPrinciple(p), nil
	}

	l, err := registry.ParseLanguage(segments[1])
	if err != nil {
		return NotFound(), err
	}
	return ForExample(p, l), nil
}
