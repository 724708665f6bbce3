package meta

import (
	"testing"

	"github.com/solidprinciples/solid/internal/content"
	"github.com/solidprinciples/solid/internal/registry"
	"github.com/solidprinciples/solid/internal/routes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource map[string]content.PageCopy

func (f fakeSource) Page(kind string) (content.PageCopy, bool) {
	p, ok := f[kind]
	return p, ok
}

var testSite = Site{Name: "SolidPrinciples.org", BaseURL: "https://www.solidprinciples.org/", Author: "SolidPrinciples.org Team"}

func newEmbeddedGenerator(t *testing.T) *Generator {
	t.Helper()
	store, err := content.LoadEmbedded()
	require.NoError(t, err)
	g, err := NewGenerator(testSite, store)
	require.NoError(t, err)
	return g
}

func TestForRouteRequiredKeys(t *testing.T) {
	g := newEmbeddedGenerator(t)

	for _, r := range routes.Enumerate() {
		t.Run(r.String(), func(t *testing.T) {
			m := g.ForRoute(r)
			assert.Empty(t, m.Missing())
			assert.Equal(t, "https://www.solidprinciples.org"+r.Path(), m.Get(KeyCanonical))
			assert.Equal(t, m.Get(KeyCanonical), m.Get(KeyOGURL))
			assert.Equal(t, "SolidPrinciples.org Team", m.Get(KeyAuthor))
			assert.NotContains(t, m.Get(KeyTitle), "{{")
		})
	}
}

func TestForRouteCopy(t *testing.T) {
	g := newEmbeddedGenerator(t)

	tests := []struct {
		name  string
		route routes.Route
		title string
	}{
		{"home", routes.Home(), "SolidPrinciples.org - Mastering SOLID Principles in Software Design"},
		{"about", routes.About(), "About SolidPrinciples.org - Your Guide to SOLID Coding"},
		{"principle", routes.ForPrinciple(registry.OpenClosed), "Open Closed Principle - SolidPrinciples.org"},
		{"example", routes.ForExample(registry.SingleResponsibility, registry.Python), "Single Responsibility in python - SolidPrinciples.org"},
		{"not found", routes.NotFound(), "Page not found - SolidPrinciples.org"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.title, g.ForRoute(tt.route).Get(KeyTitle))
		})
	}
}

func TestForRouteDeterministic(t *testing.T) {
	g := newEmbeddedGenerator(t)
	r := routes.ForExample(registry.DependencyInversion, registry.Rust)
	assert.Equal(t, g.ForRoute(r), g.ForRoute(r))
}

func TestMissing(t *testing.T) {
	src := fakeSource{
		content.PageHome:      {Title: "Home"},
		content.PagePrinciple: {Title: "{{.Principle}}"},
		content.PageExample:   {Title: "{{.Principle}} {{.Language}}", Keywords: "k"},
		content.PageAbout:     {Title: "About", Description: "d", Keywords: "k"},
		content.PageNotFound:  {Title: "404"},
	}
	g, err := NewGenerator(Site{Name: "S", BaseURL: "http://localhost:8080"}, src)
	require.NoError(t, err)

	assert.Equal(t, []string{KeyDescription, KeyKeywords}, g.ForRoute(routes.Home()).Missing())
	assert.Empty(t, g.ForRoute(routes.About()).Missing())

	m := g.ForRoute(routes.ForExample(registry.LiskovSubstitution, registry.CSharp))
	assert.Equal(t, []string{KeyDescription}, m.Missing())
	_, hasAuthor := m[KeyAuthor]
	assert.False(t, hasAuthor)
}

func TestNewGeneratorErrors(t *testing.T) {
	t.Run("missing page kind", func(t *testing.T) {
		_, err := NewGenerator(testSite, fakeSource{content.PageHome: {Title: "x"}})
		assert.Error(t, err)
	})

	t.Run("bad template", func(t *testing.T) {
		src := fakeSource{
			content.PageHome:      {Title: "{{.Site"},
			content.PagePrinciple: {Title: "x"},
			content.PageExample:   {Title: "x"},
			content.PageAbout:     {Title: "x"},
			content.PageNotFound:  {Title: "x"},
		}
		_, err := NewGenerator(testSite, src)
		assert.ErrorContains(t, err, "home")
	})
}

func TestKeysOrder(t *testing.T) {
	m := Meta{KeyOGTitle: "o", KeyTitle: "t", KeyCanonical: "c", KeyAuthor: "a"}
	assert.Equal(t, []string{KeyTitle, KeyCanonical, KeyAuthor, KeyOGTitle}, m.Keys())
}
