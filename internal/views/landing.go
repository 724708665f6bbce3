package views

import (
	"context"
	"strings"

	"github.com/a-h/templ"
	"github.com/solidprinciples/solid/internal/content"
	"github.com/solidprinciples/solid/internal/highlight"
	"github.com/solidprinciples/solid/internal/registry"
)

// Landing is the data of the home, principle and example pages.
type Landing struct {
	// IntroHTML is the rendered intro markdown.
	IntroHTML string
	// Principle is empty on the home page, which shows no code samples.
	Principle registry.Principle
	Language  registry.Language
	Example   content.CodeExample
}

// LandingPage renders the intro, the principle cards and, once a principle
// is selected, the language tabs and the two code panels.
func LandingPage(l Landing) templ.Component {
	return component(func(ctx context.Context, w *writer) {
		w.raw(`<section class="intro">`)
		w.component(ctx, templ.Raw(l.IntroHTML))
		w.raw(`</section>`)
		w.component(ctx, PreviewCards(l.Principle))
		if l.Principle != "" && l.Language != "" {
			w.component(ctx, CodeSamples(l.Principle, l.Language, l.Example))
		}
	})
}

// PreviewCards renders one linked card per principle, highlighting current.
func PreviewCards(current registry.Principle) templ.Component {
	return component(func(ctx context.Context, w *writer) {
		w.raw(`<section class="cards">`)
		for _, p := range registry.Principles() {
			class := "card"
			if p.Slug == current {
				class += " selected"
			}
			w.raw("<a")
			w.attr("class", class)
			w.attr("href", "/code-example/"+string(p.Slug))
			w.raw("><h3>")
			w.text(p.Name)
			w.raw("</h3><p>")
			w.text(p.Tagline)
			w.raw("</p></a>")
		}
		w.raw(`</section>`)
	})
}

// LanguageTabs renders a tab per language. The default language links to
// the principle overview, the others to their example page.
func LanguageTabs(p registry.Principle, current registry.Language) templ.Component {
	return component(func(ctx context.Context, w *writer) {
		w.raw(`<nav class="language-tabs">`)
		for _, l := range registry.Languages() {
			href := "/code-example/" + string(p)
			if l.Slug != registry.DefaultLanguage {
				href += "/" + string(l.Slug)
			}
			class := "tab"
			if l.Slug == current {
				class += " active"
			}
			w.raw("<a")
			w.attr("class", class)
			w.attr("href", href)
			w.raw(">")
			w.text(l.Label)
			w.raw("</a>")
		}
		w.raw(`</nav>`)
	})
}

// CodeSamples renders the tabs and the without/with panels of one example.
func CodeSamples(p registry.Principle, l registry.Language, example content.CodeExample) templ.Component {
	return component(func(ctx context.Context, w *writer) {
		name := PanelName(p)
		lexer := l.Info().Lexer

		w.raw(`<section class="code-samples"><h2>Code Example</h2>`)
		w.component(ctx, LanguageTabs(p, l))
		w.raw(`<div class="panels">`)
		w.component(ctx, CodePanel("Without "+name, lexer, example.Without))
		w.component(ctx, CodePanel("With "+name, lexer, example.With))
		w.raw(`</div></section>`)
	})
}

// CodePanel renders a heading and highlighted code, or a placeholder when
// code is empty.
func CodePanel(heading, lexer, code string) templ.Component {
	return component(func(ctx context.Context, w *writer) {
		w.raw(`<div class="panel"><h2>`)
		w.text(heading)
		w.raw(`</h2>`)
		if code == "" {
			w.raw(`<p class="empty">No example available for this language yet.</p>`)
		} else {
			w.raw(highlight.Highlight(lexer, code))
		}
		w.raw(`</div>`)
	})
}

// PanelName is the principle name used in panel headings, always ending in
// a single "Principle".
func PanelName(p registry.Principle) string {
	return strings.TrimSuffix(p.Info().Name, " Principle") + " Principle"
}
