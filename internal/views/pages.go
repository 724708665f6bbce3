package views

import (
	"context"

	"github.com/a-h/templ"
	"github.com/solidprinciples/solid/internal/registry"
)

// About renders the about page body.
func About(bodyHTML string) templ.Component {
	return component(func(ctx context.Context, w *writer) {
		w.raw(`<article class="about">`)
		w.component(ctx, templ.Raw(bodyHTML))
		w.raw(`</article>`)
	})
}

// NotFound renders the 404 body with links back to every principle.
func NotFound() templ.Component {
	return component(func(ctx context.Context, w *writer) {
		w.raw(`<section class="not-found"><h1>Oops!</h1><p>The page you are looking for does not exist.</p><ul>`)
		for _, p := range registry.Principles() {
			w.raw("<li><a")
			w.attr("href", "/code-example/"+string(p.Slug))
			w.raw(">")
			w.text(p.Name)
			w.raw("</a></li>")
		}
		w.raw(`</ul><a class="button" href="/">Go to home</a></section>`)
	})
}

// ErrorPage is the standalone document served when rendering a page fails.
// It does not depend on metadata or content so it cannot fail itself.
func ErrorPage(siteName string) templ.Component {
	return component(func(ctx context.Context, w *writer) {
		w.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title>`)
		w.text("Something went wrong - " + siteName)
		w.raw(`</title><link rel="stylesheet" href="/static/site.css"></head><body><section class="error"><p>Oops! Something went wrong.</p><a class="button" href="/">Go to home</a></section></body></html>`)
	})
}
