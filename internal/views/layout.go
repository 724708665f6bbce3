package views

import (
	"context"
	"strconv"

	"github.com/a-h/templ"
	"github.com/solidprinciples/solid/internal/meta"
	"github.com/solidprinciples/solid/internal/registry"
)

// Page carries what the shell around every body needs.
type Page struct {
	SiteName    string
	Meta        meta.Meta
	AnalyticsID string
	// Principle is highlighted in the sidebar when set.
	Principle registry.Principle
	// Year is printed in the footer.
	Year int
	// DevReload adds the websocket reload client.
	DevReload bool
}

// Layout wraps body in the document shell: head, sidebar and footer.
func Layout(p Page, body templ.Component) templ.Component {
	return component(func(ctx context.Context, w *writer) {
		w.raw(`<!DOCTYPE html><html lang="en"><head>`)
		w.component(ctx, Head(p))
		w.raw(`</head><body><div class="app">`)
		w.component(ctx, Sidebar(p.Principle))
		w.raw(`<div class="content"><main>`)
		w.component(ctx, body)
		w.raw(`</main>`)
		w.component(ctx, Footer(p.SiteName, p.Year))
		w.raw(`</div></div>`)
		if p.DevReload {
			w.component(ctx, ReloadScript())
		}
		w.raw(`</body></html>`)
	})
}

// Head renders the document head including every key of the page metadata.
func Head(p Page) templ.Component {
	return component(func(ctx context.Context, w *writer) {
		m := p.Meta
		w.raw(`<meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1">`)
		w.raw(`<meta name="theme-color" content="#111111">`)
		if title := m.Get(meta.KeyTitle); title != "" {
			w.raw("<title>")
			w.text(title)
			w.raw("</title>")
		}
		for _, key := range m.Keys() {
			switch key {
			case meta.KeyTitle:
				continue
			case meta.KeyCanonical:
				w.raw(`<link rel="canonical"`)
				w.attr("href", m[key])
				w.raw(">")
			case meta.KeyOGType, meta.KeyOGTitle, meta.KeyOGDescription, meta.KeyOGURL:
				w.raw("<meta")
				w.attr("property", key)
				w.attr("content", m[key])
				w.raw(">")
			default:
				w.raw("<meta")
				w.attr("name", key)
				w.attr("content", m[key])
				w.raw(">")
			}
		}
		w.raw(`<link rel="stylesheet" href="/static/site.css">`)
		w.raw(`<link rel="stylesheet" href="/static/chroma.css">`)
		if p.AnalyticsID != "" {
			w.component(ctx, Analytics(p.AnalyticsID))
		}
	})
}

// Sidebar renders the logo linking home and the principle navigation.
func Sidebar(current registry.Principle) templ.Component {
	return component(func(ctx context.Context, w *writer) {
		w.raw(`<aside class="sidebar"><a class="logo" href="/">SOLID</a><nav><ul>`)
		for _, p := range registry.Principles() {
			w.raw("<li")
			if p.Slug == current {
				w.attr("class", "active")
			}
			w.raw("><a")
			w.attr("href", "/code-example/"+string(p.Slug))
			w.raw(">")
			w.text(p.Acronym)
			w.raw("</a></li>")
		}
		w.raw(`</ul></nav></aside>`)
	})
}

// Footer renders the site blurb, links and copyright line.
func Footer(siteName string, year int) templ.Component {
	return component(func(ctx context.Context, w *writer) {
		w.raw(`<footer class="footer"><div class="footer-text"><p>`)
		w.text(siteName)
		w.raw(` is a website dedicated to SOLID Principles. We want to ensure developers really understand SOLID Principles and how to apply them in their code. It is both beginner and intermediate level friendly.</p></div>`)
		w.raw(`<div class="footer-links"><h2>Links</h2><a href="/about">About Us</a>`)
		w.raw("<a")
		w.attr("href", GitHubURL)
		w.raw(`>Contribute on Github</a></div><p class="rights">`)
		w.text(siteName)
		w.raw(" &copy; ")
		if year > 0 {
			w.raw(strconv.Itoa(year) + " ")
		}
		w.raw(`All rights reserved.</p></footer>`)
	})
}

// Analytics renders the Google Analytics loader for id.
func Analytics(id string) templ.Component {
	return component(func(ctx context.Context, w *writer) {
		w.raw(`<script async`)
		w.attr("src", "https://www.googletagmanager.com/gtag/js?id="+id)
		w.raw(`></script><script>window.dataLayer=window.dataLayer||[];function gtag(){dataLayer.push(arguments);}gtag('js',new Date());gtag('config',`)
		w.raw(strconv.Quote(id))
		w.raw(`);</script>`)
	})
}

// ReloadScript connects to /ws and reloads the page when content changes.
func ReloadScript() templ.Component {
	return component(func(ctx context.Context, w *writer) {
		w.raw(`<script>(function(){var p=location.protocol==="https:"?"wss:":"ws:";var ws=new WebSocket(p+"//"+location.host+"/ws");ws.onmessage=function(e){try{if(JSON.parse(e.data).type==="reload"){location.reload();}}catch(_){}};})();</script>`)
	})
}
