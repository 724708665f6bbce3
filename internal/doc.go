// Package internal contains the implementation packages of the solid site.
//
// # Package Organization
//
// Content and addressing:
//
//   - registry: the five principles and eleven languages, with their slugs
//   - content: page copy and code examples, embedded or read from a directory
//   - routes: every addressable page and its URL path and export file
//   - resolver: maps slugs to the code example shown on a page
//   - meta: title, description, keywords and canonical URL per route
//
// Rendering:
//
//   - markdown: page copy to HTML
//   - highlight: syntax highlighting of code panels
//   - views: the page components
//   - renderer: one content snapshot rendered into full pages and the sitemap
//
// Serving and exporting:
//
//   - server: the HTTP server, its handlers and content reload
//   - http: routing and graceful shutdown
//   - middleware: request IDs, logging, recovery, metrics and headers
//   - websocket: pushes reload messages to open browser tabs
//   - watcher: debounced file change notifications
//   - build: writes every route and asset to a directory
//   - audit: checks exported pages for metadata and broken links
//
// Supporting packages: config, logging, errors and version.
package internal
