package build

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/solidprinciples/solid/internal/content"
	"github.com/solidprinciples/solid/internal/logging"
	"github.com/solidprinciples/solid/internal/meta"
	"github.com/solidprinciples/solid/internal/renderer"
	"github.com/solidprinciples/solid/internal/routes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPages(t *testing.T) *renderer.PageRenderer {
	t.Helper()
	store, err := content.LoadEmbedded()
	require.NoError(t, err)
	pages, err := renderer.NewPageRenderer(store, renderer.Options{
		Site: meta.Site{Name: "SolidPrinciples.org", BaseURL: "https://www.solidprinciples.org", Author: "SolidPrinciples.org Team"},
		Year: 2026,
	})
	require.NoError(t, err)
	return pages
}

func TestExport(t *testing.T) {
	out := filepath.Join(t.TempDir(), "dist")
	exporter := NewExporter(testPages(t), Options{OutputDir: out, Sitemap: true, Robots: true, Workers: 3}, logging.Discard())

	result, err := exporter.Export(context.Background())
	require.NoError(t, err)

	enumerated := routes.Enumerate()
	assert.Equal(t, len(enumerated), result.Pages)
	for _, route := range enumerated {
		assert.FileExists(t, filepath.Join(out, filepath.FromSlash(route.File())), route.String())
	}

	for _, name := range []string{"index.html", "404.html", "about/index.html", "sitemap.xml", "robots.txt", "static/site.css", "static/chroma.css"} {
		assert.FileExists(t, filepath.Join(out, filepath.FromSlash(name)))
	}

	page, err := os.ReadFile(filepath.Join(out, "code-example", "dependency-inversion-principle", "rust", "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(page), "trait")

	var total int64
	for i, f := range result.Files {
		total += f.Size
		assert.Len(t, f.Hash, 8)
		if i > 0 {
			assert.Less(t, result.Files[i-1].Path, f.Path)
		}
	}
	assert.Equal(t, total, result.Bytes)
}

func TestExportMatchesServedPage(t *testing.T) {
	pages := testPages(t)
	out := t.TempDir()
	_, err := NewExporter(pages, Options{OutputDir: out, Workers: 1}, nil).Export(context.Background())
	require.NoError(t, err)

	route := routes.ForExample("single-responsibility", "python")
	want, err := pages.RenderBytes(context.Background(), route)
	require.NoError(t, err)
	got, err := os.ReadFile(filepath.Join(out, filepath.FromSlash(route.File())))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestExportOptionalFiles(t *testing.T) {
	out := t.TempDir()
	_, err := NewExporter(testPages(t), Options{OutputDir: out}, nil).Export(context.Background())
	require.NoError(t, err)

	assert.NoFileExists(t, filepath.Join(out, "sitemap.xml"))
	assert.NoFileExists(t, filepath.Join(out, "robots.txt"))
}

func TestExportClean(t *testing.T) {
	out := t.TempDir()
	stale := filepath.Join(out, "stale.html")
	require.NoError(t, os.WriteFile(stale, []byte("old"), 0o644))

	_, err := NewExporter(testPages(t), Options{OutputDir: out}, nil).Export(context.Background())
	require.NoError(t, err)
	assert.FileExists(t, stale)

	_, err = NewExporter(testPages(t), Options{OutputDir: out, Clean: true}, nil).Export(context.Background())
	require.NoError(t, err)
	assert.NoFileExists(t, stale)
	assert.FileExists(t, filepath.Join(out, "index.html"))
}

func TestExportMinify(t *testing.T) {
	plainDir, minDir := t.TempDir(), t.TempDir()
	pages := testPages(t)

	plain, err := NewExporter(pages, Options{OutputDir: plainDir}, nil).Export(context.Background())
	require.NoError(t, err)
	minified, err := NewExporter(pages, Options{OutputDir: minDir, Minify: true}, nil).Export(context.Background())
	require.NoError(t, err)

	assert.Less(t, minified.Bytes, plain.Bytes)

	page, err := os.ReadFile(filepath.Join(minDir, "code-example", "single-responsibility", "python", "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(page), "UserCreator")
}

func TestExportRejectsRoot(t *testing.T) {
	_, err := NewExporter(testPages(t), Options{OutputDir: "/"}, nil).Export(context.Background())
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "refusing"))

	_, err = NewExporter(testPages(t), Options{}, nil).Export(context.Background())
	assert.Error(t, err)
}

func TestExportCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewExporter(testPages(t), Options{OutputDir: t.TempDir()}, nil).Export(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
