// Package build exports the site as static files.
//
// Every enumerated route is rendered with the same renderer the server uses
// and written to the file its route maps to, next to the static assets, the
// generated highlight stylesheet, sitemap.xml and robots.txt. Pages render
// concurrently on a fixed set of workers; a page that fails is recorded and
// the rest of the export continues.
package build

import (
	"bytes"
	"context"
	"fmt"
	"hash/crc32"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/solidprinciples/solid/internal/errors"
	"github.com/solidprinciples/solid/internal/logging"
	"github.com/solidprinciples/solid/internal/renderer"
	"github.com/solidprinciples/solid/internal/routes"
	"github.com/solidprinciples/solid/internal/views"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
)

// Options configures an export.
type Options struct {
	OutputDir string
	// Clean removes OutputDir before writing.
	Clean   bool
	Minify  bool
	Sitemap bool
	Robots  bool
	// Workers bounds concurrent renders. Zero uses runtime.NumCPU.
	Workers int
}

// File is one written output file.
type File struct {
	Path     string        `json:"path"`
	Route    string        `json:"route,omitempty"`
	Size     int64         `json:"size"`
	Hash     string        `json:"hash"`
	Duration time.Duration `json:"duration"`
}

// Result summarizes an export.
type Result struct {
	OutputDir string        `json:"output_dir"`
	Files     []File        `json:"files"`
	Pages     int           `json:"pages"`
	Bytes     int64         `json:"bytes"`
	Duration  time.Duration `json:"duration"`
}

// Exporter writes the site to disk.
type Exporter struct {
	pages    *renderer.PageRenderer
	opts     Options
	logger   logging.Logger
	minifier *minify.M
	crcTable *crc32.Table
}

// NewExporter creates an exporter for one content snapshot.
func NewExporter(pages *renderer.PageRenderer, opts Options, logger logging.Logger) *Exporter {
	if logger == nil {
		logger = logging.Discard()
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}

	m := minify.New()
	m.Add("text/html", &html.Minifier{KeepDocumentTags: true, KeepEndTags: true})
	m.AddFunc("text/css", css.Minify)

	return &Exporter{
		pages:    pages,
		opts:     opts,
		logger:   logger.WithComponent("build"),
		minifier: m,
		crcTable: crc32.MakeTable(crc32.Castagnoli),
	}
}

// Export renders and writes every route and asset. Files that were written
// are reported even when some pages failed; the returned error then joins
// every page failure.
func (e *Exporter) Export(ctx context.Context) (*Result, error) {
	perf := logging.StartOperation(e.logger, "export")
	start := time.Now()

	if err := e.prepareOutputDir(); err != nil {
		perf.EndWithError(ctx, err)
		return nil, err
	}

	collector := errors.NewErrorCollector()
	files := e.exportPages(ctx, collector)

	for _, asset := range e.assets(collector) {
		f, err := e.write(asset.path, asset.mediaType, asset.data, "")
		if err != nil {
			collector.AddError(asset.path, err)
			continue
		}
		files = append(files, f)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })

	result := &Result{OutputDir: e.opts.OutputDir, Files: files, Duration: time.Since(start)}
	for _, f := range files {
		result.Bytes += f.Size
		if f.Route != "" {
			result.Pages++
		}
	}

	if err := ctx.Err(); err != nil {
		perf.EndWithError(ctx, err)
		return result, err
	}
	if collector.HasErrors() {
		err := fmt.Errorf("export failed for %d file(s): %w", collector.Len(), collector.Err())
		perf.EndWithError(ctx, err)
		return result, err
	}

	perf.End(ctx, "pages", result.Pages, "files", len(files), "bytes", result.Bytes)
	return result, nil
}

func (e *Exporter) prepareOutputDir() error {
	dir := e.opts.OutputDir
	if dir == "" {
		return fmt.Errorf("output directory is empty")
	}
	if abs, err := filepath.Abs(dir); err == nil && abs == filepath.Dir(abs) {
		return fmt.Errorf("refusing to export into %s", abs)
	}

	if e.opts.Clean {
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("clean output directory: %w", err)
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	return nil
}

// exportPages fans the routes out to the workers.
func (e *Exporter) exportPages(ctx context.Context, collector *errors.ErrorCollector) []File {
	tasks := make(chan routes.Route)
	var (
		mu    sync.Mutex
		files []File
		wg    sync.WaitGroup
	)

	for i := 0; i < e.opts.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for route := range tasks {
				f, err := e.exportPage(ctx, route)
				if err != nil {
					collector.AddError(route.File(), err)
					e.logger.Warn(ctx, err, "Page export failed", "route", route.String())
					continue
				}
				mu.Lock()
				files = append(files, f)
				mu.Unlock()
			}
		}()
	}

feed:
	for _, route := range routes.Enumerate() {
		select {
		case tasks <- route:
		case <-ctx.Done():
			break feed
		}
	}
	close(tasks)
	wg.Wait()

	return files
}

func (e *Exporter) exportPage(ctx context.Context, route routes.Route) (File, error) {
	start := time.Now()
	out, err := e.pages.RenderBytes(ctx, route)
	if err != nil {
		return File{}, err
	}
	f, err := e.write(route.File(), "text/html", out, route.Path())
	if err != nil {
		return File{}, err
	}
	f.Duration = time.Since(start)
	return f, nil
}

type asset struct {
	path      string
	mediaType string
	data      []byte
}

// assets lists the non-page files: embedded static files, the highlight
// stylesheet, sitemap and robots.
func (e *Exporter) assets(collector *errors.ErrorCollector) []asset {
	var out []asset

	static := views.Static()
	err := fs.WalkDir(static, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := fs.ReadFile(static, p)
		if err != nil {
			return err
		}
		out = append(out, asset{path: path.Join("static", p), mediaType: mediaType(p), data: data})
		return nil
	})
	if err != nil {
		collector.AddError("static", err)
	}

	out = append(out, asset{path: "static/chroma.css", mediaType: "text/css", data: e.pages.ChromaCSS()})

	if e.opts.Sitemap {
		var buf bytes.Buffer
		if err := e.pages.Sitemap(&buf); err != nil {
			collector.AddError("sitemap.xml", err)
		} else {
			out = append(out, asset{path: "sitemap.xml", data: buf.Bytes()})
		}
	}
	if e.opts.Robots {
		out = append(out, asset{path: "robots.txt", data: []byte(e.pages.Robots(e.opts.Sitemap))})
	}
	return out
}

func mediaType(name string) string {
	switch path.Ext(name) {
	case ".css":
		return "text/css"
	case ".html":
		return "text/html"
	default:
		return ""
	}
}

// write stores data below the output dir, minifying it first when enabled
// and the media type is known.
func (e *Exporter) write(rel, mediaType string, data []byte, route string) (File, error) {
	if e.opts.Minify && mediaType != "" {
		minified, err := e.minifier.Bytes(mediaType, data)
		if err != nil {
			return File{}, fmt.Errorf("minify %s: %w", rel, err)
		}
		data = minified
	}

	target := filepath.Join(e.opts.OutputDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return File{}, fmt.Errorf("create directory for %s: %w", rel, err)
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return File{}, fmt.Errorf("write %s: %w", rel, err)
	}

	return File{
		Path:  rel,
		Route: route,
		Size:  int64(len(data)),
		Hash:  fmt.Sprintf("%08x", crc32.Checksum(data, e.crcTable)),
	}, nil
}
