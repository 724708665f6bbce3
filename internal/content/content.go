// Package content loads the code examples and page copy served by the site.
//
// Content is read once from an fs.FS and kept in an immutable Store. The
// default store is compiled into the binary with go:embed; a directory on
// disk can be loaded instead for authoring (see LoadDir).
//
// Layout of a content root:
//
//	pages.yaml                          page copy per page kind
//	pages/<name>.md                     markdown bodies referenced by pages.yaml
//	examples/<principle>/<language>/    one directory per code example
//	    without.txt                     code that breaks the principle
//	    with.txt                        code that follows it
//
// Directory and file names are validated against the registry while loading,
// so a typo in a slug fails the load instead of silently producing a page
// that can never be reached.
package content

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/solidprinciples/solid/internal/registry"
	"gopkg.in/yaml.v3"
)

//go:embed all:data
var embedded embed.FS

const (
	manifestFile = "pages.yaml"
	pagesDir     = "pages"
	examplesDir  = "examples"
	withFile     = "with.txt"
	withoutFile  = "without.txt"
)

// Page kinds that pages.yaml must define.
const (
	PageHome      = "home"
	PagePrinciple = "principle"
	PageExample   = "example"
	PageAbout     = "about"
	PageNotFound  = "not_found"
)

var requiredPages = []string{PageHome, PagePrinciple, PageExample, PageAbout, PageNotFound}

// ErrInvalidContent wraps every validation failure reported by Load.
var ErrInvalidContent = errors.New("invalid content")

// CodeExample is the pair of snippets shown for one principle and language.
type CodeExample struct {
	Without string `json:"without"`
	With    string `json:"with"`
}

// IsEmpty reports whether neither snippet has been authored.
func (c CodeExample) IsEmpty() bool {
	return c.Without == "" && c.With == ""
}

// PageCopy holds the templated SEO copy and optional markdown body of a page kind.
type PageCopy struct {
	Title              string `yaml:"title"`
	Description        string `yaml:"description"`
	Keywords           string `yaml:"keywords"`
	OGTitle            string `yaml:"og_title"`
	OGDescription      string `yaml:"og_description"`
	TwitterTitle       string `yaml:"twitter_title"`
	TwitterDescription string `yaml:"twitter_description"`
	Body               string `yaml:"body"`
}

type manifest struct {
	Pages map[string]PageCopy `yaml:"pages"`
}

// Store is an immutable snapshot of all site content. It is safe for
// concurrent use.
type Store struct {
	examples map[registry.Principle]map[registry.Language]CodeExample
	pages    map[string]PageCopy
	bodies   map[string][]byte
}

// Load reads and validates a content root.
func Load(fsys fs.FS) (*Store, error) {
	s := &Store{
		examples: make(map[registry.Principle]map[registry.Language]CodeExample),
		bodies:   make(map[string][]byte),
	}

	if err := s.loadManifest(fsys); err != nil {
		return nil, err
	}
	if err := s.loadExamples(fsys); err != nil {
		return nil, err
	}
	return s, nil
}

// LoadEmbedded loads the content compiled into the binary.
func LoadEmbedded() (*Store, error) {
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		return nil, fmt.Errorf("open embedded content: %w", err)
	}
	return Load(sub)
}

// LoadDir loads content from a directory on disk.
func LoadDir(dir string) (*Store, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("content dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("content dir %s is not a directory", dir)
	}
	return Load(os.DirFS(dir))
}

// Open loads dir, or the embedded content when dir is empty.
func Open(dir string) (*Store, error) {
	if dir == "" {
		return LoadEmbedded()
	}
	return LoadDir(dir)
}

// Embedded exposes the embedded content root, e.g. for seeding a content dir.
func Embedded() fs.FS {
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		panic(err)
	}
	return sub
}

func (s *Store) loadManifest(fsys fs.FS) error {
	raw, err := fs.ReadFile(fsys, manifestFile)
	if err != nil {
		return fmt.Errorf("%w: read %s: %v", ErrInvalidContent, manifestFile, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)

	var m manifest
	if err := dec.Decode(&m); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrInvalidContent, manifestFile, err)
	}

	known := make(map[string]bool, len(requiredPages))
	for _, name := range requiredPages {
		known[name] = true
		if _, ok := m.Pages[name]; !ok {
			return fmt.Errorf("%w: %s: missing page %q", ErrInvalidContent, manifestFile, name)
		}
	}
	for name, page := range m.Pages {
		if !known[name] {
			return fmt.Errorf("%w: %s: unknown page %q", ErrInvalidContent, manifestFile, name)
		}
		if page.Title == "" {
			return fmt.Errorf("%w: %s: page %q has no title", ErrInvalidContent, manifestFile, name)
		}
		if page.Body == "" {
			continue
		}
		if _, loaded := s.bodies[page.Body]; loaded {
			continue
		}
		if page.Body != path.Base(page.Body) || !strings.HasSuffix(page.Body, ".md") {
			return fmt.Errorf("%w: page %q: body must be a .md file name, got %q", ErrInvalidContent, name, page.Body)
		}
		body, err := fs.ReadFile(fsys, path.Join(pagesDir, page.Body))
		if err != nil {
			return fmt.Errorf("%w: page %q: %v", ErrInvalidContent, name, err)
		}
		s.bodies[page.Body] = body
	}

	s.pages = m.Pages
	return nil
}

func (s *Store) loadExamples(fsys fs.FS) error {
	principleDirs, err := fs.ReadDir(fsys, examplesDir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidContent, err)
	}

	for _, pd := range principleDirs {
		if hidden(pd.Name()) {
			continue
		}
		pdir := path.Join(examplesDir, pd.Name())
		if !pd.IsDir() {
			return fmt.Errorf("%w: %s: expected a principle directory", ErrInvalidContent, pdir)
		}
		principle, err := registry.ParsePrinciple(pd.Name())
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidContent, pdir, err)
		}

		languageDirs, err := fs.ReadDir(fsys, pdir)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidContent, err)
		}
		for _, ld := range languageDirs {
			if hidden(ld.Name()) {
				continue
			}
			ldir := path.Join(pdir, ld.Name())
			if !ld.IsDir() {
				return fmt.Errorf("%w: %s: expected a language directory", ErrInvalidContent, ldir)
			}
			lang, err := registry.ParseLanguage(ld.Name())
			if err != nil {
				return fmt.Errorf("%w: %s: %w", ErrInvalidContent, ldir, err)
			}
			example, err := readExample(fsys, ldir)
			if err != nil {
				return err
			}
			if s.examples[principle] == nil {
				s.examples[principle] = make(map[registry.Language]CodeExample)
			}
			s.examples[principle][lang] = example
		}
	}
	return nil
}

func readExample(fsys fs.FS, dir string) (CodeExample, error) {
	var example CodeExample

	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return example, fmt.Errorf("%w: %v", ErrInvalidContent, err)
	}
	for _, e := range entries {
		if hidden(e.Name()) {
			continue
		}
		file := path.Join(dir, e.Name())
		if e.IsDir() {
			return example, fmt.Errorf("%w: %s: unexpected directory", ErrInvalidContent, file)
		}
		raw, err := fs.ReadFile(fsys, file)
		if err != nil {
			return example, fmt.Errorf("%w: %v", ErrInvalidContent, err)
		}
		switch e.Name() {
		case withoutFile:
			example.Without = string(raw)
		case withFile:
			example.With = string(raw)
		default:
			return example, fmt.Errorf("%w: %s: unknown file, expected %s or %s", ErrInvalidContent, file, withoutFile, withFile)
		}
	}
	return example, nil
}

func hidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

// Lookup returns the example for a principle and language, and whether the
// store has an entry for that pair.
func (s *Store) Lookup(p registry.Principle, l registry.Language) (CodeExample, bool) {
	byLang, ok := s.examples[p]
	if !ok {
		return CodeExample{}, false
	}
	example, ok := byLang[l]
	return example, ok
}

// Page returns the copy of a page kind.
func (s *Store) Page(kind string) (PageCopy, bool) {
	p, ok := s.pages[kind]
	return p, ok
}

// Body returns the markdown body of a page kind, or nil when it has none.
func (s *Store) Body(kind string) []byte {
	p, ok := s.pages[kind]
	if !ok || p.Body == "" {
		return nil
	}
	return s.bodies[p.Body]
}

// Cell reports the authoring state of one principle and language pair.
type Cell struct {
	Principle registry.Principle `json:"principle"`
	Language  registry.Language  `json:"language"`
	Present   bool               `json:"present"`
	Complete  bool               `json:"complete"`
}

// Coverage lists every registry pair in registry order with its state.
func (s *Store) Coverage() []Cell {
	principles := registry.Principles()
	languages := registry.Languages()

	cells := make([]Cell, 0, len(principles)*len(languages))
	for _, p := range principles {
		for _, l := range languages {
			example, ok := s.Lookup(p.Slug, l.Slug)
			cells = append(cells, Cell{
				Principle: p.Slug,
				Language:  l.Slug,
				Present:   ok && !example.IsEmpty(),
				Complete:  ok && example.Without != "" && example.With != "",
			})
		}
	}
	return cells
}

// Missing returns the pairs that have no authored example, sorted by path.
func (s *Store) Missing() []string {
	var missing []string
	for _, c := range s.Coverage() {
		if !c.Present {
			missing = append(missing, path.Join(string(c.Principle), string(c.Language)))
		}
	}
	sort.Strings(missing)
	return missing
}
