// Package audit checks exported HTML pages for missing metadata, basic
// accessibility problems and internal links that point nowhere.
package audit

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/solidprinciples/solid/internal/errors"
	"github.com/solidprinciples/solid/internal/meta"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Rule names prefix every finding message.
const (
	RuleMeta     = "meta"
	RuleLang     = "html-lang"
	RuleImageAlt = "img-alt"
	RuleLinkName = "link-name"
	RuleLink     = "broken-link"
	RuleParse    = "parse"
)

// Report is the outcome of auditing a directory.
type Report struct {
	Dir      string
	Pages    int
	Findings *errors.ErrorCollector
}

// Failed reports whether any finding has error severity.
func (r *Report) Failed() bool {
	return r.Findings.HasErrors()
}

// page holds what the checks need from one parsed document.
type page struct {
	title     string
	lang      bool
	metaNames map[string]bool
	canonical string
	links     []string
	unnamed   int
	noAlt     int
}

// Page audits one document. file is only used to label findings. Links are
// not checked; use Dir for that.
func Page(file string, r io.Reader, findings *errors.ErrorCollector) error {
	p, err := parse(r)
	if err != nil {
		return err
	}
	p.check(file, findings)
	return nil
}

// Dir audits every .html file below dir, including internal links against
// the files present in dir.
func Dir(ctx context.Context, dir string) (*Report, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	fsys := os.DirFS(dir)
	report := &Report{Dir: dir, Findings: errors.NewErrorCollector()}

	err = fs.WalkDir(fsys, ".", func(file string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() || path.Ext(file) != ".html" {
			return nil
		}
		report.Pages++

		f, err := fsys.Open(file)
		if err != nil {
			return err
		}
		defer f.Close()

		p, err := parse(f)
		if err != nil {
			report.Findings.Add(finding(file, RuleParse, err.Error(), errors.ErrorSeverityError))
			return nil
		}
		p.check(file, report.Findings)
		for _, link := range p.links {
			if target, ok := internalTarget(link); ok && !exists(fsys, target) {
				report.Findings.Add(finding(file, RuleLink, "no file for "+link, errors.ErrorSeverityError))
			}
		}
		return nil
	})
	if err != nil {
		return report, err
	}
	return report, nil
}

func finding(file, rule, msg string, severity errors.ErrorSeverity) errors.PageError {
	return errors.PageError{Path: filepath.ToSlash(file), Message: rule + ": " + msg, Severity: severity}
}

func parse(r io.Reader) (*page, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	p := &page{metaNames: make(map[string]bool)}
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Html:
				p.lang = attr(n, "lang") != ""
			case atom.Title:
				p.title = strings.TrimSpace(text(n))
			case atom.Meta:
				name := attr(n, "name")
				if name == "" {
					name = attr(n, "property")
				}
				if name != "" && strings.TrimSpace(attr(n, "content")) != "" {
					p.metaNames[name] = true
				}
			case atom.Link:
				if attr(n, "rel") == "canonical" {
					p.canonical = attr(n, "href")
				} else if href := attr(n, "href"); href != "" {
					p.links = append(p.links, href)
				}
			case atom.A:
				if href := attr(n, "href"); href != "" {
					p.links = append(p.links, href)
				}
				if strings.TrimSpace(text(n)) == "" && attr(n, "aria-label") == "" {
					p.unnamed++
				}
			case atom.Img:
				if _, ok := lookup(n, "alt"); !ok {
					p.noAlt++
				}
			case atom.Script:
				if src := attr(n, "src"); src != "" {
					p.links = append(p.links, src)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return p, nil
}

func (p *page) check(file string, findings *errors.ErrorCollector) {
	for _, key := range meta.Required {
		var present bool
		switch key {
		case meta.KeyTitle:
			present = p.title != ""
		case meta.KeyCanonical:
			present = p.canonical != ""
		default:
			present = p.metaNames[key]
		}
		if !present {
			findings.Add(finding(file, RuleMeta, "missing "+key, errors.ErrorSeverityError))
		}
	}
	if p.canonical != "" {
		if u, err := url.Parse(p.canonical); err != nil || !u.IsAbs() {
			findings.Add(finding(file, RuleMeta, "canonical is not an absolute URL: "+p.canonical, errors.ErrorSeverityError))
		}
	}
	if !p.lang {
		findings.Add(finding(file, RuleLang, "html element has no lang attribute", errors.ErrorSeverityWarning))
	}
	if p.noAlt > 0 {
		findings.Add(finding(file, RuleImageAlt, fmt.Sprintf("%d image(s) without alt text", p.noAlt), errors.ErrorSeverityWarning))
	}
	if p.unnamed > 0 {
		findings.Add(finding(file, RuleLinkName, fmt.Sprintf("%d link(s) without text", p.unnamed), errors.ErrorSeverityWarning))
	}
}

// internalTarget maps a site-relative link to the file that serves it.
func internalTarget(link string) (string, bool) {
	u, err := url.Parse(link)
	if err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, "/") {
		return "", false
	}
	clean := strings.TrimPrefix(path.Clean(u.Path), "/")
	switch {
	case clean == "" || clean == ".":
		return "index.html", true
	case clean == "ws":
		return "", false
	case path.Ext(clean) != "":
		return clean, true
	default:
		return clean + "/index.html", true
	}
}

func exists(fsys fs.FS, name string) bool {
	_, err := fs.Stat(fsys, name)
	return err == nil
}

func lookup(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func attr(n *html.Node, key string) string {
	v, _ := lookup(n, key)
	return v
}

func text(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
