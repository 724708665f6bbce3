// Package highlight turns code examples into syntax highlighted HTML.
//
// Output uses CSS classes rather than inline styles; the matching stylesheet
// is produced by WriteCSS and served with the other static assets.
package highlight

import (
	"bytes"
	"html"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// DefaultStyle is a light theme close to the site's original palette.
const DefaultStyle = "github"

// Highlighter renders code with one chroma style.
type Highlighter struct {
	style     *chroma.Style
	formatter *chromahtml.Formatter
}

// New returns a Highlighter for the named chroma style. Unknown names fall
// back to chroma's default style.
func New(style string) *Highlighter {
	return &Highlighter{
		style: styles.Get(style),
		formatter: chromahtml.New(
			chromahtml.WithClasses(true),
			chromahtml.TabWidth(4),
		),
	}
}

var defaultHighlighter = New(DefaultStyle)

// Highlight renders code with the default highlighter.
func Highlight(tag, code string) string {
	return defaultHighlighter.Highlight(tag, code)
}

// WriteCSS writes the stylesheet of the default highlighter.
func WriteCSS(w io.Writer) error {
	return defaultHighlighter.WriteCSS(w)
}

// Highlight renders code using the lexer registered for tag. It never fails:
// an unknown tag or a lexer or formatter error yields the escaped code in a
// plain pre block.
func (h *Highlighter) Highlight(tag, code string) string {
	lexer := lexers.Get(tag)
	if lexer == nil {
		return Plain(code)
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return Plain(code)
	}

	var buf bytes.Buffer
	if err := h.formatter.Format(&buf, h.style, iterator); err != nil {
		return Plain(code)
	}
	return buf.String()
}

// WriteCSS writes the class based stylesheet for the highlighter's style.
func (h *Highlighter) WriteCSS(w io.Writer) error {
	return h.formatter.WriteCSS(w, h.style)
}

// Plain wraps escaped code in a pre/code block without highlighting.
func Plain(code string) string {
	var sb strings.Builder
	sb.WriteString(`<pre class="chroma"><code>`)
	sb.WriteString(html.EscapeString(code))
	sb.WriteString("</code></pre>")
	return sb.String()
}
