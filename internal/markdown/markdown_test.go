package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		contains []string
		excludes []string
	}{
		{
			name:     "heading and paragraph",
			input:    "# SOLID\n\nFive principles.",
			contains: []string{`<h1 id="solid">SOLID</h1>`, "<p>Five principles.</p>"},
		},
		{
			name:     "gfm table",
			input:    "| a | b |\n|---|---|\n| 1 | 2 |\n",
			contains: []string{"<table>", "<td>1</td>"},
		},
		{
			name:     "autolink",
			input:    "see https://www.solidprinciples.org",
			contains: []string{`<a href="https://www.solidprinciples.org">`},
		},
		{
			name:     "raw html is dropped",
			input:    "<script>alert(1)</script>\n\ntext",
			contains: []string{"<p>text</p>"},
			excludes: []string{"<script>"},
		},
		{
			name:  "empty input",
			input: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Render([]byte(tt.input))
			require.NoError(t, err)
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, out, s)
			}
		})
	}
}
