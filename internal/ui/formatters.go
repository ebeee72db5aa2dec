package ui

import (
	"bytes"
	"html/template"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/yuin/goldmark"
	gfmext "github.com/yuin/goldmark/extension"
)

var markdown = goldmark.New(
	goldmark.WithExtensions(gfmext.GFM),
)

// renderMarkdown converts assistant markdown to HTML for templates.
func renderMarkdown(content string) template.HTML {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(content), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(content))
	}
	return template.HTML(buf.String())
}

// formatWhen renders a message timestamp as a relative time.
func formatWhen(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return humanize.Time(t)
}
