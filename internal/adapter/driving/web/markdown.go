package web

import (
	"bytes"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// maxNotesBytes bounds how much of a product's notes is rendered on an alert card.
const maxNotesBytes = 4 << 10

var (
	mdRenderer    goldmark.Markdown
	htmlSanitizer *bluemonday.Policy
)

func init() {
	mdRenderer = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(html.WithUnsafe(), html.WithHardWraps()),
	)

	// Notes come from the inventory system and may link to supplier pages.
	htmlSanitizer = bluemonday.UGCPolicy()
	htmlSanitizer.AddTargetBlankToFullyQualifiedLinks(true)
}

// RenderMarkdown converts product notes written in markdown to sanitized HTML.
// Returns empty string for empty input. Input beyond maxNotesBytes is dropped.
func RenderMarkdown(src string) string {
	if src == "" {
		return ""
	}
	if len(src) > maxNotesBytes {
		src = src[:maxNotesBytes]
	}

	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(src), &buf); err != nil {
		return htmlSanitizer.Sanitize(src)
	}

	return htmlSanitizer.Sanitize(buf.String())
}
