package web

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderMarkdown_EmptyInput(t *testing.T) {
	assert.Equal(t, "", RenderMarkdown(""))
}

func TestRenderMarkdown_PlainText(t *testing.T) {
	result := RenderMarkdown("store below 5°C")
	assert.Contains(t, result, "store below 5°C")
}

func TestRenderMarkdown_Bold(t *testing.T) {
	result := RenderMarkdown("**keep refrigerated**")
	assert.Contains(t, result, "<strong>keep refrigerated</strong>")
}

func TestRenderMarkdown_HardWraps(t *testing.T) {
	result := RenderMarkdown("shelf A\nbin 4")
	assert.Contains(t, result, "<br")
}

func TestRenderMarkdown_ExternalLinkOpensInNewTab(t *testing.T) {
	result := RenderMarkdown("[supplier](https://example.com/reorder)")
	assert.Contains(t, result, `href="https://example.com/reorder"`)
	assert.Contains(t, result, `target="_blank"`)
	assert.Contains(t, result, "supplier</a>")
}

func TestRenderMarkdown_SanitizesScript(t *testing.T) {
	result := RenderMarkdown(`<script>alert("xss")</script>`)
	assert.NotContains(t, result, "<script>")
}

func TestRenderMarkdown_SanitizesEventHandlers(t *testing.T) {
	result := RenderMarkdown(`<img src="x.png" onerror="alert(1)">`)
	assert.NotContains(t, result, "onerror")
}

func TestRenderMarkdown_GFMTable(t *testing.T) {
	result := RenderMarkdown("| lot | qty |\n|---|---|\n| L1 | 4 |")
	assert.Contains(t, result, "<table>")
	assert.Contains(t, result, "L1")
}

func TestRenderMarkdown_TruncatesLongNotes(t *testing.T) {
	result := RenderMarkdown(strings.Repeat("a", maxNotesBytes*2))
	assert.Less(t, strings.Count(result, "a"), maxNotesBytes+1)
}
