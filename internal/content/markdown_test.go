package content

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderMarkdown(t *testing.T) {
	out, err := RenderMarkdown("# Title\n\nSome **bold** text and a [link](/articles/x).\n\n| a | b |\n|---|---|\n| 1 | 2 |\n")
	require.NoError(t, err)
	html := string(out)
	assert.Contains(t, html, "<strong>bold</strong>")
	assert.Contains(t, html, `href="/articles/x"`)
	assert.Contains(t, html, "<table>")
	assert.Contains(t, html, "<h1")
}

func TestRenderMarkdownStripsScripts(t *testing.T) {
	out, err := RenderMarkdown("hello <script>alert(1)</script> [x](javascript:alert(1))")
	require.NoError(t, err)
	assert.NotContains(t, strings.ToLower(string(out)), "<script")
	assert.NotContains(t, string(out), "javascript:")
}

func TestReadingMinutes(t *testing.T) {
	n := 1400
	assert.Equal(t, 7, ReadingMinutes(&n, ""))
	zero := 0
	assert.Equal(t, 1, ReadingMinutes(&zero, "just a few words"))
	assert.Equal(t, 1, ReadingMinutes(nil, ""))
	assert.Equal(t, 2, ReadingMinutes(nil, strings.Repeat("word ", 201)))
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "short", Excerpt("short", 10))
	assert.Equal(t, "one two…", Excerpt("one two three", 9))
}
