// Package content renders article bodies for the site.
package content

import (
	"bytes"
	"html/template"
	"math"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

const wordsPerMinute = 200

var (
	md = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	)
	policy = bluemonday.UGCPolicy()
)

// RenderMarkdown converts article markdown to sanitized HTML. Raw HTML in the
// source is dropped by the renderer and anything unsafe left over is
// stripped by the sanitizer.
func RenderMarkdown(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return template.HTML(policy.SanitizeBytes(buf.Bytes())), nil
}

// ReadingMinutes estimates reading time, at least one minute. When wordCount
// is unknown (nil or zero) the words of body are counted.
func ReadingMinutes(wordCount *int, body string) int {
	words := 0
	if wordCount != nil {
		words = *wordCount
	}
	if words <= 0 {
		words = len(strings.Fields(body))
	}
	return int(math.Max(1, math.Ceil(float64(words)/wordsPerMinute)))
}

// Excerpt returns the first n runes of plain text, cut at a word boundary.
func Excerpt(text string, n int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	cut := string(runes[:n])
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return cut + "…"
}
