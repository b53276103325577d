package markup

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/alalapi-0/WeDraftSync/internal/ports"
)

// MarkdownConverter renders Markdown article bodies into the HTML the draft
// endpoint expects.
type MarkdownConverter struct {
	md goldmark.Markdown
}

var _ ports.ContentConverter = (*MarkdownConverter)(nil)

// NewMarkdownConverter builds a GFM-enabled converter.
func NewMarkdownConverter() *MarkdownConverter {
	return &MarkdownConverter{
		md: goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

// Convert renders markdown source to HTML.
func (c *MarkdownConverter) Convert(content string) (string, error) {
	var buf bytes.Buffer
	if err := c.md.Convert([]byte(content), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}

// Digest extracts the leading plain text of rendered HTML, collapsed to
// single spaces and bounded to limit runes. Unparseable input yields "".
func (c *MarkdownConverter) Digest(html string, limit int) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	text := strings.Join(strings.Fields(doc.Text()), " ")
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	return string([]rune(text)[:limit])
}
