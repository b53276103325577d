package usecase

import (
	"context"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/alalapi-0/WeDraftSync/internal/ports"
)

const previewExcerptRunes = 80

// Preview lists the articles that would be uploaded and verifies that a
// token can be obtained, without submitting anything.
type Preview struct {
	source ports.ArticleSource
	tokens ports.TokenProvider
	out    io.Writer
}

// NewPreview constructs the dry-run use case.
func NewPreview(source ports.ArticleSource, tokens ports.TokenProvider, out io.Writer) *Preview {
	if out == nil {
		out = io.Discard
	}
	return &Preview{source: source, tokens: tokens, out: out}
}

// Run prints each pending article with a content excerpt and a masked token.
func (p *Preview) Run(ctx context.Context, appid, secret string) error {
	articles, err := p.source.Load(ctx)
	if err != nil {
		return fmt.Errorf("load articles: %w", err)
	}

	if len(articles) == 0 {
		fmt.Fprintln(p.out, "no articles to upload")
		return nil
	}

	for i, article := range articles {
		fmt.Fprintf(p.out, "[%d/%d] %s\n    %s\n", i+1, len(articles), article.Title, excerpt(article.Content))
	}

	if appid == "" || secret == "" {
		return fmt.Errorf("appid or secret is missing in the configuration")
	}

	token, err := p.tokens.AccessToken(ctx, appid, secret)
	if err != nil {
		return fmt.Errorf("obtain access token: %w", err)
	}

	fmt.Fprintf(p.out, "access token: %s\n", maskToken(token))
	return nil
}

func excerpt(content string) string {
	text := strings.Join(strings.Fields(content), " ")
	if utf8.RuneCountInString(text) <= previewExcerptRunes {
		return text
	}
	return string([]rune(text)[:previewExcerptRunes]) + "..."
}

// maskToken keeps just enough of the token to confirm it changed.
func maskToken(token string) string {
	if len(token) <= 8 {
		return strings.Repeat("*", len(token))
	}
	return token[:4] + strings.Repeat("*", 8) + token[len(token)-4:]
}
