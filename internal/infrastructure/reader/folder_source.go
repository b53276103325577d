package reader

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/alalapi-0/WeDraftSync/internal/domain"
	"github.com/alalapi-0/WeDraftSync/internal/ports"
)

const (
	maxContentRunes = 20000
	maxTitleRunes   = 100
)

// FolderSource loads .txt articles from the immediate children of a folder,
// sorted by case-insensitive file name. That order is the upload order.
type FolderSource struct {
	folder             string
	useFilenameAsTitle bool
	logger             *slog.Logger
}

var _ ports.ArticleSource = (*FolderSource)(nil)

// NewFolderSource wires a source for the given folder. When
// useFilenameAsTitle is false, titles come from the leading content instead.
func NewFolderSource(folder string, useFilenameAsTitle bool, logger *slog.Logger) *FolderSource {
	return &FolderSource{
		folder:             folder,
		useFilenameAsTitle: useFilenameAsTitle,
		logger:             logger,
	}
}

// Load reads every matching file and returns the ordered article list. A
// missing or non-directory path yields an empty list, not an error.
func (s *FolderSource) Load(ctx context.Context) ([]domain.Article, error) {
	entries, err := os.ReadDir(s.folder)
	if err != nil {
		s.warn("folder missing or unreadable", "folder", s.folder, "error", err)
		return nil, nil
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !strings.EqualFold(filepath.Ext(entry.Name()), ".txt") {
			continue
		}
		names = append(names, entry.Name())
	}

	sort.Slice(names, func(i, j int) bool {
		return strings.ToLower(names[i]) < strings.ToLower(names[j])
	})

	if len(names) == 0 {
		s.debug("no .txt files found", "folder", s.folder)
		return nil, nil
	}

	articles := make([]domain.Article, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		raw, err := os.ReadFile(filepath.Join(s.folder, name))
		if err != nil {
			s.warn("unable to read file", "file", name, "error", err)
			continue
		}
		if !utf8.Valid(raw) {
			s.warn("skipping file with invalid UTF-8", "file", name)
			continue
		}

		content := truncateRunes(string(raw), maxContentRunes)
		articles = append(articles, domain.Article{
			Title:   s.deriveTitle(name, content),
			Content: content,
		})
	}

	return articles, nil
}

func (s *FolderSource) deriveTitle(fileName, content string) string {
	stem := strings.TrimSuffix(fileName, filepath.Ext(fileName))
	if s.useFilenameAsTitle {
		return stem
	}

	candidate := truncateRunes(strings.TrimSpace(content), maxTitleRunes)
	if candidate == "" {
		return stem
	}
	return candidate
}

// truncateRunes bounds s to at most n runes. The limits are character counts,
// not byte counts, so multibyte text is never split mid-rune.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

func (s *FolderSource) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}

func (s *FolderSource) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
