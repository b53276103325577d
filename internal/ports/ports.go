package ports

import (
	"context"

	"github.com/alalapi-0/WeDraftSync/internal/domain"
)

// ArticleSource enumerates articles prepared for submission, in upload order.
type ArticleSource interface {
	Load(ctx context.Context) ([]domain.Article, error)
}

// TokenStore persists cached access tokens across process invocations.
type TokenStore interface {
	Get(appid string) (domain.TokenEntry, bool, error)
	Put(appid string, entry domain.TokenEntry) error
}

// TokenProvider returns a valid access token, consulting its cache first.
type TokenProvider interface {
	AccessToken(ctx context.Context, appid, secret string) (string, error)
}

// DraftUploader submits one article draft and returns the assigned media id.
type DraftUploader interface {
	SubmitDraft(ctx context.Context, token string, draft domain.Draft) (string, error)
}

// ContentConverter renders article markup into the format the API expects.
type ContentConverter interface {
	Convert(content string) (string, error)
	Digest(html string, limit int) string
}

// UploadRecorder appends one audit entry per processed article.
type UploadRecorder interface {
	Record(outcome domain.UploadOutcome) error
}

// HistoryRepository persists upload outcomes for deduplication and audit.
type HistoryRepository interface {
	AlreadyUploaded(ctx context.Context, titles []string) (map[string]bool, error)
	SaveOutcome(ctx context.Context, outcome domain.UploadOutcome) error
}
