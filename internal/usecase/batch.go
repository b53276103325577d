package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/alalapi-0/WeDraftSync/internal/domain"
	"github.com/alalapi-0/WeDraftSync/internal/ports"
)

// BatchDeps wires all driven adapters into the upload batch.
type BatchDeps struct {
	Source   ports.ArticleSource
	Tokens   ports.TokenProvider
	Uploader ports.DraftUploader
	Recorder ports.UploadRecorder
	History  ports.HistoryRepository
	Logger   *slog.Logger
	Progress io.Writer
}

// DraftOptions is the per-run submission template applied to every article.
type DraftOptions struct {
	IsMarkdown         bool
	Digest             string
	ShowCoverPic       bool
	NeedOpenComment    bool
	OnlyFansCanComment bool
}

// Summary carries the final batch counters.
type Summary struct {
	Total     int
	Succeeded int
	Failed    int
	Skipped   int
}

// Batch drives load, authenticate, upload-each, and logging in sequence.
// Only configuration, loading, and authentication failures abort the run;
// per-article submission failures are recorded and the loop continues.
type Batch struct {
	source   ports.ArticleSource
	tokens   ports.TokenProvider
	uploader ports.DraftUploader
	recorder ports.UploadRecorder
	history  ports.HistoryRepository
	logger   *slog.Logger
	progress io.Writer
}

// NewBatch constructs the orchestration component.
func NewBatch(deps BatchDeps) *Batch {
	progress := deps.Progress
	if progress == nil {
		progress = io.Discard
	}
	return &Batch{
		source:   deps.Source,
		tokens:   deps.Tokens,
		uploader: deps.Uploader,
		recorder: deps.Recorder,
		history:  deps.History,
		logger:   deps.Logger,
		progress: progress,
	}
}

// Run executes one upload batch with the given credentials and options.
func (b *Batch) Run(ctx context.Context, appid, secret string, opts DraftOptions) (Summary, error) {
	articles, err := b.source.Load(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("load articles: %w", err)
	}

	if len(articles) == 0 {
		b.info("no articles to upload")
		return Summary{}, nil
	}

	if appid == "" || secret == "" {
		return Summary{}, fmt.Errorf("appid or secret is missing in the configuration")
	}

	token, err := b.tokens.AccessToken(ctx, appid, secret)
	if err != nil {
		return Summary{}, fmt.Errorf("obtain access token: %w", err)
	}

	uploaded := b.loadHistory(ctx, articles)

	summary := Summary{Total: len(articles)}
	b.info("starting upload", "articles", summary.Total)

	for i, article := range articles {
		prefix := fmt.Sprintf("[%d/%d]", i+1, summary.Total)

		if uploaded[article.Title] {
			summary.Skipped++
			fmt.Fprintf(b.progress, "%s skipped (already uploaded): %s\n", prefix, article.Title)
			b.record(ctx, domain.UploadOutcome{
				Title:  article.Title,
				Status: domain.StatusSkipped,
				Detail: "already uploaded in a previous run",
			})
			continue
		}

		fmt.Fprintf(b.progress, "%s uploading: %s\n", prefix, article.Title)

		draft := domain.Draft{
			Title:              article.Title,
			Content:            article.Content,
			Digest:             opts.Digest,
			IsMarkdown:         opts.IsMarkdown,
			ShowCoverPic:       opts.ShowCoverPic,
			NeedOpenComment:    opts.NeedOpenComment,
			OnlyFansCanComment: opts.OnlyFansCanComment,
		}

		mediaID, err := b.uploader.SubmitDraft(ctx, token, draft)
		switch {
		case err != nil:
			summary.Failed++
			fmt.Fprintf(b.progress, "%s failed: %s | %v\n", prefix, article.Title, err)
			b.error("upload failed", "title", article.Title, "error", err)
			b.record(ctx, domain.UploadOutcome{
				Title:  article.Title,
				Status: domain.StatusFailure,
				Detail: err.Error(),
			})
		case mediaID == "":
			summary.Failed++
			fmt.Fprintf(b.progress, "%s failed: %s | no media_id returned\n", prefix, article.Title)
			b.error("upload returned no media_id", "title", article.Title)
			b.record(ctx, domain.UploadOutcome{
				Title:  article.Title,
				Status: domain.StatusFailure,
				Detail: "no media_id returned",
			})
		default:
			summary.Succeeded++
			fmt.Fprintf(b.progress, "%s success: %s | media_id: %s\n", prefix, article.Title, mediaID)
			b.info("upload succeeded", "title", article.Title, "media_id", mediaID)
			b.record(ctx, domain.UploadOutcome{
				Title:   article.Title,
				Status:  domain.StatusSuccess,
				MediaID: mediaID,
			})
		}
	}

	fmt.Fprintf(b.progress, "upload finished: %d succeeded, %d failed\n", summary.Succeeded, summary.Failed)
	b.info("upload finished", "succeeded", summary.Succeeded, "failed", summary.Failed, "skipped", summary.Skipped)

	return summary, nil
}

// loadHistory returns titles with a recorded prior success. History is a
// best-effort supplement; lookup failures degrade to no dedup.
func (b *Batch) loadHistory(ctx context.Context, articles []domain.Article) map[string]bool {
	if b.history == nil {
		return nil
	}

	titles := make([]string, len(articles))
	for i, article := range articles {
		titles[i] = article.Title
	}

	uploaded, err := b.history.AlreadyUploaded(ctx, titles)
	if err != nil {
		b.warn("history lookup failed, uploading everything", "error", err)
		return nil
	}
	return uploaded
}

// record writes the audit line and the optional history row. Neither failure
// aborts the batch.
func (b *Batch) record(ctx context.Context, outcome domain.UploadOutcome) {
	if b.recorder != nil {
		if err := b.recorder.Record(outcome); err != nil {
			b.warn("cannot write upload log entry", "title", outcome.Title, "error", err)
		}
	}

	if b.history != nil {
		if err := b.history.SaveOutcome(ctx, outcome); err != nil {
			b.warn("cannot persist upload outcome", "title", outcome.Title, "error", err)
		}
	}
}

func (b *Batch) info(msg string, args ...any) {
	if b.logger != nil {
		b.logger.Info(msg, args...)
	}
}

func (b *Batch) warn(msg string, args ...any) {
	if b.logger != nil {
		b.logger.Warn(msg, args...)
	}
}

func (b *Batch) error(msg string, args ...any) {
	if b.logger != nil {
		b.logger.Error(msg, args...)
	}
}
