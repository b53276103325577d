package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/alalapi-0/WeDraftSync/internal/config"
	"github.com/alalapi-0/WeDraftSync/internal/infrastructure/markup"
	"github.com/alalapi-0/WeDraftSync/internal/infrastructure/reader"
	"github.com/alalapi-0/WeDraftSync/internal/infrastructure/storage"
	"github.com/alalapi-0/WeDraftSync/internal/infrastructure/tokencache"
	"github.com/alalapi-0/WeDraftSync/internal/infrastructure/uploadlog"
	"github.com/alalapi-0/WeDraftSync/internal/infrastructure/wechat"
	"github.com/alalapi-0/WeDraftSync/internal/logging"
	"github.com/alalapi-0/WeDraftSync/internal/usecase"
)

// Application wires config to adapters and use cases.
type Application struct {
	cfg     config.Config
	logger  *slog.Logger
	out     io.Writer
	history *storage.PostgresRepository
	batch   *usecase.Batch
	preview *usecase.Preview
}

// New builds a runnable application instance. out receives user-facing
// progress output (normally stdout).
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger, out io.Writer) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	source := reader.NewFolderSource(cfg.TextFolder, cfg.UseFilenameAsTitle,
		baseLogger.With("component", "reader"))

	store := tokencache.NewFileStore(cfg.CacheFile, baseLogger.With("component", "tokencache"))
	tokens := wechat.NewTokenClient(cfg.APIBaseURL, store, nil,
		baseLogger.With("component", "wechat.token"))

	uploader := wechat.NewDraftClient(cfg.APIBaseURL, markup.NewMarkdownConverter(), nil,
		baseLogger.With("component", "wechat.draft"))

	recorder := uploadlog.NewFileRecorder(cfg.LogFile)

	var history *storage.PostgresRepository
	if cfg.HistoryDSN != "" {
		repo, err := storage.Open(ctx, cfg.HistoryDSN)
		if err != nil {
			return nil, fmt.Errorf("connect upload history: %w", err)
		}
		history = repo
	}

	deps := usecase.BatchDeps{
		Source:   source,
		Tokens:   tokens,
		Uploader: uploader,
		Recorder: recorder,
		Logger:   baseLogger.With("component", "batch"),
		Progress: out,
	}
	if history != nil {
		deps.History = history
	}

	return &Application{
		cfg:     cfg,
		logger:  baseLogger,
		out:     out,
		history: history,
		batch:   usecase.NewBatch(deps),
		preview: usecase.NewPreview(source, tokens, out),
	}, nil
}

// Run performs the full upload batch.
func (a *Application) Run(ctx context.Context) error {
	appid, secret := a.cfg.Credentials()

	opts := usecase.DraftOptions{
		IsMarkdown:         a.cfg.ContentIsMarkdown,
		Digest:             a.cfg.Digest,
		ShowCoverPic:       a.cfg.ShowCoverPic,
		NeedOpenComment:    a.cfg.NeedOpenComment,
		OnlyFansCanComment: a.cfg.OnlyFansCanComment,
	}

	_, err := a.batch.Run(ctx, appid, secret, opts)
	return err
}

// Preview lists pending articles and verifies the token without uploading.
func (a *Application) Preview(ctx context.Context) error {
	appid, secret := a.cfg.Credentials()
	return a.preview.Run(ctx, appid, secret)
}

// Close releases held resources (the history connection, when enabled).
func (a *Application) Close() error {
	if a.history != nil {
		return a.history.Close()
	}
	return nil
}
