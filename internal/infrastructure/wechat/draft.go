package wechat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/alalapi-0/WeDraftSync/internal/domain"
	"github.com/alalapi-0/WeDraftSync/internal/ports"
)

const (
	draftAddPath = "/cgi-bin/draft/add"

	autoDigestRunes = 120
)

// DraftClient submits article drafts. Each article is a single request with a
// fixed timeout and no retries.
type DraftClient struct {
	baseURL   string
	converter ports.ContentConverter
	client    *http.Client
	logger    *slog.Logger
}

var _ ports.DraftUploader = (*DraftClient)(nil)

// NewDraftClient wires an uploader. The converter is optional: when nil,
// markdown drafts are submitted unconverted with a logged warning.
func NewDraftClient(baseURL string, converter ports.ContentConverter, client *http.Client, logger *slog.Logger) *DraftClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if client == nil {
		client = &http.Client{Timeout: requestTimeout}
	}
	return &DraftClient{
		baseURL:   baseURL,
		converter: converter,
		client:    client,
		logger:    logger,
	}
}

type draftArticle struct {
	Title              string `json:"title"`
	Content            string `json:"content"`
	ShowCoverPic       int    `json:"show_cover_pic"`
	NeedOpenComment    int    `json:"need_open_comment"`
	OnlyFansCanComment int    `json:"only_fans_can_comment"`
	Digest             string `json:"digest,omitempty"`
}

// SubmitDraft uploads one draft and returns the server-assigned media id.
// Missing token, title, or content is rejected before any network call.
func (c *DraftClient) SubmitDraft(ctx context.Context, token string, draft domain.Draft) (string, error) {
	if token == "" {
		return "", fmt.Errorf("access token is required")
	}
	if draft.Title == "" || draft.Content == "" {
		return "", fmt.Errorf("both title and content are required")
	}

	content, digest := c.prepareContent(draft)

	payload := map[string]any{
		"articles": []draftArticle{{
			Title:              draft.Title,
			Content:            content,
			ShowCoverPic:       boolToInt(draft.ShowCoverPic),
			NeedOpenComment:    boolToInt(draft.NeedOpenComment),
			OnlyFansCanComment: boolToInt(draft.OnlyFansCanComment),
			Digest:             digest,
		}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal draft payload: %w", err)
	}

	endpoint := c.baseURL + draftAddPath + "?access_token=" + url.QueryEscape(token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new draft request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("submit draft: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("draft endpoint returned %s", resp.Status)
	}

	var decoded struct {
		MediaID string `json:"media_id"`
		ErrCode int    `json:"errcode"`
		ErrMsg  string `json:"errmsg"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode draft response: %w", err)
	}

	if decoded.MediaID == "" {
		return "", fmt.Errorf("draft rejected: errcode=%d, errmsg=%s", decoded.ErrCode, decoded.ErrMsg)
	}

	return decoded.MediaID, nil
}

// prepareContent renders markdown when requested and fills in a digest from
// the rendered HTML when none was configured.
func (c *DraftClient) prepareContent(draft domain.Draft) (content, digest string) {
	content = draft.Content
	digest = draft.Digest

	if !draft.IsMarkdown {
		return content, digest
	}

	if c.converter == nil {
		c.warn("markdown converter unavailable, submitting original content", "title", draft.Title)
		return content, digest
	}

	converted, err := c.converter.Convert(draft.Content)
	if err != nil {
		c.warn("markdown conversion failed, submitting original content", "title", draft.Title, "error", err)
		return content, digest
	}

	content = converted
	if digest == "" {
		digest = c.converter.Digest(converted, autoDigestRunes)
	}
	return content, digest
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func (c *DraftClient) warn(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Warn(msg, args...)
	}
}
