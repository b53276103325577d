package wechat

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/alalapi-0/WeDraftSync/internal/domain"
)

// stubConverter implements ports.ContentConverter for tests.
type stubConverter struct {
	output string
	digest string
	err    error
}

func (s *stubConverter) Convert(content string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.output, nil
}

func (s *stubConverter) Digest(html string, limit int) string {
	return s.digest
}

type capturedRequest struct {
	token string
	body  map[string]any
}

func draftServer(t *testing.T, calls *atomic.Int64, captured *capturedRequest, response string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path != "/cgi-bin/draft/add" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		captured.token = r.URL.Query().Get("access_token")

		raw, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("read body: %v", err)
		}
		if err := json.Unmarshal(raw, &captured.body); err != nil {
			t.Errorf("request body is not JSON: %v", err)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(server.Close)
	return server
}

func firstArticle(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	articles, ok := body["articles"].([]any)
	if !ok || len(articles) != 1 {
		t.Fatalf("expected exactly one article in payload, got %v", body["articles"])
	}
	article, ok := articles[0].(map[string]any)
	if !ok {
		t.Fatalf("article is not an object: %v", articles[0])
	}
	return article
}

func TestSubmitDraftSuccess(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	var captured capturedRequest
	server := draftServer(t, &calls, &captured, `{"media_id":"MEDIA123"}`)

	client := NewDraftClient(server.URL, nil, server.Client(), nil)
	mediaID, err := client.SubmitDraft(context.Background(), "TOKEN", domain.Draft{
		Title:        "Hello",
		Content:      "<p>Body</p>",
		ShowCoverPic: true,
	})
	if err != nil {
		t.Fatalf("SubmitDraft returned error: %v", err)
	}
	if mediaID != "MEDIA123" {
		t.Fatalf("unexpected media id: %s", mediaID)
	}
	if captured.token != "TOKEN" {
		t.Fatalf("unexpected token query parameter: %s", captured.token)
	}

	article := firstArticle(t, captured.body)
	if article["title"] != "Hello" || article["content"] != "<p>Body</p>" {
		t.Fatalf("unexpected article payload: %v", article)
	}
	if article["show_cover_pic"] != float64(1) || article["need_open_comment"] != float64(0) {
		t.Fatalf("unexpected display flags: %v", article)
	}
	if _, ok := article["digest"]; ok {
		t.Fatal("digest must be omitted when empty")
	}
}

func TestSubmitDraftErrcodeIsError(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	var captured capturedRequest
	server := draftServer(t, &calls, &captured, `{"errcode":40001,"errmsg":"invalid credential"}`)

	client := NewDraftClient(server.URL, nil, server.Client(), nil)
	_, err := client.SubmitDraft(context.Background(), "TOKEN", domain.Draft{Title: "T", Content: "C"})
	if err == nil {
		t.Fatal("expected an error for an errcode response")
	}
	if !strings.Contains(err.Error(), "40001") || !strings.Contains(err.Error(), "invalid credential") {
		t.Fatalf("error should carry errcode/errmsg, got: %v", err)
	}
}

func TestSubmitDraftBadStatusIsError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	client := NewDraftClient(server.URL, nil, server.Client(), nil)
	if _, err := client.SubmitDraft(context.Background(), "TOKEN", domain.Draft{Title: "T", Content: "C"}); err == nil {
		t.Fatal("expected an error for a non-200 status")
	}
}

func TestSubmitDraftMalformedBodyIsError(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	var captured capturedRequest
	server := draftServer(t, &calls, &captured, `not json`)

	client := NewDraftClient(server.URL, nil, server.Client(), nil)
	if _, err := client.SubmitDraft(context.Background(), "TOKEN", domain.Draft{Title: "T", Content: "C"}); err == nil {
		t.Fatal("expected an error for an unparseable body")
	}
}

func TestSubmitDraftPreconditions(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	var captured capturedRequest
	server := draftServer(t, &calls, &captured, `{"media_id":"M"}`)

	client := NewDraftClient(server.URL, nil, server.Client(), nil)
	cases := []struct {
		name  string
		token string
		draft domain.Draft
	}{
		{"missing token", "", domain.Draft{Title: "T", Content: "C"}},
		{"missing title", "TOKEN", domain.Draft{Content: "C"}},
		{"missing content", "TOKEN", domain.Draft{Title: "T"}},
	}

	for _, tc := range cases {
		if _, err := client.SubmitDraft(context.Background(), tc.token, tc.draft); err == nil {
			t.Fatalf("%s: expected an error", tc.name)
		}
	}

	if calls.Load() != 0 {
		t.Fatalf("precondition failures must not reach the network, got %d calls", calls.Load())
	}
}

func TestSubmitDraftMarkdownConversion(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	var captured capturedRequest
	server := draftServer(t, &calls, &captured, `{"media_id":"M"}`)

	converter := &stubConverter{output: "<h1>Hi</h1>", digest: "Hi"}
	client := NewDraftClient(server.URL, converter, server.Client(), nil)

	if _, err := client.SubmitDraft(context.Background(), "TOKEN", domain.Draft{
		Title:      "T",
		Content:    "# Hi",
		IsMarkdown: true,
	}); err != nil {
		t.Fatalf("SubmitDraft returned error: %v", err)
	}

	article := firstArticle(t, captured.body)
	if article["content"] != "<h1>Hi</h1>" {
		t.Fatalf("expected converted content, got %v", article["content"])
	}
	if article["digest"] != "Hi" {
		t.Fatalf("expected auto-derived digest, got %v", article["digest"])
	}
}

func TestSubmitDraftMarkdownWithoutConverterFallsBack(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	var captured capturedRequest
	server := draftServer(t, &calls, &captured, `{"media_id":"M"}`)

	client := NewDraftClient(server.URL, nil, server.Client(), nil)
	if _, err := client.SubmitDraft(context.Background(), "TOKEN", domain.Draft{
		Title:      "T",
		Content:    "# Hi",
		IsMarkdown: true,
	}); err != nil {
		t.Fatalf("SubmitDraft returned error: %v", err)
	}

	article := firstArticle(t, captured.body)
	if article["content"] != "# Hi" {
		t.Fatalf("missing converter must submit original content, got %v", article["content"])
	}
}

func TestSubmitDraftConfiguredDigestWins(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	var captured capturedRequest
	server := draftServer(t, &calls, &captured, `{"media_id":"M"}`)

	converter := &stubConverter{output: "<p>x</p>", digest: "derived"}
	client := NewDraftClient(server.URL, converter, server.Client(), nil)

	if _, err := client.SubmitDraft(context.Background(), "TOKEN", domain.Draft{
		Title:      "T",
		Content:    "x",
		Digest:     "configured",
		IsMarkdown: true,
	}); err != nil {
		t.Fatalf("SubmitDraft returned error: %v", err)
	}

	article := firstArticle(t, captured.body)
	if article["digest"] != "configured" {
		t.Fatalf("configured digest must win, got %v", article["digest"])
	}
}
