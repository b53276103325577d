package wechat

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/alalapi-0/WeDraftSync/internal/domain"
	"github.com/alalapi-0/WeDraftSync/internal/ports"
)

const (
	// DefaultBaseURL is the production WeChat API host.
	DefaultBaseURL = "https://api.weixin.qq.com"

	tokenPath = "/cgi-bin/token"

	// tokenSafetyWindow is subtracted from the server-declared lifetime so a
	// cached token never outlives the remote side's own expiry.
	tokenSafetyWindow = 60 * time.Second

	requestTimeout = 10 * time.Second
)

// TokenClient fetches access tokens, memoizing them through a TokenStore so
// repeat runs inside the validity window make no network call.
type TokenClient struct {
	baseURL string
	store   ports.TokenStore
	client  *http.Client
	logger  *slog.Logger
	now     func() time.Time
}

var _ ports.TokenProvider = (*TokenClient)(nil)

// NewTokenClient wires a client; baseURL defaults to the production host and
// client to one with the fixed request timeout.
func NewTokenClient(baseURL string, store ports.TokenStore, client *http.Client, logger *slog.Logger) *TokenClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if client == nil {
		client = &http.Client{Timeout: requestTimeout}
	}
	return &TokenClient{
		baseURL: baseURL,
		store:   store,
		client:  client,
		logger:  logger,
		now:     time.Now,
	}
}

// WithClock overrides the time source; expiry boundaries are tested with it.
func (c *TokenClient) WithClock(now func() time.Time) *TokenClient {
	if now != nil {
		c.now = now
	}
	return c
}

// AccessToken returns a valid token for the credentials, from cache when a
// stored entry is still inside its validity window.
func (c *TokenClient) AccessToken(ctx context.Context, appid, secret string) (string, error) {
	if appid == "" || secret == "" {
		return "", fmt.Errorf("appid and secret are required")
	}

	if c.store != nil {
		entry, ok, err := c.store.Get(appid)
		if err != nil {
			c.warn("token cache read failed", "error", err)
		} else if ok && entry.Valid(c.now()) {
			c.debug("returning cached access token", "appid", appid)
			return entry.AccessToken, nil
		}
	}

	token, expiresIn, err := c.fetchToken(ctx, appid, secret)
	if err != nil {
		return "", err
	}

	if c.store != nil {
		lifetime := time.Duration(expiresIn)*time.Second - tokenSafetyWindow
		if lifetime < 0 {
			lifetime = 0
		}
		entry := domain.TokenEntry{
			AccessToken: token,
			ExpiresAt:   float64(c.now().Add(lifetime).Unix()),
		}
		if err := c.store.Put(appid, entry); err != nil {
			c.warn("token cache write failed", "error", err)
		}
	}

	return token, nil
}

func (c *TokenClient) fetchToken(ctx context.Context, appid, secret string) (string, int64, error) {
	query := url.Values{}
	query.Set("grant_type", "client_credential")
	query.Set("appid", appid)
	query.Set("secret", secret)
	endpoint := c.baseURL + tokenPath + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", 0, fmt.Errorf("new token request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("fetch access token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", 0, fmt.Errorf("token endpoint returned %s", resp.Status)
	}

	var body struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
		ErrCode     int    `json:"errcode"`
		ErrMsg      string `json:"errmsg"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", 0, fmt.Errorf("decode token response: %w", err)
	}

	if body.AccessToken == "" {
		return "", 0, fmt.Errorf("token request rejected: errcode=%d, errmsg=%s", body.ErrCode, body.ErrMsg)
	}

	return body.AccessToken, body.ExpiresIn, nil
}

func (c *TokenClient) warn(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Warn(msg, args...)
	}
}

func (c *TokenClient) debug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}
