// Package credlock talks to the external identity and subscription services.
package credlock

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/yanqian/quiz-catalog/internal/domain/auth"
)

const (
	profilePath        = "/api/auth/profile"
	headerRefreshToken = "x-refresh-token"
	headerService      = "x-service"
	defaultTimeout     = 10 * time.Second
)

// Client resolves bearer credentials to users via the identity service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds an identity API client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Profile forwards the credentials and returns the resolved user. Non-2xx
// answers become *auth.UpstreamError carrying the upstream status and msg.
func (c *Client) Profile(ctx context.Context, creds auth.Credentials) (auth.User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+profilePath, nil)
	if err != nil {
		return auth.User{}, fmt.Errorf("build profile request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", creds.Authorization)
	req.Header.Set(headerRefreshToken, creds.RefreshToken)
	req.Header.Set(headerService, creds.Service)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return auth.User{}, fmt.Errorf("profile request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return auth.User{}, fmt.Errorf("read profile response: %w", err)
	}

	var envelope profileResponse
	decodeErr := json.Unmarshal(body, &envelope)
	if resp.StatusCode >= 300 {
		return auth.User{}, &auth.UpstreamError{Status: resp.StatusCode, Message: envelope.Msg}
	}
	if decodeErr != nil {
		return auth.User{}, fmt.Errorf("decode profile response: %w", decodeErr)
	}
	if envelope.Status == "error" {
		return auth.User{}, &auth.UpstreamError{Status: http.StatusUnauthorized, Message: envelope.Msg}
	}
	return envelope.Data.User, nil
}

type profileResponse struct {
	Status string `json:"status"`
	Code   int    `json:"code"`
	Msg    string `json:"msg"`
	Data   struct {
		User auth.User `json:"user"`
	} `json:"data"`
}

var _ auth.IdentityClient = (*Client)(nil)
