package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var (
	// ErrUnauthorized indicates the identity service rejected the
	// credentials or refresh token.
	ErrUnauthorized = errors.New("identity: unauthorized")
	// ErrBaseURLRequired indicates a client without an endpoint.
	ErrBaseURLRequired = errors.New("identity: base url is required")
)

// Credentials is one sign-in request.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Tokens is the identity service's issuance result. Session expiry is
// carried inside the access token claims, not here.
type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// TokenSource issues and renews token pairs.
type TokenSource interface {
	Login(ctx context.Context, credentials Credentials) (Tokens, error)
	Refresh(ctx context.Context, refreshToken string) (Tokens, error)
}

// Client talks to the identity service over JSON HTTP.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

const defaultClientTimeout = 30 * time.Second

// NewClient creates an identity client for the given base URL.
func NewClient(baseURL string) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, ErrBaseURLRequired
	}
	return &Client{
		httpClient: &http.Client{Timeout: defaultClientTimeout},
		baseURL:    baseURL,
	}, nil
}

// Login exchanges credentials for a token pair.
func (c *Client) Login(ctx context.Context, credentials Credentials) (Tokens, error) {
	return c.postJSON(ctx, "/v1/sessions", credentials)
}

// Refresh exchanges a refresh token for a renewed token pair.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (Tokens, error) {
	payload := struct {
		RefreshToken string `json:"refresh_token"`
	}{RefreshToken: refreshToken}
	return c.postJSON(ctx, "/v1/sessions/refresh", payload)
}

func (c *Client) postJSON(ctx context.Context, path string, body any) (Tokens, error) {
	encoded, err := json.Marshal(body)
	if err != nil {
		return Tokens{}, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return Tokens{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Tokens{}, fmt.Errorf("identity request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return Tokens{}, ErrUnauthorized
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Tokens{}, fmt.Errorf("identity status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	var tokens Tokens
	if err := json.NewDecoder(resp.Body).Decode(&tokens); err != nil {
		return Tokens{}, fmt.Errorf("decode response: %w", err)
	}
	if strings.TrimSpace(tokens.AccessToken) == "" {
		return Tokens{}, fmt.Errorf("identity response missing access token")
	}
	return tokens, nil
}
