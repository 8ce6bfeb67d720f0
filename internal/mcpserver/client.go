package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Config holds the connection settings for the ReplyPilot API.
type Config struct {
	APIURL string // Base URL, e.g. "http://localhost:8000"
	APIKey string // Merchant API key, e.g. "rk_..."
}

// ReplyPilotClient is a pure HTTP client for the ReplyPilot API.
type ReplyPilotClient struct {
	cfg        Config
	httpClient *http.Client
}

// NewReplyPilotClient creates a new client for the ReplyPilot API.
func NewReplyPilotClient(cfg Config) *ReplyPilotClient {
	return &ReplyPilotClient{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// apiError represents an error response from the API.
type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (c *ReplyPilotClient) doRequest(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.APIURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr apiError
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Message != "" {
			return nil, fmt.Errorf("API error (%d): %s", resp.StatusCode, apiErr.Message)
		}
		return nil, fmt.Errorf("API error (%d): %s", resp.StatusCode, string(respBody))
	}

	return json.RawMessage(respBody), nil
}

// GenerateReplies asks the API to draft reply variants for one review.
func (c *ReplyPilotClient) GenerateReplies(ctx context.Context, review map[string]any) (json.RawMessage, error) {
	return c.doRequest(ctx, http.MethodPost, "/v1/responses", review)
}

// GetUsage returns the merchant's quota usage for the current window.
func (c *ReplyPilotClient) GetUsage(ctx context.Context) (json.RawMessage, error) {
	return c.doRequest(ctx, http.MethodGet, "/v1/usage", nil)
}

// GetProfile returns the merchant's business profile.
func (c *ReplyPilotClient) GetProfile(ctx context.Context) (json.RawMessage, error) {
	return c.doRequest(ctx, http.MethodGet, "/v1/profile", nil)
}

// UpdateProfile patches the merchant's business profile.
func (c *ReplyPilotClient) UpdateProfile(ctx context.Context, updates map[string]any) (json.RawMessage, error) {
	return c.doRequest(ctx, http.MethodPatch, "/v1/profile", updates)
}
