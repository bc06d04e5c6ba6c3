package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	apperrors "github.com/daypass/chat-gateway-go/internal/errors"
)

var errModelNotConfigured = errors.New("upstream model is not configured")

// ModelClient is the hosted language-model collaborator. Provider-specific
// request and response shapes stay behind this boundary.
type ModelClient interface {
	Complete(ctx context.Context, payload any) (json.RawMessage, error)
	Embed(ctx context.Context, payload any) (json.RawMessage, error)
	GenerateImage(ctx context.Context, payload any) (json.RawMessage, error)
}

// ChatService forwards validated, sanitized payloads to the upstream model.
type ChatService struct {
	client ModelClient
}

func NewChatService(client ModelClient) *ChatService {
	return &ChatService{client: client}
}

func (s *ChatService) Complete(ctx context.Context, payload any) (json.RawMessage, error) {
	return s.forward(ctx, payload, func(c ModelClient) (json.RawMessage, error) {
		return c.Complete(ctx, payload)
	})
}

func (s *ChatService) Embed(ctx context.Context, payload any) (json.RawMessage, error) {
	return s.forward(ctx, payload, func(c ModelClient) (json.RawMessage, error) {
		return c.Embed(ctx, payload)
	})
}

func (s *ChatService) GenerateImage(ctx context.Context, payload any) (json.RawMessage, error) {
	return s.forward(ctx, payload, func(c ModelClient) (json.RawMessage, error) {
		return c.GenerateImage(ctx, payload)
	})
}

func (s *ChatService) forward(ctx context.Context, payload any, call func(ModelClient) (json.RawMessage, error)) (json.RawMessage, error) {
	if s.client == nil {
		return nil, apperrors.Upstream("model", errModelNotConfigured)
	}
	resp, err := call(s.client)
	if err != nil {
		return nil, apperrors.Upstream("model", err)
	}
	return resp, nil
}

// HTTPModelClient is a generic JSON-over-HTTP ModelClient. It posts the
// payload as-is and returns the raw response body.
type HTTPModelClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewHTTPModelClient(baseURL, apiKey string, timeout time.Duration) *HTTPModelClient {
	return &HTTPModelClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *HTTPModelClient) Complete(ctx context.Context, payload any) (json.RawMessage, error) {
	return c.post(ctx, "/chat/completions", payload)
}

func (c *HTTPModelClient) Embed(ctx context.Context, payload any) (json.RawMessage, error) {
	return c.post(ctx, "/embeddings", payload)
}

func (c *HTTPModelClient) GenerateImage(ctx context.Context, payload any) (json.RawMessage, error) {
	return c.post(ctx, "/images/generations", payload)
}

func (c *HTTPModelClient) post(ctx context.Context, path string, payload any) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call upstream: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read upstream response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("upstream returned status %d", resp.StatusCode)
	}

	return respBody, nil
}
