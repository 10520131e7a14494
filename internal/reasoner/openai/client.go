package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"baucheck/internal/config"
	"baucheck/internal/port"
	"baucheck/internal/reasoner"
)

const apiURL = "https://api.openai.com/v1/chat/completions"

// Client implements port.Reasoner against the OpenAI Chat Completions API.
// It is stateless and performs no retries of its own.
type Client struct {
	apiKey    string
	model     string
	endpoint  string
	maxTokens int
	client    *http.Client
}

// NewClient creates a reasoning client from config. It fails with
// reasoner.ErrAPIKeyMissing when no credential is configured.
func NewClient(cfg *config.ReasonerConfig) (*Client, error) {
	return newClient(cfg, apiURL)
}

// NewClientWithEndpoint creates a client pointing at a custom API endpoint
// (for testing).
func NewClientWithEndpoint(cfg *config.ReasonerConfig, endpoint string) (*Client, error) {
	return newClient(cfg, endpoint)
}

func newClient(cfg *config.ReasonerConfig, endpoint string) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, reasoner.ErrAPIKeyMissing
	}
	model := cfg.Model
	if model == "" {
		model = "gpt-4o"
	}
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 4095
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		apiKey:    cfg.APIKey,
		model:     model,
		endpoint:  endpoint,
		maxTokens: maxTokens,
		client:    &http.Client{Timeout: timeout},
	}, nil
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.model
}

func (c *Client) Invoke(ctx context.Context, system string, parts []port.ContentPart) (string, error) {
	userContent := make([]map[string]interface{}, 0, len(parts))
	for _, part := range parts {
		if part.ImagePNG != nil {
			encoded := base64.StdEncoding.EncodeToString(part.ImagePNG)
			// The format name in the data URI is conventional; the service
			// accepts PNG payloads under an image/jpeg label.
			userContent = append(userContent, map[string]interface{}{
				"type": "image_url",
				"image_url": map[string]interface{}{
					"url": fmt.Sprintf("data:image/jpeg;base64,%s", encoded),
				},
			})
			continue
		}
		userContent = append(userContent, map[string]interface{}{
			"type": "text",
			"text": part.Text,
		})
	}

	reqBody := map[string]interface{}{
		"model": c.model,
		"messages": []map[string]interface{}{
			{"role": "system", "content": system},
			{"role": "user", "content": userContent},
		},
		"max_tokens": c.maxTokens,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", &reasoner.TransportError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &reasoner.TransportError{Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		upErr := &reasoner.UpstreamError{Status: resp.StatusCode, Body: string(respBody)}
		if resp.StatusCode == http.StatusTooManyRequests {
			upErr.RetryAfter = reasoner.ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
		}
		return "", upErr
	}

	return parseResponse(respBody)
}

// apiResponse models the Chat Completions API response.
type apiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

func parseResponse(body []byte) (string, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("unmarshaling response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from reasoning service: no choices")
	}
	if resp.Choices[0].FinishReason == "length" {
		return "", fmt.Errorf("output truncated (finish_reason: length): response exceeded output token limit")
	}
	return resp.Choices[0].Message.Content, nil
}
