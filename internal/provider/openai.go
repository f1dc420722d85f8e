package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// OpenAIClient implements Client and ChatClient over the OpenAI Chat
// Completions API. It also works with any OpenAI-compatible service by
// setting a custom base URL. The API key is read at call time from the
// configured env var so a missing credential fails the call, not startup.
type OpenAIClient struct {
	keyEnv     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// OpenAIOption configures the OpenAI client.
type OpenAIOption func(*OpenAIClient)

// WithModel sets the default model name (default: gpt-4o-mini).
func WithModel(model string) OpenAIOption {
	return func(c *OpenAIClient) { c.model = model }
}

// WithBaseURL overrides the API endpoint (default: https://api.openai.com/v1).
func WithBaseURL(url string) OpenAIOption {
	return func(c *OpenAIClient) { c.baseURL = strings.TrimRight(url, "/") }
}

// WithTimeout bounds each completion call.
func WithTimeout(d time.Duration) OpenAIOption {
	return func(c *OpenAIClient) { c.httpClient.Timeout = d }
}

// NewOpenAIClient creates a new OpenAI backend. keyEnv names the environment
// variable holding the API key.
func NewOpenAIClient(keyEnv string, opts ...OpenAIOption) *OpenAIClient {
	c := &OpenAIClient{
		keyEnv:  keyEnv,
		baseURL: "https://api.openai.com/v1",
		model:   "gpt-4o-mini",
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Generate sends one normalized completion request and returns the response.
func (c *OpenAIClient) Generate(ctx context.Context, p GenerateParams) (*Result, error) {
	model := p.Model
	if strings.TrimSpace(model) == "" {
		model = c.model
	}

	payload := chatPayload{
		Model:       model,
		Messages:    buildMessages(p),
		Temperature: p.Temperature,
		MaxTokens:   p.MaxOutputTokens,
	}
	return c.doRequest(ctx, payload, model)
}

// Chat sends a prebuilt message list using the client's default model.
func (c *OpenAIClient) Chat(ctx context.Context, messages []Message) (*Result, error) {
	payload := chatPayload{
		Model:       c.model,
		Messages:    messages,
		Temperature: 0.2,
		MaxTokens:   4096,
	}
	return c.doRequest(ctx, payload, c.model)
}

func (c *OpenAIClient) doRequest(ctx context.Context, payload chatPayload, resolvedModel string) (*Result, error) {
	apiKey := os.Getenv(c.keyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("openai: API key env var %s is not set", c.keyEnv)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openai: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openai: %w", &apiError{StatusCode: resp.StatusCode, Body: string(respBody)})
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if chatResp.Error != nil {
		return nil, fmt.Errorf("openai: api error: %s", chatResp.Error.Message)
	}
	if len(chatResp.Choices) == 0 {
		return nil, fmt.Errorf("openai: no choices in response")
	}

	modelUsed := chatResp.Model
	if modelUsed == "" {
		modelUsed = resolvedModel
	}
	return &Result{
		ModelUsed: modelUsed,
		Content:   assistantText(chatResp.Choices[0].Message.Content),
	}, nil
}
