package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// AzureClient implements Client and ChatClient over the Azure OpenAI Chat
// Completions API. Azure addresses a deployment name in the URL path with an
// api-version query parameter and authenticates with an api-key header; the
// response does not echo a model field, so ModelUsed falls back to the
// deployment name.
type AzureClient struct {
	endpoint   string
	apiVersion string
	keyEnv     string
	deployment string
	httpClient *http.Client
}

// AzureOption configures the Azure client.
type AzureOption func(*AzureClient)

// WithDeployment sets the default deployment name.
func WithDeployment(name string) AzureOption {
	return func(c *AzureClient) { c.deployment = name }
}

// WithAPIVersion sets the api-version query parameter.
func WithAPIVersion(v string) AzureOption {
	return func(c *AzureClient) { c.apiVersion = v }
}

// WithAzureTimeout bounds each completion call.
func WithAzureTimeout(d time.Duration) AzureOption {
	return func(c *AzureClient) { c.httpClient.Timeout = d }
}

// NewAzureClient creates a new Azure OpenAI backend. keyEnv names the
// environment variable holding the API key.
func NewAzureClient(endpoint, keyEnv string, opts ...AzureOption) *AzureClient {
	c := &AzureClient{
		endpoint:   strings.TrimRight(endpoint, "/"),
		apiVersion: "2024-02-15-preview",
		keyEnv:     keyEnv,
		deployment: "gpt-4o",
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
// A model override selects a different deployment.
func (c *AzureClient) Generate(ctx context.Context, p GenerateParams) (*Result, error) {
	deployment := p.Model
	if strings.TrimSpace(deployment) == "" {
		deployment = c.deployment
	}

	payload := chatPayload{
		Messages:    buildMessages(p),
		Temperature: p.Temperature,
		MaxTokens:   p.MaxOutputTokens,
	}
	return c.doRequest(ctx, payload, deployment)
}

// Chat sends a prebuilt message list using the client's default deployment.
func (c *AzureClient) Chat(ctx context.Context, messages []Message) (*Result, error) {
	payload := chatPayload{
		Messages:    messages,
		Temperature: 0.2,
		MaxTokens:   4096,
	}
	return c.doRequest(ctx, payload, c.deployment)
}

func (c *AzureClient) doRequest(ctx context.Context, payload chatPayload, deployment string) (*Result, error) {
	apiKey := os.Getenv(c.keyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("azure: API key env var %s is not set", c.keyEnv)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		c.endpoint, url.PathEscape(deployment), url.QueryEscape(c.apiVersion))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("azure: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("azure: %w", &apiError{StatusCode: resp.StatusCode, Body: string(respBody)})
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if chatResp.Error != nil {
		return nil, fmt.Errorf("azure: api error: %s", chatResp.Error.Message)
	}
	if len(chatResp.Choices) == 0 {
		return nil, fmt.Errorf("azure: no choices in response")
	}

	modelUsed := chatResp.Model
	if modelUsed == "" {
		modelUsed = deployment
	}
	return &Result{
		ModelUsed: modelUsed,
		Content:   assistantText(chatResp.Choices[0].Message.Content),
	}, nil
}
