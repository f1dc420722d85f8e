// Package provider implements the chat-completion backends. Every backend
// satisfies the same one-method contract so callers never see wire
// differences between OpenAI-style and Azure-deployment-style APIs.
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// GenerateParams is the normalized input to a single completion call.
// Temperature and MaxOutputTokens carry the caller's resolved policy values.
type GenerateParams struct {
	// Model overrides the client's configured model or deployment name.
	Model        string
	SystemPrompt string
	UserPrompt   string
	// ImageURL is an HTTPS URL or data: URI; empty when no image is attached.
	ImageURL        string
	Temperature     float64
	MaxOutputTokens int
}

// Result is the normalized output of a completion call. ModelUsed is the
// provider-reported model, falling back to the resolved input name.
type Result struct {
	ModelUsed string
	Content   string
}

// Client is the single-operation contract all backends implement.
type Client interface {
	Generate(ctx context.Context, p GenerateParams) (*Result, error)
}

// ChatClient accepts a prebuilt message list for multi-turn conversations.
type ChatClient interface {
	Chat(ctx context.Context, messages []Message) (*Result, error)
}

// Message is one chat message. Content is either a plain string or a
// []ContentPart for multimodal payloads.
type Message struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

// ContentPart is one element of a multimodal user message.
type ContentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

// ImageURL wraps an image reference (HTTPS URL or data: URI).
type ImageURL struct {
	URL string `json:"url"`
}

// TextPart builds a text content part.
func TextPart(text string) ContentPart {
	return ContentPart{Type: "text", Text: text}
}

// ImagePart builds an image_url content part.
func ImagePart(url string) ContentPart {
	return ContentPart{Type: "image_url", ImageURL: &ImageURL{URL: url}}
}

// DefaultSystemPrompt is used when no system prompt override is supplied.
const DefaultSystemPrompt = "You are a helpful coding assistant."

// buildMessages assembles the system + user message pair for a generate call.
// An attached image turns the user message into a two-part payload.
func buildMessages(p GenerateParams) []Message {
	system := p.SystemPrompt
	if strings.TrimSpace(system) == "" {
		system = DefaultSystemPrompt
	}

	messages := []Message{{Role: "system", Content: system}}
	if p.ImageURL != "" {
		messages = append(messages, Message{
			Role:    "user",
			Content: []ContentPart{TextPart(p.UserPrompt), ImagePart(p.ImageURL)},
		})
	} else {
		messages = append(messages, Message{Role: "user", Content: p.UserPrompt})
	}
	return messages
}

// chatPayload is the request body common to both backends. Azure omits the
// model field because the deployment name lives in the URL.
type chatPayload struct {
	Model       string    `json:"model,omitempty"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

// chatResponse is the decoded response body. Content is kept raw because
// providers return either a string or a list of typed parts.
type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content json.RawMessage `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// assistantText flattens a raw message content value to plain text.
func assistantText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var parts []ContentPart
	if err := json.Unmarshal(raw, &parts); err == nil {
		var sb strings.Builder
		for _, part := range parts {
			if part.Type == "text" {
				sb.WriteString(part.Text)
			}
		}
		return sb.String()
	}
	return ""
}

// apiError represents a non-2xx response from a backend.
type apiError struct {
	StatusCode int
	Body       string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}
