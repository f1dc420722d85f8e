package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestAzureGenerate_WireFormat(t *testing.T) {
	t.Setenv("TEST_AZURE_KEY", "az-mock")

	var gotPath, gotQuery, gotKey string
	var gotPayload map[string]json.RawMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query().Get("api-version")
		gotKey = r.Header.Get("api-key")
		json.NewDecoder(r.Body).Decode(&gotPayload)
		w.Write([]byte(`{"choices":[{"message":{"content":"azure says hi"}}]}`))
	}))
	defer srv.Close()

	c := NewAzureClient(srv.URL, "TEST_AZURE_KEY",
		WithDeployment("my-gpt4o"),
		WithAPIVersion("2024-02-15-preview"),
	)
	result, err := c.Generate(context.Background(), GenerateParams{
		UserPrompt:      "hi",
		Temperature:     0.2,
		MaxOutputTokens: 4096,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if gotPath != "/openai/deployments/my-gpt4o/chat/completions" {
		t.Errorf("path = %q, want deployment-scoped chat completions path", gotPath)
	}
	if gotQuery != "2024-02-15-preview" {
		t.Errorf("api-version = %q, want %q", gotQuery, "2024-02-15-preview")
	}
	if gotKey != "az-mock" {
		t.Errorf("api-key header = %q, want %q", gotKey, "az-mock")
	}
	// Azure carries the deployment in the URL, not a model field.
	if _, ok := gotPayload["model"]; ok {
		t.Error("payload contains a model field; Azure must omit it")
	}
	// Azure does not echo a model: ModelUsed falls back to the deployment.
	if result.ModelUsed != "my-gpt4o" {
		t.Errorf("ModelUsed = %q, want deployment fallback", result.ModelUsed)
	}
	if result.Content != "azure says hi" {
		t.Errorf("Content = %q, want %q", result.Content, "azure says hi")
	}
}

func TestAzureGenerate_DeploymentOverride(t *testing.T) {
	t.Setenv("TEST_AZURE_KEY", "az-mock")

	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer srv.Close()

	c := NewAzureClient(srv.URL, "TEST_AZURE_KEY", WithDeployment("default-dep"))
	result, err := c.Generate(context.Background(), GenerateParams{
		Model:      "special-dep",
		UserPrompt: "hi",
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(gotPath, "/deployments/special-dep/") {
		t.Errorf("path = %q, want override deployment", gotPath)
	}
	if result.ModelUsed != "special-dep" {
		t.Errorf("ModelUsed = %q, want override deployment", result.ModelUsed)
	}
}

func TestAzureGenerate_MissingKey(t *testing.T) {
	t.Setenv("UNSET_AZURE_KEY", "")

	c := NewAzureClient("https://example.openai.azure.com", "UNSET_AZURE_KEY")
	_, err := c.Generate(context.Background(), GenerateParams{UserPrompt: "hi"})
	if err == nil {
		t.Fatal("expected error for missing API key")
	}
	if !strings.Contains(err.Error(), "UNSET_AZURE_KEY") {
		t.Errorf("error %q should name the env var", err)
	}
}

func TestAzureChat_SendsMessagesVerbatim(t *testing.T) {
	t.Setenv("TEST_AZURE_KEY", "az-mock")

	var gotPayload struct {
		Messages []struct {
			Role    string          `json:"role"`
			Content json.RawMessage `json:"content"`
		} `json:"messages"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotPayload)
		w.Write([]byte(`{"choices":[{"message":{"content":[{"type":"text","text":"multi"},{"type":"text","text":"part"}]}}]}`))
	}))
	defer srv.Close()

	c := NewAzureClient(srv.URL, "TEST_AZURE_KEY", WithDeployment("dep"))
	messages := []Message{
		{Role: "system", Content: "Act as: reviewer."},
		{Role: "user", Content: "prior question"},
		{Role: "assistant", Content: "prior answer"},
		{Role: "user", Content: []ContentPart{TextPart("current"), ImagePart("data:image/png;base64,AA")}},
	}
	result, err := c.Chat(context.Background(), messages)
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}

	if len(gotPayload.Messages) != 4 {
		t.Fatalf("len(messages) = %d, want 4", len(gotPayload.Messages))
	}
	if gotPayload.Messages[0].Role != "system" {
		t.Errorf("messages[0].Role = %q, want system", gotPayload.Messages[0].Role)
	}
	// Part-typed assistant content is flattened to plain text.
	if result.Content != "multipart" {
		t.Errorf("Content = %q, want flattened parts", result.Content)
	}
}

func TestRegistry_Resolve(t *testing.T) {
	openai := &StubClient{}
	azure := &StubClient{}

	r := NewRegistry("openai")
	r.Register("openai", openai)
	r.Register("azure", azure)

	if got := r.Resolve("openai"); got != Client(openai) {
		t.Error("Resolve(openai) returned wrong client")
	}
	if got := r.Resolve("AZURE"); got != Client(azure) {
		t.Error("Resolve is not case-insensitive")
	}
	if got := r.Resolve(""); got != Client(openai) {
		t.Error("Resolve(\"\") should return the default client")
	}
	if got := r.Resolve("gemini"); got != nil {
		t.Errorf("Resolve(gemini) = %v, want nil for unknown provider", got)
	}
}
