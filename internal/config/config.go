// Package config provides centralized configuration for the codeforge server.
// All configurable values are loaded from environment variables with sensible defaults.
package config

import (
	"bufio"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all server configuration values.
type Config struct {
	// Port is the HTTP server listen port.
	Port string

	// DBPath is the path to the SQLite job-ledger database file.
	DBPath string

	// OutputDir is the root directory for single-turn generated files.
	OutputDir string

	// FilesBaseDir is the root directory under which per-project trees live.
	FilesBaseDir string

	// ProviderDefault selects the backend used when a request names none:
	// "openai" or "azure".
	ProviderDefault string

	// ChatProvider selects the backend used by the chat-and-save pipeline.
	ChatProvider string

	// SystemPrompt overrides the default system message for generation requests.
	SystemPrompt string

	// ContextBrief is the lead-in text for the multi-part chat user message.
	ContextBrief string

	// ParsingMode is the default response parsing mode: "code", "text" or "auto".
	ParsingMode string

	// CodeFenceRequired controls whether mode "code" fails on unfenced responses.
	CodeFenceRequired bool

	// OpenAI holds settings for the OpenAI-style backend.
	OpenAI OpenAI

	// Azure holds settings for the Azure-deployment-style backend.
	Azure Azure

	// DocTimeout is the timeout for reference-document fetches.
	DocTimeout time.Duration

	// MaxDocTextLength is the maximum number of runes kept from a fetched document.
	MaxDocTextLength int

	// CORSOrigin is the allowed CORS origin. Defaults to "*".
	CORSOrigin string
}

// OpenAI holds OpenAI backend settings. The API key itself is read at call
// time from the env var named by KeyEnv.
type OpenAI struct {
	BaseURL string
	KeyEnv  string
	Model   string
	Timeout time.Duration
}

// Azure holds Azure OpenAI backend settings. Azure addresses a deployment
// name instead of a model and requires an api-version query parameter.
type Azure struct {
	Endpoint   string
	APIVersion string
	KeyEnv     string
	Deployment string
	Timeout    time.Duration
}

// Load reads configuration from environment variables, applying defaults.
// A .env.local file in the working directory is read first; real environment
// variables take precedence over file entries.
func Load() Config {
	loadEnvFile(".env.local")

	return Config{
		Port:              envOr("PORT", "8080"),
		DBPath:            envOr("DB_PATH", "codeforge.db"),
		OutputDir:         envOr("OUTPUT_DIR", "generated"),
		FilesBaseDir:      envOr("FILES_BASE_DIR", "projects"),
		ProviderDefault:   envOr("PROVIDER_DEFAULT", "openai"),
		ChatProvider:      envOr("CHAT_PROVIDER", "azure"),
		SystemPrompt:      os.Getenv("SYSTEM_PROMPT"),
		ContextBrief:      envOr("CONTEXT_BRIEF", "Context: You will receive (1) prior conversation, (2) referenced input code, and (3) a new prompt. Continue helpfully."),
		ParsingMode:       envOr("PARSING_MODE", "auto"),
		CodeFenceRequired: envBool("CODE_FENCE_REQUIRED", true),
		OpenAI: OpenAI{
			BaseURL: envOr("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			KeyEnv:  envOr("OPENAI_KEY_ENV", "OPENAI_API_KEY"),
			Model:   envOr("OPENAI_MODEL", "gpt-4o-mini"),
			Timeout: envDuration("OPENAI_TIMEOUT", 60*time.Second),
		},
		Azure: Azure{
			Endpoint:   os.Getenv("AZURE_OPENAI_ENDPOINT"),
			APIVersion: envOr("AZURE_API_VERSION", "2024-02-15-preview"),
			KeyEnv:     envOr("AZURE_KEY_ENV", "AZURE_OPENAI_API_KEY"),
			Deployment: envOr("AZURE_DEPLOYMENT", "gpt-4o"),
			Timeout:    envDuration("AZURE_TIMEOUT", 60*time.Second),
		},
		DocTimeout:       envDuration("DOC_TIMEOUT", 30*time.Second),
		MaxDocTextLength: envInt("MAX_DOC_TEXT_LENGTH", 15000),
		CORSOrigin:       envOr("CORS_ORIGIN", "*"),
	}
}

// UseStubs returns true when no API key is configured for the default provider.
func (c Config) UseStubs() bool {
	switch c.ProviderDefault {
	case "azure":
		return os.Getenv(c.Azure.KeyEnv) == ""
	default:
		return os.Getenv(c.OpenAI.KeyEnv) == ""
	}
}

// loadEnvFile reads KEY=value lines from path into the process environment.
// Comments and malformed lines are skipped; already-set variables are kept.
func loadEnvFile(path string) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		value = strings.Trim(value, `"'`)
		if key == "" {
			continue
		}
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		os.Setenv(key, value)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
