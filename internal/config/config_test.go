package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env.local")

	content := `# comment line
FOO_TEST_KEY=hello
BAR_TEST_KEY="quoted value"
BAZ_TEST_KEY='single quoted'

EMPTY_LINE_ABOVE=works
NO_VALUE_LINE
`
	if err := os.WriteFile(envFile, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	for _, k := range []string{"FOO_TEST_KEY", "BAR_TEST_KEY", "BAZ_TEST_KEY", "EMPTY_LINE_ABOVE"} {
		os.Unsetenv(k)
	}

	loadEnvFile(envFile)
	t.Cleanup(func() {
		for _, k := range []string{"FOO_TEST_KEY", "BAR_TEST_KEY", "BAZ_TEST_KEY", "EMPTY_LINE_ABOVE"} {
			os.Unsetenv(k)
		}
	})

	tests := []struct {
		key  string
		want string
	}{
		{"FOO_TEST_KEY", "hello"},
		{"BAR_TEST_KEY", "quoted value"},
		{"BAZ_TEST_KEY", "single quoted"},
		{"EMPTY_LINE_ABOVE", "works"},
	}
	for _, tt := range tests {
		if got := os.Getenv(tt.key); got != tt.want {
			t.Errorf("os.Getenv(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestLoadEnvFile_RealEnvTakesPrecedence(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env.local")

	if err := os.WriteFile(envFile, []byte("PRECEDENCE_TEST=from-file\n"), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("PRECEDENCE_TEST", "from-env")
	loadEnvFile(envFile)

	if got := os.Getenv("PRECEDENCE_TEST"); got != "from-env" {
		t.Errorf("PRECEDENCE_TEST = %q, want %q", got, "from-env")
	}
}

func TestLoadEnvFile_MissingFile(t *testing.T) {
	// Must not panic or alter the environment.
	loadEnvFile("/nonexistent/path/.env.local")
}

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{
		"PORT", "DB_PATH", "OUTPUT_DIR", "FILES_BASE_DIR", "PROVIDER_DEFAULT",
		"CHAT_PROVIDER", "PARSING_MODE", "CODE_FENCE_REQUIRED",
		"OPENAI_BASE_URL", "OPENAI_MODEL", "OPENAI_TIMEOUT",
		"AZURE_API_VERSION", "AZURE_DEPLOYMENT",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want %q", cfg.Port, "8080")
	}
	if cfg.ProviderDefault != "openai" {
		t.Errorf("ProviderDefault = %q, want %q", cfg.ProviderDefault, "openai")
	}
	if cfg.ChatProvider != "azure" {
		t.Errorf("ChatProvider = %q, want %q", cfg.ChatProvider, "azure")
	}
	if cfg.ParsingMode != "auto" {
		t.Errorf("ParsingMode = %q, want %q", cfg.ParsingMode, "auto")
	}
	if !cfg.CodeFenceRequired {
		t.Error("CodeFenceRequired = false, want true")
	}
	if cfg.OpenAI.BaseURL != "https://api.openai.com/v1" {
		t.Errorf("OpenAI.BaseURL = %q, want default", cfg.OpenAI.BaseURL)
	}
	if cfg.OpenAI.KeyEnv != "OPENAI_API_KEY" {
		t.Errorf("OpenAI.KeyEnv = %q, want %q", cfg.OpenAI.KeyEnv, "OPENAI_API_KEY")
	}
	if cfg.OpenAI.Timeout != 60*time.Second {
		t.Errorf("OpenAI.Timeout = %v, want 60s", cfg.OpenAI.Timeout)
	}
	if cfg.Azure.APIVersion != "2024-02-15-preview" {
		t.Errorf("Azure.APIVersion = %q, want default", cfg.Azure.APIVersion)
	}
	if cfg.Azure.KeyEnv != "AZURE_OPENAI_API_KEY" {
		t.Errorf("Azure.KeyEnv = %q, want %q", cfg.Azure.KeyEnv, "AZURE_OPENAI_API_KEY")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("PROVIDER_DEFAULT", "azure")
	t.Setenv("CODE_FENCE_REQUIRED", "false")
	t.Setenv("OPENAI_TIMEOUT", "15s")
	t.Setenv("OPENAI_KEY_ENV", "MY_CUSTOM_KEY")

	cfg := Load()

	if cfg.Port != "9090" {
		t.Errorf("Port = %q, want %q", cfg.Port, "9090")
	}
	if cfg.ProviderDefault != "azure" {
		t.Errorf("ProviderDefault = %q, want %q", cfg.ProviderDefault, "azure")
	}
	if cfg.CodeFenceRequired {
		t.Error("CodeFenceRequired = true, want false")
	}
	if cfg.OpenAI.Timeout != 15*time.Second {
		t.Errorf("OpenAI.Timeout = %v, want 15s", cfg.OpenAI.Timeout)
	}
	if cfg.OpenAI.KeyEnv != "MY_CUSTOM_KEY" {
		t.Errorf("OpenAI.KeyEnv = %q, want %q", cfg.OpenAI.KeyEnv, "MY_CUSTOM_KEY")
	}
}

func TestUseStubs(t *testing.T) {
	t.Setenv("PROVIDER_DEFAULT", "openai")
	t.Setenv("OPENAI_API_KEY", "")
	os.Unsetenv("OPENAI_API_KEY")

	cfg := Load()
	if !cfg.UseStubs() {
		t.Error("UseStubs() = false with no key set, want true")
	}

	t.Setenv("OPENAI_API_KEY", "sk-test")
	if cfg.UseStubs() {
		t.Error("UseStubs() = true with key set, want false")
	}
}
