package project

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLayout_CreatesTree(t *testing.T) {
	base := t.TempDir()

	d, err := Layout(base, "demo")
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}

	for _, dir := range []string{d.Images, d.InputCode, d.Conversation, d.Generated} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Errorf("Stat(%s): %v", dir, err)
			continue
		}
		if !info.IsDir() {
			t.Errorf("%s is not a directory", dir)
		}
	}
	if d.Root != filepath.Join(base, "demo") {
		t.Errorf("Root = %q, want %q", d.Root, filepath.Join(base, "demo"))
	}
}

func TestLayout_Idempotent(t *testing.T) {
	base := t.TempDir()
	if _, err := Layout(base, "demo"); err != nil {
		t.Fatalf("first Layout: %v", err)
	}
	if _, err := Layout(base, "demo"); err != nil {
		t.Fatalf("second Layout: %v", err)
	}
}

func TestConversation_AppendAndReload(t *testing.T) {
	dir := t.TempDir()

	if got := LoadConversation(dir); len(got) != 0 {
		t.Fatalf("fresh history len = %d, want 0", len(got))
	}

	if err := AppendConversation(dir, "write a parser", "here you go"); err != nil {
		t.Fatalf("AppendConversation: %v", err)
	}

	turns := LoadConversation(dir)
	if len(turns) != 2 {
		t.Fatalf("len(turns) = %d, want 2", len(turns))
	}
	if turns[0].Role != "user" || turns[0].Content != "write a parser" {
		t.Errorf("turns[0] = %+v, want user/write a parser", turns[0])
	}
	if turns[1].Role != "assistant" || turns[1].Content != "here you go" {
		t.Errorf("turns[1] = %+v, want assistant/here you go", turns[1])
	}
	if turns[0].Timestamp == "" || turns[1].Timestamp == "" {
		t.Error("turns missing timestamps")
	}
}

func TestConversation_OrderPreservedAcrossAppends(t *testing.T) {
	dir := t.TempDir()

	if err := AppendConversation(dir, "one", "1"); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := AppendConversation(dir, "two", "2"); err != nil {
		t.Fatalf("append: %v", err)
	}

	turns := LoadConversation(dir)
	if len(turns) != 4 {
		t.Fatalf("len(turns) = %d, want 4", len(turns))
	}
	want := []string{"one", "1", "two", "2"}
	for i, w := range want {
		if turns[i].Content != w {
			t.Errorf("turns[%d].Content = %q, want %q", i, turns[i].Content, w)
		}
	}
}

func TestConversation_CorruptFileYieldsEmpty(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "messages.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := LoadConversation(dir); len(got) != 0 {
		t.Errorf("len = %d for corrupt file, want 0", len(got))
	}
}

func TestConversation_PrettyPrinted(t *testing.T) {
	dir := t.TempDir()
	if err := AppendConversation(dir, "p", "a"); err != nil {
		t.Fatalf("append: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "messages.json"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(data), "\n  ") {
		t.Error("messages.json is not indented")
	}
}

func TestCombineInputCode(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "src"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "src", "util.go"), []byte("package util"), 0o644); err != nil {
		t.Fatal(err)
	}

	combined := CombineInputCode(dir, []string{"main.go", "missing.go", "src/util.go"})

	if !strings.Contains(combined, "//Reference Code File 1 - ") {
		t.Error("missing marker for file 1")
	}
	if !strings.Contains(combined, "package main") {
		t.Error("missing content of main.go")
	}
	// Missing file is skipped and does not consume an index.
	if !strings.Contains(combined, "//Reference Code File 2 - ") {
		t.Error("missing marker for file 2")
	}
	if strings.Contains(combined, "//Reference Code File 3 - ") {
		t.Error("unexpected third marker; missing files must not consume indices")
	}
	if !strings.Contains(combined, "package util") {
		t.Error("missing content of src/util.go")
	}
}

func TestCombineInputCode_Empty(t *testing.T) {
	if got := CombineInputCode(t.TempDir(), nil); got != "" {
		t.Errorf("CombineInputCode(nil) = %q, want empty", got)
	}
	if got := CombineInputCode(t.TempDir(), []string{"nope.go"}); got != "" {
		t.Errorf("all-missing refs = %q, want empty", got)
	}
}

// fakeFetcher returns canned text per URL.
type fakeFetcher struct {
	texts map[string]string
}

func (f *fakeFetcher) FetchText(_ context.Context, url string) (string, error) {
	if text, ok := f.texts[url]; ok {
		return text, nil
	}
	return "", errors.New("fetch failed")
}

func TestCombineDocs(t *testing.T) {
	fetcher := &fakeFetcher{texts: map[string]string{
		"https://example.com/a": "article A",
		"https://example.com/c": "article C",
	}}

	combined := CombineDocs(context.Background(), fetcher, []string{
		"https://example.com/a",
		"https://example.com/broken",
		"https://example.com/c",
	})

	if !strings.Contains(combined, "//Reference Document 1 - \"https://example.com/a\"") {
		t.Error("missing marker for doc 1")
	}
	if !strings.Contains(combined, "article A") || !strings.Contains(combined, "article C") {
		t.Error("missing fetched text")
	}
	if !strings.Contains(combined, "//Reference Document 2 - \"https://example.com/c\"") {
		t.Error("failed fetch must not consume an index")
	}
}

func TestCombineDocs_NilFetcher(t *testing.T) {
	if got := CombineDocs(context.Background(), nil, []string{"https://example.com"}); got != "" {
		t.Errorf("CombineDocs with nil fetcher = %q, want empty", got)
	}
}

func TestNormalizeDocText(t *testing.T) {
	in := "  hello \t world\n\n\n\nnext  "
	want := "hello world\n\nnext"
	if got := normalizeDocText(in); got != want {
		t.Errorf("normalizeDocText = %q, want %q", got, want)
	}
}
