package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/yangwenmai/codeforge/internal/model"
)

// conversationFile is the history document inside a project's conversation dir.
const conversationFile = "messages.json"

// LoadConversation returns the project's conversation history in insertion
// order. A missing or unparsable file yields an empty history, not an error.
func LoadConversation(conversationDir string) []model.ConversationTurn {
	data, err := os.ReadFile(filepath.Join(conversationDir, conversationFile))
	if err != nil {
		return []model.ConversationTurn{}
	}
	var turns []model.ConversationTurn
	if err := json.Unmarshal(data, &turns); err != nil {
		return []model.ConversationTurn{}
	}
	return turns
}

// AppendConversation loads the existing history, appends a user turn followed
// by an assistant turn, and rewrites the whole document pretty-printed.
// Not safe for concurrent writers; one in-flight request per project assumed.
func AppendConversation(conversationDir, userPrompt, assistantText string) error {
	turns := LoadConversation(conversationDir)
	now := time.Now().UTC().Format(time.RFC3339)
	turns = append(turns,
		model.ConversationTurn{Role: "user", Content: userPrompt, Timestamp: now},
		model.ConversationTurn{Role: "assistant", Content: assistantText, Timestamp: now},
	)

	out, err := json.MarshalIndent(turns, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal conversation: %w", err)
	}
	if err := os.MkdirAll(conversationDir, 0o755); err != nil {
		return fmt.Errorf("create conversation dir: %w", err)
	}
	path := filepath.Join(conversationDir, conversationFile)
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
