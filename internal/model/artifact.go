package model

// SavedArtifact describes one file persisted from a model response.
type SavedArtifact struct {
	Filename  string `json:"filename"`
	Language  string `json:"language"`
	SavedPath string `json:"savedPath"`
}

// ConversationTurn is one role-tagged message in a project's history.
type ConversationTurn struct {
	Role      string `json:"role"` // "user" | "assistant"
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}
