package model

import "time"

// Job status constants
const (
	StatusOK          = "OK"
	StatusNoCodeFound = "NO_CODE_FOUND"
	StatusFailed      = "FAILED"
)

// Job kind constants
const (
	JobGenerate = "generate"
	JobChat     = "chat"
)

// JobRecord is the persisted ledger entry for one generation or chat job.
type JobRecord struct {
	ID         string   `json:"id"`
	Kind       string   `json:"kind"`
	Provider   string   `json:"provider"`
	ModelUsed  string   `json:"model_used"`
	Status     string   `json:"status"`
	ErrorCode  *string  `json:"error_code,omitempty"`
	SavedPaths []string `json:"saved_paths"`
	Message    string   `json:"message"`
	CreatedAt  string   `json:"created_at"`
}

// NewJobRecord creates a JobRecord stamped with the current time.
func NewJobRecord(id, kind, provider string) JobRecord {
	return JobRecord{
		ID:        id,
		Kind:      kind,
		Provider:  provider,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
}

// JobFilter holds query parameters for listing job records.
type JobFilter struct {
	Status []string
	Kind   []string
	Limit  int
}
