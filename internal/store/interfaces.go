package store

import (
	"context"

	"github.com/yangwenmai/codeforge/internal/model"
)

// JobReader provides read access to the job ledger.
type JobReader interface {
	GetJob(ctx context.Context, id string) (*model.JobRecord, error)
	ListJobs(ctx context.Context, f model.JobFilter) ([]model.JobRecord, error)
}

// JobWriter provides write access to the job ledger.
type JobWriter interface {
	CreateJob(ctx context.Context, rec model.JobRecord) error
}

// JobRepository combines all job-ledger operations for the API layer.
type JobRepository interface {
	JobReader
	JobWriter
}
