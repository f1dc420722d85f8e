package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/yangwenmai/codeforge/internal/model"
)

// Verify at compile time that Store implements all interfaces.
var (
	_ JobReader = (*Store)(nil)
	_ JobWriter = (*Store)(nil)
)

// Store provides data access to the SQLite database.
type Store struct {
	db *sql.DB
}

// New creates a new Store and initialises the schema.
func New(db *sql.DB) (*Store, error) {
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// currentSchemaVersion is bumped whenever the schema changes.
// Add a new migration function in the migrations slice below.
const currentSchemaVersion = 1

func (s *Store) migrate() error {
	// Ensure the schema_version table exists.
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`); err != nil {
		return fmt.Errorf("create schema_version table: %w", err)
	}

	var version int
	err := s.db.QueryRow(`SELECT version FROM schema_version LIMIT 1`).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		// Fresh database: initialize to version 0.
		if _, err := s.db.Exec(`INSERT INTO schema_version (version) VALUES (0)`); err != nil {
			return fmt.Errorf("init schema version: %w", err)
		}
		version = 0
	} else if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	// migrations is an ordered list of migration functions.
	// Index 0 = migration from v0 to v1, etc.
	migrations := []func() error{
		s.migrateV1, // v0 → v1: initial schema
	}

	for i := version; i < len(migrations); i++ {
		if err := migrations[i](); err != nil {
			return fmt.Errorf("migration v%d→v%d: %w", i, i+1, err)
		}
		if _, err := s.db.Exec(`UPDATE schema_version SET version = ?`, i+1); err != nil {
			return fmt.Errorf("update schema version to %d: %w", i+1, err)
		}
	}

	return nil
}

// migrateV1 creates the initial schema (v0 → v1).
func (s *Store) migrateV1() error {
	schema := `
	CREATE TABLE IF NOT EXISTS jobs (
		id          TEXT PRIMARY KEY,
		kind        TEXT NOT NULL,
		provider    TEXT NOT NULL,
		model_used  TEXT,
		status      TEXT NOT NULL,
		error_code  TEXT,
		saved_paths TEXT NOT NULL DEFAULT '[]',
		message     TEXT,
		created_at  TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs(status, created_at);
	CREATE INDEX IF NOT EXISTS idx_jobs_kind ON jobs(kind, created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// CreateJob inserts one job ledger entry.
func (s *Store) CreateJob(ctx context.Context, rec model.JobRecord) error {
	paths, err := json.Marshal(rec.SavedPaths)
	if err != nil {
		return fmt.Errorf("marshal saved paths: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO jobs (id, kind, provider, model_used, status, error_code, saved_paths, message, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Kind, rec.Provider, rec.ModelUsed, rec.Status, rec.ErrorCode,
		string(paths), rec.Message, rec.CreatedAt,
	)
	return err
}

// GetJob returns one job by id.
func (s *Store) GetJob(ctx context.Context, id string) (*model.JobRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, kind, provider, model_used, status, error_code, saved_paths, message, created_at
		 FROM jobs WHERE id = ?`, id)
	return scanJob(row)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// ListJobs returns jobs matching the filter, newest first.
func (s *Store) ListJobs(ctx context.Context, f model.JobFilter) ([]model.JobRecord, error) {
	query := `SELECT id, kind, provider, model_used, status, error_code, saved_paths, message, created_at FROM jobs`
	var conditions []string
	var args []interface{}

	if len(f.Status) > 0 {
		placeholders := make([]string, len(f.Status))
		for i, st := range f.Status {
			placeholders[i] = "?"
			args = append(args, st)
		}
		conditions = append(conditions, "status IN ("+strings.Join(placeholders, ",")+")")
	}
	if len(f.Kind) > 0 {
		placeholders := make([]string, len(f.Kind))
		for i, k := range f.Kind {
			placeholders[i] = "?"
			args = append(args, k)
		}
		conditions = append(conditions, "kind IN ("+strings.Join(placeholders, ",")+")")
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []model.JobRecord
	for rows.Next() {
		rec, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *rec)
	}
	return jobs, rows.Err()
}

func scanJob(row rowScanner) (*model.JobRecord, error) {
	var rec model.JobRecord
	var modelUsed, message sql.NullString
	var paths string
	if err := row.Scan(&rec.ID, &rec.Kind, &rec.Provider, &modelUsed, &rec.Status,
		&rec.ErrorCode, &paths, &message, &rec.CreatedAt); err != nil {
		return nil, err
	}
	rec.ModelUsed = modelUsed.String
	rec.Message = message.String
	if err := json.Unmarshal([]byte(paths), &rec.SavedPaths); err != nil {
		return nil, fmt.Errorf("unmarshal saved paths for %s: %w", rec.ID, err)
	}
	if rec.SavedPaths == nil {
		rec.SavedPaths = []string{}
	}
	return &rec, nil
}
