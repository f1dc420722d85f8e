package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/yangwenmai/codeforge/internal/engine"
	"github.com/yangwenmai/codeforge/internal/model"
)

// ---------------------------------------------------------------------------
// POST /api/generate-code
// ---------------------------------------------------------------------------

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req engine.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	resp := s.generator.Process(r.Context(), req)
	writeJSON(w, generateHTTPStatus(resp), resp)
}

// generateHTTPStatus maps a pipeline result to an HTTP status. The body is
// always the full structured result regardless of the status code.
func generateHTTPStatus(resp engine.GenerateResponse) int {
	switch resp.Status {
	case model.StatusOK:
		return http.StatusOK
	case model.StatusNoCodeFound:
		return http.StatusUnprocessableEntity
	}
	if resp.Error != nil {
		switch *resp.Error {
		case model.CodeBadRequest:
			return http.StatusBadRequest
		case model.CodeProviderError:
			return http.StatusBadGateway
		}
	}
	return http.StatusInternalServerError
}

// ---------------------------------------------------------------------------
// POST /api/chat-and-save
// ---------------------------------------------------------------------------

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req engine.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	resp := s.chat.Process(r.Context(), req)
	writeJSON(w, chatHTTPStatus(resp), resp)
}

func chatHTTPStatus(resp engine.ChatResponse) int {
	if resp.Status == model.StatusOK {
		return http.StatusOK
	}
	if resp.Error != nil {
		switch *resp.Error {
		case model.CodeBadRequest:
			return http.StatusBadRequest
		case model.CodeProviderError:
			return http.StatusBadGateway
		}
	}
	return http.StatusInternalServerError
}

// ---------------------------------------------------------------------------
// GET /api/files?project={name}
// ---------------------------------------------------------------------------

type fileEntry struct {
	Path       string `json:"path"`
	Size       int64  `json:"size"`
	ModifiedAt string `json:"modifiedAt"`
}

// handleListFiles lists the files under a project's directory tree, paths
// relative to the project root.
func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("project")
	if name == "" {
		writeError(w, http.StatusBadRequest, "project is required")
		return
	}
	if name != filepath.Base(name) || name == "." || name == ".." {
		writeError(w, http.StatusBadRequest, "invalid project name")
		return
	}

	root := filepath.Join(s.cfg.FilesBaseDir, name)
	if _, err := os.Stat(root); errors.Is(err, fs.ErrNotExist) {
		writeError(w, http.StatusNotFound, "project not found")
		return
	}

	entries := []fileEntry{}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		entries = append(entries, fileEntry{
			Path:       filepath.ToSlash(rel),
			Size:       info.Size(),
			ModifiedAt: info.ModTime().UTC().Format("2006-01-02T15:04:05Z"),
		})
		return nil
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list files")
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

// ---------------------------------------------------------------------------
// GET /api/jobs
// ---------------------------------------------------------------------------

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	if s.jobs == nil {
		writeError(w, http.StatusServiceUnavailable, "job ledger disabled")
		return
	}

	filter := model.JobFilter{
		Status: splitComma(r.URL.Query().Get("status")),
		Kind:   splitComma(r.URL.Query().Get("kind")),
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		filter.Limit = n
	}

	jobs, err := s.jobs.ListJobs(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list jobs")
		return
	}
	if jobs == nil {
		jobs = []model.JobRecord{}
	}
	writeJSON(w, http.StatusOK, jobs)
}

// ---------------------------------------------------------------------------
// GET /api/jobs/{id}
// ---------------------------------------------------------------------------

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	if s.jobs == nil {
		writeError(w, http.StatusServiceUnavailable, "job ledger disabled")
		return
	}

	id := r.PathValue("id")
	job, err := s.jobs.GetJob(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get job")
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// ---------------------------------------------------------------------------
// GET /health
// ---------------------------------------------------------------------------

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
