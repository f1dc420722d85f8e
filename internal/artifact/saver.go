package artifact

import (
	"log/slog"
	"strings"

	"github.com/yangwenmai/codeforge/internal/codeparse"
	"github.com/yangwenmai/codeforge/internal/model"
)

// SaveAll extracts every fenced block from assistantText and persists each one
// under dir. A write failure skips that block; the response is still useful
// with the remainder. Zero fences yields an empty result, not an error.
func SaveAll(assistantText, dir string) []model.SavedArtifact {
	artifacts := []model.SavedArtifact{}
	if strings.TrimSpace(assistantText) == "" {
		return artifacts
	}

	for _, block := range codeparse.AllBlocks(assistantText) {
		savedPath, err := Save(dir, "", block.Filename, block.Content)
		if err != nil {
			slog.Warn("skipping artifact", "filename", block.Filename, "error", err)
			continue
		}
		artifacts = append(artifacts, model.SavedArtifact{
			Filename:  block.Filename,
			Language:  block.Language,
			SavedPath: savedPath,
		})
	}
	return artifacts
}
