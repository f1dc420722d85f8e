// Package project manages the per-project directory tree and the context
// sources assembled into chat prompts: conversation history, referenced input
// code, and fetched reference documents.
package project

import (
	"fmt"
	"os"
	"path/filepath"
)

// Dirs holds the resolved per-project directory paths.
type Dirs struct {
	Root         string
	Images       string
	InputCode    string
	Conversation string
	Generated    string
}

// Layout resolves and lazily creates the directory tree for a project.
func Layout(baseDir, projectName string) (Dirs, error) {
	root := filepath.Join(baseDir, projectName)
	d := Dirs{
		Root:         root,
		Images:       filepath.Join(root, "images"),
		InputCode:    filepath.Join(root, "inputcode"),
		Conversation: filepath.Join(root, "conversation"),
		Generated:    filepath.Join(root, "generatedcode"),
	}
	for _, dir := range []string{d.Images, d.InputCode, d.Conversation, d.Generated} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return Dirs{}, fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return d, nil
}
