// Package artifact persists parsed model output to disk with
// collision-safe filenames.
package artifact

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// maxConflictAttempts bounds the collision-rename loop.
const maxConflictAttempts = 10000

// Save writes content under baseDir[/subdir]/filename, creating directories
// as needed. When the target name is taken, " (n)" is appended before the
// extension, n incrementing from 1, until a free name is found. The write is
// create-only, so a race against an external writer fails instead of
// overwriting. Returns the absolute path actually written.
func Save(baseDir, subdir, filename, content string) (string, error) {
	dir := baseDir
	if strings.TrimSpace(subdir) != "" {
		dir = filepath.Join(baseDir, subdir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	for n := 0; n < maxConflictAttempts; n++ {
		target := filepath.Join(dir, conflictName(filename, n))
		f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("create %s: %w", target, err)
		}

		_, werr := f.WriteString(content)
		cerr := f.Close()
		if werr != nil {
			return "", fmt.Errorf("write %s: %w", target, werr)
		}
		if cerr != nil {
			return "", fmt.Errorf("close %s: %w", target, cerr)
		}
		return filepath.Abs(target)
	}
	return "", fmt.Errorf("no free name for %s after %d attempts", filename, maxConflictAttempts)
}

// conflictName returns filename for n == 0, otherwise "base (n).ext".
func conflictName(filename string, n int) string {
	if n == 0 {
		return filename
	}
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filename, ext)
	if base == "" {
		// Dotfile such as ".env": treat the whole name as the base.
		base, ext = filename, ""
	}
	return fmt.Sprintf("%s (%d)%s", base, n, ext)
}
