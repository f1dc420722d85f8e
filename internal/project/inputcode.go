package project

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// CombineInputCode concatenates the referenced files under inputCodeDir, each
// prefixed with a one-line marker carrying its 1-based index and absolute
// path. Missing or unreadable files are skipped so stale references do not
// fail the request; indices count only the files actually included.
func CombineInputCode(inputCodeDir string, relPaths []string) string {
	if len(relPaths) == 0 {
		return ""
	}

	var sb strings.Builder
	i := 1
	for _, rel := range relPaths {
		p := filepath.Join(inputCodeDir, filepath.FromSlash(rel))
		info, err := os.Stat(p)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		content, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			abs = p
		}
		fmt.Fprintf(&sb, "//Reference Code File %d - \"%s\"\n", i, abs)
		sb.Write(content)
		sb.WriteString("\n")
		i++
	}
	return sb.String()
}
