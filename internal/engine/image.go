package engine

import (
	"encoding/base64"
	"os"
	"strings"

	"github.com/yangwenmai/codeforge/internal/model"
)

// guessImageMime guesses a MIME type from the file extension.
func guessImageMime(path string) string {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".png"):
		return "image/png"
	case strings.HasSuffix(lower, ".jpg"), strings.HasSuffix(lower, ".jpeg"):
		return "image/jpeg"
	case strings.HasSuffix(lower, ".gif"):
		return "image/gif"
	default:
		return "application/octet-stream"
	}
}

// fileDataURL reads a local image file and encodes it as a data: URI.
func fileDataURL(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", model.WrapCoded(model.CodeCodegenError, "read image "+path, err)
	}
	return "data:" + guessImageMime(path) + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// resolveImageURL turns an image reference into a provider-ready URL.
// HTTP(S) references pass through unchanged; local paths are inlined as
// data: URIs.
func resolveImageURL(path string) (string, error) {
	p := strings.TrimSpace(path)
	if p == "" {
		return "", nil
	}
	if strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://") {
		return p, nil
	}
	return fileDataURL(p)
}
