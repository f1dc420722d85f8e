package project

import (
	"context"
	"fmt"
	"io"
	"net/http"
	nurl "net/url"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-shiori/go-readability"
)

const (
	// maxDocBodySize is the maximum HTTP response body size (5MB).
	maxDocBodySize = 5 * 1024 * 1024
	// minDocTextLength rejects login walls, cookie walls and empty pages.
	minDocTextLength = 100
)

// DocFetcher reduces a reference URL to readable text for prompt context.
type DocFetcher interface {
	FetchText(ctx context.Context, url string) (string, error)
}

// HTTPDocFetcher fetches web pages and extracts readable content using
// go-readability.
type HTTPDocFetcher struct {
	client  *http.Client
	maxText int
}

// NewHTTPDocFetcher creates a doc fetcher with the given timeout and text cap.
func NewHTTPDocFetcher(timeout time.Duration, maxText int) *HTTPDocFetcher {
	return &HTTPDocFetcher{
		client:  &http.Client{Timeout: timeout},
		maxText: maxText,
	}
}

// FetchText downloads url and returns its readable text, truncated to the
// configured length.
func (f *HTTPDocFetcher) FetchText(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocBodySize))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	parsedURL, _ := nurl.Parse(url)
	article, err := readability.FromReader(strings.NewReader(string(body)), parsedURL)
	if err != nil {
		return "", fmt.Errorf("readability: %w", err)
	}

	text := normalizeDocText(article.TextContent)
	if utf8.RuneCountInString(text) < minDocTextLength {
		return "", fmt.Errorf("extracted content too short (%d chars), possibly blocked or empty page", utf8.RuneCountInString(text))
	}
	if f.maxText > 0 && utf8.RuneCountInString(text) > f.maxText {
		runes := []rune(text)
		text = string(runes[:f.maxText]) + "\n... [truncated]"
	}
	return text, nil
}

// CombineDocs fetches each URL and concatenates the readable texts with
// numbered markers. Failed fetches are skipped, mirroring how missing input
// code files are tolerated.
func CombineDocs(ctx context.Context, fetcher DocFetcher, urls []string) string {
	if fetcher == nil || len(urls) == 0 {
		return ""
	}

	var sb strings.Builder
	i := 1
	for _, url := range urls {
		text, err := fetcher.FetchText(ctx, url)
		if err != nil {
			continue
		}
		fmt.Fprintf(&sb, "//Reference Document %d - \"%s\"\n", i, url)
		sb.WriteString(text)
		sb.WriteString("\n")
		i++
	}
	return sb.String()
}

var multiSpace = regexp.MustCompile(`[ \t]+`)
var multiNewline = regexp.MustCompile(`\n{3,}`)

func normalizeDocText(s string) string {
	s = strings.TrimSpace(s)
	s = multiSpace.ReplaceAllString(s, " ")
	s = multiNewline.ReplaceAllString(s, "\n\n")
	return s
}
