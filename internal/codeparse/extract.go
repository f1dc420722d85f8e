// Package codeparse extracts fenced code blocks from model responses and maps
// fence language tags to file extensions.
package codeparse

import (
	"fmt"
	"path"
	"regexp"
	"strings"
)

// Block is a single extracted fenced region.
type Block struct {
	Language string
	Content  string
}

// FileBlock is an extracted fenced region with a resolved output filename.
// Index is 1-based document order.
type FileBlock struct {
	Index    int
	Filename string
	Language string
	Content  string
}

// firstFence matches the first fenced block. Matching is non-greedy across
// lines; a fence with no closing delimiter yields no match.
var firstFence = regexp.MustCompile("(?s)```([a-zA-Z0-9+#._-]*)\\s*(.*?)```")

// multiFence additionally captures an optional filename=<name> directive on
// the opening fence line.
var multiFence = regexp.MustCompile("(?ms)```(?P<lang>[a-zA-Z0-9+#._-]*)(?:\\s+filename=(?P<fname>[^\r\n`]+))?\\s*\\n(?P<code>.*?)\\n```")

// reservedChars are replaced with "_" in explicit filenames.
var reservedChars = regexp.MustCompile(`[\\/:*?"<>|]`)

// FirstBlock extracts the first fenced code block from text, or nil when the
// text contains no complete fence. An empty language tag is substituted with
// preferredLanguage.
func FirstBlock(text, preferredLanguage string) *Block {
	m := firstFence.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	lang := strings.TrimSpace(m[1])
	if lang == "" {
		lang = preferredLanguage
	}
	return &Block{Language: lang, Content: m[2]}
}

// AllBlocks extracts every fenced block in document order. Blocks carrying a
// filename= directive keep the sanitized name; the rest are named
// snippet-{index}{ext} from the detected language. Empty bodies are valid.
func AllBlocks(text string) []FileBlock {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	langIdx := multiFence.SubexpIndex("lang")
	fnameIdx := multiFence.SubexpIndex("fname")
	codeIdx := multiFence.SubexpIndex("code")

	var blocks []FileBlock
	idx := 1
	for _, m := range multiFence.FindAllStringSubmatch(text, -1) {
		lang := strings.TrimSpace(m[langIdx])
		fname := strings.TrimSpace(m[fnameIdx])

		filename := fname
		if filename != "" {
			filename = SanitizeFilename(filename)
		} else {
			filename = fmt.Sprintf("snippet-%03d%s", idx, ExtensionFor(lang))
		}

		blocks = append(blocks, FileBlock{
			Index:    idx,
			Filename: filename,
			Language: lang,
			Content:  m[codeIdx],
		})
		idx++
	}
	return blocks
}

// SanitizeFilename reduces name to a basename and replaces OS-reserved
// characters with "_".
func SanitizeFilename(name string) string {
	n := strings.ReplaceAll(strings.TrimSpace(name), "\\", "/")
	n = path.Base(n)
	return reservedChars.ReplaceAllString(n, "_")
}
