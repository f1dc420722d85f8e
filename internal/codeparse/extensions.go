package codeparse

import "strings"

// extensions maps fence language tags to file extensions.
var extensions = map[string]string{
	"java":       ".java",
	"python":     ".py",
	"py":         ".py",
	"javascript": ".js",
	"js":         ".js",
	"typescript": ".ts",
	"ts":         ".ts",
	"tsx":        ".tsx",
	"jsx":        ".jsx",
	"csharp":     ".cs",
	"cs":         ".cs",
	"cpp":        ".cpp",
	"c++":        ".cpp",
	"cc":         ".cpp",
	"hpp":        ".cpp",
	"c":          ".c",
	"h":          ".c",
	"go":         ".go",
	"rust":       ".rs",
	"rs":         ".rs",
	"kotlin":     ".kt",
	"kt":         ".kt",
	"php":        ".php",
	"ruby":       ".rb",
	"rb":         ".rb",
	"swift":      ".swift",
	"scala":      ".scala",
	"html":       ".html",
	"css":        ".css",
	"xml":        ".xml",
	"json":       ".json",
	"yaml":       ".yaml",
	"yml":        ".yml",
	"sql":        ".sql",
	"sh":         ".sh",
	"bash":       ".sh",
	"ps1":        ".ps1",
	"powershell": ".ps1",
	"markdown":   ".md",
	"md":         ".md",
}

// ExtensionFor returns the file extension for a fence language tag.
// The lookup is case-insensitive; empty or unknown tags map to ".txt".
func ExtensionFor(language string) string {
	if ext, ok := extensions[strings.ToLower(strings.TrimSpace(language))]; ok {
		return ext
	}
	return ".txt"
}
