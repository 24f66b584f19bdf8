package search

import (
	"path/filepath"
	"strings"

	"github.com/hyperjump/codectx/internal/models"
)

var extLanguages = map[string]string{
	".go":    "go",
	".py":    "python",
	".js":    "javascript",
	".jsx":   "jsx",
	".ts":    "typescript",
	".tsx":   "tsx",
	".java":  "java",
	".c":     "c",
	".h":     "c",
	".cpp":   "cpp",
	".hpp":   "cpp",
	".cs":    "csharp",
	".rb":    "ruby",
	".rs":    "rust",
	".php":   "php",
	".swift": "swift",
	".kt":    "kotlin",
	".md":    "markdown",
	".sh":    "bash",
	".sql":   "sql",
	".yaml":  "yaml",
	".yml":   "yaml",
	".json":  "json",
}

// LanguageForPath returns the code-fence label for a file, derived from its extension.
// Unknown extensions yield the bare extension; files without one yield "".
func LanguageForPath(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if lang, ok := extLanguages[ext]; ok {
		return lang
	}
	return strings.TrimPrefix(ext, ".")
}

// BuildPrompt assembles the prompt sent to a chat provider: each retrieved chunk is
// introduced by its path and fenced with its language, followed by the question.
// With no results the question is returned unchanged.
func BuildPrompt(question string, results []*models.SearchResult) string {
	if len(results) == 0 {
		return question
	}
	var b strings.Builder
	b.WriteString("Use the following code from the workspace as context.\n")
	for _, r := range results {
		fence := fenceFor(r.Chunk.Content)
		b.WriteString("\nFile: ")
		b.WriteString(r.Chunk.FilePath)
		b.WriteString("\n")
		b.WriteString(fence)
		b.WriteString(LanguageForPath(r.Chunk.FilePath))
		b.WriteString("\n")
		b.WriteString(r.Chunk.Content)
		if !strings.HasSuffix(r.Chunk.Content, "\n") {
			b.WriteString("\n")
		}
		b.WriteString(fence)
		b.WriteString("\n")
	}
	b.WriteString("\nQuestion: ")
	b.WriteString(question)
	return b.String()
}

// fenceFor returns a backtick fence longer than any backtick run inside content.
func fenceFor(content string) string {
	longest, run := 0, 0
	for _, r := range content {
		if r == '`' {
			run++
			if run > longest {
				longest = run
			}
			continue
		}
		run = 0
	}
	n := 3
	if longest >= n {
		n = longest + 1
	}
	return strings.Repeat("`", n)
}
