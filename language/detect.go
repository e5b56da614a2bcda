package language

import (
	"path/filepath"
	"strings"
)

// Unknown is the explicit label for files that cannot be classified.
// Unknown files still appear in the index but are excluded from the
// per-language aggregate.
const Unknown = "Unknown"

// extensionToLanguage maps lowercase file extensions (without dot) to
// language labels. Extension groups share one label.
var extensionToLanguage = map[string]string{
	"go":   "Go",
	"rs":   "Rust",
	"md":   "Markdown",
	"json": "JSON",
	"js":   "JavaScript",
	"ts":   "TypeScript",
	"yaml": "YAML", "yml": "YAML",
	"toml": "TOML",
	"sh": "Shell", "bash": "Shell",
	"html": "HTML", "htm": "HTML",
	"css":  "CSS",
	"sql":  "SQL",
	"py":   "Python",
	"java": "Java",
	"c":    "C", "h": "C",
	"cpp": "C++", "hpp": "C++", "cc": "C++", "cxx": "C++",
	"tf":  "Terraform",
	"txt": "Text", "text": "Text",
}

// Detect returns the language label for a file path. Special filenames
// take priority over extensions, both case-insensitive. Unmatched files
// get the explicit Unknown label, never an empty string.
func Detect(path string) string {
	base := filepath.Base(path)
	if strings.EqualFold(base, "Dockerfile") {
		return "Dockerfile"
	}
	if strings.EqualFold(base, "Makefile") {
		return "Makefile"
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(base), "."))
	if ext == "" {
		return Unknown
	}
	if lang, ok := extensionToLanguage[ext]; ok {
		return lang
	}
	return Unknown
}
