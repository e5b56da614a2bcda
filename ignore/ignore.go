package ignore

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	gitignore "github.com/denormal/go-gitignore"
)

// Matcher decides which paths a scan excludes. It combines the fixed
// ignored-segment set, an optional .repoxrayignore file at the scan
// root, and user-supplied glob patterns. All matching happens on
// slash-normalized paths relative to the scan root, so results are
// identical on every platform.
type Matcher struct {
	customPatterns []string
	ignoreFile     gitignore.GitIgnore
}

// MatcherOptions configures the ignore matcher.
type MatcherOptions struct {
	RootDir        string
	CustomPatterns []string
}

// NewMatcher creates a matcher for one scan. Invalid glob patterns are
// rejected up front so a bad pattern can never silently change which
// files the index tracks.
func NewMatcher(options MatcherOptions) (*Matcher, error) {
	for _, pattern := range options.CustomPatterns {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid exclude pattern: %s", pattern)
		}
	}

	return &Matcher{
		customPatterns: options.CustomPatterns,
		ignoreFile:     loadIgnoreFile(filepath.Join(options.RootDir, IgnoreFileName), options.RootDir),
	}, nil
}

// SkipDir reports whether a directory (relative path, forward slashes)
// should be pruned from the walk entirely.
func (m *Matcher) SkipDir(relPath string) bool {
	if IgnoredSegments[path.Base(relPath)] {
		return true
	}
	if m.matchesIgnoreFile(relPath, true) {
		return true
	}
	return m.matchesCustomPatterns(relPath)
}

// SkipFile reports whether a file (relative path, forward slashes)
// should be excluded. Segment matching applies to the file name too: a
// root-level file named "vendor" is excluded just like the directory.
func (m *Matcher) SkipFile(relPath string) bool {
	if IgnoredSegments[path.Base(relPath)] {
		return true
	}
	if m.matchesIgnoreFile(relPath, false) {
		return true
	}
	return m.matchesCustomPatterns(relPath)
}

// matchesIgnoreFile checks the optional .repoxrayignore rules.
func (m *Matcher) matchesIgnoreFile(relPath string, isDir bool) bool {
	if m.ignoreFile == nil {
		return false
	}
	match := m.ignoreFile.Relative(relPath, isDir)
	return match != nil && match.Ignore()
}

// matchesCustomPatterns checks user-supplied globs against the relative
// path and its basename.
func (m *Matcher) matchesCustomPatterns(relPath string) bool {
	base := path.Base(relPath)
	for _, pattern := range m.customPatterns {
		pattern = strings.ReplaceAll(pattern, "\\", "/")
		if matched, err := doublestar.Match(pattern, relPath); err == nil && matched {
			return true
		}
		if matched, err := doublestar.Match(pattern, base); err == nil && matched {
			return true
		}
	}
	return false
}

// loadIgnoreFile reads an ignore file and builds a gitignore matcher
// from it. A missing file simply means no extra rules.
func loadIgnoreFile(filePath string, baseDir string) gitignore.GitIgnore {
	f, err := os.Open(filePath)
	if err != nil {
		return nil
	}
	defer f.Close()

	return gitignore.New(f, baseDir, nil)
}
