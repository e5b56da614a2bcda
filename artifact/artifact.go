// Package artifact persists scan output. Writes are atomic so a reader
// never observes a half-written index.
package artifact

import (
	"fmt"
	"os"
	"path/filepath"
)

// FileName is the index artifact's file name inside the output
// directory.
const FileName = "index.json"

// DefaultDir returns the conventional output directory for a scanned
// tree: <baseDir>/.repoxray/<rootName>/data.
func DefaultDir(baseDir, rootName string) string {
	return filepath.Join(baseDir, ".repoxray", rootName, "data")
}

// WriteAtomic writes content to path via a temporary sibling file and a
// rename. Parent directories are created as needed. On any failure the
// destination keeps its previous content.
func WriteAtomic(path string, content []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating output directory for %s: %w", path, err)
	}

	tmpPath := path + ".tmp"
	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("creating temporary file %s: %w", tmpPath, err)
	}

	if _, err := f.Write(content); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing %s: %w", tmpPath, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("syncing %s: %w", tmpPath, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing %s: %w", tmpPath, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
