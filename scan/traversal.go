package scan

import (
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"repoxray/filehash"
	"repoxray/ignore"
	"repoxray/language"
	"repoxray/loc"
	"repoxray/schema"
)

// fileJob is one regular file discovered by the walk.
type fileJob struct {
	absPath string
	relPath string // forward slashes, relative to the scan target
}

// discover walks the target tree and returns every tracked file in
// walk order. Directory-entry read failures abort the whole scan: a
// partial file list would silently violate the determinism contract.
func discover(target string, matcher *ignore.Matcher) ([]fileJob, error) {
	var jobs []fileJob

	err := filepath.WalkDir(target, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("reading directory entry %s: %w", p, err)
		}

		rel, relErr := filepath.Rel(target, p)
		if relErr != nil {
			return fmt.Errorf("resolving relative path for %s: %w", p, relErr)
		}
		rel = strings.TrimPrefix(filepath.ToSlash(rel), "./")

		if d.IsDir() {
			if rel == "." {
				return nil
			}
			if matcher.SkipDir(rel) {
				return filepath.SkipDir
			}
			return nil
		}

		// Symlinks are never followed: they show up as non-regular
		// entries and are dropped, preventing cycles and double counts.
		if !d.Type().IsRegular() {
			return nil
		}
		// The target itself, if it happens to be a file.
		if rel == "" || rel == "." {
			return nil
		}
		if matcher.SkipFile(rel) {
			return nil
		}

		jobs = append(jobs, fileJob{absPath: p, relPath: rel})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

// buildRecords runs line counting, hashing and language detection for
// every discovered file on a bounded worker pool. Each worker writes
// into a pre-allocated slot, exactly once, so record order equals
// discovery order no matter how the work is scheduled; the caller's
// sort then fully determines output order.
func buildRecords(jobs []fileJob, workers int, logger *slog.Logger) ([]schema.FileRecord, error) {
	records := make([]schema.FileRecord, len(jobs))
	errs := make([]error, len(jobs))
	indexes := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				records[i], errs[i] = buildRecord(jobs[i], logger)
			}
		}()
	}

	for i := range jobs {
		indexes <- i
	}
	close(indexes)
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return records, nil
}

// buildRecord computes one file record. Hashing failure is a soft
// failure recorded as an empty hash; metadata or read failures in the
// line counter abort the scan.
func buildRecord(job fileJob, logger *slog.Logger) (schema.FileRecord, error) {
	stats, err := loc.Count(job.absPath)
	if err != nil {
		return schema.FileRecord{}, err
	}

	hash, err := filehash.Sum(job.absPath)
	if err != nil {
		logger.Debug("hashing failed, recording empty hash", "path", job.relPath, "error", err)
		hash = ""
	}

	return schema.FileRecord{
		Path:       job.relPath,
		Size:       stats.Size,
		Hash:       hash,
		Lang:       language.Detect(job.relPath),
		Loc:        stats.Loc,
		Complexity: 0, // reserved
	}, nil
}
