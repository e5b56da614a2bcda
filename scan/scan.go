package scan

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"repoxray/canonical"
	"repoxray/digest"
	"repoxray/ignore"
	"repoxray/language"
	"repoxray/schema"
)

// rootBucket is the top-level directory label for files that live
// directly at the scan root.
const rootBucket = "."

// defaultWorkers bounds the per-file processing pool.
const defaultWorkers = 8

// moduleFileNames are root-level file names recorded in moduleFiles.
// Matching is exact and case-sensitive.
var moduleFileNames = map[string]bool{
	"go.mod":       true,
	"Cargo.toml":   true,
	"package.json": true,
	".git":         true,
	"Makefile":     true,
	"Dockerfile":   true,
}

// Options configures one scan.
type Options struct {
	// Target is the directory to scan. Defaults to ".".
	Target string

	// RootName labels the scanned tree in the index. Defaults to the
	// base name of the absolute target.
	RootName string

	// Excludes are extra glob patterns merged into the ignore matcher.
	Excludes []string

	// Workers bounds the per-file processing pool. Defaults to 8.
	Workers int

	Logger *slog.Logger
}

// Result is a completed scan: the finished index and its canonical
// serialization, ready for the atomic writer.
type Result struct {
	Index     *schema.Index
	Canonical []byte
}

// Run executes the full pipeline: traversal, per-file processing,
// deterministic sort and aggregation, digest computation, and canonical
// serialization. Two runs over the same tree produce byte-identical
// canonical output. Any propagated error means no index was produced;
// a partial index is never returned.
func Run(options Options) (*Result, error) {
	target := options.Target
	if target == "" {
		target = "."
	}
	workers := options.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	rootName := options.RootName
	if rootName == "" {
		abs, err := filepath.Abs(target)
		if err != nil {
			return nil, fmt.Errorf("resolving scan target %s: %w", target, err)
		}
		rootName = filepath.Base(abs)
	}

	matcher, err := ignore.NewMatcher(ignore.MatcherOptions{
		RootDir:        target,
		CustomPatterns: options.Excludes,
	})
	if err != nil {
		return nil, err
	}

	jobs, err := discover(target, matcher)
	if err != nil {
		return nil, err
	}
	logger.Debug("traversal complete", "files", len(jobs))

	records, err := buildRecords(jobs, workers, logger)
	if err != nil {
		return nil, err
	}

	idx := assemble(target, rootName, options.Target, records)

	d, err := digest.Compute(idx)
	if err != nil {
		return nil, err
	}
	idx.Digest = d

	data, err := canonical.Marshal(idx)
	if err != nil {
		return nil, fmt.Errorf("serializing index: %w", err)
	}

	logger.Info("scan complete",
		"root", idx.Root,
		"files", idx.Stats.FileCount,
		"totalSize", idx.Stats.TotalSize,
		"digest", idx.Digest,
	)
	return &Result{Index: idx, Canonical: data}, nil
}

// assemble sorts the records, computes the aggregates and fills in the
// index. targetLabel is the target as given on the command line; an
// empty label is recorded as ".".
func assemble(target, rootName, targetLabel string, records []schema.FileRecord) *schema.Index {
	idx := schema.New()
	idx.Root = rootName
	if targetLabel != "" {
		idx.Target = targetLabel
	}

	var moduleFiles []string
	var totalSize int64
	for i := range records {
		record := &records[i]
		totalSize += record.Size

		// Unclassified files count everywhere except the language map.
		if record.Lang != language.Unknown {
			idx.Languages[record.Lang]++
		}
		idx.TopDirs[topDir(record.Path)]++

		if !strings.Contains(record.Path, "/") && moduleFileNames[record.Path] {
			moduleFiles = append(moduleFiles, record.Path)
		}
	}

	// The walk prunes .git, so its presence at the root is recorded
	// separately.
	if _, err := os.Stat(filepath.Join(target, ".git")); err == nil {
		moduleFiles = append(moduleFiles, ".git")
	}

	sort.Slice(records, func(i, j int) bool { return records[i].Path < records[j].Path })
	sort.Strings(moduleFiles)

	idx.Files = records
	if moduleFiles != nil {
		idx.ModuleFiles = moduleFiles
	}
	idx.Stats = schema.RepoStats{
		FileCount: len(records),
		TotalSize: totalSize,
	}
	return idx
}

// topDir returns the path segment before the first slash, or the root
// bucket sentinel for files directly at the scan root.
func topDir(relPath string) string {
	if i := strings.IndexByte(relPath, '/'); i >= 0 {
		return relPath[:i]
	}
	return rootBucket
}
