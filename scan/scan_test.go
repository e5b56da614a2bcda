package scan

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"repoxray/digest"
	"repoxray/filehash"
	"repoxray/schema"
)

// writeFixtureTree builds the reference tree: two-line main.go, a
// README, a package manifest, a .git directory and an ignored vendor
// file.
func writeFixtureTree(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	files := map[string]string{
		"main.go":            "package main\nfunc main() {}\n",
		"README.md":          "# fixture\n",
		"package.json":       "{\"name\":\"fixture\"}\n",
		"vendor/ignored.txt": "should never appear\n",
		"cmd/tool/helper.rs": "fn main() {}\n",
	}
	for rel, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("creating fixture dir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("writing fixture file: %v", err)
		}
	}
	if err := os.MkdirAll(filepath.Join(dir, ".git"), 0755); err != nil {
		t.Fatalf("creating .git: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".git", "HEAD"), []byte("ref: refs/heads/main\n"), 0644); err != nil {
		t.Fatalf("writing .git/HEAD: %v", err)
	}
	return dir
}

func runFixtureScan(t *testing.T, dir string) *Result {
	t.Helper()
	result, err := Run(Options{Target: dir, RootName: "fixture"})
	if err != nil {
		t.Fatalf("unexpected scan error: %v", err)
	}
	return result
}

func findRecord(idx *schema.Index, path string) *schema.FileRecord {
	for i := range idx.Files {
		if idx.Files[i].Path == path {
			return &idx.Files[i]
		}
	}
	return nil
}

func Test_Run_EndToEnd(t *testing.T) {
	dir := writeFixtureTree(t)
	result := runFixtureScan(t, dir)
	idx := result.Index

	wantPaths := []string{"README.md", "cmd/tool/helper.rs", "main.go", "package.json"}
	if len(idx.Files) != len(wantPaths) {
		t.Fatalf("expected %d files, got %d: %+v", len(wantPaths), len(idx.Files), idx.Files)
	}
	for i, want := range wantPaths {
		if idx.Files[i].Path != want {
			t.Errorf("files[%d]: expected %s, got %s", i, want, idx.Files[i].Path)
		}
	}

	mainRecord := findRecord(idx, "main.go")
	if mainRecord.Loc != 2 {
		t.Errorf("main.go: expected 2 lines, got %d", mainRecord.Loc)
	}
	wantHash, err := filehash.Sum(filepath.Join(dir, "main.go"))
	if err != nil {
		t.Fatalf("hashing fixture main.go: %v", err)
	}
	if mainRecord.Hash != wantHash {
		t.Errorf("main.go: expected hash %s, got %s", wantHash, mainRecord.Hash)
	}

	for lang, want := range map[string]int{"Go": 1, "Markdown": 1, "JSON": 1, "Rust": 1} {
		if idx.Languages[lang] != want {
			t.Errorf("languages[%s]: expected %d, got %d", lang, want, idx.Languages[lang])
		}
	}

	wantModules := []string{".git", "package.json"}
	if len(idx.ModuleFiles) != len(wantModules) {
		t.Fatalf("expected moduleFiles %v, got %v", wantModules, idx.ModuleFiles)
	}
	for i, want := range wantModules {
		if idx.ModuleFiles[i] != want {
			t.Errorf("moduleFiles[%d]: expected %s, got %s", i, want, idx.ModuleFiles[i])
		}
	}

	if strings.Contains(string(result.Canonical), "vendor/") {
		t.Error("vendor/ paths leaked into the artifact")
	}
	if strings.Contains(string(result.Canonical), "ignored.txt") {
		t.Error("ignored file leaked into the artifact")
	}
}

func Test_Run_Deterministic(t *testing.T) {
	dir := writeFixtureTree(t)

	first := runFixtureScan(t, dir)
	second := runFixtureScan(t, dir)

	if !bytes.Equal(first.Canonical, second.Canonical) {
		t.Error("two scans of the same tree produced different bytes")
	}
	if first.Index.Digest != second.Index.Digest {
		t.Errorf("digests differ: %s vs %s", first.Index.Digest, second.Index.Digest)
	}
}

func Test_Run_DigestMatchesRecomputation(t *testing.T) {
	result := runFixtureScan(t, writeFixtureTree(t))

	recomputed, err := digest.Compute(result.Index)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if recomputed != result.Index.Digest {
		t.Errorf("stored digest %s does not match recomputation %s", result.Index.Digest, recomputed)
	}
	if !regexp.MustCompile(`^[0-9a-f]{64}$`).MatchString(result.Index.Digest) {
		t.Errorf("unexpected digest format: %q", result.Index.Digest)
	}
}

func Test_Run_SortInvariantsHold(t *testing.T) {
	result := runFixtureScan(t, writeFixtureTree(t))
	if !result.Index.WellOrdered() {
		t.Error("persisted index violates sort invariants")
	}
}

func Test_Run_CanonicalFieldOrder(t *testing.T) {
	result := runFixtureScan(t, writeFixtureTree(t))
	out := string(result.Canonical)

	if !strings.HasPrefix(out, `{"digest":"`) {
		t.Errorf("canonical output does not start with the digest field: %.40s", out)
	}
	filesIdx := strings.Index(out, `"files":`)
	statsIdx := strings.Index(out, `"stats":`)
	if filesIdx < 0 || statsIdx < 0 || filesIdx > statsIdx {
		t.Error("top-level keys are not in sorted order")
	}
}

func Test_Run_IgnoredAtAnyDepth(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a", "b", "node_modules", "pkg", "deep.js")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("creating dirs: %v", err)
	}
	if err := os.WriteFile(path, []byte("x\n"), 0644); err != nil {
		t.Fatalf("writing file: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "a", "kept.js"), []byte("y\n"), 0644); err != nil {
		t.Fatalf("writing file: %v", err)
	}

	result, err := Run(Options{Target: dir, RootName: "depth"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Index.Files) != 1 || result.Index.Files[0].Path != "a/kept.js" {
		t.Errorf("expected only a/kept.js, got %+v", result.Index.Files)
	}
}

func Test_Run_TotalSizeIncludesSkippedFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "text.txt"), []byte("ab\n"), 0644); err != nil {
		t.Fatalf("writing file: %v", err)
	}
	// Invalid UTF-8: counts toward total size with loc=0.
	binary := []byte{0x00, 0xff, 0xfe, 0x01, 0x02}
	if err := os.WriteFile(filepath.Join(dir, "blob.bin"), binary, 0644); err != nil {
		t.Fatalf("writing file: %v", err)
	}

	result, err := Run(Options{Target: dir, RootName: "sizes"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	idx := result.Index

	if idx.Stats.FileCount != 2 {
		t.Errorf("expected fileCount 2, got %d", idx.Stats.FileCount)
	}
	if want := int64(3 + len(binary)); idx.Stats.TotalSize != want {
		t.Errorf("expected totalSize %d, got %d", want, idx.Stats.TotalSize)
	}
	blob := findRecord(idx, "blob.bin")
	if blob.Loc != 0 {
		t.Errorf("expected loc=0 for binary file, got %d", blob.Loc)
	}
	if blob.Size != int64(len(binary)) {
		t.Errorf("expected size %d for binary file, got %d", len(binary), blob.Size)
	}
}

func Test_Run_LanguageAggregateExcludesUnknown(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "LICENSE"), []byte("MIT\n"), 0644); err != nil {
		t.Fatalf("writing file: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main\n"), 0644); err != nil {
		t.Fatalf("writing file: %v", err)
	}

	result, err := Run(Options{Target: dir, RootName: "langs"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	idx := result.Index

	if _, present := idx.Languages["Unknown"]; present {
		t.Error("Unknown must not appear in the language aggregate")
	}
	total := 0
	for _, count := range idx.Languages {
		total += count
	}
	if total > len(idx.Files) {
		t.Errorf("summed language counts %d exceed file count %d", total, len(idx.Files))
	}
	// Unknown files still count in the directory aggregate.
	if idx.TopDirs["."] != 2 {
		t.Errorf("expected 2 root-level files in topDirs, got %d", idx.TopDirs["."])
	}
}

func Test_Run_TopDirBuckets(t *testing.T) {
	dir := t.TempDir()
	for _, rel := range []string{"root.md", "cmd/a.go", "cmd/b.go", "pkg/c.go"} {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("creating dirs: %v", err)
		}
		if err := os.WriteFile(path, []byte("x\n"), 0644); err != nil {
			t.Fatalf("writing file: %v", err)
		}
	}

	result, err := Run(Options{Target: dir, RootName: "buckets"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]int{".": 1, "cmd": 2, "pkg": 1}
	for bucket, count := range want {
		if result.Index.TopDirs[bucket] != count {
			t.Errorf("topDirs[%s]: expected %d, got %d", bucket, count, result.Index.TopDirs[bucket])
		}
	}
}

func Test_Run_SymlinksNotFollowed(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "real.go"), []byte("package x\n"), 0644); err != nil {
		t.Fatalf("writing file: %v", err)
	}
	if err := os.Symlink(filepath.Join(dir, "real.go"), filepath.Join(dir, "link.go")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	result, err := Run(Options{Target: dir, RootName: "links"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Index.Files) != 1 || result.Index.Files[0].Path != "real.go" {
		t.Errorf("expected only real.go, got %+v", result.Index.Files)
	}
}

func Test_Run_CustomExcludes(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"keep.go", "drop.generated.go"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("package x\n"), 0644); err != nil {
			t.Fatalf("writing file: %v", err)
		}
	}

	result, err := Run(Options{
		Target:   dir,
		RootName: "excludes",
		Excludes: []string{"*.generated.go"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Index.Files) != 1 || result.Index.Files[0].Path != "keep.go" {
		t.Errorf("expected only keep.go, got %+v", result.Index.Files)
	}
}

func Test_Run_EmptyTree(t *testing.T) {
	result, err := Run(Options{Target: t.TempDir(), RootName: "empty"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	idx := result.Index

	if idx.Stats.FileCount != 0 || idx.Stats.TotalSize != 0 {
		t.Errorf("expected zero stats, got %+v", idx.Stats)
	}
	out := string(result.Canonical)
	if !strings.Contains(out, `"files":[]`) {
		t.Errorf("empty files must serialize as [], got: %s", out)
	}
	if !strings.Contains(out, `"languages":{}`) {
		t.Errorf("empty languages must serialize as {}, got: %s", out)
	}
	if !strings.Contains(out, `"moduleFiles":[]`) {
		t.Errorf("empty moduleFiles must serialize as [], got: %s", out)
	}
}

func Test_Run_MissingTargetFails(t *testing.T) {
	_, err := Run(Options{Target: filepath.Join(t.TempDir(), "nope"), RootName: "missing"})
	if err == nil {
		t.Error("expected error for missing scan target")
	}
}

func Test_Run_ReservedComplexityAlwaysZero(t *testing.T) {
	result := runFixtureScan(t, writeFixtureTree(t))
	for _, record := range result.Index.Files {
		if record.Complexity != 0 {
			t.Errorf("%s: reserved complexity field must be 0, got %d", record.Path, record.Complexity)
		}
	}
}
