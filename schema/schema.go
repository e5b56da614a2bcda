package schema

import "sort"

// Version is the index schema version stamped into every artifact.
const Version = "1.0.0"

// Index is the persisted scan artifact. Serialized as canonical JSON,
// so map key order does not matter here, but files and moduleFiles MUST
// be strictly ascending before the digest is computed or the artifact
// is written.
type Index struct {
	// SchemaVersion identifies the artifact format (e.g. "1.0.0").
	SchemaVersion string `json:"schemaVersion"`

	// Root is the scanned tree's label, usually the repository directory name.
	Root string `json:"root"`

	// Target is the scan root as given on the command line, usually ".".
	Target string `json:"target"`

	// Files holds one record per tracked file, sorted by path.
	Files []FileRecord `json:"files"`

	// Languages counts files per detected language. Unclassified files
	// are not counted here.
	Languages map[string]int `json:"languages"`

	// TopDirs counts files per top-level directory. Root-level files
	// fall into the "." bucket.
	TopDirs map[string]int `json:"topDirs"`

	// ModuleFiles lists root-level build/dependency manifests, sorted.
	ModuleFiles []string `json:"moduleFiles"`

	// Stats holds aggregate totals over Files.
	Stats RepoStats `json:"stats"`

	// Digest is the hex SHA-256 of the canonical index with this field
	// blanked. Empty only while it is being computed.
	Digest string `json:"digest"`
}

// FileRecord describes one tracked file. Records are immutable once
// built; a new scan produces a wholly new set.
type FileRecord struct {
	// Path is relative to the scan target, forward slashes, no leading "./".
	Path string `json:"path"`

	// Size in bytes, reported even for skipped files.
	Size int64 `json:"size"`

	// Hash is "sha256:<64 hex>" or "" if the content could not be read.
	Hash string `json:"hash"`

	// Lang is the detected language label, "Unknown" when unclassified.
	Lang string `json:"lang"`

	// Loc is the line count, 0 for empty, oversized or non-text files.
	Loc int64 `json:"loc"`

	// Complexity is reserved and always 0.
	Complexity int64 `json:"complexity"`
}

// RepoStats aggregates the file records.
type RepoStats struct {
	FileCount int   `json:"fileCount"`
	TotalSize int64 `json:"totalSize"`
}

// New returns an empty index with the current schema version. Maps and
// slices are allocated so empty collections serialize as {} and [],
// never null.
func New() *Index {
	return &Index{
		SchemaVersion: Version,
		Root:          "unknown",
		Target:        ".",
		Files:         []FileRecord{},
		Languages:     map[string]int{},
		TopDirs:       map[string]int{},
		ModuleFiles:   []string{},
	}
}

// Normalized returns a copy of the index with the digest blanked and the
// sort invariants on Files and ModuleFiles re-established. The copy is
// deep enough that sorting it never mutates the receiver.
func (idx *Index) Normalized() *Index {
	clone := *idx
	clone.Digest = ""

	clone.Files = make([]FileRecord, len(idx.Files))
	copy(clone.Files, idx.Files)
	sort.Slice(clone.Files, func(i, j int) bool {
		return clone.Files[i].Path < clone.Files[j].Path
	})

	clone.ModuleFiles = make([]string, len(idx.ModuleFiles))
	copy(clone.ModuleFiles, idx.ModuleFiles)
	sort.Strings(clone.ModuleFiles)

	return &clone
}

// WellOrdered reports whether Files is strictly ascending by path and
// ModuleFiles is strictly ascending, i.e. sorted with no duplicates.
func (idx *Index) WellOrdered() bool {
	for i := 1; i < len(idx.Files); i++ {
		if idx.Files[i-1].Path >= idx.Files[i].Path {
			return false
		}
	}
	for i := 1; i < len(idx.ModuleFiles); i++ {
		if idx.ModuleFiles[i-1] >= idx.ModuleFiles[i] {
			return false
		}
	}
	return true
}
