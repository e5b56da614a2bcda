package ignore

// IgnoredSegments are path segments excluded from every scan, matched
// literally against each segment of a relative path. The set is fixed:
// making it configurable would let two consumers of the same tree
// produce different digests.
var IgnoredSegments = map[string]bool{
	".git":         true,
	"node_modules": true,
	"dist":         true,
	"build":        true,
	"out":          true,
	"vendor":       true,
	"target":       true,
	".cache":       true,
	".tmp":         true,
	"coverage":     true,
	".repoxray":    true, // the tool's own output directory
	".ai-context":  true, // sibling metadata directory
}

// IgnoreFileName is the optional gitignore-syntax file honored at the
// scan root. Being part of the tree, it is input state and does not
// break scan determinism.
const IgnoreFileName = ".repoxrayignore"
