package loc

import (
	"bytes"
	"fmt"
	"os"
	"unicode/utf8"
)

// MaxCountedFileSize is the byte cap above which files are never read
// for line counting. Their true size is still reported.
const MaxCountedFileSize = 2 * 1024 * 1024 // 2 MiB

// Stats is the result of counting one file.
type Stats struct {
	Loc     int64 // line count, 0 when skipped or empty
	Size    int64 // true byte size, reported even when skipped
	Skipped bool  // oversized or not valid text
}

// Count returns line-count stats for the file at path.
//
// Oversized and non-UTF-8 files are a reported state (Skipped), not an
// error; only filesystem-level failures to stat, open or read the file
// propagate as errors. Lines are separated by '\n' ('\r\n' tolerated);
// a final line without a terminator still counts, and empty content
// yields zero lines.
func Count(path string) (Stats, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Stats{}, fmt.Errorf("reading metadata for %s: %w", path, err)
	}
	size := info.Size()

	if size > MaxCountedFileSize {
		return Stats{Size: size, Skipped: true}, nil
	}
	if size == 0 {
		return Stats{}, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return Stats{}, fmt.Errorf("reading %s: %w", path, err)
	}
	if !utf8.Valid(content) {
		return Stats{Size: size, Skipped: true}, nil
	}

	lines := int64(bytes.Count(content, []byte{'\n'}))
	if content[len(content)-1] != '\n' {
		lines++
	}
	return Stats{Loc: lines, Size: size}, nil
}
