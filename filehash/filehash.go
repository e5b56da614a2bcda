package filehash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// chunkSize is the read buffer size; files are streamed through the
// hash, never buffered whole.
const chunkSize = 8192

// Sum returns "sha256:" followed by the lowercase hex SHA-256 of the
// file's raw bytes. Any open or read failure is returned as an error;
// the caller decides whether that is fatal (scans record an empty hash
// instead of aborting).
func Sum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s for hashing: %w", path, err)
	}
	defer f.Close()

	hasher := sha256.New()
	buf := make([]byte, chunkSize)
	if _, err := io.CopyBuffer(hasher, f, buf); err != nil {
		return "", fmt.Errorf("hashing %s: %w", path, err)
	}
	return "sha256:" + hex.EncodeToString(hasher.Sum(nil)), nil
}
