package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"repoxray/canonical"
	"repoxray/schema"
)

// Compute returns the index digest: the hex SHA-256 of the canonical
// JSON serialization of the index with its digest field forced to "".
//
// The sort invariants on files and moduleFiles are re-established here
// even if the caller already sorted them, so the digest stays correct
// independent of upstream ordering bugs. Identical index content always
// yields the identical digest string, on any machine, any run.
func Compute(idx *schema.Index) (string, error) {
	data, err := canonical.Marshal(idx.Normalized())
	if err != nil {
		return "", fmt.Errorf("serializing index for digest: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
