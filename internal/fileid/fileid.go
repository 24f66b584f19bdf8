// Package fileid derives deterministic identifiers for ingested code.
package fileid

import (
	"crypto/sha256"
	"encoding/hex"
)

const contentPrefix = "sha256:"

// ContentID returns the content address of a chunk's text.
// Identical content always yields the same ID, regardless of which file it came from.
func ContentID(content string) string {
	hash := sha256.Sum256([]byte(content))
	return contentPrefix + hex.EncodeToString(hash[:])
}
