package ingest

import (
	"crypto/sha256"
	"encoding/hex"
)

// Signature computes the SHA-256 content fingerprint of a source file,
// rendered as lowercase hex. It is a pure function of the file bytes and is
// used only as a deduplication key: a byte-identical re-import is a
// duplicate, a re-export with different whitespace is not.
func Signature(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
