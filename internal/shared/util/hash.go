package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint returns a stable hex identifier for document bytes, safe to log
// in place of the content.
func Fingerprint(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
