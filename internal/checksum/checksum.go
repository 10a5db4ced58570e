// Package checksum computes the content digests used as page ETags and for
// change detection between the content directory and the index.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// ETag quotes sum as an HTTP entity tag.
func ETag(sum string) string {
	return `"` + sum + `"`
}
