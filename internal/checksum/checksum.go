// Package checksum provides content hashing used for cache keying.
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

// Key returns the hex-encoded SHA-256 digest of s, suitable as a
// filesystem-safe cache file name.
func Key(s string) string {
	return Sum([]byte(s))
}
