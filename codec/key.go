package codec

import (
	"crypto/sha1"
	"encoding/hex"
)

// MaxKeyLength is the longest key stored verbatim, in bytes.
const MaxKeyLength = 50

// NormalizeKey returns key unchanged when it is at most MaxKeyLength bytes,
// and otherwise its lowercase hex SHA-1 digest (40 characters).
func NormalizeKey(key string) string {
	if len(key) <= MaxKeyLength {
		return key
	}
	sum := sha1.Sum([]byte(key))
	return hex.EncodeToString(sum[:])
}
