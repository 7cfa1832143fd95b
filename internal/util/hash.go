package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// SHA256Hex fingerprints document bytes for logs and job ids.
func SHA256Hex(b []byte) string {
	x := sha256.Sum256(b)
	return hex.EncodeToString(x[:])
}
