// Package idgen mints random identifiers.
package idgen

import (
	"crypto/rand"
	"encoding/hex"
)

// WithPrefix returns prefix + 24 hex chars of randomness, e.g.
// "mer_1f3a...". The prefix makes IDs self-describing in logs.
func WithPrefix(prefix string) string {
	return prefix + Hex(12)
}

// Hex returns numBytes of crypto/rand randomness, hex encoded.
func Hex(numBytes int) string {
	b := make([]byte, numBytes)
	if _, err := rand.Read(b); err != nil {
		panic("idgen: no entropy source: " + err.Error())
	}
	return hex.EncodeToString(b)
}
