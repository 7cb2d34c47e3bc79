// Package address implements content addressing for change log entries.
//
// An address is "sha256:" followed by 64 lowercase hex characters, the
// SHA-256 of the entry's canonical bytes. The address is the entry's
// identity across every client implementation, so validation is strict:
// uppercase hex, alternate encodings, or a missing prefix are rejections,
// never normalizations. A permissive parser here would let two clients
// disagree about identity without any error ever surfacing.
package address

import (
	"crypto/sha256"
	"encoding/hex"
)

// Prefix identifies the hash algorithm in an address string.
const Prefix = "sha256:"

// hexLen is the length of a SHA-256 digest in hex characters.
const hexLen = 64

// Hash computes the content address of raw canonical bytes.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return Prefix + hex.EncodeToString(sum[:])
}

// IsValid reports whether s is a well-formed content address: the exact
// "sha256:" prefix followed by exactly 64 lowercase hex characters.
func IsValid(s string) bool {
	if len(s) != len(Prefix)+hexLen {
		return false
	}
	if s[:len(Prefix)] != Prefix {
		return false
	}
	return IsLowerHex(s[len(Prefix):])
}

// IsLowerHex reports whether s is non-empty and consists only of the
// characters [0-9a-f]. Uppercase hex does not validate.
func IsLowerHex(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
