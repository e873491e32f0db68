package helper

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Hash8 returns the first 8 bytes of sha256(s) as hex. Used to correlate
// log lines about an email address without writing the address itself.
func Hash8(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:8])
}

// NormalizeEmail lowercases and trims an address so lookups and uniqueness
// checks agree on a single canonical form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
