// Package codegen generates the random codes and passwords used across
// signup: the 4-digit account short code, email verification codes, and
// temporary passwords for resets. All randomness comes from crypto/rand.
package codegen

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const passwordAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// FourDigitCode returns a uniform code in "0000".."9999", leading zeros kept.
// Uniqueness of (display name, code) is the allocator's job, not ours.
func FourDigitCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%04d", n.Int64()), nil
}

// NumericCode returns length independent uniform decimal digits.
func NumericCode(length int) (string, error) {
	buf := make([]byte, length)
	for i := range buf {
		d, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		buf[i] = byte('0' + d.Int64())
	}
	return string(buf), nil
}

// TempPassword returns length uniform picks from the 62-symbol alphanumeric
// alphabet. No dictionary or bias filtering.
func TempPassword(length int) (string, error) {
	buf := make([]byte, length)
	max := big.NewInt(int64(len(passwordAlphabet)))
	for i := range buf {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = passwordAlphabet[idx.Int64()]
	}
	return string(buf), nil
}
