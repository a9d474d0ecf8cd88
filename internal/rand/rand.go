// Package rand generates random content and names for test fixtures.
package rand

import (
	"math/rand"
)

const letters = "abcdefghijklmnopqrstuvwxyz0123456789"

// Bytes returns a random slice of bytes
func Bytes(n int) []byte {
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = byte(rand.Intn(256)) // #nosec
	}
	return buf
}

// LetterString returns a random string picked in the [0-9]|[a-z] range, e.g. for dataset names
func LetterString(n int) string {
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = letters[rand.Intn(len(letters))] // #nosec
	}
	return string(buf)
}
