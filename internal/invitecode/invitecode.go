// Package invitecode generates the short codes used to join rooms.
package invitecode

import (
	"crypto/rand"
	"fmt"
)

const (
	alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// Length is the fixed size of every invite code.
	Length = 8

	maxAttempts = 5
)

// Generate returns a random uppercase alphanumeric code of Length characters.
func Generate() (string, error) {
	buf := make([]byte, Length)

	if _, err := rand.Read(buf); err != nil {
		return "", err
	}

	for i, b := range buf {
		buf[i] = alphabet[int(b)%len(alphabet)]
	}

	return string(buf), nil
}

// GenerateUnique generates codes until exists reports the code as unused,
// giving up after a few attempts. Collisions are rare at 36^8 but the
// uniqueness of a code is load-bearing for join, so it is checked rather
// than assumed.
func GenerateUnique(exists func(code string) (bool, error)) (string, error) {
	for i := 0; i < maxAttempts; i++ {
		code, err := Generate()

		if err != nil {
			return "", err
		}

		taken, err := exists(code)

		if err != nil {
			return "", err
		}

		if !taken {
			return code, nil
		}
	}

	return "", fmt.Errorf("could not generate a unique invite code after %d attempts", maxAttempts)
}
