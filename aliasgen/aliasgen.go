// Package aliasgen provides alias token generation for short URLs.
// Generators should be safe for concurrent use.
package aliasgen

import (
	"crypto/rand"
	"errors"
)

const (
	base62Chars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
)

// Generator generates alias tokens. The length argument is the minimum
// token length; the random strategy produces exactly that length, the
// sequence strategy at least that length.
// Implementations should be safe for concurrent use.
type Generator interface {
	Generate(length int) (string, error)
}

// randomGenerator implements Generator by sampling base62 characters from
// crypto/rand. It is safe for concurrent use.
type randomGenerator struct{}

// NewRandom returns a generator producing random base62 tokens.
func NewRandom() Generator {
	return &randomGenerator{}
}

// Generate generates a random base62 token of the specified length.
func (g *randomGenerator) Generate(length int) (string, error) {
	if length <= 0 {
		return "", errors.New("length must be positive")
	}

	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	for i := range b {
		b[i] = base62Chars[int(b[i])%len(base62Chars)]
	}

	return string(b), nil
}
