package aliasgen

import (
	"errors"
	"sync"

	"github.com/sqids/sqids-go"
)

// sequenceAlphabet is a fixed shuffle of the base62 set so that consecutive
// counter values do not encode to visibly consecutive tokens.
const sequenceAlphabet = "ruDQyZXaGnSFdN6HAtVl4UWRpze50m8LYEbTxq7g1MIBiKOhfjCc3wvo92sPJk"

// sequenceGenerator implements Generator by encoding a monotonic counter
// with sqids. Tokens never repeat for the lifetime of the generator, which
// makes collisions in a single store impossible. It is safe for concurrent
// use.
type sequenceGenerator struct {
	mu   sync.Mutex
	next uint64
	encs map[int]*sqids.Sqids
}

// NewSequence returns a generator producing sequential sqids tokens padded
// to at least the requested length.
func NewSequence() Generator {
	return &sequenceGenerator{encs: make(map[int]*sqids.Sqids)}
}

// Generate encodes the next counter value as a token of at least the
// specified length. Lengths above 255 are rejected; sqids padding is
// limited to a byte.
func (g *sequenceGenerator) Generate(length int) (string, error) {
	if length <= 0 {
		return "", errors.New("length must be positive")
	}
	if length > 255 {
		return "", errors.New("length must be at most 255")
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	enc := g.encs[length]
	if enc == nil {
		var err error
		enc, err = sqids.New(sqids.Options{
			Alphabet:  sequenceAlphabet,
			MinLength: uint8(length),
		})
		if err != nil {
			return "", err
		}
		g.encs[length] = enc
	}

	g.next++
	return enc.Encode([]uint64{g.next})
}
