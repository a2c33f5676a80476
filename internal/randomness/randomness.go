// Package randomness draws play outcomes from crypto/rand.
package randomness

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
)

var ErrInvalidProbability = errors.New("probability must satisfy 0 <= num <= den, den > 0")

// Source draws booleans with a rational probability. The zero value reads from
// crypto/rand.
type Source struct {
	reader io.Reader
}

func New() *Source {
	return &Source{reader: rand.Reader}
}

// NewWithReader is for deterministic tests.
func NewWithReader(r io.Reader) *Source {
	return &Source{reader: r}
}

// Draw returns true with probability num/den: a uniform integer in [0, den) is
// drawn and compared against num.
func (s *Source) Draw(num, den int64) (bool, error) {
	if den <= 0 || num < 0 || num > den {
		return false, ErrInvalidProbability
	}

	r := s.reader
	if r == nil {
		r = rand.Reader
	}

	v, err := rand.Int(r, big.NewInt(den))
	if err != nil {
		return false, fmt.Errorf("read random: %w", err)
	}

	return v.Int64() < num, nil
}
