package prng

import (
	"math/big"
	"math/rand"
)

var _ rand.Source = (*Source)(nil)
var _ rand.Source64 = (*Source)(nil)

// Source drives math/rand from a 64-bit generator chain.
type Source struct {
	kind Kind
	opts []Option
	g    Generator
}

// NewSource returns a Source over a 64-bit generator of the given kind.
// Negative seeds wrap as in uint64(seed).
func NewSource(kind Kind, seed int64, opts ...Option) (*Source, error) {
	g, err := New(kind, big.NewInt(seed), 64, opts...)
	if err != nil {
		return nil, err
	}
	return &Source{kind: kind, opts: opts, g: g}, nil
}

// Seed implements rand.Source.
func (s *Source) Seed(seed int64) {
	// kind and width were validated by NewSource
	s.g, _ = New(s.kind, big.NewInt(seed), 64, s.opts...)
}

// Uint64 implements rand.Source64.
func (s *Source) Uint64() uint64 {
	return s.g.Next().Uint64()
}

// Int63 implements rand.Source.
func (s *Source) Int63() int64 {
	return int64(s.Uint64() >> 1)
}
