// Package prng implements deterministic pseudo random generators whose state
// is an arbitrary width unsigned integer. They are reproducible from a seed
// and are not suitable for cryptographic use.
package prng

import (
	"math/big"
	"strings"

	"github.com/zeebo/errs"
)

// Error classes returned by this package.
var (
	UnsupportedAlgorithm = errs.Class("unsupported algorithm")
	InvalidWidth         = errs.Class("invalid bit width")
)

// Kind selects a generator algorithm.
type Kind int

const (
	LCG Kind = iota + 1
	Xorshift
)

func (k Kind) String() string {
	switch k {
	case LCG:
		return "lcg"
	case Xorshift:
		return "xorshift"
	default:
		return "unknown"
	}
}

// ParseKind resolves an algorithm name. Names are case insensitive.
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "lcg":
		return LCG, nil
	case "xorshift":
		return Xorshift, nil
	}
	return 0, UnsupportedAlgorithm.New("%q: use lcg or xorshift", name)
}

// Generator produces pseudo random integers in [0, 2^Bits()).
type Generator interface {
	// Next advances the state and returns the generated value.
	Next() *big.Int
	// State returns a copy of the raw internal state.
	State() *big.Int
	Bits() uint
}

// New constructs a generator of the given kind seeded with seed.
func New(kind Kind, seed *big.Int, bits uint, opts ...Option) (Generator, error) {
	switch kind {
	case LCG:
		return NewLCG(seed, bits, opts...)
	case Xorshift:
		return NewXorshift(seed, bits, opts...)
	}
	return nil, UnsupportedAlgorithm.New("kind %d", int(kind))
}

// NewByName is New with the algorithm given by name.
func NewByName(name string, seed *big.Int, bits uint, opts ...Option) (Generator, error) {
	kind, err := ParseKind(name)
	if err != nil {
		return nil, err
	}
	return New(kind, seed, bits, opts...)
}

// width holds the state shared by both generators.
type width struct {
	bits     uint
	mask     *big.Int
	msb      *big.Int
	forceMSB bool
	state    *big.Int
}

func newWidth(seed *big.Int, bits uint, opt *Options) (width, error) {
	if bits == 0 {
		return width{}, InvalidWidth.New("bits must be positive")
	}
	mask := Mask(bits)
	state := new(big.Int)
	if seed != nil {
		// Mod keeps negative seeds inside the width as well.
		state.Mod(seed, new(big.Int).Add(mask, one))
	}
	return width{
		bits:     bits,
		mask:     mask,
		msb:      new(big.Int).Lsh(one, bits-1),
		forceMSB: opt.forceMSB,
		state:    state,
	}, nil
}

func (w *width) Bits() uint { return w.bits }

func (w *width) State() *big.Int { return new(big.Int).Set(w.state) }

// output copies the state into a fresh value, honoring force msb.
func (w *width) output() *big.Int {
	out := new(big.Int).Set(w.state)
	if w.forceMSB {
		out.Or(out, w.msb)
	}
	return out
}

var one = big.NewInt(1)

// Mask returns 2^bits - 1.
func Mask(bits uint) *big.Int {
	m := new(big.Int).Lsh(one, bits)
	return m.Sub(m, one)
}
