package prng

import "math/big"

var _ Generator = (*XorshiftGenerator)(nil)

// Xorshift shift amounts. They are fixed so sequences match bit for bit
// across implementations.
const (
	xorshiftA = 13 // left
	xorshiftB = 7  // right
	xorshiftC = 17 // left
)

// XorshiftGenerator is a shift-xor generator truncated to bits.
type XorshiftGenerator struct {
	width
	tmp big.Int
}

// NewXorshift returns a xorshift generator whose state is seed masked to bits.
// A zero state is a fixed point and stays zero.
func NewXorshift(seed *big.Int, bits uint, opts ...Option) (*XorshiftGenerator, error) {
	opt := newOptions(opts...)
	w, err := newWidth(seed, bits, opt)
	if err != nil {
		return nil, err
	}
	return &XorshiftGenerator{width: w}, nil
}

// Next applies x ^= x<<13, x ^= x>>7, x ^= x<<17, masking after each shift.
func (x *XorshiftGenerator) Next() *big.Int {
	s, t := x.state, &x.tmp

	t.Lsh(s, xorshiftA)
	s.Xor(s, t.And(t, x.mask))

	t.Rsh(s, xorshiftB)
	s.Xor(s, t.And(t, x.mask))

	t.Lsh(s, xorshiftC)
	s.Xor(s, t.And(t, x.mask))

	return x.output()
}
