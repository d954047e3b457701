package prng

import "math/big"

var _ Generator = (*LCGGenerator)(nil)

// LCGGenerator is a linear congruential generator modulo 2^bits.
type LCGGenerator struct {
	width
	a *big.Int
	c *big.Int
}

// NewLCG returns an LCG seeded with seed mod 2^bits. The multiplier and
// increment are not checked for full period.
func NewLCG(seed *big.Int, bits uint, opts ...Option) (*LCGGenerator, error) {
	opt := newOptions(opts...)
	w, err := newWidth(seed, bits, opt)
	if err != nil {
		return nil, err
	}
	return &LCGGenerator{
		width: w,
		a:     opt.multiplier,
		c:     opt.increment,
	}, nil
}

// Multiplier returns a copy of a.
func (l *LCGGenerator) Multiplier() *big.Int { return new(big.Int).Set(l.a) }

// Increment returns a copy of c.
func (l *LCGGenerator) Increment() *big.Int { return new(big.Int).Set(l.c) }

// Next computes state = (a*state + c) mod 2^bits.
func (l *LCGGenerator) Next() *big.Int {
	l.state.Mul(l.state, l.a)
	l.state.Add(l.state, l.c)
	// And with the mask is mod 2^bits for non-negative values. A negative
	// multiplier or increment needs the euclidean form.
	if l.state.Sign() < 0 {
		l.state.Mod(l.state, new(big.Int).Add(l.mask, one))
	} else {
		l.state.And(l.state, l.mask)
	}
	return l.output()
}
