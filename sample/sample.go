// Package sample draws bit width and range constrained integers from a prng
// chain. Every draw builds a fresh generator seeded with the previous draw's
// raw state, and hands the new state back to the caller.
package sample

import (
	"math/big"

	"github.com/zeebo/errs"

	"github.com/tutils/tprime/prng"
)

// InvalidRange is returned when low > high.
var InvalidRange = errs.Class("invalid range")

var one = big.NewInt(1)

// Sampler draws values from one generator algorithm. It holds no chain state
// and is safe for concurrent use.
type Sampler struct {
	kind prng.Kind
	opts []prng.Option
	// rangeOpts are opts without force-msb, so range draws stay uniform.
	rangeOpts []prng.Option
}

// New returns a sampler for the named algorithm.
func New(algorithm string, opts ...prng.Option) (*Sampler, error) {
	kind, err := prng.ParseKind(algorithm)
	if err != nil {
		return nil, err
	}
	return NewKind(kind, opts...), nil
}

// NewKind returns a sampler for kind. opts are applied to every generator
// the sampler creates, except that Range ignores prng.WithForceMSB.
func NewKind(kind prng.Kind, opts ...prng.Option) *Sampler {
	o := append([]prng.Option(nil), opts...)
	return &Sampler{
		kind:      kind,
		opts:      o,
		rangeOpts: append(o[:len(o):len(o)], prng.WithForceMSB(false)),
	}
}

// Kind returns the generator algorithm.
func (s *Sampler) Kind() prng.Kind { return s.kind }

// Bits returns a value in [0, 2^bits) and the chain state that seeds the
// next draw.
func (s *Sampler) Bits(bits uint, last *big.Int) (value, next *big.Int, err error) {
	return s.draw(bits, last, s.opts)
}

func (s *Sampler) draw(bits uint, last *big.Int, opts []prng.Option) (value, next *big.Int, err error) {
	if last == nil {
		last = new(big.Int)
	}
	g, err := prng.New(s.kind, last, bits, opts...)
	if err != nil {
		return nil, nil, err
	}
	value = g.Next()
	return value.And(value, prng.Mask(bits)), g.State(), nil
}

// Range returns a value uniformly drawn from [low, high] by rejection.
//
// The draw width is the bit length of the range size so at least half of the
// draws are accepted. A chain that comes back to a state it already rejected
// from would never be accepted; the last rejected draw is then reduced modulo
// the range size. Range draws never force the top bit.
func (s *Sampler) Range(low, high, last *big.Int) (value, next *big.Int, err error) {
	if low.Cmp(high) > 0 {
		return nil, nil, InvalidRange.New("low %s > high %s", low, high)
	}
	if last == nil {
		last = new(big.Int)
	}

	size := new(big.Int).Sub(high, low)
	size.Add(size, one)
	bits := uint(size.BitLen())

	if size.Cmp(one) == 0 {
		_, next, err := s.draw(bits, last, s.rangeOpts)
		if err != nil {
			return nil, nil, err
		}
		return new(big.Int).Set(low), next, nil
	}

	var (
		seen     = make(map[string]struct{})
		rejected *big.Int
	)
	for {
		key := last.Text(16)
		if _, ok := seen[key]; ok && rejected != nil {
			rejected.Mod(rejected, size)
			return rejected.Add(rejected, low), last, nil
		}
		seen[key] = struct{}{}

		v, n, err := s.draw(bits, last, s.rangeOpts)
		if err != nil {
			return nil, nil, err
		}
		if v.Cmp(size) < 0 {
			return v.Add(v, low), n, nil
		}
		rejected, last = v, n
	}
}

// Bits is Sampler.Bits for a named algorithm with default parameters.
func Bits(bits uint, algorithm string, last *big.Int) (value, next *big.Int, err error) {
	s, err := New(algorithm)
	if err != nil {
		return nil, nil, err
	}
	return s.Bits(bits, last)
}

// Range is Sampler.Range for a named algorithm with default parameters.
func Range(low, high *big.Int, algorithm string, last *big.Int) (value, next *big.Int, err error) {
	s, err := New(algorithm)
	if err != nil {
		return nil, nil, err
	}
	return s.Range(low, high, last)
}
