// Package modarith provides the modular exponentiation used by the
// primality tests.
package modarith

import (
	"math/big"

	"github.com/zeebo/errs"
)

// Error classes returned by ModPow.
var (
	DegenerateModulus = errs.Class("degenerate modulus")
	NegativeExponent  = errs.Class("negative exponent")
)

var one = big.NewInt(1)

// ModPow returns base^exp mod m by right-to-left square and multiply.
// A modulus of one yields zero.
func ModPow(base, exp, m *big.Int) (*big.Int, error) {
	if m.Sign() <= 0 {
		return nil, DegenerateModulus.New("modulus %s", m)
	}
	if exp.Sign() < 0 {
		return nil, NegativeExponent.New("exponent %s", exp)
	}
	if m.Cmp(one) == 0 {
		return new(big.Int), nil
	}

	result := big.NewInt(1)
	b := new(big.Int).Mod(base, m)
	// result * b^(remaining bits of exp) stays congruent to base^exp.
	for i, n := 0, exp.BitLen(); i < n; i++ {
		if exp.Bit(i) == 1 {
			result.Mul(result, b).Mod(result, m)
		}
		if i+1 < n {
			b.Mul(b, b).Mod(b, m)
		}
	}
	return result, nil
}

// MustModPow is ModPow for callers that already validated m > 0 and exp >= 0.
// It panics otherwise.
func MustModPow(base, exp, m *big.Int) *big.Int {
	r, err := ModPow(base, exp, m)
	if err != nil {
		panic(err)
	}
	return r
}
