package primality

import (
	"math/big"

	"github.com/tutils/tprime/modarith"
	"github.com/tutils/tprime/sample"
)

// MillerRabinTest runs k rounds of the strong probable prime test on n.
//
// n-1 is decomposed as d*2^r once. Each round draws a from [2, n-2] and
// computes x = a^d mod n; the round passes if x is 1 or n-1, or if one of the
// next r-1 squarings of x is n-1. The first failing round ends the test.
func MillerRabinTest(s *sample.Sampler, n *big.Int, k int, last *big.Int) (Result, error) {
	if err := checkRounds(k); err != nil {
		return Result{}, err
	}
	last = copyOf(last)

	switch {
	case n.Cmp(one) <= 0, n.Cmp(four) == 0:
		return Result{false, last}, nil
	case n.Cmp(three) <= 0:
		return Result{true, last}, nil
	case n.Bit(0) == 0:
		return Result{false, last}, nil
	}

	d, r := Decompose(n)
	nm1 := new(big.Int).Sub(n, one)

	for i := 0; i < k; i++ {
		a, next, err := witness(s, n, last)
		if err != nil {
			return Result{}, err
		}
		last = next

		x := modarith.MustModPow(a, d, n)
		if !strongRound(x, n, nm1, r) {
			return Result{false, last}, nil
		}
	}
	return Result{true, last}, nil
}

// strongRound reports whether x = a^d mod n witnesses n as a probable prime.
// x is overwritten.
func strongRound(x, n, nm1 *big.Int, r uint) bool {
	if x.Cmp(one) == 0 || x.Cmp(nm1) == 0 {
		return true
	}
	for j := uint(1); j < r; j++ {
		x.Mul(x, x).Mod(x, n)
		switch {
		case x.Cmp(nm1) == 0:
			return true
		case x.Cmp(one) == 0:
			// 1 squares to 1, n-1 can no longer appear
			return false
		}
	}
	return false
}
