package primality

import (
	"math/big"

	"github.com/tutils/tprime/modarith"
	"github.com/tutils/tprime/sample"
)

// FermatTest runs k rounds of the Fermat test on n: each round draws a from
// [2, n-2] and rejects n unless a^(n-1) = 1 mod n. Fermat pseudoprimes to the
// drawn bases pass, and Carmichael numbers pass for every coprime base.
func FermatTest(s *sample.Sampler, n *big.Int, k int, last *big.Int) (Result, error) {
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

	nm1 := new(big.Int).Sub(n, one)
	for i := 0; i < k; i++ {
		a, next, err := witness(s, n, last)
		if err != nil {
			return Result{}, err
		}
		last = next

		x := modarith.MustModPow(a, nm1, n)
		if x.Cmp(one) != 0 {
			return Result{false, last}, nil
		}
	}
	return Result{true, last}, nil
}
