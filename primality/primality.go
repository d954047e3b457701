// Package primality implements the Miller-Rabin and Fermat probabilistic
// primality tests. Witnesses are drawn from a sample chain that the caller
// threads through successive calls.
//
// A composite verdict is a normal result, not an error. Errors are only
// returned for bad arguments.
package primality

import (
	"math/big"
	"strings"

	"github.com/zeebo/errs"

	"github.com/tutils/tprime/sample"
)

// Error classes returned by this package.
var (
	UnsupportedTest = errs.Class("unsupported test")
	InvalidRounds   = errs.Class("invalid rounds")
)

// Test selects a primality test.
type Test int

const (
	MillerRabin Test = iota + 1
	Fermat
)

func (t Test) String() string {
	switch t {
	case MillerRabin:
		return "miller-rabin"
	case Fermat:
		return "fermat"
	default:
		return "unknown"
	}
}

// ParseTest resolves a test name such as "miller_rabin", "miller-rabin",
// "mr" or "fermat".
func ParseTest(name string) (Test, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.NewReplacer("_", "", "-", "", " ", "").Replace(n)
	switch n {
	case "millerrabin", "mr":
		return MillerRabin, nil
	case "fermat":
		return Fermat, nil
	}
	return 0, UnsupportedTest.New("%q: use miller-rabin or fermat", name)
}

// Result is the outcome of one test invocation.
type Result struct {
	ProbablePrime bool
	// Last is the chain state after the final witness draw.
	Last *big.Int
}

var (
	one   = big.NewInt(1)
	two   = big.NewInt(2)
	three = big.NewInt(3)
	four  = big.NewInt(4)
)

// Run dispatches to the selected test.
func Run(test Test, s *sample.Sampler, n *big.Int, k int, last *big.Int) (Result, error) {
	switch test {
	case MillerRabin:
		return MillerRabinTest(s, n, k, last)
	case Fermat:
		return FermatTest(s, n, k, last)
	}
	return Result{}, UnsupportedTest.New("test %d", int(test))
}

// IsProbablePrime runs test on n with k rounds, drawing witnesses from the
// named algorithm seeded with seed.
func IsProbablePrime(n *big.Int, algorithm string, seed *big.Int, test Test, k int) (bool, *big.Int, error) {
	s, err := sample.New(algorithm)
	if err != nil {
		return false, nil, err
	}
	res, err := Run(test, s, n, k, seed)
	if err != nil {
		return false, nil, err
	}
	return res.ProbablePrime, res.Last, nil
}

// Decompose writes n-1 as d*2^r with d odd. n must be odd and > 1.
func Decompose(n *big.Int) (d *big.Int, r uint) {
	d = new(big.Int).Sub(n, one)
	r = d.TrailingZeroBits()
	return d.Rsh(d, r), r
}

// witness draws a base from [2, n-2].
func witness(s *sample.Sampler, n, last *big.Int) (a, next *big.Int, err error) {
	return s.Range(two, new(big.Int).Sub(n, two), last)
}

func checkRounds(k int) error {
	if k < 1 {
		return InvalidRounds.New("k = %d, need at least one round", k)
	}
	return nil
}

func copyOf(x *big.Int) *big.Int {
	if x == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(x)
}
