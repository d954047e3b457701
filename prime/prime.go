// Package prime generates probable primes of an exact bit length from a
// deterministic prng chain.
package prime

import (
	"context"
	"math/big"

	"github.com/zeebo/errs"

	"github.com/tutils/tprime/primality"
	"github.com/tutils/tprime/prng"
	"github.com/tutils/tprime/sample"
)

// ChainCycle is returned when the chain comes back to a state it already
// drew a candidate from. Every later candidate would repeat, so no prime can
// be found from that seed.
var ChainCycle = errs.Class("prng chain cycle")

// Event describes one tested candidate.
type Event struct {
	// Attempt counts candidates from 1.
	Attempt   int
	Candidate *big.Int
	Accepted  bool
}

// Observer receives candidate events.
type Observer func(Event)

// Request holds the parameters of one generation run.
type Request struct {
	Bits      uint
	Algorithm string
	Seed      *big.Int
	Test      primality.Test
	Rounds    int
}

// Result is a generated probable prime.
type Result struct {
	Prime *big.Int
	// Attempts is the number of candidates tested, the prime included.
	Attempts int
	// Last is the chain state after the accepting test.
	Last *big.Int
}

// Generate returns a probable prime of exactly bits bits.
//
// Each iteration draws a candidate with sample.Bits, normalizes it and runs
// the test with k rounds. The chain is threaded through every draw and is
// never reset, so a request is reproducible from its seed. ctx is checked
// between candidates only.
func Generate(ctx context.Context, bits uint, algorithm string, seed *big.Int, test primality.Test, k int, opts ...Option) (*big.Int, error) {
	res, err := Run(ctx, Request{
		Bits:      bits,
		Algorithm: algorithm,
		Seed:      seed,
		Test:      test,
		Rounds:    k,
	}, opts...)
	if err != nil {
		return nil, err
	}
	return res.Prime, nil
}

// Run is Generate with the full result.
func Run(ctx context.Context, req Request, opts ...Option) (Result, error) {
	opt := newOptions(opts...)

	kind, err := prng.ParseKind(req.Algorithm)
	if err != nil {
		return Result{}, err
	}
	if req.Bits == 0 {
		return Result{}, prng.InvalidWidth.New("bits must be positive")
	}
	if req.Rounds < 1 {
		return Result{}, primality.InvalidRounds.New("k = %d, need at least one round", req.Rounds)
	}
	if req.Test != primality.MillerRabin && req.Test != primality.Fermat {
		return Result{}, primality.UnsupportedTest.New("test %d", int(req.Test))
	}
	s := sample.NewKind(kind, opt.prngOpts...)

	last := new(big.Int)
	if req.Seed != nil {
		last.Set(req.Seed)
	}

	seen := make(map[string]struct{})
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		key := last.Text(16)
		if _, ok := seen[key]; ok {
			return Result{}, ChainCycle.New("%s %d-bit chain repeated after %d candidates", kind, req.Bits, attempt-1)
		}
		seen[key] = struct{}{}

		v, next, err := s.Bits(req.Bits, last)
		if err != nil {
			return Result{}, err
		}
		candidate := Normalize(v, req.Bits)

		res, err := primality.Run(req.Test, s, candidate, req.Rounds, next)
		if err != nil {
			return Result{}, err
		}
		last = res.Last

		opt.counter.Add(1)
		opt.observer(Event{
			Attempt:   attempt,
			Candidate: candidate,
			Accepted:  res.ProbablePrime,
		})

		if res.ProbablePrime {
			return Result{
				Prime:    candidate,
				Attempts: attempt,
				Last:     last,
			}, nil
		}
	}
}
