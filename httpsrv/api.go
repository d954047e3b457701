package httpsrv

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"math/big"
	"net/http"
	"strconv"

	"github.com/zeebo/errs"

	"github.com/tutils/tprime/cache/lru"
	"github.com/tutils/tprime/config"
	"github.com/tutils/tprime/modarith"
	"github.com/tutils/tprime/primality"
	"github.com/tutils/tprime/prime"
	"github.com/tutils/tprime/prng"
	"github.com/tutils/tprime/sample"
)

var (
	// Error is the class of service errors.
	Error = errs.Class("httpsrv")
	// BadRequest is the class of malformed requests.
	BadRequest = errs.Class("bad request")
	// JobNotFound is returned for unknown job ids.
	JobNotFound = errs.Class("job not found")
)

const defaultRounds = 5

// APIResponse is the envelope of every JSON response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// LCGParams selects the LCG multiplier and increment. Empty fields take the
// default preset.
type LCGParams struct {
	Preset     string `json:"preset,omitempty"`
	Multiplier string `json:"multiplier,omitempty"`
	Increment  string `json:"increment,omitempty"`
	ForceMSB   bool   `json:"forceMsb,omitempty"`
}

// GenerateRequest asks for a probable prime. Integers are decimal or
// prefixed strings. Seed defaults to Bits and Rounds to 5.
type GenerateRequest struct {
	Bits      uint   `json:"bits"`
	Algorithm string `json:"algorithm"`
	Seed      string `json:"seed,omitempty"`
	Test      string `json:"test,omitempty"`
	Rounds    int    `json:"rounds,omitempty"`
	LCGParams
}

// GenerateResponse is a generated prime.
type GenerateResponse struct {
	Prime    string `json:"prime"`
	Bits     uint   `json:"bits"`
	Attempts int    `json:"attempts"`
	Last     string `json:"last"`
	Cached   bool   `json:"cached"`
}

// TestRequest asks whether N is a probable prime.
type TestRequest struct {
	N         string `json:"n"`
	Algorithm string `json:"algorithm"`
	Seed      string `json:"seed,omitempty"`
	Test      string `json:"test,omitempty"`
	Rounds    int    `json:"rounds,omitempty"`
	LCGParams
}

// TestResponse is the verdict and the chain state after the test.
type TestResponse struct {
	ProbablePrime bool   `json:"probablePrime"`
	Last          string `json:"last"`
}

// SampleRequest draws Bits random bits, or a value in [Low, High] when Bits
// is zero.
type SampleRequest struct {
	Algorithm string `json:"algorithm"`
	Bits      uint   `json:"bits,omitempty"`
	Low       string `json:"low,omitempty"`
	High      string `json:"high,omitempty"`
	Last      string `json:"last,omitempty"`
	LCGParams
}

// SampleResponse is a drawn value and the next chain state.
type SampleResponse struct {
	Value string `json:"value"`
	Next  string `json:"next"`
}

// ModPowRequest computes Base^Exp mod Mod.
type ModPowRequest struct {
	Base string `json:"base"`
	Exp  string `json:"exp"`
	Mod  string `json:"mod"`
}

func (p LCGParams) resolve(l Limits) ([]prng.Option, []string, error) {
	name := p.Preset
	if name == "" {
		name = prng.DefaultPreset.Name
	}
	preset, ok := prng.LookupPreset(name)
	if !ok {
		return nil, nil, BadRequest.New("unknown lcg preset %q", p.Preset)
	}

	a, err := l.parse("multiplier", p.Multiplier, preset.Multiplier)
	if err != nil {
		return nil, nil, err
	}
	c, err := l.parse("increment", p.Increment, preset.Increment)
	if err != nil {
		return nil, nil, err
	}

	opts := []prng.Option{
		prng.WithMultiplier(a),
		prng.WithIncrement(c),
		prng.WithForceMSB(p.ForceMSB),
	}
	return opts, []string{a.String(), c.String(), strconv.FormatBool(p.ForceMSB)}, nil
}

// parse parses the integer field name, or returns def when s is empty.
func (l Limits) parse(name, s string, def *big.Int) (*big.Int, error) {
	if s == "" {
		if def == nil {
			return nil, BadRequest.New("%s is required", name)
		}
		return def, nil
	}
	n, err := config.ParseInt(s)
	if err != nil {
		return nil, BadRequest.New("%s: %v", name, err)
	}
	if err := l.checkInt(name, n); err != nil {
		return nil, err
	}
	return n, nil
}

func parseTest(name string) (primality.Test, error) {
	if name == "" {
		return primality.MillerRabin, nil
	}
	return primality.ParseTest(name)
}

func (l Limits) rounds(k int) (int, error) {
	if k == 0 {
		k = defaultRounds
	}
	if k < 1 {
		return 0, primality.InvalidRounds.New("rounds = %d", k)
	}
	return k, l.checkRounds(k)
}

// run is a resolved GenerateRequest.
type run struct {
	req      prime.Request
	prngOpts []prng.Option
	key      uint64
}

func (r GenerateRequest) resolve(l Limits) (run, error) {
	if r.Bits == 0 {
		return run{}, prng.InvalidWidth.New("bits must be positive")
	}
	if err := l.checkWidth(r.Bits); err != nil {
		return run{}, err
	}
	kind, err := prng.ParseKind(r.Algorithm)
	if err != nil {
		return run{}, err
	}
	test, err := parseTest(r.Test)
	if err != nil {
		return run{}, err
	}
	k, err := l.rounds(r.Rounds)
	if err != nil {
		return run{}, err
	}
	seed, err := l.parse("seed", r.Seed, new(big.Int).SetUint64(uint64(r.Bits)))
	if err != nil {
		return run{}, err
	}
	opts, params, err := r.LCGParams.resolve(l)
	if err != nil {
		return run{}, err
	}

	parts := append([]string{
		"generate",
		strconv.FormatUint(uint64(r.Bits), 10),
		kind.String(),
		seed.String(),
		test.String(),
		strconv.Itoa(k),
	}, params...)

	return run{
		req: prime.Request{
			Bits:      r.Bits,
			Algorithm: kind.String(),
			Seed:      seed,
			Test:      test,
			Rounds:    k,
		},
		prngOpts: opts,
		key:      lru.Key(parts...),
	}, nil
}

func (r TestRequest) run(l Limits) (TestResponse, error) {
	n, err := l.parse("n", r.N, nil)
	if err != nil {
		return TestResponse{}, err
	}
	test, err := parseTest(r.Test)
	if err != nil {
		return TestResponse{}, err
	}
	k, err := l.rounds(r.Rounds)
	if err != nil {
		return TestResponse{}, err
	}
	seed, err := l.parse("seed", r.Seed, new(big.Int))
	if err != nil {
		return TestResponse{}, err
	}
	opts, _, err := r.LCGParams.resolve(l)
	if err != nil {
		return TestResponse{}, err
	}
	s, err := sample.New(r.Algorithm, opts...)
	if err != nil {
		return TestResponse{}, err
	}

	res, err := primality.Run(test, s, n, k, seed)
	if err != nil {
		return TestResponse{}, err
	}
	return TestResponse{ProbablePrime: res.ProbablePrime, Last: res.Last.String()}, nil
}

func (r SampleRequest) run(l Limits) (SampleResponse, error) {
	last, err := l.parse("last", r.Last, new(big.Int))
	if err != nil {
		return SampleResponse{}, err
	}
	opts, _, err := r.LCGParams.resolve(l)
	if err != nil {
		return SampleResponse{}, err
	}
	s, err := sample.New(r.Algorithm, opts...)
	if err != nil {
		return SampleResponse{}, err
	}

	var v, next *big.Int
	if r.Bits > 0 {
		if err := l.checkWidth(r.Bits); err != nil {
			return SampleResponse{}, err
		}
		v, next, err = s.Bits(r.Bits, last)
	} else {
		var low, high *big.Int
		if low, err = l.parse("low", r.Low, nil); err != nil {
			return SampleResponse{}, err
		}
		if high, err = l.parse("high", r.High, nil); err != nil {
			return SampleResponse{}, err
		}
		if err := l.checkInt("high - low", new(big.Int).Sub(high, low)); err != nil {
			return SampleResponse{}, err
		}
		v, next, err = s.Range(low, high, last)
	}
	if err != nil {
		return SampleResponse{}, err
	}
	return SampleResponse{Value: v.String(), Next: next.String()}, nil
}

func (r ModPowRequest) run(l Limits) (string, error) {
	base, err := l.parse("base", r.Base, nil)
	if err != nil {
		return "", err
	}
	exp, err := l.parse("exp", r.Exp, nil)
	if err != nil {
		return "", err
	}
	mod, err := l.parse("mod", r.Mod, nil)
	if err != nil {
		return "", err
	}
	x, err := modarith.ModPow(base, exp, mod)
	if err != nil {
		return "", err
	}
	return x.String(), nil
}

func statusOf(err error) int {
	switch {
	case JobNotFound.Has(err):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case prime.ChainCycle.Has(err):
		return http.StatusUnprocessableEntity
	case BadRequest.Has(err),
		prng.UnsupportedAlgorithm.Has(err),
		prng.InvalidWidth.Has(err),
		primality.UnsupportedTest.Has(err),
		primality.InvalidRounds.Has(err),
		sample.InvalidRange.Has(err),
		modarith.DegenerateModulus.Has(err),
		modarith.NegativeExponent.Has(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, resp APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("[ERROR] encode response: %v", err)
	}
}

func writeData(w http.ResponseWriter, data interface{}) {
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, reqID string, err error) {
	log.Printf("[ERROR] %s %v", reqID, err)
	writeJSON(w, statusOf(err), APIResponse{Success: false, Error: err.Error()})
}
