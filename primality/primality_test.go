package primality

import (
	"math/big"
	"testing"

	"github.com/tutils/tprime/modarith"
	"github.com/tutils/tprime/sample"
)

var algorithms = []string{"lcg", "xorshift"}

// composites that pass the Fermat test for some bases
var pseudoprimes = []int64{341, 561, 645, 1105, 1387, 1729, 1905, 2047, 2465, 2701}

func TestParseTest(t *testing.T) {
	tests := []struct {
		name    string
		want    Test
		wantErr bool
	}{
		{"miller_rabin", MillerRabin, false},
		{"miller-rabin", MillerRabin, false},
		{"Miller Rabin", MillerRabin, false},
		{"mr", MillerRabin, false},
		{"fermat", Fermat, false},
		{"FERMAT", Fermat, false},
		{"solovay-strassen", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTest(tt.name)
			if tt.wantErr {
				if !UnsupportedTest.Has(err) {
					t.Fatalf("ParseTest(%q) error = %v", tt.name, err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Fatalf("ParseTest(%q) = %v, %v, want %v", tt.name, got, err, tt.want)
			}
		})
	}
}

func TestDecompose(t *testing.T) {
	tests := []struct {
		n int64
		d int64
		r uint
	}{
		{5, 1, 2},
		{7, 3, 1},
		{97, 3, 5},
		{341, 85, 2},
		{561, 35, 4},
		{2047, 1023, 1},
	}

	for _, tt := range tests {
		d, r := Decompose(big.NewInt(tt.n))
		if d.Int64() != tt.d || r != tt.r {
			t.Errorf("Decompose(%d) = (%s, %d), want (%d, %d)", tt.n, d, r, tt.d, tt.r)
		}
	}
}

func TestTrivialCases(t *testing.T) {
	tests := []struct {
		n    int64
		want bool
	}{
		{-7, false},
		{0, false},
		{1, false},
		{2, true},
		{3, true},
		{4, false},
		{6, false},
		{100, false},
	}

	for _, test := range []Test{MillerRabin, Fermat} {
		for _, tt := range tests {
			for _, algo := range algorithms {
				got, last, err := IsProbablePrime(big.NewInt(tt.n), algo, big.NewInt(21), test, 5)
				if err != nil {
					t.Fatalf("%v(%d): %v", test, tt.n, err)
				}
				if got != tt.want {
					t.Errorf("%v/%s(%d) = %v, want %v", test, algo, tt.n, got, tt.want)
				}
				if last.Int64() != 21 {
					t.Errorf("%v/%s(%d): trivial case consumed the chain, last = %s", test, algo, tt.n, last)
				}
			}
		}
	}
}

func TestSmallPrimesAlwaysPass(t *testing.T) {
	primes := []int64{5, 7, 11, 13, 97, 7919, 104729}
	for _, test := range []Test{MillerRabin, Fermat} {
		for _, algo := range algorithms {
			for _, p := range primes {
				for seed := int64(0); seed < 200; seed++ {
					for _, k := range []int{1, 5} {
						ok, _, err := IsProbablePrime(big.NewInt(p), algo, big.NewInt(seed), test, k)
						if err != nil {
							t.Fatal(err)
						}
						if !ok {
							t.Fatalf("%v/%s rejected prime %d (seed %d, k %d)", test, algo, p, seed, k)
						}
					}
				}
			}
		}
	}
}

func TestMillerRabinRejectsPseudoprimes(t *testing.T) {
	for _, algo := range algorithms {
		for _, n := range pseudoprimes {
			rejected := 0
			for seed := int64(1); seed <= 100; seed++ {
				ok, _, err := IsProbablePrime(big.NewInt(n), algo, big.NewInt(seed), MillerRabin, 5)
				if err != nil {
					t.Fatal(err)
				}
				if !ok {
					rejected++
				}
			}
			if rejected == 0 {
				t.Errorf("%s: Miller-Rabin never rejected %d", algo, n)
			}
		}
	}
}

func TestFermatMillerRabinDivergence(t *testing.T) {
	// Fermat liars that are not strong liars: the same chain that fools the
	// Fermat test is caught by Miller-Rabin.
	for _, algo := range algorithms {
		for _, n := range pseudoprimes {
			found := false
			for seed := int64(1); seed <= 1000 && !found; seed++ {
				fermat, _, err := IsProbablePrime(big.NewInt(n), algo, big.NewInt(seed), Fermat, 1)
				if err != nil {
					t.Fatal(err)
				}
				mr, _, err := IsProbablePrime(big.NewInt(n), algo, big.NewInt(seed), MillerRabin, 5)
				if err != nil {
					t.Fatal(err)
				}
				found = fermat && !mr
			}
			if !found {
				t.Errorf("%s: no seed where Fermat accepts and Miller-Rabin rejects %d", algo, n)
			}
		}
	}
}

func TestFermatBaseTwoLiar(t *testing.T) {
	// 2^340 = 1 mod 341 but 2^85 = 32 and 32^2 = 1 mod 341
	n := big.NewInt(341)
	x, err := modarith.ModPow(big.NewInt(2), big.NewInt(340), n)
	if err != nil {
		t.Fatal(err)
	}
	if x.Int64() != 1 {
		t.Fatalf("2^340 mod 341 = %s, want 1", x)
	}

	d, r := Decompose(n)
	x = modarith.MustModPow(big.NewInt(2), d, n)
	if strongRound(x, n, big.NewInt(340), r) {
		t.Fatal("base 2 passed the strong round for 341")
	}
}

func TestCompositesRejected(t *testing.T) {
	for _, test := range []Test{MillerRabin, Fermat} {
		for _, algo := range algorithms {
			for _, n := range []int64{9, 15, 21, 25, 91, 1001, 10403} {
				ok, _, err := IsProbablePrime(big.NewInt(n), algo, big.NewInt(1<<20), test, 20)
				if err != nil {
					t.Fatal(err)
				}
				if ok {
					t.Errorf("%v/%s accepted %d with 20 rounds", test, algo, n)
				}
			}
		}
	}
}

func TestLargePrime(t *testing.T) {
	// 2^127 - 1
	p := new(big.Int).Lsh(big.NewInt(1), 127)
	p.Sub(p, big.NewInt(1))
	q := new(big.Int).Mul(p, big.NewInt(3))
	q.Add(q, big.NewInt(2))

	for _, test := range []Test{MillerRabin, Fermat} {
		for _, algo := range algorithms {
			ok, _, err := IsProbablePrime(p, algo, big.NewInt(2<<33), test, 5)
			if err != nil {
				t.Fatal(err)
			}
			if !ok {
				t.Errorf("%v/%s rejected 2^127-1", test, algo)
			}

			ok, _, err = IsProbablePrime(q, algo, big.NewInt(2<<33), test, 5)
			if err != nil {
				t.Fatal(err)
			}
			if ok != q.ProbablyPrime(20) {
				t.Errorf("%v/%s(%s) = %v, reference disagrees", test, algo, q, ok)
			}
		}
	}
}

func TestChainThreading(t *testing.T) {
	s, _ := sample.New("lcg")
	first, err := MillerRabinTest(s, big.NewInt(97), 3, big.NewInt(5))
	if err != nil {
		t.Fatal(err)
	}

	// three witness draws from [2, 95]
	last := big.NewInt(5)
	for i := 0; i < 3; i++ {
		_, last, err = s.Range(big.NewInt(2), big.NewInt(95), last)
		if err != nil {
			t.Fatal(err)
		}
	}
	if first.Last.Cmp(last) != 0 {
		t.Fatalf("Last = %s, want %s", first.Last, last)
	}

	again, _ := MillerRabinTest(s, big.NewInt(97), 3, big.NewInt(5))
	if again.Last.Cmp(first.Last) != 0 || again.ProbablePrime != first.ProbablePrime {
		t.Fatal("test is not deterministic")
	}
}

func TestStopsAtFirstFailedRound(t *testing.T) {
	s, _ := sample.New("lcg")
	n := big.NewInt(91) // 7 * 13
	res, err := FermatTest(s, n, 50, big.NewInt(3))
	if err != nil {
		t.Fatal(err)
	}
	if res.ProbablePrime {
		t.Fatal("91 accepted")
	}

	// count the draws that were consumed
	last := big.NewInt(3)
	draws := 0
	for last.Cmp(res.Last) != 0 {
		if draws > 50 {
			t.Fatal("chain not reached")
		}
		_, last, _ = s.Range(big.NewInt(2), big.NewInt(89), last)
		draws++
	}
	if draws == 50 {
		t.Fatal("a failing test ran every round")
	}
}

func TestInvalidArguments(t *testing.T) {
	if _, _, err := IsProbablePrime(big.NewInt(97), "lcg", big.NewInt(1), MillerRabin, 0); !InvalidRounds.Has(err) {
		t.Errorf("k=0 error = %v", err)
	}
	if _, _, err := IsProbablePrime(big.NewInt(97), "lcg", big.NewInt(1), Test(9), 1); !UnsupportedTest.Has(err) {
		t.Errorf("bad test error = %v", err)
	}
	if _, _, err := IsProbablePrime(big.NewInt(97), "rc4", big.NewInt(1), Fermat, 1); err == nil {
		t.Error("bad algorithm accepted")
	}
}
