package sample

import (
	"math/big"
	"testing"

	"github.com/tutils/tprime/prng"
)

var algorithms = []string{"lcg", "xorshift"}

func TestBitsWithinWidth(t *testing.T) {
	for _, algo := range algorithms {
		for _, bits := range []uint{1, 3, 8, 40, 128, 1024} {
			limit := new(big.Int).Lsh(big.NewInt(1), bits)
			last := big.NewInt(21)
			for i := 0; i < 100; i++ {
				v, next, err := Bits(bits, algo, last)
				if err != nil {
					t.Fatalf("%s/%d: %v", algo, bits, err)
				}
				if v.Sign() < 0 || v.Cmp(limit) >= 0 {
					t.Fatalf("%s/%d: value %s out of range", algo, bits, v)
				}
				last = next
			}
		}
	}
}

func TestBitsChainsState(t *testing.T) {
	// the chain must equal a single generator stepped repeatedly when the
	// width does not change
	for _, algo := range algorithms {
		g, err := prng.NewByName(algo, big.NewInt(2<<33), 64)
		if err != nil {
			t.Fatal(err)
		}
		last := big.NewInt(2 << 33)
		for i := 0; i < 50; i++ {
			v, next, err := Bits(64, algo, last)
			if err != nil {
				t.Fatal(err)
			}
			if want := g.Next(); v.Cmp(want) != 0 {
				t.Fatalf("%s step %d: chain %s, generator %s", algo, i, v, want)
			}
			last = next
		}
	}
}

func TestBitsDeterministic(t *testing.T) {
	for _, algo := range algorithms {
		a1, n1, _ := Bits(200, algo, big.NewInt(77))
		a2, n2, _ := Bits(200, algo, big.NewInt(77))
		if a1.Cmp(a2) != 0 || n1.Cmp(n2) != 0 {
			t.Fatalf("%s: (%s, %s) != (%s, %s)", algo, a1, n1, a2, n2)
		}
	}
}

func TestBitsNilSeed(t *testing.T) {
	v, next, err := Bits(16, "lcg", nil)
	if err != nil {
		t.Fatal(err)
	}
	// 1013904223 mod 2^16
	if v.Int64() != 1013904223&0xffff || next.Cmp(v) != 0 {
		t.Fatalf("got (%s, %s)", v, next)
	}
}

func TestUnsupportedAlgorithm(t *testing.T) {
	if _, _, err := Bits(8, "mersenne", big.NewInt(1)); !prng.UnsupportedAlgorithm.Has(err) {
		t.Fatalf("Bits error = %v", err)
	}
	if _, _, err := Range(big.NewInt(1), big.NewInt(9), "bbs", big.NewInt(1)); !prng.UnsupportedAlgorithm.Has(err) {
		t.Fatalf("Range error = %v", err)
	}
	if _, err := New("pcg"); !prng.UnsupportedAlgorithm.Has(err) {
		t.Fatalf("New error = %v", err)
	}
}

func TestZeroBits(t *testing.T) {
	if _, _, err := Bits(0, "lcg", big.NewInt(1)); !prng.InvalidWidth.Has(err) {
		t.Fatalf("error = %v, want InvalidWidth", err)
	}
}

func TestRangeWithinBounds(t *testing.T) {
	tests := []struct {
		name      string
		low, high int64
	}{
		{"witness 97", 2, 95},
		{"witness 341", 2, 339},
		{"power of two size", 0, 15},
		{"one past power of two", 10, 26},
		{"pair", 7, 8},
		{"negative", -50, 50},
	}

	for _, tt := range tests {
		for _, algo := range algorithms {
			t.Run(tt.name+"/"+algo, func(t *testing.T) {
				low, high := big.NewInt(tt.low), big.NewInt(tt.high)
				last := big.NewInt(2 << 33)
				for i := 0; i < 200; i++ {
					v, next, err := Range(low, high, algo, last)
					if err != nil {
						t.Fatal(err)
					}
					if v.Cmp(low) < 0 || v.Cmp(high) > 0 {
						t.Fatalf("value %s outside [%d, %d]", v, tt.low, tt.high)
					}
					last = next
				}
			})
		}
	}
}

func TestRangeSmallWidthSeeds(t *testing.T) {
	// xorshift is the identity at widths below 8, so every seed must still
	// terminate inside the range
	low, high := big.NewInt(2), big.NewInt(95)
	for seed := int64(0); seed < 300; seed++ {
		for _, algo := range algorithms {
			v, _, err := Range(low, high, algo, big.NewInt(seed))
			if err != nil {
				t.Fatal(err)
			}
			if v.Cmp(low) < 0 || v.Cmp(high) > 0 {
				t.Fatalf("%s seed %d: value %s out of range", algo, seed, v)
			}
		}
	}
}

func TestRangeCoversSmallRange(t *testing.T) {
	s, err := New("lcg")
	if err != nil {
		t.Fatal(err)
	}
	seen := make(map[int64]bool)
	last := big.NewInt(5)
	for i := 0; i < 500; i++ {
		v, next, err := s.Range(big.NewInt(1), big.NewInt(6), last)
		if err != nil {
			t.Fatal(err)
		}
		seen[v.Int64()] = true
		last = next
	}
	for face := int64(1); face <= 6; face++ {
		if !seen[face] {
			t.Errorf("value %d never drawn", face)
		}
	}
}

func TestRangeSingleElement(t *testing.T) {
	five := big.NewInt(5)
	for _, algo := range algorithms {
		for _, seed := range []int64{0, 1, 2, 21, 1 << 40} {
			last := big.NewInt(seed)
			v, next, err := Range(five, five, algo, last)
			if err != nil {
				t.Fatal(err)
			}
			if v.Cmp(five) != 0 {
				t.Fatalf("%s seed %d: value %s, want 5", algo, seed, v)
			}
			_, want, _ := Bits(1, algo, last)
			if next.Cmp(want) != 0 {
				t.Fatalf("%s seed %d: next %s, want one draw %s", algo, seed, next, want)
			}
		}
	}
}

func TestRangeInvalid(t *testing.T) {
	_, _, err := Range(big.NewInt(10), big.NewInt(9), "lcg", big.NewInt(1))
	if !InvalidRange.Has(err) {
		t.Fatalf("error = %v, want InvalidRange", err)
	}
}

func TestRangeDoesNotModifyInputs(t *testing.T) {
	low, high, last := big.NewInt(2), big.NewInt(1000), big.NewInt(33)
	if _, _, err := Range(low, high, "xorshift", last); err != nil {
		t.Fatal(err)
	}
	if low.Int64() != 2 || high.Int64() != 1000 || last.Int64() != 33 {
		t.Fatalf("inputs modified: %s %s %s", low, high, last)
	}
}

func TestSamplerOptions(t *testing.T) {
	s := NewKind(prng.LCG, prng.WithPreset(prng.MMIX))
	v, _, err := s.Bits(64, big.NewInt(2345))
	if err != nil {
		t.Fatal(err)
	}
	seed := uint64(2345)
	want := seed*6364136223846793005 + 1442695040888963407
	if v.Uint64() != want {
		t.Fatalf("got %s, want %d", v, want)
	}
	if s.Kind() != prng.LCG {
		t.Fatalf("kind = %v", s.Kind())
	}
}

func TestRangeIgnoresForceMSB(t *testing.T) {
	forced := NewKind(prng.LCG, prng.WithForceMSB(true))
	plain := NewKind(prng.LCG)

	// size 2^64 needs 65-bit draws, none below 2^64 when the top bit is forced
	high := prng.Mask(64)
	v, next, err := forced.Range(new(big.Int), high, big.NewInt(21))
	if err != nil {
		t.Fatal(err)
	}
	wantV, wantNext, _ := plain.Range(new(big.Int), high, big.NewInt(21))
	if v.Cmp(wantV) != 0 || next.Cmp(wantNext) != 0 {
		t.Fatalf("got (%s, %s), want (%s, %s)", v, next, wantV, wantNext)
	}

	// witnesses for n = 97 cover the low half of [2, 95]
	low, top := big.NewInt(2), big.NewInt(95)
	last := big.NewInt(21)
	lowest := int64(96)
	for i := 0; i < 2000; i++ {
		v, n, err := forced.Range(low, top, last)
		if err != nil {
			t.Fatal(err)
		}
		w, _, _ := plain.Range(low, top, last)
		if v.Cmp(w) != 0 {
			t.Fatalf("draw %d: %s != %s", i, v, w)
		}
		if v.Int64() < lowest {
			lowest = v.Int64()
		}
		last = n
	}
	if lowest > 10 {
		t.Fatalf("smallest witness %d", lowest)
	}

	b, _, err := forced.Bits(64, big.NewInt(21))
	if err != nil {
		t.Fatal(err)
	}
	if b.BitLen() != 64 {
		t.Fatalf("Bits dropped the forced top bit: %s", b)
	}
}
