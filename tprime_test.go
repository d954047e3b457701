package tprime

import (
	"bytes"
	"context"
	"math/big"
	"strings"
	"sync"
	"testing"

	"github.com/tutils/tprime/primality"
	"github.com/tutils/tprime/prime"
)

func TestProgressMarks(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(&buf)
	obs := p.Observer()
	obs(prime.Event{Attempt: 1})
	obs(prime.Event{Attempt: 2})
	obs(prime.Event{Attempt: 3, Accepted: true})
	if got := buf.String(); got != "XXO" {
		t.Fatalf("marks = %q, want XXO", got)
	}
}

func TestProgressConcurrentRuns(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(&buf)

	widths := []uint{40, 56, 64, 80}
	attempts := make([]int, len(widths))
	var wg sync.WaitGroup
	for i, bits := range widths {
		wg.Add(1)
		go func(i int, bits uint) {
			defer wg.Done()
			res, err := prime.Run(context.Background(), prime.Request{
				Bits:      bits,
				Algorithm: "xorshift",
				Seed:      big.NewInt(int64(bits)),
				Test:      primality.MillerRabin,
				Rounds:    5,
			}, prime.WithObserver(p.Observer()))
			if err != nil {
				t.Error(err)
				return
			}
			attempts[i] = res.Attempts
		}(i, bits)
	}
	wg.Wait()

	total := 0
	for _, n := range attempts {
		total += n
	}
	out := buf.String()
	if len(out) != total {
		t.Fatalf("%d marks for %d candidates", len(out), total)
	}
	if n := strings.Count(out, "O"); n != len(widths) {
		t.Fatalf("%d accepted marks, want %d", n, len(widths))
	}
}
