package period

import (
	"sync"
	"testing"
	"time"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func TestCounterRate(t *testing.T) {
	clk := &clock{t: time.Unix(1000, 0)}
	c := newWithClock(time.Second, clk.now)

	c.Add(10)
	if c.Value() != 10 {
		t.Fatalf("Value() = %d, want 10", c.Value())
	}
	if c.RatePerSec() != 0 {
		t.Fatalf("rate before first period = %d", c.RatePerSec())
	}

	clk.advance(2 * time.Second)
	c.Add(10)
	if got := c.RatePerSec(); got != 10 {
		t.Fatalf("RatePerSec() = %d, want 10", got)
	}

	// within the period the rate is not recomputed
	clk.advance(500 * time.Millisecond)
	c.Add(100)
	if got := c.RatePerSec(); got != 10 {
		t.Fatalf("RatePerSec() = %d, want 10", got)
	}

	clk.advance(500 * time.Millisecond)
	s := c.Snapshot()
	if s.Total != 120 || s.RatePerSec != 100 || s.Uptime != 3 {
		t.Fatalf("Snapshot() = %+v", s)
	}
}

func TestCounterConcurrentAdd(t *testing.T) {
	c := New(time.Hour)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				c.Add(1)
			}
		}()
	}
	wg.Wait()
	if c.Value() != 8000 {
		t.Fatalf("Value() = %d, want 8000", c.Value())
	}
}
