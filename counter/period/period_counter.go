// Package period implements a counter whose rate is recomputed once per
// sampling period.
package period

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/tutils/tprime/counter"
)

var _ counter.Counter = &Counter{}

// Counter is safe for concurrent use.
type Counter struct {
	value      int64
	ratePerSec int64

	period time.Duration
	epoch  time.Time
	now    func() time.Time

	mut       sync.Mutex
	lastValue int64
	lastTime  time.Time
}

// New returns a counter sampling its rate every period.
func New(period time.Duration) *Counter {
	return newWithClock(period, time.Now)
}

func newWithClock(period time.Duration, now func() time.Time) *Counter {
	t := now()
	return &Counter{
		period:   period,
		epoch:    t,
		now:      now,
		lastTime: t,
	}
}

// Value implements counter.Counter.
func (c *Counter) Value() int64 {
	return atomic.LoadInt64(&c.value)
}

// RatePerSec implements counter.Counter.
func (c *Counter) RatePerSec() int64 {
	return atomic.LoadInt64(&c.ratePerSec)
}

// Add implements counter.Counter.
func (c *Counter) Add(n int64) {
	atomic.AddInt64(&c.value, n)
	c.sample()
}

// Uptime returns the time since the counter was created.
func (c *Counter) Uptime() time.Duration {
	return c.now().Sub(c.epoch)
}

// Snapshot is a point in time view of a counter.
type Snapshot struct {
	Total      int64   `json:"total"`
	RatePerSec int64   `json:"ratePerSec"`
	Uptime     float64 `json:"uptimeSec"`
}

// Snapshot returns the current totals.
func (c *Counter) Snapshot() Snapshot {
	c.sample()
	return Snapshot{
		Total:      c.Value(),
		RatePerSec: c.RatePerSec(),
		Uptime:     c.Uptime().Seconds(),
	}
}

func (c *Counter) sample() {
	c.mut.Lock()
	defer c.mut.Unlock()

	now := c.now()
	elapsed := now.Sub(c.lastTime)
	if elapsed < c.period || elapsed <= 0 {
		return
	}

	value := c.Value()
	atomic.StoreInt64(&c.ratePerSec, int64(float64(value-c.lastValue)/elapsed.Seconds()))
	c.lastValue = value
	c.lastTime = now
}
