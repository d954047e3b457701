// Package counter defines cumulative metrics for candidate throughput.
package counter

// Counter is a cumulative metric
type Counter interface {
	// Value returns the running total.
	Value() int64
	// RatePerSec returns the increase per second over the last complete
	// sampling period.
	RatePerSec() int64

	Add(n int64)
}

// Nop discards everything added to it.
var Nop Counter = nop{}

type nop struct{}

func (nop) Value() int64      { return 0 }
func (nop) RatePerSec() int64 { return 0 }
func (nop) Add(int64)         {}
