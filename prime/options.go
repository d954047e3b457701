package prime

import (
	"github.com/tutils/tprime/counter"
	"github.com/tutils/tprime/prng"
)

// Options is generator options
type Options struct {
	counter  counter.Counter
	observer Observer
	prngOpts []prng.Option
}

// Option is option setter for Generate
type Option func(*Options)

func newOptions(opts ...Option) *Options {
	opt := &Options{}
	for _, o := range opts {
		o(opt)
	}

	if opt.counter == nil {
		opt.counter = counter.Nop
	}
	if opt.observer == nil {
		opt.observer = func(Event) {}
	}

	return opt
}

// WithCounter counts every tested candidate on c.
func WithCounter(c counter.Counter) Option {
	return func(opts *Options) {
		opts.counter = c
	}
}

// WithObserver reports every tested candidate to fn. fn runs on the
// generating goroutine.
func WithObserver(fn Observer) Option {
	return func(opts *Options) {
		opts.observer = fn
	}
}

// WithPRNGOptions configures the generators used for candidates and
// witnesses.
func WithPRNGOptions(po ...prng.Option) Option {
	return func(opts *Options) {
		opts.prngOpts = append(opts.prngOpts, po...)
	}
}
