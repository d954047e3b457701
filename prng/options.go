package prng

import (
	"math/big"
	"sort"
	"strings"
)

// Preset is a named LCG multiplier/increment pair.
type Preset struct {
	Name       string
	Multiplier *big.Int
	Increment  *big.Int
}

func mustInt(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("prng: bad preset constant " + s)
	}
	return v
}

// LCG presets.
var (
	// NumericalRecipes is the default pair; the sampler chain uses it.
	NumericalRecipes = Preset{"numerical-recipes", mustInt("1664525"), mustInt("1013904223")}
	Reference        = Preset{"reference", mustInt("33690453"), mustInt("1013904223")}
	Benchmark        = Preset{"benchmark", mustInt("3124199165"), mustInt("27181987157")}
	// MMIX is Knuth's 64 bit pair.
	MMIX = Preset{"mmix", mustInt("6364136223846793005"), mustInt("1442695040888963407")}

	DefaultPreset = NumericalRecipes
)

var presets = map[string]Preset{
	NumericalRecipes.Name: NumericalRecipes,
	Reference.Name:        Reference,
	Benchmark.Name:        Benchmark,
	MMIX.Name:             MMIX,
}

// LookupPreset finds a preset by name.
func LookupPreset(name string) (Preset, bool) {
	p, ok := presets[strings.ToLower(name)]
	return p, ok
}

// PresetNames lists the known preset names, sorted.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Options is the generator configuration
type Options struct {
	multiplier *big.Int
	increment  *big.Int
	forceMSB   bool
}

// Option is option setter for generators
type Option func(*Options)

func newOptions(opts ...Option) *Options {
	opt := &Options{}
	for _, o := range opts {
		o(opt)
	}

	if opt.multiplier == nil {
		opt.multiplier = DefaultPreset.Multiplier
	}
	if opt.increment == nil {
		opt.increment = DefaultPreset.Increment
	}

	return opt
}

// WithPreset sets both LCG parameters from p.
func WithPreset(p Preset) Option {
	return func(opts *Options) {
		opts.multiplier = new(big.Int).Set(p.Multiplier)
		opts.increment = new(big.Int).Set(p.Increment)
	}
}

// WithMultiplier sets the LCG multiplier a.
func WithMultiplier(a *big.Int) Option {
	return func(opts *Options) {
		if a != nil {
			opts.multiplier = new(big.Int).Set(a)
		}
	}
}

// WithIncrement sets the LCG increment c.
func WithIncrement(c *big.Int) Option {
	return func(opts *Options) {
		if c != nil {
			opts.increment = new(big.Int).Set(c)
		}
	}
}

// WithForceMSB makes every generated value carry its top bit.
func WithForceMSB(force bool) Option {
	return func(opts *Options) {
		opts.forceMSB = force
	}
}
