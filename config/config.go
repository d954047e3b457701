// Package config layers the command line settings: flags over TPRIME_*
// environment variables over an optional yaml file in the home directory.
package config

import (
	"math/big"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
	"github.com/zeebo/errs"

	"github.com/tutils/tprime/primality"
	"github.com/tutils/tprime/prng"
)

// Error is the class of configuration errors.
var Error = errs.Class("config")

// EnvPrefix prefixes every environment variable, e.g. TPRIME_ROUNDS.
const EnvPrefix = "TPRIME"

// Keys
const (
	KeyAlgorithm     = "algorithm"
	KeyTest          = "test"
	KeyRounds        = "rounds"
	KeyLCGPreset     = "lcg.preset"
	KeyLCGMultiplier = "lcg.multiplier"
	KeyLCGIncrement  = "lcg.increment"
	KeyForceMSB      = "force-msb"
)

// SetDefaults registers the default of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyAlgorithm, prng.LCG.String())
	v.SetDefault(KeyTest, primality.MillerRabin.String())
	v.SetDefault(KeyRounds, 5)
	v.SetDefault(KeyLCGPreset, prng.DefaultPreset.Name)
	v.SetDefault(KeyLCGMultiplier, "")
	v.SetDefault(KeyLCGIncrement, "")
	v.SetDefault(KeyForceMSB, false)
}

// Init prepares v. cfgFile wins over $HOME/.tprime.yaml. A missing file is
// not an error; it returns the file used, if any.
func Init(v *viper.Viper, cfgFile string) (string, error) {
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			return "", Error.Wrap(err)
		}
		v.AddConfigPath(home)
		v.SetConfigName(".tprime")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok && cfgFile == "" {
			return "", nil
		}
		return "", Error.Wrap(err)
	}
	return v.ConfigFileUsed(), nil
}

// Kind returns the configured prng algorithm.
func Kind(v *viper.Viper) (prng.Kind, error) {
	return prng.ParseKind(v.GetString(KeyAlgorithm))
}

// Test returns the configured primality test.
func Test(v *viper.Viper) (primality.Test, error) {
	return primality.ParseTest(v.GetString(KeyTest))
}

// Rounds returns the configured number of test rounds.
func Rounds(v *viper.Viper) (int, error) {
	k := v.GetInt(KeyRounds)
	if k < 1 {
		return 0, primality.InvalidRounds.New("rounds = %d", k)
	}
	return k, nil
}

// PRNGOptions builds generator options from the lcg.* and force-msb keys.
// An explicit multiplier or increment overrides the preset's.
func PRNGOptions(v *viper.Viper) ([]prng.Option, error) {
	preset, ok := prng.LookupPreset(v.GetString(KeyLCGPreset))
	if !ok {
		return nil, Error.New("unknown lcg preset %q, want one of %s",
			v.GetString(KeyLCGPreset), strings.Join(prng.PresetNames(), ", "))
	}
	opts := []prng.Option{prng.WithPreset(preset)}

	if s := v.GetString(KeyLCGMultiplier); s != "" {
		a, err := ParseInt(s)
		if err != nil {
			return nil, Error.New("%s: %v", KeyLCGMultiplier, err)
		}
		opts = append(opts, prng.WithMultiplier(a))
	}
	if s := v.GetString(KeyLCGIncrement); s != "" {
		c, err := ParseInt(s)
		if err != nil {
			return nil, Error.New("%s: %v", KeyLCGIncrement, err)
		}
		opts = append(opts, prng.WithIncrement(c))
	}
	if v.GetBool(KeyForceMSB) {
		opts = append(opts, prng.WithForceMSB(true))
	}
	return opts, nil
}

// ParseInt parses an arbitrary size integer. Prefixes 0x, 0o and 0b select
// the base, and underscores may separate digits.
func ParseInt(s string) (*big.Int, error) {
	n, ok := new(big.Int).SetString(strings.TrimSpace(s), 0)
	if !ok {
		return nil, Error.New("invalid integer %q", s)
	}
	return n, nil
}
