package httpsrv

import (
	"math/big"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the service configuration, read from TPRIME_* variables.
type Config struct {
	Listen      string        `env:"TPRIME_LISTEN"       envDefault:"0.0.0.0:8080"`
	JobTimeout  time.Duration `env:"TPRIME_JOB_TIMEOUT"  envDefault:"1m"`
	CacheSize   int           `env:"TPRIME_CACHE_SIZE"   envDefault:"1024"`
	StatsPeriod time.Duration `env:"TPRIME_STATS_PERIOD" envDefault:"1s"`
	// MaxBits bounds widths and the bit length of every integer a client
	// sends. MaxRounds bounds test rounds. Zero means no bound.
	MaxBits      uint          `env:"TPRIME_MAX_BITS"      envDefault:"8192"`
	MaxRounds    int           `env:"TPRIME_MAX_ROUNDS"    envDefault:"256"`
	MaxBodyBytes int64         `env:"TPRIME_MAX_BODY"      envDefault:"1048576"`
	JobRetention time.Duration `env:"TPRIME_JOB_RETENTION" envDefault:"1h"`
}

// Limits are the request bounds of a Config.
type Limits struct {
	MaxBits   uint
	MaxRounds int
}

// Limits returns the request bounds.
func (c Config) Limits() Limits {
	return Limits{MaxBits: c.MaxBits, MaxRounds: c.MaxRounds}
}

func (l Limits) checkWidth(bits uint) error {
	if l.MaxBits > 0 && bits > l.MaxBits {
		return BadRequest.New("bits = %d exceeds %d", bits, l.MaxBits)
	}
	return nil
}

func (l Limits) checkInt(name string, n *big.Int) error {
	if l.MaxBits > 0 && uint(n.BitLen()) > l.MaxBits {
		return BadRequest.New("%s has %d bits, limit is %d", name, n.BitLen(), l.MaxBits)
	}
	return nil
}

func (l Limits) checkRounds(k int) error {
	if l.MaxRounds > 0 && k > l.MaxRounds {
		return BadRequest.New("rounds = %d exceeds %d", k, l.MaxRounds)
	}
	return nil
}

// ParseConfig reads Config from the environment.
func ParseConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, Error.Wrap(err)
	}
	return cfg, nil
}
