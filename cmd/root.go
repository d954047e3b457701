package cmd

import (
	"log"
	"math/big"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tutils/tprime/config"
	"github.com/tutils/tprime/primality"
	"github.com/tutils/tprime/prng"
)

var (
	cfgFile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tprime",
	Short: "Probable prime generator.",
	Long: `Probable prime generator.
Repo: https://github.com/tutils/tprime
Generate primes of an exact bit length from a deterministic LCG or xorshift
chain, checked with Miller-Rabin or Fermat. For example:
  tprime generate --bits 40,56,80,128,256 --algorithm xorshift
  tprime test 561 --test fermat --rounds 1 --seed 7
  tprime serve --listen=0.0.0.0:8080`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.tprime.yaml)")
	flags.StringP("algorithm", "a", prng.LCG.String(), "random generator: lcg or xorshift")
	flags.StringP("test", "t", primality.MillerRabin.String(), "primality test: miller-rabin or fermat")
	flags.IntP("rounds", "k", 5, "primality test rounds")
	flags.String("lcg-preset", prng.DefaultPreset.Name, "lcg parameters: "+strings.Join(prng.PresetNames(), ", "))
	flags.String("lcg-multiplier", "", "lcg multiplier, overrides the preset")
	flags.String("lcg-increment", "", "lcg increment, overrides the preset")
	flags.Bool("force-msb", false, "set the top bit of every generator output")

	for key, flag := range map[string]string{
		config.KeyAlgorithm:     "algorithm",
		config.KeyTest:          "test",
		config.KeyRounds:        "rounds",
		config.KeyLCGPreset:     "lcg-preset",
		config.KeyLCGMultiplier: "lcg-multiplier",
		config.KeyLCGIncrement:  "lcg-increment",
		config.KeyForceMSB:      "force-msb",
	} {
		viper.BindPFlag(key, flags.Lookup(flag))
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	used, err := config.Init(viper.GetViper(), cfgFile)
	if err != nil {
		log.Println(err)
		os.Exit(1)
	}
	if used != "" {
		log.Println("Using config file:", used)
	}
}

// settings are the layered generator settings shared by the subcommands.
type settings struct {
	kind     prng.Kind
	test     primality.Test
	rounds   int
	prngOpts []prng.Option
}

func loadSettings() (settings, error) {
	v := viper.GetViper()
	kind, err := config.Kind(v)
	if err != nil {
		return settings{}, err
	}
	test, err := config.Test(v)
	if err != nil {
		return settings{}, err
	}
	k, err := config.Rounds(v)
	if err != nil {
		return settings{}, err
	}
	opts, err := config.PRNGOptions(v)
	if err != nil {
		return settings{}, err
	}
	return settings{kind: kind, test: test, rounds: k, prngOpts: opts}, nil
}

// parseSeed parses s, or returns def when s is empty.
func parseSeed(s string, def *big.Int) (*big.Int, error) {
	if s == "" {
		return def, nil
	}
	return config.ParseInt(s)
}
