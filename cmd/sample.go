package cmd

import (
	"fmt"
	"math/big"

	"github.com/spf13/cobra"

	"github.com/tutils/tprime/config"
	"github.com/tutils/tprime/sample"
)

// sampleCmd represents the sample command
var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Draw values from the random chain",
	Long: `Draw random bits, or values from an inclusive range, threading the chain
through every draw. For example:
  tprime sample --bits 16 --count 4 --seed 21
  tprime sample --low 1 --high 6 --count 10 --algorithm xorshift --seed 99`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSettings()
		if err != nil {
			return err
		}
		sampler := sample.NewKind(s.kind, s.prngOpts...)

		last, err := parseSeed(sampleSeed, new(big.Int))
		if err != nil {
			return err
		}

		draw := func(last *big.Int) (*big.Int, *big.Int, error) {
			return sampler.Bits(sampleBits, last)
		}
		if sampleBits == 0 {
			low, err := config.ParseInt(sampleLow)
			if err != nil {
				return err
			}
			high, err := config.ParseInt(sampleHigh)
			if err != nil {
				return err
			}
			draw = func(last *big.Int) (*big.Int, *big.Int, error) {
				return sampler.Range(low, high, last)
			}
		}

		out := cmd.OutOrStdout()
		for i := 0; i < sampleCount; i++ {
			var v *big.Int
			v, last, err = draw(last)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, v)
		}
		return nil
	},
}

var (
	sampleBits  uint
	sampleLow   string
	sampleHigh  string
	sampleSeed  string
	sampleCount int
)

func init() {
	rootCmd.AddCommand(sampleCmd)

	flags := sampleCmd.Flags()
	flags.UintVar(&sampleBits, "bits", 0, "draw this many bits")
	flags.StringVar(&sampleLow, "low", "", "range low bound, used when --bits is 0")
	flags.StringVar(&sampleHigh, "high", "", "range high bound, inclusive")
	flags.StringVarP(&sampleSeed, "seed", "s", "", "chain seed (default 0)")
	flags.IntVarP(&sampleCount, "count", "n", 1, "number of draws")

	sampleCmd.MarkFlagsMutuallyExclusive("bits", "low")
	sampleCmd.MarkFlagsRequiredTogether("low", "high")
}
