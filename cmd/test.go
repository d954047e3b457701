package cmd

import (
	"fmt"
	"math/big"

	"github.com/spf13/cobra"

	"github.com/tutils/tprime/config"
	"github.com/tutils/tprime/primality"
	"github.com/tutils/tprime/sample"
)

// testCmd represents the test command
var testCmd = &cobra.Command{
	Use:   "test N...",
	Short: "Test numbers for primality",
	Long: `Run the primality test on each number. The chain continues from one number
to the next. For example:
  tprime test 97 561 2147483647
  tprime test 341 --test fermat --rounds 1 --seed 12`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSettings()
		if err != nil {
			return err
		}
		sampler := sample.NewKind(s.kind, s.prngOpts...)

		last, err := parseSeed(testSeed, new(big.Int))
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, arg := range args {
			n, err := config.ParseInt(arg)
			if err != nil {
				return err
			}
			res, err := primality.Run(s.test, sampler, n, s.rounds, last)
			if err != nil {
				return err
			}
			last = res.Last

			verdict := "composite"
			if res.ProbablePrime {
				verdict = "probably prime"
			}
			fmt.Fprintf(out, "%s: %s\n", n, verdict)
		}
		return nil
	},
}

var (
	testSeed string
)

func init() {
	rootCmd.AddCommand(testCmd)

	flags := testCmd.Flags()
	flags.StringVarP(&testSeed, "seed", "s", "", "chain seed (default 0)")
}
