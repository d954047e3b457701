package cmd

import (
	"context"
	"fmt"
	"log"
	"math/big"
	"os"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tutils/tprime"
	"github.com/tutils/tprime/counter/period"
	"github.com/tutils/tprime/prime"
)

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate probable primes",
	Long: `Generate one probable prime per bit width. Widths run in parallel. The seed
defaults to the width, so every run is reproducible. For example:
  tprime generate --bits 128
  tprime generate --bits 40,56,80,128,256,512 --algorithm xorshift --test fermat
  tprime generate --bits 64 --lcg-preset mmix --seed 0x2a`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(generateBits) == 0 {
			return fmt.Errorf("no bit width given")
		}
		s, err := loadSettings()
		if err != nil {
			return err
		}

		ctx := context.Background()
		if generateTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, generateTimeout)
			defer cancel()
		}

		c := period.New(time.Second)
		opts := []prime.Option{
			prime.WithCounter(c),
			prime.WithPRNGOptions(s.prngOpts...),
		}
		showProgress := !generateQuiet && term.IsTerminal(int(os.Stderr.Fd()))
		if showProgress {
			opts = append(opts, prime.WithObserver(tprime.NewProgress(os.Stderr).Observer()))
		}

		results := make([]prime.Result, len(generateBits))
		errs := make([]error, len(generateBits))
		var wg sync.WaitGroup
		for i, bits := range generateBits {
			seed, err := parseSeed(generateSeed, new(big.Int).SetUint64(uint64(bits)))
			if err != nil {
				return err
			}
			wg.Add(1)
			go func(i int, bits uint, seed *big.Int) {
				defer wg.Done()
				results[i], errs[i] = prime.Run(ctx, prime.Request{
					Bits:      bits,
					Algorithm: s.kind.String(),
					Seed:      seed,
					Test:      s.test,
					Rounds:    s.rounds,
				}, opts...)
			}(i, bits, seed)
		}
		wg.Wait()
		if showProgress {
			fmt.Fprintln(os.Stderr)
		}

		out := cmd.OutOrStdout()
		var firstErr error
		for i, bits := range generateBits {
			if errs[i] != nil {
				log.Printf("[ERROR] %d bits: %v", bits, errs[i])
				if firstErr == nil {
					firstErr = errs[i]
				}
				continue
			}
			if len(generateBits) == 1 {
				fmt.Fprintln(out, results[i].Prime)
			} else {
				fmt.Fprintf(out, "%d: %s\n", bits, results[i].Prime)
			}
			if generateVerbose {
				log.Printf("[INFO] %d bits: %d candidates, last state %s", bits, results[i].Attempts, results[i].Last)
			}
		}

		snap := c.Snapshot()
		if generateVerbose && snap.Uptime > 0 {
			log.Printf("[INFO] tested %d candidates in %.2fs (%.0f/s)", snap.Total, snap.Uptime, float64(snap.Total)/snap.Uptime)
		}
		return firstErr
	},
}

var (
	generateBits    []uint
	generateSeed    string
	generateTimeout time.Duration
	generateQuiet   bool
	generateVerbose bool
)

func init() {
	rootCmd.AddCommand(generateCmd)

	flags := generateCmd.Flags()
	flags.UintSliceVarP(&generateBits, "bits", "b", []uint{128}, "bit widths, comma separated")
	flags.StringVarP(&generateSeed, "seed", "s", "", "chain seed (default is the bit width)")
	flags.DurationVar(&generateTimeout, "timeout", 0, "give up after this long (0 waits forever)")
	flags.BoolVarP(&generateQuiet, "quiet", "q", false, "no progress marks")
	flags.BoolVarP(&generateVerbose, "verbose", "v", false, "log attempts and throughput")
}
