package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tutils/tprime/httpsrv"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the tprime HTTP server",
	Long: `Start the HTTP server. Settings come from TPRIME_LISTEN, TPRIME_JOB_TIMEOUT,
TPRIME_CACHE_SIZE, TPRIME_STATS_PERIOD and TPRIME_MAX_BITS; flags override
them. For example:
  tprime serve --listen=0.0.0.0:8080 --job-timeout=5m`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := httpsrv.ParseConfig()
		if err != nil {
			return err
		}
		flags := cmd.Flags()
		if flags.Changed("listen") {
			cfg.Listen = serveConfig.Listen
		}
		if flags.Changed("job-timeout") {
			cfg.JobTimeout = serveConfig.JobTimeout
		}
		if flags.Changed("cache-size") {
			cfg.CacheSize = serveConfig.CacheSize
		}
		if flags.Changed("max-bits") {
			cfg.MaxBits = serveConfig.MaxBits
		}
		if flags.Changed("max-rounds") {
			cfg.MaxRounds = serveConfig.MaxRounds
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return httpsrv.NewServer(cfg).ListenAndServe(ctx)
	},
}

var (
	serveConfig httpsrv.Config
)

func init() {
	rootCmd.AddCommand(serveCmd)

	flags := serveCmd.Flags()
	flags.StringVarP(&serveConfig.Listen, "listen", "l", "0.0.0.0:8080", "server listen address")
	flags.DurationVar(&serveConfig.JobTimeout, "job-timeout", 0, "cancel generations running longer than this")
	flags.IntVar(&serveConfig.CacheSize, "cache-size", 0, "cached results")
	flags.UintVar(&serveConfig.MaxBits, "max-bits", 0, "largest width or integer bit length a client may send")
	flags.IntVar(&serveConfig.MaxRounds, "max-rounds", 0, "most test rounds a client may request")
}
