package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"kstest/adapters/generator"
	"kstest/adapters/samplefile"
	"kstest/app"
	"kstest/internal"
	"kstest/internal/config"
	"kstest/internal/errors"
	"kstest/internal/metrics"
)

func main() {
	// A missing .env is fine; the environment still applies.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(errors.ExitCode(err))
	}
}

// cli carries what every subcommand needs, built once before the command
// runs.
type cli struct {
	logLevel string

	cfg      *config.Config
	logger   *internal.Logger
	recorder *metrics.Recorder
	engine   *app.Engine
	reader   *samplefile.Reader
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	rootCmd := &cobra.Command{
		Use:   "kstest",
		Short: "Two-sample Kolmogorov-Smirnov tests on sample files",
		Long: `kstest decides whether two samples come from the same distribution.

Defaults come from the environment (and a .env file):
- KS_CONFIDENCE (default: 0.95)
- KS_STRATEGY=critical|probability|both (default: both)
- KS_SERIES_MAX_TERMS, KS_SERIES_TOLERANCE
- KS_BATCH_CONCURRENCY, KS_METRICS_FILE
- LOG_LEVEL=ERROR|WARN|INFO|DEBUG|TRACE (default: INFO)`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup()
		},
	}

	rootCmd.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "Override LOG_LEVEL")

	rootCmd.AddCommand(
		newTestCmd(c),
		newCriticalValuesCmd(c),
		newNormalCmd(c),
		newBatchCmd(c),
	)
	return rootCmd
}

func (c *cli) setup() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if c.logLevel != "" {
		cfg.Log.Level = c.logLevel
	}
	level, err := internal.ParseLogLevel(cfg.Log.Level)
	if err != nil {
		return errors.ConfigInvalid(err.Error())
	}

	c.cfg = cfg
	c.logger = internal.NewLogger(level)
	internal.SetDefaultLogger(c.logger)
	c.recorder = metrics.NewRecorder()
	c.reader = samplefile.NewReader(c.logger)

	opts, err := app.EngineOptionsFromConfig(cfg, c.logger, c.recorder)
	if err != nil {
		return err
	}
	c.engine, err = app.NewEngine(opts)
	if err != nil {
		return errors.Wrap(errors.ConfigInvalid(err.Error()), "engine")
	}
	c.logger.Debug("configuration loaded", "confidence", cfg.Test.Confidence,
		"strategy", cfg.Test.Strategy, "series_max_terms", cfg.Series.MaxTerms)
	return nil
}

func (c *cli) batchService(concurrency int) *app.BatchService {
	return app.NewBatchService(c.engine, c.reader, generator.NewNormalGenerator(nil), concurrency, c.logger)
}
