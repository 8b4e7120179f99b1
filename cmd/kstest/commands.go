package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"kstest/adapters/generator"
	"kstest/adapters/samplefile"
	"kstest/adapters/stats/order"
	"kstest/adapters/stats/significance"
	"kstest/app"
	"kstest/domain/run"
	"kstest/domain/stats"
	"kstest/internal/errors"
	"kstest/internal/profiling"
	"kstest/ports"
)

func newTestCmd(c *cli) *cobra.Command {
	var sampleType string
	var confidence float64
	var strategy string
	var summary bool

	cmd := &cobra.Command{
		Use:   "test [file1] [file2]",
		Short: "Test whether two sample files come from the same distribution",
		Long: `Run a two-sample Kolmogorov-Smirnov test on two single-column data files.

Files may be plain text (one value per line), CSV (first column) or XLSX
(column A of the first sheet). A leading non-numeric row is skipped as a header.

Example: kstest test before.txt after.txt --type f64 --confidence 0.99`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("confidence") {
				confidence = c.cfg.Test.Confidence
			}
			engine, err := c.engine.WithStrategy(stats.Strategy(strategy))
			if err != nil {
				return errors.InvalidInput(err.Error())
			}
			switch run.SampleType(sampleType) {
			case run.SampleTypeInt:
				return runTest(cmd.Context(), cmd.OutOrStdout(), engine, args[0], args[1], confidence, summary,
					order.Natural[int64]{}, c.reader.ReadInts, profiling.SummarizeInts)
			case run.SampleTypeFloat:
				return runTest(cmd.Context(), cmd.OutOrStdout(), engine, args[0], args[1], confidence, summary,
					order.Float[float64]{}, c.reader.ReadFloats, profiling.Summarize)
			default:
				return errors.InvalidInput(fmt.Sprintf("unknown sample type %q (want i64|f64)", sampleType))
			}
		},
	}

	cmd.Flags().StringVar(&sampleType, "type", string(run.SampleTypeFloat), "Sample type: i64|f64")
	cmd.Flags().Float64Var(&confidence, "confidence", 0.95, "Confidence level in (0, 1); defaults to KS_CONFIDENCE")
	cmd.Flags().StringVar(&strategy, "strategy", "", "Significance strategy: critical|probability|both; defaults to KS_STRATEGY")
	cmd.Flags().BoolVar(&summary, "summary", false, "Print descriptive statistics of both samples")
	return cmd
}

func runTest[T any](
	ctx context.Context,
	out io.Writer,
	engine *app.Engine,
	first, second string,
	confidence float64,
	summary bool,
	ord ports.OrderPort[T],
	read func(context.Context, string) ([]T, error),
	summarize func([]T) (profiling.SampleSummary, error),
) error {
	xs, err := read(ctx, first)
	if err != nil {
		return err
	}
	ys, err := read(ctx, second)
	if err != nil {
		return err
	}

	result, err := app.ExecuteContext(ctx, engine, xs, ys, ord, confidence)
	if err != nil {
		return app.ToAppError(err)
	}
	printResult(out, result)

	if summary {
		for _, s := range []struct {
			name   string
			sample []T
		}{{first, xs}, {second, ys}} {
			sum, err := summarize(s.sample)
			if err != nil {
				return errors.Wrapf(err, "summary of %s", s.name)
			}
			fmt.Fprintf(out, "%s: %s\n", s.name, sum)
		}
	}
	return nil
}

func printResult(out io.Writer, r stats.TestResult) {
	fmt.Fprintln(out, r.Verdict())
	fmt.Fprintf(out, "test statistic = %v\n", r.Statistic)
	fmt.Fprintf(out, "critical value = %v\n", r.CriticalValue)
	if p, ok := r.Probability(); ok {
		fmt.Fprintf(out, "reject probability = %v\n", p)
	}
	fmt.Fprintf(out, "confidence = %v\n", r.Confidence)
	fmt.Fprintf(out, "decided by = %s\n", r.DecidedBy)
	if r.Disagreement {
		fmt.Fprintln(out, "note: the asymptotic probability disagrees with the critical value")
	}
	if r.Warning != nil {
		fmt.Fprintf(out, "warning: %v\n", r.Warning)
	}
}

func newCriticalValuesCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "critical-values [confidence] [n1] [limit]",
		Short: "Print critical values for n1 against sample sizes 16 through limit",
		Long: `Print a tab separated table of two-sample critical values for a sample of
size n1 against samples of size 16 through limit inclusive.

Example: kstest critical-values 0.95 100 200`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			confidence, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return errors.InvalidInput(fmt.Sprintf("confidence must be a number: %q", args[0]))
			}
			n1, err := strconv.Atoi(args[1])
			if err != nil || n1 < 1 {
				return errors.InvalidInput(fmt.Sprintf("n1 must be a positive integer: %q", args[1]))
			}
			limit, err := strconv.Atoi(args[2])
			if err != nil || limit < 1 {
				return errors.InvalidInput(fmt.Sprintf("limit must be a positive integer: %q", args[2]))
			}
			return writeCriticalValues(cmd.OutOrStdout(), confidence, n1, limit)
		},
	}
}

func writeCriticalValues(out io.Writer, confidence float64, n1, limit int) error {
	w := bufio.NewWriter(out)
	fmt.Fprintln(w, "n1\tn2\tconfidence\tcritical_value")
	for n2 := 16; n2 <= limit; n2++ {
		cv, err := significance.CriticalValue(n1, n2, confidence)
		if err != nil {
			return app.ToAppError(err)
		}
		fmt.Fprintf(w, "%d\t%d\t%v\t%v\n", n1, n2, confidence, cv)
	}
	return w.Flush()
}

func newNormalCmd(c *cli) *cobra.Command {
	var seed int64
	var outPath string

	cmd := &cobra.Command{
		Use:   "normal [count] [mean] [variance]",
		Short: "Generate normal deviates, one per line",
		Long: `Generate count deviates from a normal distribution with the given mean
and variance. Without --seed the output differs on every run.

Example: kstest normal 1000 0 1 --seed 42 --out sample.xlsx`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := parseNormalSpec(args)
			if err != nil {
				return err
			}
			spec.Seed = seed
			if !cmd.Flags().Changed("seed") {
				spec.Seed = time.Now().UnixNano()
			}

			values, err := generator.NewNormalGenerator(nil).Generate(cmd.Context(), "normal", spec)
			if err != nil {
				return err
			}
			if outPath != "" {
				if err := samplefile.WriteFloats(outPath, values); err != nil {
					return err
				}
				c.logger.Info("normal sample written", "path", outPath, "count", len(values), "seed", spec.Seed)
				return nil
			}

			w := bufio.NewWriter(cmd.OutOrStdout())
			for _, v := range values {
				w.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
				w.WriteByte('\n')
			}
			return w.Flush()
		},
	}

	cmd.Flags().Int64Var(&seed, "seed", 0, "Random seed for a reproducible sample")
	cmd.Flags().StringVar(&outPath, "out", "", "Write to a .txt, .csv or .xlsx file instead of stdout")
	return cmd
}

func parseNormalSpec(args []string) (run.NormalSpec, error) {
	count, err := strconv.Atoi(args[0])
	if err != nil {
		return run.NormalSpec{}, errors.InvalidInput(fmt.Sprintf("count must be an integer: %q", args[0]))
	}
	mean, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return run.NormalSpec{}, errors.InvalidInput(fmt.Sprintf("mean must be a number: %q", args[1]))
	}
	variance, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		return run.NormalSpec{}, errors.InvalidInput(fmt.Sprintf("variance must be a number: %q", args[2]))
	}
	spec := run.NormalSpec{Count: count, Mean: mean, Variance: variance}
	if err := spec.Validate(); err != nil {
		return run.NormalSpec{}, errors.InvalidInput(err.Error())
	}
	return spec, nil
}

func newBatchCmd(c *cli) *cobra.Command {
	var outPath string
	var metricsFile string
	var concurrency int

	cmd := &cobra.Command{
		Use:   "batch [manifest.yaml]",
		Short: "Run every pair of a YAML manifest concurrently",
		Long: `Run the two-sample tests listed in a YAML manifest and write the results
as JSON. Sample paths resolve against the manifest's directory.

Example manifest:
  type: f64
  confidence: 0.99
  pairs:
    - name: latency
      first: {file: before.txt}
      second: {file: after.txt}
    - name: synthetic
      first: {normal: {count: 1000, mean: 0, variance: 1, seed: 1}}
      second: {file: after.txt}

Example: kstest batch runs.yaml --out results.json --metrics-file kstest.prom`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("metrics-file") {
				metricsFile = c.cfg.Batch.MetricsFile
			}
			if !cmd.Flags().Changed("concurrency") {
				concurrency = c.cfg.Batch.Concurrency
			}

			manifest, err := app.LoadManifest(args[0])
			if err != nil {
				return err
			}
			result, err := c.batchService(concurrency).Run(cmd.Context(), manifest)
			if err != nil {
				return err
			}

			if err := writeBatchResult(cmd.OutOrStdout(), outPath, result); err != nil {
				return err
			}
			if metricsFile != "" {
				if err := c.recorder.WriteTextfile(metricsFile); err != nil {
					return errors.IOError(metricsFile, err)
				}
			}
			if !result.Success {
				return errors.New(errors.CodeInternalError,
					fmt.Sprintf("%d of %d pairs failed", result.Failed, len(result.Pairs)))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&outPath, "out", "", "Write JSON results to a file instead of stdout")
	cmd.Flags().StringVar(&metricsFile, "metrics-file", "", "Write Prometheus metrics to a textfile; defaults to KS_METRICS_FILE")
	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "Pairs run at once; defaults to KS_BATCH_CONCURRENCY")
	return cmd
}

func writeBatchResult(stdout io.Writer, path string, result *app.BatchResult) error {
	if path == "" {
		return result.WriteJSON(stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.IOError(path, err)
	}
	if err := result.WriteJSON(f); err != nil {
		f.Close()
		return errors.IOError(path, err)
	}
	if err := f.Close(); err != nil {
		return errors.IOError(path, err)
	}
	return nil
}
