package app

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"kstest/adapters/stats/ecdf"
	"kstest/adapters/stats/order"
	"kstest/adapters/stats/significance"
	"kstest/domain/core"
	"kstest/domain/stats"
	"kstest/internal"
	"kstest/internal/config"
	"kstest/internal/metrics"
	"kstest/ports"
)

// EngineOptions configures an Engine.
type EngineOptions struct {
	Strategy stats.Strategy

	// Confidence is the default level for callers that do not name one,
	// such as batch pairs and the command line.
	Confidence float64

	Series significance.SeriesConfig

	// ParallelSortThreshold is the combined sample size from which the two
	// samples are sorted concurrently. Zero disables parallel sorting.
	ParallelSortThreshold int

	// CrossCheck recomputes the statistic with the quadratic reference
	// comparator and fails on any difference.
	CrossCheck bool

	Logger  *internal.Logger
	Metrics *metrics.Recorder
}

// DefaultEngineOptions mirrors config.Default.
func DefaultEngineOptions() EngineOptions {
	return EngineOptions{
		Strategy:              stats.StrategyBoth,
		Confidence:            0.95,
		Series:                significance.DefaultSeriesConfig(),
		ParallelSortThreshold: 65536,
	}
}

// EngineOptionsFromConfig builds engine options from loaded configuration.
func EngineOptionsFromConfig(cfg *config.Config, logger *internal.Logger, recorder *metrics.Recorder) (EngineOptions, error) {
	strategy, err := stats.ParseStrategy(cfg.Test.Strategy)
	if err != nil {
		return EngineOptions{}, err
	}
	return EngineOptions{
		Strategy:   strategy,
		Confidence: cfg.Test.Confidence,
		Series: significance.SeriesConfig{
			MaxTerms:  cfg.Series.MaxTerms,
			Tolerance: cfg.Series.Tolerance,
		},
		ParallelSortThreshold: cfg.Test.ParallelSortThreshold,
		CrossCheck:            cfg.Test.CrossCheck,
		Logger:                logger,
		Metrics:               recorder,
	}, nil
}

// Engine runs two-sample Kolmogorov-Smirnov tests. It is immutable after
// construction and safe for concurrent use.
type Engine struct {
	opts       EngineOptions
	estimators []ports.SignificancePort
	logger     *internal.Logger
}

// NewEngine creates an engine.
func NewEngine(opts EngineOptions) (*Engine, error) {
	if opts.Logger == nil {
		opts.Logger = internal.DefaultLogger
	}
	if opts.Strategy == "" {
		opts.Strategy = stats.StrategyBoth
	}
	estimators, err := significance.Estimators(opts.Strategy, opts.Series, opts.Logger)
	if err != nil {
		return nil, err
	}
	return &Engine{
		opts:       opts,
		estimators: estimators,
		logger:     opts.Logger,
	}, nil
}

// Options returns the options the engine was built with.
func (e *Engine) Options() EngineOptions {
	return e.opts
}

// DefaultConfidence is the level used when a caller names none.
func (e *Engine) DefaultConfidence() float64 {
	if e.opts.Confidence > 0 {
		return e.opts.Confidence
	}
	return 0.95
}

// WithStrategy returns an engine that shares everything but the strategy.
func (e *Engine) WithStrategy(strategy stats.Strategy) (*Engine, error) {
	if strategy == "" || strategy == e.opts.Strategy {
		return e, nil
	}
	opts := e.opts
	opts.Strategy = strategy
	return NewEngine(opts)
}

var defaultEngine = sync.OnceValue(func() *Engine {
	e, err := NewEngine(DefaultEngineOptions())
	if err != nil {
		panic(err)
	}
	return e
})

// DefaultEngine returns the shared engine used by Test, TestFloat64 and
// TestOrdered.
func DefaultEngine() *Engine {
	return defaultEngine()
}

// Test runs a test with the default engine.
func Test[T any](xs, ys []T, ord ports.OrderPort[T], confidence float64) (stats.TestResult, error) {
	return Execute(DefaultEngine(), xs, ys, ord, confidence)
}

// TestFloat64 runs a test on floating point samples. NaN is rejected.
func TestFloat64(xs, ys []float64, confidence float64) (stats.TestResult, error) {
	return Test(xs, ys, order.Float[float64]{}, confidence)
}

// TestOrdered runs a test on integer or string samples.
func TestOrdered[T order.Ordered](xs, ys []T, confidence float64) (stats.TestResult, error) {
	return Test(xs, ys, order.Natural[T]{}, confidence)
}

// Execute runs one test on e.
func Execute[T any](e *Engine, xs, ys []T, ord ports.OrderPort[T], confidence float64) (stats.TestResult, error) {
	return ExecuteContext(context.Background(), e, xs, ys, ord, confidence)
}

// ExecuteContext runs one test on e. Every input is validated before any
// computation starts; the caller's slices are never modified.
func ExecuteContext[T any](ctx context.Context, e *Engine, xs, ys []T, ord ports.OrderPort[T], confidence float64) (stats.TestResult, error) {
	start := time.Now()
	result, err := execute(ctx, e, xs, ys, ord, confidence)
	if err != nil {
		e.opts.Metrics.ObserveError(errorKind(err))
		e.logger.Debug("two-sample test failed", "error", err)
		return stats.TestResult{}, err
	}

	elapsed := time.Since(start)
	e.opts.Metrics.ObserveTest(string(result.Strategy), result.IsRejected, result.Warning != nil,
		result.Disagreement, result.SizeFirst, result.SizeSecond, elapsed)
	e.logger.Debug("two-sample test completed",
		"n", result.SizeFirst, "m", result.SizeSecond,
		"statistic", result.Statistic, "critical_value", result.CriticalValue,
		"rejected", result.IsRejected, "decided_by", string(result.DecidedBy),
		"elapsed", elapsed)
	return result, nil
}

func execute[T any](ctx context.Context, e *Engine, xs, ys []T, ord ports.OrderPort[T], confidence float64) (stats.TestResult, error) {
	if err := validateInputs(xs, ys, ord, confidence); err != nil {
		return stats.TestResult{}, err
	}
	if err := ctx.Err(); err != nil {
		return stats.TestResult{}, err
	}

	sx, sy, err := sortSamples(xs, ys, ord, e.opts.ParallelSortThreshold)
	if err != nil {
		return stats.TestResult{}, err
	}

	d, err := ecdf.NewEfficient(ord).DistanceSorted(sx, sy)
	if err != nil {
		return stats.TestResult{}, err
	}

	if e.opts.CrossCheck {
		ref, err := ecdf.NewReference(ord).Distance(xs, ys)
		if err != nil {
			return stats.TestResult{}, err
		}
		if ref != d {
			e.logger.Error("statistic cross-check failed", "efficient", d, "reference", ref)
			return stats.TestResult{}, core.NewStatisticMismatchError(d, ref)
		}
	}

	return e.decide(d, len(xs), len(ys), confidence)
}

func validateInputs[T any](xs, ys []T, ord ports.OrderPort[T], confidence float64) error {
	if len(xs) == 0 {
		return core.NewEmptySampleError(core.SampleFirst)
	}
	if len(ys) == 0 {
		return core.NewEmptySampleError(core.SampleSecond)
	}
	if math.IsNaN(confidence) || confidence <= 0 || confidence >= 1 {
		return core.NewInvalidConfidenceError(confidence)
	}
	if err := order.Validate(core.SampleFirst, xs, ord); err != nil {
		return err
	}
	return order.Validate(core.SampleSecond, ys, ord)
}

// sortSamples returns sorted copies of both samples, sorting them
// concurrently once the combined size reaches threshold.
func sortSamples[T any](xs, ys []T, ord ports.OrderPort[T], threshold int) ([]T, []T, error) {
	if threshold <= 0 || len(xs)+len(ys) < threshold {
		sx, err := ecdf.SortedCopy(xs, ord)
		if err != nil {
			return nil, nil, err
		}
		sy, err := ecdf.SortedCopy(ys, ord)
		if err != nil {
			return nil, nil, err
		}
		return sx, sy, nil
	}

	var sx, sy []T
	var g errgroup.Group
	g.Go(func() error {
		var err error
		sx, err = ecdf.SortedCopy(xs, ord)
		return err
	})
	g.Go(func() error {
		var err error
		sy, err = ecdf.SortedCopy(ys, ord)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return sx, sy, nil
}

// decide runs the estimators on the statistic. The first estimator decides;
// any further one contributes its probability and is compared with it.
func (e *Engine) decide(d float64, n, m int, confidence float64) (stats.TestResult, error) {
	result := stats.TestResult{
		Statistic:  d,
		Confidence: confidence,
		SizeFirst:  n,
		SizeSecond: m,
		Strategy:   e.opts.Strategy,
	}

	for i, estimator := range e.estimators {
		sig, err := estimator.Estimate(d, n, m, confidence)
		if err != nil {
			return stats.TestResult{}, err
		}

		if sig.PValue != nil {
			q := *sig.PValue
			reject := 1 - q
			result.PValue = &q
			result.RejectProbability = &reject
		}
		if sig.Warning != nil {
			result.Warning = sig.Warning
		}

		if i == 0 {
			result.CriticalValue = sig.CriticalValue
			result.IsRejected = sig.IsRejected
			result.DecidedBy = estimator.Name()
			if sig.Warning != nil {
				result.DecidedBy = stats.StrategyCriticalValue
			}
			continue
		}

		// A truncated series carries no decision of its own.
		if sig.Warning == nil && sig.IsRejected != result.IsRejected {
			result.Disagreement = true
			e.logger.Debug("significance strategies disagree",
				"decided_by", string(result.DecidedBy), "rejected", result.IsRejected,
				"other", string(estimator.Name()), "other_rejected", sig.IsRejected)
		}
	}
	return result, nil
}

func errorKind(err error) string {
	switch {
	case core.IsValidationError(err):
		return "validation"
	case errors.Is(err, core.ErrStatisticMismatch):
		return "mismatch"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "internal"
	}
}
