package app

import (
	"bytes"
	"context"
	"errors"
	"math"
	"math/rand"
	"slices"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kstest/adapters/generator"
	"kstest/adapters/stats/order"
	"kstest/adapters/stats/significance"
	"kstest/domain/core"
	"kstest/domain/run"
	"kstest/domain/stats"
	"kstest/internal"
	"kstest/internal/config"
	"kstest/internal/metrics"
)

var floatOrder = order.Float[float64]{}

func quietLogger() *internal.Logger {
	return internal.NewLoggerTo(&bytes.Buffer{}, internal.LogLevelError, false)
}

func newTestEngine(t *testing.T, mutate func(*EngineOptions)) *Engine {
	t.Helper()
	opts := DefaultEngineOptions()
	opts.Logger = quietLogger()
	if mutate != nil {
		mutate(&opts)
	}
	e, err := NewEngine(opts)
	require.NoError(t, err)
	return e
}

func normalSample(t *testing.T, stream string, count int, mean float64, seed int64) []float64 {
	t.Helper()
	values, err := generator.NewNormalGenerator(nil).Generate(context.Background(), stream,
		run.NormalSpec{Count: count, Mean: mean, Variance: 1, Seed: seed})
	require.NoError(t, err)
	return values
}

func intRange(lo, hi int64) []int64 {
	out := make([]int64, 0, hi-lo+1)
	for v := lo; v <= hi; v++ {
		out = append(out, v)
	}
	return out
}

func TestSameNormalIsNotRejected(t *testing.T) {
	e := newTestEngine(t, nil)
	xs := normalSample(t, "first", 2000, 0, 1)
	ys := normalSample(t, "second", 2000, 0, 1)

	result, err := Execute(e, xs, ys, floatOrder, 0.9999)
	require.NoError(t, err)
	assert.Less(t, result.Statistic, 0.08)
	assert.False(t, result.IsRejected)
	assert.Equal(t, "Samples are from the same distributions.", result.Verdict())

	p, ok := result.Probability()
	require.True(t, ok)
	assert.GreaterOrEqual(t, p, 0.0)
	assert.LessOrEqual(t, p, 1.0)
}

func TestShiftedNormalIsRejected(t *testing.T) {
	e := newTestEngine(t, nil)
	xs := normalSample(t, "first", 2000, 0, 7)
	ys := normalSample(t, "second", 2000, 1, 7)

	result, err := Execute(e, xs, ys, floatOrder, 0.95)
	require.NoError(t, err)

	// The population distance is 2Φ(0.5) − 1 ≈ 0.383.
	assert.InDelta(t, 0.383, result.Statistic, 0.065)
	assert.True(t, result.IsRejected)
	assert.Equal(t, "Samples are from different distributions.", result.Verdict())

	p, ok := result.Probability()
	require.True(t, ok)
	assert.Greater(t, p, 0.999)
	require.NotNil(t, result.PValue)
	assert.InDelta(t, 1.0, *result.PValue+p, 1e-12)
	assert.False(t, result.Disagreement)
}

func TestIdenticalMultisetsAreNeverRejected(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for _, strategy := range []stats.Strategy{stats.StrategyCriticalValue, stats.StrategyRejectionProbability, stats.StrategyBoth} {
		e := newTestEngine(t, func(o *EngineOptions) { o.Strategy = strategy })
		for trial := 0; trial < 20; trial++ {
			xs := make([]int64, 1+rng.Intn(200))
			for i := range xs {
				xs[i] = rng.Int63n(50)
			}
			ys := slices.Clone(xs)
			rng.Shuffle(len(ys), func(i, j int) { ys[i], ys[j] = ys[j], ys[i] })

			result, err := Execute(e, xs, ys, order.Natural[int64]{}, 0.95)
			require.NoError(t, err)
			assert.Equal(t, 0.0, result.Statistic)
			assert.False(t, result.IsRejected, "strategy %s", strategy)
		}
	}
}

func TestReversedRangeHasZeroDistance(t *testing.T) {
	xs := intRange(0, 12)
	ys := slices.Clone(xs)
	slices.Reverse(ys)

	result, err := TestOrdered(xs, ys, 0.95)
	require.NoError(t, err)
	assert.Equal(t, 0.0, result.Statistic)
	assert.False(t, result.IsRejected)
	assert.Equal(t, 13, result.SizeFirst)
	assert.Equal(t, 13, result.SizeSecond)
}

func TestExecuteValidatesInputs(t *testing.T) {
	e := newTestEngine(t, nil)

	_, err := Execute(e, []float64{}, []float64{1}, floatOrder, 0.95)
	var empty *core.EmptySampleError
	require.True(t, errors.As(err, &empty))
	assert.Equal(t, core.SampleFirst, empty.Sample)

	_, err = Execute(e, []float64{1}, nil, floatOrder, 0.95)
	require.True(t, errors.As(err, &empty))
	assert.Equal(t, core.SampleSecond, empty.Sample)

	for _, conf := range []float64{0, 1, -1, 2, math.NaN()} {
		_, err = Execute(e, []float64{1}, []float64{2}, floatOrder, conf)
		assert.ErrorIs(t, err, core.ErrInvalidConfidence, "confidence %v", conf)
	}

	_, err = Execute(e, []float64{1, 2}, []float64{3, 4, math.NaN()}, floatOrder, 0.95)
	var unorderable *core.UnorderableValueError
	require.True(t, errors.As(err, &unorderable))
	assert.Equal(t, core.SampleSecond, unorderable.Sample)
	assert.Equal(t, 2, unorderable.Index)
	assert.ErrorIs(t, err, core.ErrUnorderableValue)
}

func TestExecuteDoesNotMutateInputs(t *testing.T) {
	e := newTestEngine(t, func(o *EngineOptions) { o.CrossCheck = true })
	xs := []float64{3, 1, 2, 9, -4}
	ys := []float64{0.5, 7, 7, -1}
	xsBefore, ysBefore := slices.Clone(xs), slices.Clone(ys)

	_, err := Execute(e, xs, ys, floatOrder, 0.95)
	require.NoError(t, err)
	assert.Equal(t, xsBefore, xs)
	assert.Equal(t, ysBefore, ys)
}

func TestParallelSortMatchesSequential(t *testing.T) {
	sequential := newTestEngine(t, func(o *EngineOptions) { o.ParallelSortThreshold = 0 })
	parallel := newTestEngine(t, func(o *EngineOptions) { o.ParallelSortThreshold = 10 })

	xs := normalSample(t, "a", 3000, 0, 5)
	ys := normalSample(t, "b", 2500, 0.1, 5)

	want, err := Execute(sequential, xs, ys, floatOrder, 0.95)
	require.NoError(t, err)
	got, err := Execute(parallel, xs, ys, floatOrder, 0.95)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// Errors surface from the concurrent path too.
	_, err = sortSamplesWithNaN(t)
	assert.ErrorIs(t, err, core.ErrUnorderableValue)
}

func sortSamplesWithNaN(t *testing.T) ([]float64, error) {
	t.Helper()
	xs := []float64{1, math.NaN(), 2}
	sx, _, err := sortSamples(xs, []float64{1, 2}, floatOrder, 1)
	return sx, err
}

func TestCrossCheckAgreesOnRandomSamples(t *testing.T) {
	e := newTestEngine(t, func(o *EngineOptions) { o.CrossCheck = true })
	rng := rand.New(rand.NewSource(17))

	for trial := 0; trial < 50; trial++ {
		xs := make([]int64, 1+rng.Intn(80))
		ys := make([]int64, 1+rng.Intn(80))
		for i := range xs {
			xs[i] = rng.Int63n(30)
		}
		for i := range ys {
			ys[i] = rng.Int63n(30) + int64(trial%3)
		}
		_, err := Execute(e, xs, ys, order.Natural[int64]{}, 0.95)
		require.NoError(t, err)
	}
}

func TestStrategiesShapeTheResult(t *testing.T) {
	xs := intRange(0, 99)
	ys := intRange(40, 139)

	critical := newTestEngine(t, func(o *EngineOptions) { o.Strategy = stats.StrategyCriticalValue })
	result, err := Execute(critical, xs, ys, order.Natural[int64]{}, 0.95)
	require.NoError(t, err)
	assert.Equal(t, 0.4, result.Statistic)
	assert.True(t, result.IsRejected)
	assert.Nil(t, result.RejectProbability)
	assert.Nil(t, result.PValue)
	assert.Equal(t, stats.StrategyCriticalValue, result.DecidedBy)
	_, ok := result.Probability()
	assert.False(t, ok)

	probability := newTestEngine(t, func(o *EngineOptions) { o.Strategy = stats.StrategyRejectionProbability })
	result, err = Execute(probability, xs, ys, order.Natural[int64]{}, 0.95)
	require.NoError(t, err)
	assert.True(t, result.IsRejected)
	require.NotNil(t, result.RejectProbability)
	assert.Equal(t, stats.StrategyRejectionProbability, result.DecidedBy)
	assert.Greater(t, result.CriticalValue, 0.0)
	assert.True(t, result.Converged())
}

func TestBothStrategiesFlagDisagreement(t *testing.T) {
	// With n = m = 100 a statistic of 0.19 lies between the asymptotic
	// rejection threshold (≈0.188) and the critical value (≈0.192).
	e := newTestEngine(t, nil)

	result, err := Execute(e, intRange(0, 99), intRange(19, 118), order.Natural[int64]{}, 0.95)
	require.NoError(t, err)
	assert.Equal(t, 0.19, result.Statistic)
	assert.False(t, result.IsRejected)
	assert.Equal(t, stats.StrategyCriticalValue, result.DecidedBy)
	assert.True(t, result.Disagreement)
	require.NotNil(t, result.PValue)
	assert.Less(t, *result.PValue, 0.05)
}

func TestTruncatedSeriesFallsBackToCriticalValue(t *testing.T) {
	e := newTestEngine(t, func(o *EngineOptions) {
		o.Strategy = stats.StrategyRejectionProbability
		o.Series = significance.SeriesConfig{MaxTerms: 1, Tolerance: 1e-10}
	})

	result, err := Execute(e, intRange(0, 99), intRange(1, 100), order.Natural[int64]{}, 0.95)
	require.NoError(t, err)
	assert.Equal(t, 0.01, result.Statistic)
	require.NotNil(t, result.Warning)
	assert.ErrorIs(t, result.Warning, core.ErrNotConverged)
	assert.False(t, result.Converged())
	assert.Equal(t, stats.StrategyCriticalValue, result.DecidedBy)
	assert.False(t, result.IsRejected)
}

func TestEngineRecordsMetrics(t *testing.T) {
	recorder := metrics.NewRecorder()
	e := newTestEngine(t, func(o *EngineOptions) { o.Metrics = recorder })

	_, err := Execute(e, intRange(0, 99), intRange(40, 139), order.Natural[int64]{}, 0.95)
	require.NoError(t, err)
	_, err = Execute(e, []int64{}, []int64{1}, order.Natural[int64]{}, 0.95)
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(recorder.TestsTotal.WithLabelValues("both", metrics.DecisionRejected)))
	assert.Equal(t, 1.0, testutil.ToFloat64(recorder.ErrorsTotal.WithLabelValues("validation")))
}

func TestExecuteContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ExecuteContext(ctx, newTestEngine(t, nil), []int64{1}, []int64{2}, order.Natural[int64]{}, 0.95)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConvenienceHelpers(t *testing.T) {
	result, err := TestFloat64([]float64{0, 1, 2, 3}, []float64{2, 3, 4, 5}, 0.95)
	require.NoError(t, err)
	assert.Equal(t, 0.5, result.Statistic)

	words, err := TestOrdered([]string{"a", "b", "c"}, []string{"x", "y", "z"}, 0.95)
	require.NoError(t, err)
	assert.Equal(t, 1.0, words.Statistic)

	byLength := order.Func[string](func(a, b string) int { return len(a) - len(b) })
	result, err = Test([]string{"a", "bb"}, []string{"cc", "d"}, byLength, 0.95)
	require.NoError(t, err)
	assert.Equal(t, 0.0, result.Statistic)
}

func TestEngineOptionsFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Test.Strategy = "probability"
	cfg.Series.MaxTerms = 42
	cfg.Test.CrossCheck = true

	opts, err := EngineOptionsFromConfig(cfg, quietLogger(), nil)
	require.NoError(t, err)
	assert.Equal(t, stats.StrategyRejectionProbability, opts.Strategy)
	assert.Equal(t, 42, opts.Series.MaxTerms)
	assert.Equal(t, 1e-10, opts.Series.Tolerance)
	assert.True(t, opts.CrossCheck)
	assert.Equal(t, 65536, opts.ParallelSortThreshold)

	cfg.Test.Strategy = "vote"
	_, err = EngineOptionsFromConfig(cfg, nil, nil)
	assert.Error(t, err)
}

func TestWithStrategy(t *testing.T) {
	e := newTestEngine(t, nil)

	same, err := e.WithStrategy("")
	require.NoError(t, err)
	assert.Same(t, e, same)

	other, err := e.WithStrategy(stats.StrategyCriticalValue)
	require.NoError(t, err)
	assert.Equal(t, stats.StrategyCriticalValue, other.Options().Strategy)
	assert.Equal(t, stats.StrategyBoth, e.Options().Strategy)
}
