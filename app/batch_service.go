package app

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"kstest/adapters/stats/order"
	"kstest/domain/core"
	"kstest/domain/run"
	"kstest/domain/stats"
	"kstest/internal"
	"kstest/internal/errors"
	"kstest/internal/profiling"
	"kstest/ports"
)

// SampleGenerator produces synthetic float samples.
type SampleGenerator interface {
	Generate(ctx context.Context, stream string, spec run.NormalSpec) ([]float64, error)
}

// BatchService runs the pairs of a manifest concurrently, bounded by a
// weighted semaphore.
type BatchService struct {
	engine      *Engine
	reader      ports.SampleReaderPort
	generator   SampleGenerator
	concurrency int64
	logger      *internal.Logger
}

// NewBatchService creates a batch service. Concurrency below one runs pairs
// one at a time.
func NewBatchService(engine *Engine, reader ports.SampleReaderPort, generator SampleGenerator, concurrency int, logger *internal.Logger) *BatchService {
	if concurrency < 1 {
		concurrency = 1
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &BatchService{
		engine:      engine,
		reader:      reader,
		generator:   generator,
		concurrency: int64(concurrency),
		logger:      logger,
	}
}

// PairOutcome is the result of one pair. Exactly one of Result and Error is
// set.
type PairOutcome struct {
	Name          string                   `json:"name"`
	First         string                   `json:"first"`
	Second        string                   `json:"second"`
	Result        *stats.TestResult        `json:"result,omitempty"`
	FirstSummary  *profiling.SampleSummary `json:"first_summary,omitempty"`
	SecondSummary *profiling.SampleSummary `json:"second_summary,omitempty"`
	Error         string                   `json:"error,omitempty"`
	ErrorCode     string                   `json:"error_code,omitempty"`
	RuntimeMs     int64                    `json:"runtime_ms"`
}

// BatchResult contains the complete output of a batch run
type BatchResult struct {
	RunID       core.RunID     `json:"run_id"`
	Fingerprint core.Hash      `json:"fingerprint"`
	StartedAt   core.Timestamp `json:"started_at"`
	FinishedAt  core.Timestamp `json:"finished_at"`
	RuntimeMs   int64          `json:"runtime_ms"`
	Pairs       []PairOutcome  `json:"pairs"`
	Rejected    int            `json:"rejected"`
	Failed      int            `json:"failed"`
	Success     bool           `json:"success"`
}

// WriteJSON writes the result as indented JSON.
func (r *BatchResult) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// LoadManifest reads and validates a YAML manifest. Relative sample paths
// resolve against the manifest's directory.
func LoadManifest(path string) (*run.Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.IOError(path, err)
	}
	m, err := run.ParseManifest(data, filepath.Dir(path))
	if err != nil {
		return nil, errors.Wrapf(errors.InvalidInput(err.Error()), "manifest %s", path)
	}
	return m, nil
}

// Run executes every pair of the manifest. Failures of individual pairs are
// reported in their outcome; Run itself fails only for an unusable manifest.
func (s *BatchService) Run(ctx context.Context, m *run.Manifest) (*BatchResult, error) {
	if err := m.Validate(); err != nil {
		return nil, errors.InvalidInput(err.Error())
	}
	engine, err := s.engine.WithStrategy(stats.Strategy(m.Strategy))
	if err != nil {
		return nil, errors.Wrap(errors.InvalidInput(err.Error()), "manifest strategy")
	}

	result := &BatchResult{
		RunID:       core.NewRunID(),
		Fingerprint: m.Fingerprint(),
		StartedAt:   core.Now(),
		Pairs:       make([]PairOutcome, len(m.Pairs)),
	}
	logger := s.logger.With("run_id", result.RunID.String())
	logger.Info("batch started", "pairs", len(m.Pairs), "concurrency", s.concurrency,
		"fingerprint", result.Fingerprint.Short(), "strategy", string(engine.Options().Strategy))

	sem := semaphore.NewWeighted(s.concurrency)
	var wg sync.WaitGroup
	for i, pair := range m.Pairs {
		if err := sem.Acquire(ctx, 1); err != nil {
			for j := i; j < len(m.Pairs); j++ {
				result.Pairs[j] = failedOutcome(m.Pairs[j], err, 0)
			}
			logger.Warn("batch interrupted", "remaining", len(m.Pairs)-i, "error", err)
			break
		}
		wg.Add(1)
		go func(i int, pair run.PairSpec) {
			defer wg.Done()
			defer sem.Release(1)
			result.Pairs[i] = s.runPair(ctx, engine, m, pair)
		}(i, pair)
	}
	wg.Wait()

	for _, p := range result.Pairs {
		switch {
		case p.Error != "":
			result.Failed++
			logger.Warn("pair failed", "pair", p.Name, "code", p.ErrorCode, "error", p.Error)
		case p.Result.IsRejected:
			result.Rejected++
		}
	}
	result.FinishedAt = core.Now()
	result.RuntimeMs = result.FinishedAt.Sub(result.StartedAt).Milliseconds()
	result.Success = result.Failed == 0

	logger.Info("batch finished", "rejected", result.Rejected, "failed", result.Failed,
		"runtime_ms", result.RuntimeMs)
	return result, nil
}

func (s *BatchService) runPair(ctx context.Context, engine *Engine, m *run.Manifest, pair run.PairSpec) PairOutcome {
	start := time.Now()
	confidence := m.ConfidenceFor(pair, engine.DefaultConfidence())

	var outcome PairOutcome
	var err error
	switch m.SampleType() {
	case run.SampleTypeInt:
		outcome, err = runTypedPair(ctx, engine, pair, confidence, m.Summaries, order.Natural[int64]{},
			func(src run.SampleSource, _ string) ([]int64, error) {
				if src.Normal != nil {
					return nil, errors.InvalidInput("generated samples require type f64")
				}
				return s.reader.ReadInts(ctx, m.ResolvePath(src.File))
			}, profiling.SummarizeInts)
	default:
		outcome, err = runTypedPair(ctx, engine, pair, confidence, m.Summaries, order.Float[float64]{},
			func(src run.SampleSource, stream string) ([]float64, error) {
				if src.Normal != nil {
					return s.generator.Generate(ctx, stream, *src.Normal)
				}
				return s.reader.ReadFloats(ctx, m.ResolvePath(src.File))
			}, profiling.Summarize)
	}
	if err != nil {
		return failedOutcome(pair, err, time.Since(start))
	}
	outcome.RuntimeMs = time.Since(start).Milliseconds()
	return outcome
}

func runTypedPair[T any](
	ctx context.Context,
	engine *Engine,
	pair run.PairSpec,
	confidence float64,
	summaries bool,
	ord ports.OrderPort[T],
	load func(src run.SampleSource, stream string) ([]T, error),
	summarize func([]T) (profiling.SampleSummary, error),
) (PairOutcome, error) {
	outcome := PairOutcome{Name: pair.Name, First: pair.First.String(), Second: pair.Second.String()}

	xs, err := load(pair.First, pair.Name+"/"+core.SampleFirst)
	if err != nil {
		return outcome, errors.Wrapf(err, "load %s sample", core.SampleFirst)
	}
	ys, err := load(pair.Second, pair.Name+"/"+core.SampleSecond)
	if err != nil {
		return outcome, errors.Wrapf(err, "load %s sample", core.SampleSecond)
	}

	result, err := ExecuteContext(ctx, engine, xs, ys, ord, confidence)
	if err != nil {
		return outcome, err
	}
	outcome.Result = &result

	if summaries {
		if fs, err := summarize(xs); err == nil {
			outcome.FirstSummary = &fs
		}
		if ss, err := summarize(ys); err == nil {
			outcome.SecondSummary = &ss
		}
	}
	return outcome, nil
}

func failedOutcome(pair run.PairSpec, err error, elapsed time.Duration) PairOutcome {
	err = ToAppError(err)
	return PairOutcome{
		Name:      pair.Name,
		First:     pair.First.String(),
		Second:    pair.Second.String(),
		Error:     err.Error(),
		ErrorCode: errors.GetCode(err),
		RuntimeMs: elapsed.Milliseconds(),
	}
}
