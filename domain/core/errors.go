package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Input validation errors (fatal, detected before any computation)
	ErrEmptySample       = errors.New("sample must contain at least one observation")
	ErrInvalidConfidence = errors.New("confidence must lie strictly between 0 and 1")
	ErrUnorderableValue  = errors.New("value has no total order")
	ErrInvalidSampleSize = errors.New("sample size must be positive")
	ErrInvalidRank       = errors.New("rank out of range")

	// Numerical errors
	ErrNotConverged      = errors.New("series did not converge")
	ErrStatisticMismatch = errors.New("reference and efficient statistics disagree")
)

// Sample names used when reporting which input failed validation.
const (
	SampleFirst  = "first"
	SampleSecond = "second"
)

// EmptySampleError reports a sample with zero elements.
type EmptySampleError struct {
	Sample string
}

func (e *EmptySampleError) Error() string {
	if e.Sample == "" {
		return ErrEmptySample.Error()
	}
	return fmt.Sprintf("%s %s", e.Sample, ErrEmptySample.Error())
}

func (e *EmptySampleError) Unwrap() error { return ErrEmptySample }

// InvalidConfidenceError reports a confidence level outside (0, 1).
type InvalidConfidenceError struct {
	Confidence float64
}

func (e *InvalidConfidenceError) Error() string {
	return fmt.Sprintf("%s: got %v", ErrInvalidConfidence.Error(), e.Confidence)
}

func (e *InvalidConfidenceError) Unwrap() error { return ErrInvalidConfidence }

// UnorderableValueError reports a value that cannot be placed in a total
// order, such as a floating point NaN. Index is -1 when the position is not
// known (e.g. when raised by a single comparison).
type UnorderableValueError struct {
	Sample string
	Index  int
	Value  any
}

func (e *UnorderableValueError) Error() string {
	if e.Sample == "" || e.Index < 0 {
		return fmt.Sprintf("%s: %v", ErrUnorderableValue.Error(), e.Value)
	}
	return fmt.Sprintf("%s: %v at index %d of %s sample", ErrUnorderableValue.Error(), e.Value, e.Index, e.Sample)
}

func (e *UnorderableValueError) Unwrap() error { return ErrUnorderableValue }

// ConvergenceWarning flags a Kolmogorov series that was truncated before the
// next term fell below tolerance. It is attached to a result, never returned
// as the error of a call.
type ConvergenceWarning struct {
	Lambda     float64 `json:"lambda"`
	Terms      int     `json:"terms"`
	PartialSum float64 `json:"partial_sum"`
	TailBound  float64 `json:"tail_bound"`
}

func (w *ConvergenceWarning) Error() string {
	return fmt.Sprintf("%s: lambda=%g after %d terms (partial sum %g, next term %g)",
		ErrNotConverged.Error(), w.Lambda, w.Terms, w.PartialSum, w.TailBound)
}

func (w *ConvergenceWarning) Unwrap() error { return ErrNotConverged }

// Error constructors with context
func NewEmptySampleError(sample string) error {
	return &EmptySampleError{Sample: sample}
}

func NewInvalidConfidenceError(confidence float64) error {
	return &InvalidConfidenceError{Confidence: confidence}
}

func NewUnorderableValueError(value any) error {
	return &UnorderableValueError{Index: -1, Value: value}
}

// UnorderableAt places an unorderable value error at a position within a
// named sample. Errors of other kinds are returned unchanged.
func UnorderableAt(sample string, index int, err error) error {
	var ue *UnorderableValueError
	if !errors.As(err, &ue) {
		return err
	}
	return &UnorderableValueError{Sample: sample, Index: index, Value: ue.Value}
}

func NewRankError(rank, length int) error {
	return fmt.Errorf("%w: rank %d not in [1, %d]", ErrInvalidRank, rank, length)
}

func NewStatisticMismatchError(efficient, reference float64) error {
	return fmt.Errorf("%w: efficient=%v reference=%v", ErrStatisticMismatch, efficient, reference)
}

// Error checking helpers
func IsValidationError(err error) bool {
	return errors.Is(err, ErrEmptySample) ||
		errors.Is(err, ErrInvalidConfidence) ||
		errors.Is(err, ErrUnorderableValue) ||
		errors.Is(err, ErrInvalidSampleSize)
}

func IsConvergenceWarning(err error) bool {
	return errors.Is(err, ErrNotConverged)
}
