package run

import (
	"fmt"
	"math"
)

// SampleType selects how sample files are parsed.
type SampleType string

const (
	SampleTypeFloat SampleType = "f64"
	SampleTypeInt   SampleType = "i64"
)

// NormalSpec describes a sample of normal deviates.
type NormalSpec struct {
	Count    int     `json:"count" yaml:"count" validate:"min=1"`
	Mean     float64 `json:"mean" yaml:"mean"`
	Variance float64 `json:"variance" yaml:"variance" validate:"gt=0"`
	Seed     int64   `json:"seed" yaml:"seed"`
}

// Validate checks count, mean and variance.
func (s NormalSpec) Validate() error {
	if s.Count < 1 {
		return fmt.Errorf("count must be positive, got %d", s.Count)
	}
	if !(s.Variance > 0) || math.IsInf(s.Variance, 0) {
		return fmt.Errorf("variance must be positive and finite, got %v", s.Variance)
	}
	if math.IsNaN(s.Mean) || math.IsInf(s.Mean, 0) {
		return fmt.Errorf("mean must be finite, got %v", s.Mean)
	}
	return nil
}

// SampleSource names where one sample of a pair comes from: a file or a
// generated normal sample. Exactly one must be set.
type SampleSource struct {
	File   string      `json:"file,omitempty" yaml:"file,omitempty"`
	Normal *NormalSpec `json:"normal,omitempty" yaml:"normal,omitempty"`
}

// Validate checks that exactly one source is set.
func (s SampleSource) Validate() error {
	switch {
	case s.File != "" && s.Normal != nil:
		return fmt.Errorf("set either file or normal, not both")
	case s.File != "":
		return nil
	case s.Normal != nil:
		return s.Normal.Validate()
	default:
		return fmt.Errorf("file or normal is required")
	}
}

// String describes the source for logs.
func (s SampleSource) String() string {
	if s.Normal != nil {
		return fmt.Sprintf("normal(n=%d, mean=%g, var=%g, seed=%d)", s.Normal.Count, s.Normal.Mean, s.Normal.Variance, s.Normal.Seed)
	}
	return s.File
}

// PairSpec is one two-sample test of a batch.
type PairSpec struct {
	Name       string       `json:"name" yaml:"name" validate:"required"`
	First      SampleSource `json:"first" yaml:"first"`
	Second     SampleSource `json:"second" yaml:"second"`
	Confidence float64      `json:"confidence,omitempty" yaml:"confidence,omitempty" validate:"omitempty,gt=0,lt=1"`
}
