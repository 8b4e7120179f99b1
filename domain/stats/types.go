package stats

import (
	"fmt"

	"kstest/domain/core"
)

// ============================================================================
// ORDERING PRIMITIVES
// ============================================================================

// Ordering is the outcome of comparing two values under a total order.
type Ordering int

const (
	Less    Ordering = -1
	Equal   Ordering = 0
	Greater Ordering = 1
)

func (o Ordering) String() string {
	switch o {
	case Less:
		return "Less"
	case Equal:
		return "Equal"
	case Greater:
		return "Greater"
	default:
		return fmt.Sprintf("Ordering(%d)", int(o))
	}
}

// OrderingOf maps a three-way comparison result onto an Ordering.
func OrderingOf(c int) Ordering {
	switch {
	case c < 0:
		return Less
	case c > 0:
		return Greater
	default:
		return Equal
	}
}

// ============================================================================
// SIGNIFICANCE STRATEGIES
// ============================================================================

// Strategy selects how a statistic is turned into a decision.
type Strategy string

const (
	// StrategyCriticalValue decides by D > c(confidence)·sqrt((n+m)/(n·m)).
	StrategyCriticalValue Strategy = "critical"
	// StrategyRejectionProbability decides by Q(λ) ≤ 1 − confidence, falling
	// back to the critical value when the series did not converge.
	StrategyRejectionProbability Strategy = "probability"
	// StrategyBoth runs both estimators and decides by the critical value,
	// flagging any disagreement with the asymptotic decision.
	StrategyBoth Strategy = "both"
)

// ParseStrategy parses a strategy name.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyCriticalValue, StrategyRejectionProbability, StrategyBoth:
		return Strategy(s), nil
	}
	return "", fmt.Errorf("unknown strategy %q (want critical|probability|both)", s)
}

// Significance is the output of a single estimator.
type Significance struct {
	CriticalValue float64 `json:"critical_value,omitempty"`

	// PValue is Q(λ): the probability under the null hypothesis of a statistic
	// at least as extreme as the observed one. Nil unless the asymptotic
	// estimator ran.
	PValue *float64 `json:"p_value,omitempty"`

	IsRejected bool                     `json:"is_rejected"`
	Warning    *core.ConvergenceWarning `json:"warning,omitempty"`
}

// ============================================================================
// TEST RESULT
// ============================================================================

// TestResult is the outcome of one two-sample test. It is built once by the
// orchestrator and returned by value.
type TestResult struct {
	Statistic     float64 `json:"statistic"`
	CriticalValue float64 `json:"critical_value"`

	// RejectProbability is 1 − PValue: the confidence with which the null
	// hypothesis can be rejected. Present only if the asymptotic strategy ran.
	RejectProbability *float64 `json:"reject_probability,omitempty"`
	PValue            *float64 `json:"p_value,omitempty"`

	IsRejected bool    `json:"is_rejected"`
	Confidence float64 `json:"confidence"`
	SizeFirst  int     `json:"size_first"`
	SizeSecond int     `json:"size_second"`

	Strategy  Strategy `json:"strategy"`
	DecidedBy Strategy `json:"decided_by"`

	// Disagreement is set when both estimators ran and reached different
	// decisions.
	Disagreement bool                     `json:"disagreement,omitempty"`
	Warning      *core.ConvergenceWarning `json:"warning,omitempty"`
}

// Probability returns the reject probability when the asymptotic strategy ran.
func (r TestResult) Probability() (float64, bool) {
	if r.RejectProbability == nil {
		return 0, false
	}
	return *r.RejectProbability, true
}

// Converged reports whether the result carries no convergence warning.
func (r TestResult) Converged() bool {
	return r.Warning == nil
}

// Verdict renders the decision the way the command line tools print it.
func (r TestResult) Verdict() string {
	if r.IsRejected {
		return "Samples are from different distributions."
	}
	return "Samples are from the same distributions."
}
