package drift

import (
	"math"

	"github.com/danielpatrickdp/agent-governor/internal/dynamics"
)

// Drift vector component indices.
const (
	Calibration         = 0
	ComplexityDivergence = 1
	CoherenceDeviation  = 2
	DecisionInstability = 3
)

// #region compute
// Compute derives the 4-component drift vector from raw signals and the
// agent's baseline. Each component is clamped to [0,1]; components whose
// raw signals are absent default to 0 (no evidence of drift).
//
// coherence is the current-cycle coherence score, compared against the
// baseline's coherence EMA. Compute does not mutate the baseline; callers
// follow up with Update once the cycle's observations are final.
func Compute(raw RawSignals, b *AgentBaseline, cfg Config, coherence float64) dynamics.DriftVector {
	var dv dynamics.DriftVector

	if raw.PredictedCorrect != nil && raw.ActualCorrect != nil {
		dv[Calibration] = clamp01(math.Abs(*raw.PredictedCorrect - *raw.ActualCorrect))
	}

	if raw.SelfReportedComplexity != nil && raw.DerivedComplexity != nil {
		dv[ComplexityDivergence] = clamp01(math.Abs(*raw.DerivedComplexity - *raw.SelfReportedComplexity))
	}

	// Coherence deviation needs an established baseline; a brand-new agent
	// has no expectation to deviate from.
	if b.UpdateCount > 0 {
		dv[CoherenceDeviation] = clamp01(math.Abs(coherence - b.CoherenceEMA))
	}

	window := raw.RecentDecisions
	if len(window) == 0 {
		window = b.RecentVerdicts
	}
	dv[DecisionInstability] = clamp01(Instability(window, cfg.MinDecisionWindow))

	return dv
}

// Instability is the fraction of decisions in the window that disagree with
// the window majority. Below minWindow decisions it returns 0.
func Instability(window []string, minWindow int) float64 {
	if len(window) < minWindow {
		return 0
	}
	counts := make(map[string]int, 4)
	for _, d := range window {
		counts[d]++
	}
	majority := 0
	for _, n := range counts {
		if n > majority {
			majority = n
		}
	}
	return 1 - float64(majority)/float64(len(window))
}

// #endregion compute

// #region update
// Update folds the cycle's observations into the baseline EMAs. This is the
// per-cycle side effect on persisted agent state; the caller saves the
// baseline afterwards.
func (b *AgentBaseline) Update(coherence, confidence, complexity float64) {
	rate := b.EMARate
	if rate <= 0 || rate > 1 {
		rate = DefaultConfig().EMARate
	}

	if b.UpdateCount == 0 {
		// Seed the EMAs on first observation instead of averaging
		// against zero.
		b.CoherenceEMA = coherence
		b.ConfidenceEMA = confidence
		b.ComplexityEMA = complexity
	} else {
		b.CoherenceEMA = (1-rate)*b.CoherenceEMA + rate*coherence
		b.ConfidenceEMA = (1-rate)*b.ConfidenceEMA + rate*confidence
		b.ComplexityEMA = (1-rate)*b.ComplexityEMA + rate*complexity
	}

	b.PrevCoherence = coherence
	b.PrevConfidence = confidence
	b.PrevComplexity = complexity
	b.UpdateCount++
}

// ObserveVerdict appends the cycle's verdict to the recent window, trims it
// to the configured cap, and refreshes the consistency score.
func (b *AgentBaseline) ObserveVerdict(verdict string, cfg Config) {
	b.RecentVerdicts = append(b.RecentVerdicts, verdict)
	if limit := cfg.VerdictWindowSize; limit > 0 && len(b.RecentVerdicts) > limit {
		b.RecentVerdicts = b.RecentVerdicts[len(b.RecentVerdicts)-limit:]
	}
	b.ConsistencyScore = 1 - Instability(b.RecentVerdicts, cfg.MinDecisionWindow)
}

// #endregion update

// #region helpers
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// #endregion helpers
