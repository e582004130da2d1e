// Package adaptive retunes the lambda1 drift gain with a cadence- and
// confidence-gated proportional-integral update.
package adaptive

// #region types

// Config holds the controller policy. The cadence and confidence gate are
// reproduced exactly as shipped: retune only on cycles divisible by
// RetuneEvery, and only when confidence clears the floor.
type Config struct {
	RetuneEvery     int64   // fixed cadence in cycles
	ConfidenceFloor float64 // minimum confidence for a retune to fire
	KP              float64 // proportional gain
	KI              float64 // integral gain
	TargetCoherence float64 // setpoint for the coherence error signal
	ScaleMin        float64 // lower clamp on the lambda1 scale
	ScaleMax        float64 // upper clamp on the lambda1 scale
}

// DefaultConfig returns the shipped controller policy.
func DefaultConfig() Config {
	return Config{
		RetuneEvery:     5,
		ConfidenceFloor: 0.6,
		KP:              0.1,
		KI:              0.02,
		TargetCoherence: 0.5,
		ScaleMin:        0.1,
		ScaleMax:        3.0,
	}
}

// State is the controller's persisted memory: the cadence counter and the
// PI integral accumulator. It is stored alongside the agent baseline.
type State struct {
	CycleCount int64
	Integral   float64
}

// Result reports one controller invocation.
type Result struct {
	State        State
	Lambda1Scale float64
	Retuned      bool
}

// #endregion types

// #region retune

// Retune advances the cadence counter (exactly once per cycle, regardless
// of gate outcome) and, when both the cadence and the confidence gate pass,
// applies one PI correction to the lambda1 scale. A gated cycle is a silent
// no-op that leaves the scale and integral untouched.
//
// The returned scale takes effect on the next cycle, never the current one.
func Retune(st State, lambda1Scale, coherence, confidence float64, cfg Config) Result {
	st.CycleCount++

	if cfg.RetuneEvery <= 0 || st.CycleCount%cfg.RetuneEvery != 0 {
		return Result{State: st, Lambda1Scale: lambda1Scale}
	}
	if confidence < cfg.ConfidenceFloor {
		return Result{State: st, Lambda1Scale: lambda1Scale}
	}

	err := cfg.TargetCoherence - coherence
	st.Integral += err

	scale := lambda1Scale + cfg.KP*err + cfg.KI*st.Integral
	if scale < cfg.ScaleMin {
		scale = cfg.ScaleMin
	}
	if scale > cfg.ScaleMax {
		scale = cfg.ScaleMax
	}

	return Result{State: st, Lambda1Scale: scale, Retuned: true}
}

// #endregion retune
