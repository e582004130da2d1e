package drift

// #region raw-signals
// RawSignals carries the per-cycle observables the drift vector is derived
// from. Every field is optional: a nil pointer (or empty window) means "no
// evidence" and the matching drift component defaults to 0 rather than a
// sentinel.
type RawSignals struct {
	// Calibration pair: the agent's predicted correctness for its last
	// decision vs. the observed outcome, both in [0,1].
	PredictedCorrect *float64
	ActualCorrect    *float64

	// Complexity pair: what the agent reported vs. what the caller derived.
	SelfReportedComplexity *float64
	DerivedComplexity      *float64

	// Recent decision window (most recent last). When absent, the
	// baseline's stored verdict window is used instead.
	RecentDecisions []string
}

// #endregion raw-signals

// #region config
// Config holds tuning knobs for drift derivation and baseline maintenance.
type Config struct {
	EMARate           float64 // baseline EMA rate (default 0.2)
	VerdictWindowSize int     // cap on the stored recent-verdict window
	MinDecisionWindow int     // below this many decisions, stability evidence is 0
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		EMARate:           0.2,
		VerdictWindowSize: 10,
		MinDecisionWindow: 2,
	}
}

// #endregion config

// #region baseline
// AgentBaseline tracks per-agent running statistics. Created lazily on the
// first observed cycle, updated every cycle, persisted by the caller, and
// never reset except through Reset.
type AgentBaseline struct {
	AgentID string

	CoherenceEMA  float64
	ConfidenceEMA float64
	ComplexityEMA float64

	PrevCoherence  float64
	PrevConfidence float64
	PrevComplexity float64

	RecentVerdicts   []string
	ConsistencyScore float64
	UpdateCount      int64
	EMARate          float64

	// Adaptive-controller state persisted alongside the baseline: cadence
	// counter, PI integral accumulator, and the retuned lambda1 gain.
	RetuneCount    int64
	RetuneIntegral float64
	Lambda1Scale   float64
}

// NewBaseline returns a fresh baseline for an agent with no history.
func NewBaseline(agentID string, cfg Config) AgentBaseline {
	return AgentBaseline{
		AgentID:          agentID,
		ConsistencyScore: 1.0,
		EMARate:          cfg.EMARate,
		Lambda1Scale:     1.0,
	}
}

// Reset clears all learned statistics while keeping the agent identity.
// This is the only sanctioned way to drop an agent's history.
func (b *AgentBaseline) Reset(cfg Config) {
	*b = NewBaseline(b.AgentID, cfg)
}

// #endregion baseline
