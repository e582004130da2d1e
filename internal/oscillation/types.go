package oscillation

// #region state
// State is the persisted oscillation record for one agent+metric pair.
type State struct {
	AgentID string
	Metric  string

	EMA       float64 // exponentially weighted flip measure; OI = EMA
	FlipCount int64
	LastSide  int     // +1 at-or-above threshold, -1 below; 0 until initialized
	LastValue float64

	// ThresholdBias is the damper's tightening carried into the next
	// cycle. It lives here because the damper itself holds no memory.
	ThresholdBias float64
}

// NewState returns a fresh record for an agent+metric with no history.
func NewState(agentID, metric string) State {
	return State{AgentID: agentID, Metric: metric}
}

// #endregion state

// #region detector-config
// DetectorConfig holds the flip-detection policy for a monitored metric.
type DetectorConfig struct {
	Threshold float64 // crossing boundary for the monitored metric
	Alpha     float64 // EMA rate for the flip measure
}

// DefaultDetectorConfig monitors the objective scalar against zero.
func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{Threshold: 0.0, Alpha: 0.3}
}

// #endregion detector-config

// #region damper-config
// DamperConfig holds the resonance-damping policy.
type DamperConfig struct {
	SoftCutoff  float64 // OI at or above this: soft dampen
	HardCutoff  float64 // OI at or above this: hard block
	TightenStep float64 // threshold bias added per soft-dampened cycle
	MaxTighten  float64 // cap on the accumulated bias
}

// DefaultDamperConfig returns the shipped damping policy.
func DefaultDamperConfig() DamperConfig {
	return DamperConfig{
		SoftCutoff:  0.4,
		HardCutoff:  0.8,
		TightenStep: 0.05,
		MaxTighten:  0.25,
	}
}

// #endregion damper-config

// #region tier
// ResponseTier is the final caller-facing action category.
type ResponseTier string

const (
	TierProceed    ResponseTier = "proceed"
	TierSoftDampen ResponseTier = "soft_dampen"
	TierHardBlock  ResponseTier = "hard_block"
)

// #endregion tier
