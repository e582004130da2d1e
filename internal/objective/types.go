package objective

// #region verdict
// Verdict is the categorical outcome derived from the objective scalar.
type Verdict string

const (
	VerdictStop     Verdict = "stop"
	VerdictPause    Verdict = "pause"
	VerdictContinue Verdict = "continue"
	VerdictProceed  Verdict = "proceed"
)

// Severity orders verdicts from most permissive (0, proceed) to most
// conservative (3, stop).
func Severity(v Verdict) int {
	switch v {
	case VerdictProceed:
		return 0
	case VerdictContinue:
		return 1
	case VerdictPause:
		return 2
	default:
		return 3
	}
}

// Downgrade moves a verdict one severity step toward stop. stop stays stop.
func Downgrade(v Verdict) Verdict {
	switch v {
	case VerdictProceed:
		return VerdictContinue
	case VerdictContinue:
		return VerdictPause
	default:
		return VerdictStop
	}
}

// #endregion verdict

// #region weights
// Weights holds the five non-negative objective weights.
type Weights struct {
	WE   float64 // reward on capacity
	WI   float64 // penalty on integrity deficit (1-I)
	WS   float64 // penalty on entropy
	WV   float64 // penalty on |V|
	WEta float64 // penalty on drift magnitude
}

// DefaultWeights returns the shipped objective weights.
func DefaultWeights() Weights {
	return Weights{WE: 0.3, WI: 0.3, WS: 0.25, WV: 0.1, WEta: 0.15}
}

// #endregion weights

// #region thresholds
// Thresholds partitions the real line into four contiguous verdict bands:
//
//	phi >= ProceedMin             -> proceed
//	ContinueMin <= phi < ProceedMin -> continue
//	PauseMin <= phi < ContinueMin   -> pause
//	phi < PauseMin                  -> stop
//
// The three boundaries must be strictly ordered; every real phi then maps
// to exactly one verdict with no gaps or overlaps.
type Thresholds struct {
	ProceedMin  float64
	ContinueMin float64
	PauseMin    float64
}

// DefaultThresholds returns the shipped verdict boundaries.
func DefaultThresholds() Thresholds {
	return Thresholds{ProceedMin: 0.05, ContinueMin: -0.15, PauseMin: -0.55}
}

// #endregion thresholds
