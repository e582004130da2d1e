package dynamics

// #region state
// State is the 4-component governance state for one agent.
// E, I, S are bounded to [0,1]; V is bounded by Params.VMin/VMax.
type State struct {
	E float64 // capacity/energy
	I float64 // integrity
	S float64 // entropy/disorder
	V float64 // void: accumulated E-I imbalance, signed
}

// DefaultState returns the documented starting state for an agent
// with no history.
func DefaultState() State {
	return State{E: 0.5, I: 0.5, S: 0.5, V: 0}
}

// #endregion state

// #region drift-vector
// DriftVector holds the four per-cycle deviation components, each in [0,1]:
// calibration deviation, complexity divergence, coherence deviation,
// decision-stability deviation.
type DriftVector [4]float64

// #endregion drift-vector

// #region theta
// Theta holds the dynamics shape parameters.
type Theta struct {
	C1           float64 // coherence-curve steepness
	Lambda1Scale float64 // adaptive gain on the drift term in dS (retuned per agent)
	Lambda2Scale float64 // gain on the coherence-relief term in dS
}

// DefaultTheta returns the shipped shape parameters.
func DefaultTheta() Theta {
	return Theta{
		C1:           2.0,
		Lambda1Scale: 1.0,
		Lambda2Scale: 1.0,
	}
}

// #endregion theta

// #region params
// Params holds all dynamics coefficients and clip bounds. Supplied as an
// immutable snapshot per cycle; nothing in this package mutates it.
type Params struct {
	Alpha  float64 // E coupling toward I
	BetaE  float64 // E decay under disorder (E*S)
	GammaE float64 // drift gain on E

	K      float64 // S pressure on I
	BetaI  float64 // coherence support for I
	GammaI float64 // bistable term gain: gammaI * I * (1-I)

	Mu             float64 // S decay
	Lambda1Base    float64 // base drift gain on S
	Lambda2Base    float64 // base coherence relief on S
	BetaComplexity float64 // complexity pressure on S

	Kappa  float64 // V accumulation rate from E-I imbalance
	DeltaV float64 // V decay

	CMax float64 // coherence ceiling

	EMin, EMax float64
	IMin, IMax float64
	SMin, SMax float64
	VMin, VMax float64
}

// DefaultParams returns the shipped coefficient set.
func DefaultParams() Params {
	return Params{
		Alpha:  0.3,
		BetaE:  0.2,
		GammaE: 0.05,

		K:      0.1,
		BetaI:  0.15,
		GammaI: 0.8,

		Mu:             0.3,
		Lambda1Base:    0.25,
		Lambda2Base:    0.1,
		BetaComplexity: 0.2,

		Kappa:  0.2,
		DeltaV: 0.1,

		CMax: 1.0,

		EMin: 0, EMax: 1,
		IMin: 0, IMax: 1,
		SMin: 0, SMax: 1,
		VMin: -1, VMax: 1,
	}
}

// #endregion params
