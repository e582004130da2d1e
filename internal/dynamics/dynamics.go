package dynamics

import (
	"errors"
	"fmt"
	"math"
)

// #region errors
// ErrInvalidInput marks inputs rejected before any state mutation:
// complexity or a drift component outside [0,1], or a non-positive dt.
var ErrInvalidInput = errors.New("invalid input")

// ErrNumericInstability marks NaN/Inf arising mid-computation. This is an
// internal-logic error, distinct from ordinary validation failures; the
// corrupted state must never be persisted.
var ErrNumericInstability = errors.New("numeric instability")

// #endregion errors

// #region step
// Step advances the state by one forward-Euler step:
//
//	d2 = ||drift||^2
//	C  = Coherence(V)
//	dE = alpha*(I-E) - betaE*E*S + gammaE*d2
//	dI = -k*S + betaI*C - gammaI*I*(1-I)
//	dS = -mu*S + lambda1*d2 - lambda2*C + betaC*complexity
//	dV = kappa*(E-I) - deltaV*V
//
// with lambda1 = Lambda1Base*Theta.Lambda1Scale and lambda2 =
// Lambda2Base*Theta.Lambda2Scale. Every field is clipped to its declared
// bound immediately after the step. Deterministic; fails fast on invalid
// inputs without touching the state (all-or-nothing per cycle).
func Step(s State, theta Theta, dv DriftVector, dt float64, p Params, complexity float64) (State, error) {
	if err := validate(dv, dt, complexity); err != nil {
		return State{}, err
	}

	d2 := SquaredNorm(dv)
	c := Coherence(s.V, theta, p)
	lambda1 := p.Lambda1Base * theta.Lambda1Scale
	lambda2 := p.Lambda2Base * theta.Lambda2Scale

	dE := p.Alpha*(s.I-s.E) - p.BetaE*s.E*s.S + p.GammaE*d2
	dI := -p.K*s.S + p.BetaI*c - p.GammaI*s.I*(1-s.I)
	dS := -p.Mu*s.S + lambda1*d2 - lambda2*c + p.BetaComplexity*complexity
	dV := p.Kappa*(s.E-s.I) - p.DeltaV*s.V

	rawE := s.E + dt*dE
	rawI := s.I + dt*dI
	rawS := s.S + dt*dS
	rawV := s.V + dt*dV

	// Non-finite values are checked before clipping so an Inf cannot hide
	// behind the clamp.
	if !finite(rawE) || !finite(rawI) || !finite(rawS) || !finite(rawV) {
		return State{}, fmt.Errorf("step produced non-finite state (E=%v I=%v S=%v V=%v): %w",
			rawE, rawI, rawS, rawV, ErrNumericInstability)
	}

	return State{
		E: clip(rawE, p.EMin, p.EMax),
		I: clip(rawI, p.IMin, p.IMax),
		S: clip(rawS, p.SMin, p.SMax),
		V: clip(rawV, p.VMin, p.VMax),
	}, nil
}

func validate(dv DriftVector, dt, complexity float64) error {
	if dt <= 0 || math.IsNaN(dt) {
		return fmt.Errorf("dt %v must be positive: %w", dt, ErrInvalidInput)
	}
	if complexity < 0 || complexity > 1 || math.IsNaN(complexity) {
		return fmt.Errorf("complexity %v outside [0,1]: %w", complexity, ErrInvalidInput)
	}
	for i, d := range dv {
		if d < 0 || d > 1 || math.IsNaN(d) {
			return fmt.Errorf("drift component %d = %v outside [0,1]: %w", i, d, ErrInvalidInput)
		}
	}
	return nil
}

// #endregion step

// #region helpers
// SquaredNorm returns the squared Euclidean norm of a drift vector.
func SquaredNorm(dv DriftVector) float64 {
	var sum float64
	for _, d := range dv {
		sum += d * d
	}
	return sum
}

// Norm returns the Euclidean norm of a drift vector.
func Norm(dv DriftVector) float64 {
	return math.Sqrt(SquaredNorm(dv))
}

func clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// #endregion helpers
