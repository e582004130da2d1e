package dynamics

import "math"

// #region coherence
// Coherence maps the void component to a bounded coherence score:
//
//	C = (CMax/2) * (1 + tanh(C1 * V))
//
// Total over all real V, monotonically increasing in V for C1 > 0, and
// Coherence(0) == CMax/2 exactly.
func Coherence(v float64, theta Theta, p Params) float64 {
	return (p.CMax / 2) * (1 + math.Tanh(theta.C1*v))
}

// #endregion coherence
