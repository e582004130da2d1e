package objective

import (
	"fmt"
	"math"

	"github.com/danielpatrickdp/agent-governor/internal/dynamics"
)

// #region phi
// Phi computes the scalar objective:
//
//	phi = wE*E - wI*(1-I) - wS*S - wV*|V| - wEta*||drift||
func Phi(s dynamics.State, dv dynamics.DriftVector, w Weights) float64 {
	return w.WE*s.E - w.WI*(1-s.I) - w.WS*s.S - w.WV*math.Abs(s.V) - w.WEta*dynamics.Norm(dv)
}

// #endregion phi

// #region verdict-for
// VerdictFor maps the objective scalar onto the threshold bands.
func VerdictFor(phi float64, t Thresholds) Verdict {
	switch {
	case phi >= t.ProceedMin:
		return VerdictProceed
	case phi >= t.ContinueMin:
		return VerdictContinue
	case phi >= t.PauseMin:
		return VerdictPause
	default:
		return VerdictStop
	}
}

// #endregion verdict-for

// #region thresholds-ops
// Validate rejects threshold sets whose boundaries are not strictly ordered.
func (t Thresholds) Validate() error {
	if !(t.ProceedMin > t.ContinueMin && t.ContinueMin > t.PauseMin) {
		return fmt.Errorf("verdict thresholds not strictly ordered: proceed=%v continue=%v pause=%v",
			t.ProceedMin, t.ContinueMin, t.PauseMin)
	}
	return nil
}

// Tighten shifts every boundary upward by bias, making each verdict harder
// to earn. A zero bias returns the thresholds unchanged.
func (t Thresholds) Tighten(bias float64) Thresholds {
	return Thresholds{
		ProceedMin:  t.ProceedMin + bias,
		ContinueMin: t.ContinueMin + bias,
		PauseMin:    t.PauseMin + bias,
	}
}

// #endregion thresholds-ops
