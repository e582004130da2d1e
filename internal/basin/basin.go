// Package basin classifies the integrity component against the bistable
// regime structure created by the gammaI*I*(1-I) term in the dynamics.
package basin

import (
	"math"

	"github.com/danielpatrickdp/agent-governor/internal/dynamics"
)

// #region types

// Regime names the basin the integrity value sits in.
type Regime string

const (
	RegimeHigh     Regime = "high"
	RegimeLow      Regime = "low"
	RegimeBoundary Regime = "boundary"
)

// Classification is the classifier output. Warning is empty for the high
// regime and non-empty otherwise. EquilibriumDistance is the absolute
// distance from I to the nearest stable equilibrium, which callers use to
// estimate cycles-to-convergence.
type Classification struct {
	Regime              Regime
	Warning             string
	EquilibriumDistance float64
}

// Config holds the banded cutoffs over I.
type Config struct {
	LowCut  float64
	HighCut float64
}

// DefaultConfig returns the shipped band boundaries.
func DefaultConfig() Config {
	return Config{LowCut: 0.45, HighCut: 0.55}
}

// #endregion types

// #region classify

// Classify maps an integrity value onto its basin regime. Pure and total.
func Classify(i float64, cfg Config, p dynamics.Params) Classification {
	low, high := Equilibria(p)
	dist := math.Min(math.Abs(i-low), math.Abs(i-high))

	switch {
	case i < cfg.LowCut:
		return Classification{
			Regime:              RegimeLow,
			Warning:             "integrity in low basin: collapse toward the degraded equilibrium likely without intervention",
			EquilibriumDistance: dist,
		}
	case i < cfg.HighCut:
		return Classification{
			Regime:              RegimeBoundary,
			Warning:             "integrity near basin boundary: small perturbations may flip the regime",
			EquilibriumDistance: dist,
		}
	default:
		return Classification{
			Regime:              RegimeHigh,
			EquilibriumDistance: dist,
		}
	}
}

// Equilibria returns the two stable roots of the integrity dynamics at
// baseline coherence, derived from Params rather than hard-coded. With
// q = betaI*(CMax/2)/gammaI, the roots of I*(1-I) = q are
// (1 +/- sqrt(1-4q))/2; for q >= 1/4 the basins merge at the midpoint.
func Equilibria(p dynamics.Params) (low, high float64) {
	if p.GammaI == 0 {
		return 0.5, 0.5
	}
	q := p.BetaI * (p.CMax / 2) / p.GammaI
	disc := 1 - 4*q
	if disc <= 0 {
		return 0.5, 0.5
	}
	root := math.Sqrt(disc)
	return (1 - root) / 2, (1 + root) / 2
}

// #endregion classify
