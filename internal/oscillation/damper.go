package oscillation

import "github.com/danielpatrickdp/agent-governor/internal/objective"

// #region decision
// Decision is the damper output: the response tier, the verdict after any
// damping, and the threshold bias to carry into the next cycle.
type Decision struct {
	Tier          ResponseTier
	Verdict       objective.Verdict
	ThresholdBias float64
}

// #endregion decision

// #region damp
// Damp maps the Oscillation Index and current verdict onto a response tier.
// Below the soft cutoff the verdict passes through unmodified and any
// accumulated tightening is released. Between the cutoffs the verdict is
// downgraded one severity step and thresholds tighten for the next cycle.
// At or above the hard cutoff the verdict is forced to stop regardless of
// the objective. Pure: recomputed each cycle from fresh inputs, with the
// carried bias living on the oscillation state.
func Damp(oi float64, verdict objective.Verdict, priorBias float64, cfg DamperConfig) Decision {
	switch {
	case oi >= cfg.HardCutoff:
		return Decision{
			Tier:          TierHardBlock,
			Verdict:       objective.VerdictStop,
			ThresholdBias: priorBias,
		}
	case oi >= cfg.SoftCutoff:
		bias := priorBias + cfg.TightenStep
		if cfg.MaxTighten > 0 && bias > cfg.MaxTighten {
			bias = cfg.MaxTighten
		}
		return Decision{
			Tier:          TierSoftDampen,
			Verdict:       objective.Downgrade(verdict),
			ThresholdBias: bias,
		}
	default:
		return Decision{
			Tier:          TierProceed,
			Verdict:       verdict,
			ThresholdBias: 0,
		}
	}
}

// #endregion damp
