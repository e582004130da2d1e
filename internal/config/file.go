package config

// #region file-schema

// fileConfig mirrors the on-disk YAML layout. Every leaf is a pointer so
// that absent keys fall back to the shipped defaults instead of zeroing
// them; apply only touches fields the file actually set.
type fileConfig struct {
	Profile  string                 `yaml:"profile"`
	Profiles map[string]fileProfile `yaml:"profiles"`
}

type fileProfile struct {
	Dynamics   *fileDynamics   `yaml:"dynamics"`
	Theta      *fileTheta      `yaml:"theta"`
	Weights    *fileWeights    `yaml:"weights"`
	Thresholds *fileThresholds `yaml:"thresholds"`

	Drift    *fileDrift    `yaml:"drift"`
	Basin    *fileBasin    `yaml:"basin"`
	Adaptive *fileAdaptive `yaml:"adaptive"`
	Detector *fileDetector `yaml:"oscillation"`
	Damper   *fileDamper   `yaml:"damper"`

	DT            *float64 `yaml:"dt"`
	ConfidenceCap *float64 `yaml:"confidence_cap"`
}

type fileDynamics struct {
	Alpha  *float64 `yaml:"alpha"`
	BetaE  *float64 `yaml:"beta_e"`
	GammaE *float64 `yaml:"gamma_e"`

	K      *float64 `yaml:"k"`
	BetaI  *float64 `yaml:"beta_i"`
	GammaI *float64 `yaml:"gamma_i"`

	Mu             *float64 `yaml:"mu"`
	Lambda1Base    *float64 `yaml:"lambda1_base"`
	Lambda2Base    *float64 `yaml:"lambda2_base"`
	BetaComplexity *float64 `yaml:"beta_complexity"`

	Kappa  *float64 `yaml:"kappa"`
	DeltaV *float64 `yaml:"delta_v"`

	CMax *float64 `yaml:"c_max"`

	VMin *float64 `yaml:"v_min"`
	VMax *float64 `yaml:"v_max"`
}

type fileTheta struct {
	C1           *float64 `yaml:"c1"`
	Lambda1Scale *float64 `yaml:"lambda1_scale"`
	Lambda2Scale *float64 `yaml:"lambda2_scale"`
}

type fileWeights struct {
	WE   *float64 `yaml:"w_e"`
	WI   *float64 `yaml:"w_i"`
	WS   *float64 `yaml:"w_s"`
	WV   *float64 `yaml:"w_v"`
	WEta *float64 `yaml:"w_eta"`
}

type fileThresholds struct {
	ProceedMin  *float64 `yaml:"proceed_min"`
	ContinueMin *float64 `yaml:"continue_min"`
	PauseMin    *float64 `yaml:"pause_min"`
}

type fileDrift struct {
	EMARate           *float64 `yaml:"ema_rate"`
	VerdictWindowSize *int     `yaml:"verdict_window_size"`
	MinDecisionWindow *int     `yaml:"min_decision_window"`
}

type fileBasin struct {
	LowCut  *float64 `yaml:"low_cut"`
	HighCut *float64 `yaml:"high_cut"`
}

type fileAdaptive struct {
	RetuneEvery     *int64   `yaml:"retune_every"`
	ConfidenceFloor *float64 `yaml:"confidence_floor"`
	KP              *float64 `yaml:"kp"`
	KI              *float64 `yaml:"ki"`
	TargetCoherence *float64 `yaml:"target_coherence"`
	ScaleMin        *float64 `yaml:"scale_min"`
	ScaleMax        *float64 `yaml:"scale_max"`
}

type fileDetector struct {
	Threshold *float64 `yaml:"threshold"`
	Alpha     *float64 `yaml:"alpha"`
}

type fileDamper struct {
	SoftCutoff  *float64 `yaml:"soft_cutoff"`
	HardCutoff  *float64 `yaml:"hard_cutoff"`
	TightenStep *float64 `yaml:"tighten_step"`
	MaxTighten  *float64 `yaml:"max_tighten"`
}

// #endregion file-schema

// #region apply

func setF(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}

func setI(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

func setI64(dst *int64, src *int64) {
	if src != nil {
		*dst = *src
	}
}

func (fp fileProfile) apply(p *Profile) {
	if d := fp.Dynamics; d != nil {
		setF(&p.Params.Alpha, d.Alpha)
		setF(&p.Params.BetaE, d.BetaE)
		setF(&p.Params.GammaE, d.GammaE)
		setF(&p.Params.K, d.K)
		setF(&p.Params.BetaI, d.BetaI)
		setF(&p.Params.GammaI, d.GammaI)
		setF(&p.Params.Mu, d.Mu)
		setF(&p.Params.Lambda1Base, d.Lambda1Base)
		setF(&p.Params.Lambda2Base, d.Lambda2Base)
		setF(&p.Params.BetaComplexity, d.BetaComplexity)
		setF(&p.Params.Kappa, d.Kappa)
		setF(&p.Params.DeltaV, d.DeltaV)
		setF(&p.Params.CMax, d.CMax)
		setF(&p.Params.VMin, d.VMin)
		setF(&p.Params.VMax, d.VMax)
	}
	if t := fp.Theta; t != nil {
		setF(&p.Theta.C1, t.C1)
		setF(&p.Theta.Lambda1Scale, t.Lambda1Scale)
		setF(&p.Theta.Lambda2Scale, t.Lambda2Scale)
	}
	if w := fp.Weights; w != nil {
		setF(&p.Weights.WE, w.WE)
		setF(&p.Weights.WI, w.WI)
		setF(&p.Weights.WS, w.WS)
		setF(&p.Weights.WV, w.WV)
		setF(&p.Weights.WEta, w.WEta)
	}
	if t := fp.Thresholds; t != nil {
		setF(&p.Thresholds.ProceedMin, t.ProceedMin)
		setF(&p.Thresholds.ContinueMin, t.ContinueMin)
		setF(&p.Thresholds.PauseMin, t.PauseMin)
	}
	if d := fp.Drift; d != nil {
		setF(&p.Drift.EMARate, d.EMARate)
		setI(&p.Drift.VerdictWindowSize, d.VerdictWindowSize)
		setI(&p.Drift.MinDecisionWindow, d.MinDecisionWindow)
	}
	if b := fp.Basin; b != nil {
		setF(&p.Basin.LowCut, b.LowCut)
		setF(&p.Basin.HighCut, b.HighCut)
	}
	if a := fp.Adaptive; a != nil {
		setI64(&p.Adaptive.RetuneEvery, a.RetuneEvery)
		setF(&p.Adaptive.ConfidenceFloor, a.ConfidenceFloor)
		setF(&p.Adaptive.KP, a.KP)
		setF(&p.Adaptive.KI, a.KI)
		setF(&p.Adaptive.TargetCoherence, a.TargetCoherence)
		setF(&p.Adaptive.ScaleMin, a.ScaleMin)
		setF(&p.Adaptive.ScaleMax, a.ScaleMax)
	}
	if d := fp.Detector; d != nil {
		setF(&p.Detector.Threshold, d.Threshold)
		setF(&p.Detector.Alpha, d.Alpha)
	}
	if d := fp.Damper; d != nil {
		setF(&p.Damper.SoftCutoff, d.SoftCutoff)
		setF(&p.Damper.HardCutoff, d.HardCutoff)
		setF(&p.Damper.TightenStep, d.TightenStep)
		setF(&p.Damper.MaxTighten, d.MaxTighten)
	}
	setF(&p.DT, fp.DT)
	setF(&p.ConfidenceCap, fp.ConfidenceCap)
}

// #endregion apply
