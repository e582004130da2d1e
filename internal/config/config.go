// Package config resolves a typed engine profile once at startup. The
// engine itself only ever sees the resolved immutable Profile snapshot and
// never branches on profile names.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/agent-governor/internal/adaptive"
	"github.com/danielpatrickdp/agent-governor/internal/basin"
	"github.com/danielpatrickdp/agent-governor/internal/drift"
	"github.com/danielpatrickdp/agent-governor/internal/dynamics"
	"github.com/danielpatrickdp/agent-governor/internal/objective"
	"github.com/danielpatrickdp/agent-governor/internal/oscillation"
)

// #region profile

// Profile is the resolved, immutable per-cycle configuration snapshot.
type Profile struct {
	Params     dynamics.Params
	Theta      dynamics.Theta
	Weights    objective.Weights
	Thresholds objective.Thresholds

	Drift    drift.Config
	Basin    basin.Config
	Adaptive adaptive.Config
	Detector oscillation.DetectorConfig
	Damper   oscillation.DamperConfig

	DT            float64
	ConfidenceCap float64
}

// Default returns the shipped profile.
func Default() Profile {
	return Profile{
		Params:     dynamics.DefaultParams(),
		Theta:      dynamics.DefaultTheta(),
		Weights:    objective.DefaultWeights(),
		Thresholds: objective.DefaultThresholds(),

		Drift:    drift.DefaultConfig(),
		Basin:    basin.DefaultConfig(),
		Adaptive: adaptive.DefaultConfig(),
		Detector: oscillation.DefaultDetectorConfig(),
		Damper:   oscillation.DefaultDamperConfig(),

		DT:            0.1,
		ConfidenceCap: 0.95,
	}
}

// Validate rejects profiles a cycle could not run under.
func (p Profile) Validate() error {
	if p.DT <= 0 {
		return fmt.Errorf("dt %v must be positive", p.DT)
	}
	if p.ConfidenceCap <= 0 || p.ConfidenceCap > 1 {
		return fmt.Errorf("confidence cap %v outside (0,1]", p.ConfidenceCap)
	}
	if err := p.Thresholds.Validate(); err != nil {
		return err
	}
	if p.Damper.SoftCutoff >= p.Damper.HardCutoff {
		return fmt.Errorf("damper cutoffs not ordered: soft=%v hard=%v",
			p.Damper.SoftCutoff, p.Damper.HardCutoff)
	}
	if p.Basin.LowCut >= p.Basin.HighCut {
		return fmt.Errorf("basin cuts not ordered: low=%v high=%v",
			p.Basin.LowCut, p.Basin.HighCut)
	}
	return nil
}

// #endregion profile

// #region load

// Load reads a YAML profile file and resolves the named profile over the
// shipped defaults. Resolution happens exactly once; the result is passed
// around by value afterwards.
func Load(path, name string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("read config %s: %w", path, err)
	}

	var file fileConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Profile{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	if name == "" {
		name = file.Profile
	}
	if name == "" {
		name = "default"
	}

	profile := Default()
	if name != "default" {
		fp, ok := file.Profiles[name]
		if !ok {
			return Profile{}, fmt.Errorf("profile %q not found in %s", name, path)
		}
		fp.apply(&profile)
	} else if fp, ok := file.Profiles["default"]; ok {
		fp.apply(&profile)
	}

	if err := profile.Validate(); err != nil {
		return Profile{}, fmt.Errorf("profile %q: %w", name, err)
	}
	return profile, nil
}

// #endregion load
