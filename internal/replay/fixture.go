package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/danielpatrickdp/agent-governor/internal/cycle"
	"github.com/danielpatrickdp/agent-governor/internal/drift"
	"github.com/danielpatrickdp/agent-governor/internal/dynamics"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture.
type Fixture struct {
	Description string            `json:"description"`
	StartState  *FixtureState     `json:"start_state,omitempty"`
	Cycles      []FixtureCycle    `json:"cycles"`
	Expected    []FixtureExpected `json:"expected,omitempty"`
}

// FixtureState mirrors dynamics.State with JSON tags.
type FixtureState struct {
	E float64 `json:"e"`
	I float64 `json:"i"`
	S float64 `json:"s"`
	V float64 `json:"v"`
}

// FixtureSignals mirrors drift.RawSignals with JSON tags.
type FixtureSignals struct {
	PredictedCorrect       *float64 `json:"predicted_correct,omitempty"`
	ActualCorrect          *float64 `json:"actual_correct,omitempty"`
	SelfReportedComplexity *float64 `json:"self_reported_complexity,omitempty"`
	DerivedComplexity      *float64 `json:"derived_complexity,omitempty"`
	RecentDecisions        []string `json:"recent_decisions,omitempty"`
}

// FixtureCycle is one recorded cycle request.
type FixtureCycle struct {
	AgentID    string          `json:"agent_id"`
	Complexity float64         `json:"complexity"`
	Confidence *float64        `json:"confidence,omitempty"`
	TaskType   string          `json:"task_type,omitempty"`
	Signals    *FixtureSignals `json:"signals,omitempty"`
	Drift      *[4]float64     `json:"drift,omitempty"`
}

// FixtureExpected pins the expected outcome for one cycle by index.
// Empty fields are not checked.
type FixtureExpected struct {
	Cycle   int    `json:"cycle"`
	Verdict string `json:"verdict,omitempty"`
	Tier    string `json:"tier,omitempty"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	if len(f.Cycles) == 0 {
		return nil, fmt.Errorf("fixture %s has no cycles", path)
	}
	for i, c := range f.Cycles {
		if c.AgentID == "" {
			return nil, fmt.Errorf("fixture %s: cycle %d missing agent_id", path, i)
		}
	}
	return &f, nil
}

func (s *FixtureState) toState() dynamics.State {
	return dynamics.State{E: s.E, I: s.I, S: s.S, V: s.V}
}

func (fs *FixtureSignals) toSignals() *drift.RawSignals {
	return &drift.RawSignals{
		PredictedCorrect:       fs.PredictedCorrect,
		ActualCorrect:          fs.ActualCorrect,
		SelfReportedComplexity: fs.SelfReportedComplexity,
		DerivedComplexity:      fs.DerivedComplexity,
		RecentDecisions:        fs.RecentDecisions,
	}
}

func (fc *FixtureCycle) toInput() cycle.Input {
	in := cycle.Input{
		AgentID:    fc.AgentID,
		Complexity: fc.Complexity,
		Confidence: fc.Confidence,
		TaskType:   fc.TaskType,
	}
	if fc.Signals != nil {
		in.Raw = fc.Signals.toSignals()
	}
	if fc.Drift != nil {
		dv := dynamics.DriftVector(*fc.Drift)
		in.Drift = &dv
	}
	return in
}

// agentIDs returns the distinct agents in cycle order.
func (f *Fixture) agentIDs() []string {
	seen := make(map[string]bool)
	var ids []string
	for _, c := range f.Cycles {
		if !seen[c.AgentID] {
			seen[c.AgentID] = true
			ids = append(ids, c.AgentID)
		}
	}
	return ids
}

// #endregion fixture-loader
