package cycle

import (
	"context"

	"github.com/danielpatrickdp/agent-governor/internal/basin"
	"github.com/danielpatrickdp/agent-governor/internal/drift"
	"github.com/danielpatrickdp/agent-governor/internal/dynamics"
	"github.com/danielpatrickdp/agent-governor/internal/objective"
	"github.com/danielpatrickdp/agent-governor/internal/oscillation"
)

// MetricPhi is the oscillation-monitored metric name for the objective
// scalar. There is one oscillation record per agent+metric pair.
const MetricPhi = "phi"

// #region input
// Input is one governance-cycle request for a single agent.
type Input struct {
	AgentID string `json:"agent_id"`

	// Complexity of the task in flight, in [0,1]. Required.
	Complexity float64 `json:"complexity"`

	// Confidence in [0,1]. When nil, confidence is derived from the
	// agent's current state instead.
	Confidence *float64 `json:"confidence,omitempty"`

	TaskType string `json:"task_type,omitempty"`

	// Raw drift observables. Ignored when Drift is supplied directly.
	Raw *drift.RawSignals `json:"raw,omitempty"`

	// Drift overrides derivation with a precomputed vector.
	Drift *dynamics.DriftVector `json:"drift,omitempty"`
}

// #endregion input

// #region result
// Result is the full decision record for one completed cycle.
type Result struct {
	AgentID string `json:"agent_id"`
	CycleID string `json:"cycle_id"`

	State dynamics.State `json:"state"`

	// Verdict is the final, damper-adjusted verdict; RawVerdict is what
	// the objective alone produced.
	Verdict    objective.Verdict        `json:"verdict"`
	RawVerdict objective.Verdict        `json:"raw_verdict"`
	Tier       oscillation.ResponseTier `json:"tier"`

	Phi       float64 `json:"phi"`
	Coherence float64 `json:"coherence"`

	Basin            basin.Classification `json:"basin"`
	OscillationIndex float64              `json:"oscillation_index"`
	Confidence       float64              `json:"confidence"`
	Complexity       float64              `json:"complexity"`
	Drift            dynamics.DriftVector `json:"drift"`
	Retuned          bool                 `json:"retuned"`
}

// #endregion result

// #region persistence
// Presence reports what a load found. Corrupt rows are recoverable: the
// caller substitutes defaults and keeps going, loudly.
type Presence int

const (
	PresenceFound Presence = iota
	PresenceMissing
	PresenceCorrupt
)

// Persistence is the storage boundary for the runner. Loads distinguish
// found, missing, and corrupt; missing and corrupt both yield zero values
// with a nil error, so only real I/O failures abort a cycle.
type Persistence interface {
	LoadState(ctx context.Context, agentID string) (dynamics.State, Presence, error)
	SaveState(ctx context.Context, agentID, cycleID string, s dynamics.State) error

	LoadBaseline(ctx context.Context, agentID string) (drift.AgentBaseline, Presence, error)
	SaveBaseline(ctx context.Context, b drift.AgentBaseline) error

	LoadOscillation(ctx context.Context, agentID, metric string) (oscillation.State, Presence, error)
	SaveOscillation(ctx context.Context, st oscillation.State) error

	// LogCycle appends the decision record to the provenance log.
	LogCycle(ctx context.Context, res Result) error
}

// #endregion persistence
