// Package cycle runs the full governance decision cycle for an agent:
// drift derivation, state dynamics, objective scoring, basin check,
// adaptive retune, and oscillation damping, with all per-agent state
// loaded and saved through the Persistence boundary.
package cycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/danielpatrickdp/agent-governor/internal/adaptive"
	"github.com/danielpatrickdp/agent-governor/internal/basin"
	"github.com/danielpatrickdp/agent-governor/internal/config"
	"github.com/danielpatrickdp/agent-governor/internal/drift"
	"github.com/danielpatrickdp/agent-governor/internal/dynamics"
	"github.com/danielpatrickdp/agent-governor/internal/objective"
	"github.com/danielpatrickdp/agent-governor/internal/oscillation"
)

// ErrInvalidInput marks cycle requests rejected before any state access.
var ErrInvalidInput = errors.New("invalid cycle input")

// #region runner

// Runner executes governance cycles. Safe for concurrent use; cycles for
// the same agent are serialized, cycles for different agents are not.
type Runner struct {
	store   Persistence
	profile config.Profile
	log     *slog.Logger

	mu     sync.Mutex
	agents map[string]*sync.Mutex
}

// NewRunner wires a runner over a persistence backend and a resolved
// profile.
func NewRunner(store Persistence, profile config.Profile, log *slog.Logger) *Runner {
	if log == nil {
		log = slog.Default()
	}
	return &Runner{
		store:   store,
		profile: profile,
		log:     log,
		agents:  make(map[string]*sync.Mutex),
	}
}

func (r *Runner) agentLock(agentID string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.agents[agentID]
	if !ok {
		m = &sync.Mutex{}
		r.agents[agentID] = m
	}
	return m
}

// #endregion runner

// #region run

// RunCycle executes one governance cycle. On any error nothing is
// persisted; the agent's stored state is exactly what it was before the
// call (all-or-nothing per cycle).
func (r *Runner) RunCycle(ctx context.Context, in Input) (Result, error) {
	if err := validateInput(in); err != nil {
		return Result{}, err
	}

	lock := r.agentLock(in.AgentID)
	lock.Lock()
	defer lock.Unlock()

	p := r.profile

	state, err := r.loadState(ctx, in.AgentID)
	if err != nil {
		return Result{}, err
	}
	baseline, err := r.loadBaseline(ctx, in.AgentID)
	if err != nil {
		return Result{}, err
	}
	osc, err := r.loadOscillation(ctx, in.AgentID)
	if err != nil {
		return Result{}, err
	}

	// Effective theta carries the agent's retuned lambda1 gain. The gain
	// produced by this cycle's retune takes effect on the next one.
	theta := p.Theta
	theta.Lambda1Scale = baseline.Lambda1Scale

	priorCoherence := dynamics.Coherence(state.V, theta, p.Params)

	var dv dynamics.DriftVector
	if in.Drift != nil {
		dv = *in.Drift
	} else {
		var raw drift.RawSignals
		if in.Raw != nil {
			raw = *in.Raw
		}
		dv = drift.Compute(raw, &baseline, p.Drift, priorCoherence)
	}

	confidence := deriveConfidence(in, state, p.ConfidenceCap)

	baseline.Update(priorCoherence, confidence, in.Complexity)

	next, err := dynamics.Step(state, theta, dv, p.DT, p.Params, in.Complexity)
	if err != nil {
		if errors.Is(err, dynamics.ErrNumericInstability) {
			r.log.Error("cycle aborted, state not persisted",
				"agent_id", in.AgentID, "err", err)
		}
		return Result{}, fmt.Errorf("agent %s: %w", in.AgentID, err)
	}

	coherence := dynamics.Coherence(next.V, theta, p.Params)

	thresholds := p.Thresholds.Tighten(osc.ThresholdBias)
	phi := objective.Phi(next, dv, p.Weights)
	rawVerdict := objective.VerdictFor(phi, thresholds)

	regime := basin.Classify(next.I, p.Basin, p.Params)
	if regime.Warning != "" {
		r.log.Warn("basin warning",
			"agent_id", in.AgentID, "regime", regime.Regime, "warning", regime.Warning)
	}

	retune := adaptive.Retune(
		adaptive.State{CycleCount: baseline.RetuneCount, Integral: baseline.RetuneIntegral},
		baseline.Lambda1Scale, coherence, confidence, p.Adaptive)
	baseline.RetuneCount = retune.State.CycleCount
	baseline.RetuneIntegral = retune.State.Integral
	baseline.Lambda1Scale = retune.Lambda1Scale

	priorBias := osc.ThresholdBias
	osc, _ = oscillation.Observe(osc, phi, p.Detector)
	oi := oscillation.Index(osc)
	decision := oscillation.Damp(oi, rawVerdict, priorBias, p.Damper)
	osc.ThresholdBias = decision.ThresholdBias

	baseline.ObserveVerdict(string(decision.Verdict), p.Drift)

	res := Result{
		AgentID:          in.AgentID,
		CycleID:          uuid.NewString(),
		State:            next,
		Verdict:          decision.Verdict,
		RawVerdict:       rawVerdict,
		Tier:             decision.Tier,
		Phi:              phi,
		Coherence:        coherence,
		Basin:            regime,
		OscillationIndex: oi,
		Confidence:       confidence,
		Complexity:       in.Complexity,
		Drift:            dv,
		Retuned:          retune.Retuned,
	}

	if err := r.persist(ctx, res, baseline, osc); err != nil {
		return Result{}, err
	}

	r.log.Info("cycle complete",
		"agent_id", in.AgentID,
		"cycle_id", res.CycleID,
		"verdict", res.Verdict,
		"tier", res.Tier,
		"phi", res.Phi,
		"oi", res.OscillationIndex,
	)
	return res, nil
}

func (r *Runner) persist(ctx context.Context, res Result, b drift.AgentBaseline, osc oscillation.State) error {
	if err := r.store.SaveState(ctx, res.AgentID, res.CycleID, res.State); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	if err := r.store.SaveBaseline(ctx, b); err != nil {
		return fmt.Errorf("save baseline: %w", err)
	}
	if err := r.store.SaveOscillation(ctx, osc); err != nil {
		return fmt.Errorf("save oscillation: %w", err)
	}
	if err := r.store.LogCycle(ctx, res); err != nil {
		return fmt.Errorf("log cycle: %w", err)
	}
	return nil
}

// #endregion run

// #region loads

func (r *Runner) loadState(ctx context.Context, agentID string) (dynamics.State, error) {
	s, presence, err := r.store.LoadState(ctx, agentID)
	if err != nil {
		return dynamics.State{}, fmt.Errorf("load state: %w", err)
	}
	switch presence {
	case PresenceFound:
		return s, nil
	case PresenceCorrupt:
		r.log.Error("stored state unreadable, starting from defaults", "agent_id", agentID)
	}
	return dynamics.DefaultState(), nil
}

func (r *Runner) loadBaseline(ctx context.Context, agentID string) (drift.AgentBaseline, error) {
	b, presence, err := r.store.LoadBaseline(ctx, agentID)
	if err != nil {
		return drift.AgentBaseline{}, fmt.Errorf("load baseline: %w", err)
	}
	switch presence {
	case PresenceFound:
		return b, nil
	case PresenceCorrupt:
		r.log.Error("stored baseline unreadable, starting fresh", "agent_id", agentID)
	}
	return drift.NewBaseline(agentID, r.profile.Drift), nil
}

func (r *Runner) loadOscillation(ctx context.Context, agentID string) (oscillation.State, error) {
	st, presence, err := r.store.LoadOscillation(ctx, agentID, MetricPhi)
	if err != nil {
		return oscillation.State{}, fmt.Errorf("load oscillation: %w", err)
	}
	switch presence {
	case PresenceFound:
		return st, nil
	case PresenceCorrupt:
		r.log.Error("stored oscillation record unreadable, starting fresh", "agent_id", agentID)
	}
	return oscillation.NewState(agentID, MetricPhi), nil
}

// #endregion loads

// #region helpers

func validateInput(in Input) error {
	if in.AgentID == "" {
		return fmt.Errorf("agent_id required: %w", ErrInvalidInput)
	}
	if in.Complexity < 0 || in.Complexity > 1 {
		return fmt.Errorf("complexity %v outside [0,1]: %w", in.Complexity, ErrInvalidInput)
	}
	if in.Confidence != nil && (*in.Confidence < 0 || *in.Confidence > 1) {
		return fmt.Errorf("confidence %v outside [0,1]: %w", *in.Confidence, ErrInvalidInput)
	}
	if in.Drift != nil {
		for i, d := range *in.Drift {
			if d < 0 || d > 1 {
				return fmt.Errorf("drift component %d = %v outside [0,1]: %w", i, d, ErrInvalidInput)
			}
		}
	}
	return nil
}

// deriveConfidence uses the supplied confidence when present, otherwise
// derives one from the agent's pre-step state: high integrity and low
// entropy read as confidence. Either way the cap applies.
func deriveConfidence(in Input, s dynamics.State, ceiling float64) float64 {
	c := 0.6*s.I + 0.4*(1-s.S)
	if in.Confidence != nil {
		c = *in.Confidence
	}
	if c < 0 {
		c = 0
	}
	if c > ceiling {
		c = ceiling
	}
	return c
}

// #endregion helpers
