package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/danielpatrickdp/agent-governor/internal/cycle"
	"github.com/danielpatrickdp/agent-governor/internal/drift"
	"github.com/danielpatrickdp/agent-governor/internal/dynamics"
	"github.com/danielpatrickdp/agent-governor/internal/oscillation"
)

// #region state

// LoadState reads the active state version for an agent. A missing agent
// yields PresenceMissing; an undecodable blob yields PresenceCorrupt so
// the caller can recover with defaults instead of wedging the agent.
func (s *Store) LoadState(ctx context.Context, agentID string) (dynamics.State, cycle.Presence, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT v.state_vec
		 FROM active_states a JOIN agent_states v ON v.version_id = a.version_id
		 WHERE a.agent_id = ?`, agentID,
	).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return dynamics.State{}, cycle.PresenceMissing, nil
	}
	if err != nil {
		return dynamics.State{}, cycle.PresenceMissing, fmt.Errorf("load state %s: %w", agentID, err)
	}

	st, ok := decodeState(blob)
	if !ok {
		return dynamics.State{}, cycle.PresenceCorrupt, nil
	}
	return st, cycle.PresenceFound, nil
}

// SaveState inserts a new state version chained to the current active one
// and moves the active pointer, atomically.
func (s *Store) SaveState(ctx context.Context, agentID, cycleID string, st dynamics.State) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var parent sql.NullString
	err = tx.QueryRowContext(ctx,
		`SELECT version_id FROM active_states WHERE agent_id = ?`, agentID,
	).Scan(&parent.String)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return fmt.Errorf("read active: %w", err)
	default:
		parent.Valid = true
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO agent_states (version_id, agent_id, parent_id, state_vec, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		cycleID, agentID, parent, encodeState(st), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert version: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO active_states (agent_id, version_id) VALUES (?, ?)
		 ON CONFLICT(agent_id) DO UPDATE SET version_id = excluded.version_id`,
		agentID, cycleID,
	)
	if err != nil {
		return fmt.Errorf("set active: %w", err)
	}

	return tx.Commit()
}

// #endregion state

// #region baseline

func (s *Store) LoadBaseline(ctx context.Context, agentID string) (drift.AgentBaseline, cycle.Presence, error) {
	var b drift.AgentBaseline
	var verdictsJSON string

	err := s.db.QueryRowContext(ctx,
		`SELECT agent_id, coherence_ema, confidence_ema, complexity_ema,
		        prev_coherence, prev_confidence, prev_complexity,
		        recent_verdicts, consistency, update_count, ema_rate,
		        retune_count, retune_integral, lambda1_scale
		 FROM agent_baselines WHERE agent_id = ?`, agentID,
	).Scan(
		&b.AgentID, &b.CoherenceEMA, &b.ConfidenceEMA, &b.ComplexityEMA,
		&b.PrevCoherence, &b.PrevConfidence, &b.PrevComplexity,
		&verdictsJSON, &b.ConsistencyScore, &b.UpdateCount, &b.EMARate,
		&b.RetuneCount, &b.RetuneIntegral, &b.Lambda1Scale,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return drift.AgentBaseline{}, cycle.PresenceMissing, nil
	}
	if err != nil {
		return drift.AgentBaseline{}, cycle.PresenceMissing, fmt.Errorf("load baseline %s: %w", agentID, err)
	}

	if err := json.Unmarshal([]byte(verdictsJSON), &b.RecentVerdicts); err != nil {
		return drift.AgentBaseline{}, cycle.PresenceCorrupt, nil
	}
	return b, cycle.PresenceFound, nil
}

func (s *Store) SaveBaseline(ctx context.Context, b drift.AgentBaseline) error {
	verdictsJSON, err := json.Marshal(b.RecentVerdicts)
	if err != nil {
		return fmt.Errorf("marshal verdict window: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO agent_baselines (
			agent_id, coherence_ema, confidence_ema, complexity_ema,
			prev_coherence, prev_confidence, prev_complexity,
			recent_verdicts, consistency, update_count, ema_rate,
			retune_count, retune_integral, lambda1_scale
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(agent_id) DO UPDATE SET
			coherence_ema = excluded.coherence_ema,
			confidence_ema = excluded.confidence_ema,
			complexity_ema = excluded.complexity_ema,
			prev_coherence = excluded.prev_coherence,
			prev_confidence = excluded.prev_confidence,
			prev_complexity = excluded.prev_complexity,
			recent_verdicts = excluded.recent_verdicts,
			consistency = excluded.consistency,
			update_count = excluded.update_count,
			ema_rate = excluded.ema_rate,
			retune_count = excluded.retune_count,
			retune_integral = excluded.retune_integral,
			lambda1_scale = excluded.lambda1_scale`,
		b.AgentID, b.CoherenceEMA, b.ConfidenceEMA, b.ComplexityEMA,
		b.PrevCoherence, b.PrevConfidence, b.PrevComplexity,
		string(verdictsJSON), b.ConsistencyScore, b.UpdateCount, b.EMARate,
		b.RetuneCount, b.RetuneIntegral, b.Lambda1Scale,
	)
	if err != nil {
		return fmt.Errorf("save baseline %s: %w", b.AgentID, err)
	}
	return nil
}

// #endregion baseline

// #region oscillation

func (s *Store) LoadOscillation(ctx context.Context, agentID, metric string) (oscillation.State, cycle.Presence, error) {
	var st oscillation.State
	err := s.db.QueryRowContext(ctx,
		`SELECT agent_id, metric, ema, flip_count, last_side, last_value, threshold_bias
		 FROM oscillation_states WHERE agent_id = ? AND metric = ?`, agentID, metric,
	).Scan(&st.AgentID, &st.Metric, &st.EMA, &st.FlipCount, &st.LastSide, &st.LastValue, &st.ThresholdBias)
	if errors.Is(err, sql.ErrNoRows) {
		return oscillation.State{}, cycle.PresenceMissing, nil
	}
	if err != nil {
		return oscillation.State{}, cycle.PresenceMissing, fmt.Errorf("load oscillation %s/%s: %w", agentID, metric, err)
	}
	return st, cycle.PresenceFound, nil
}

func (s *Store) SaveOscillation(ctx context.Context, st oscillation.State) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO oscillation_states (agent_id, metric, ema, flip_count, last_side, last_value, threshold_bias)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(agent_id, metric) DO UPDATE SET
			ema = excluded.ema,
			flip_count = excluded.flip_count,
			last_side = excluded.last_side,
			last_value = excluded.last_value,
			threshold_bias = excluded.threshold_bias`,
		st.AgentID, st.Metric, st.EMA, st.FlipCount, st.LastSide, st.LastValue, st.ThresholdBias,
	)
	if err != nil {
		return fmt.Errorf("save oscillation %s/%s: %w", st.AgentID, st.Metric, err)
	}
	return nil
}

// #endregion oscillation

// #region cycle-log

// LogCycle appends the full decision record to the provenance log.
func (s *Store) LogCycle(ctx context.Context, res cycle.Result) error {
	record, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshal cycle record: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO cycle_log (cycle_id, agent_id, verdict, raw_verdict, tier, phi, record_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		res.CycleID, res.AgentID, string(res.Verdict), string(res.RawVerdict),
		string(res.Tier), res.Phi, string(record), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log cycle %s: %w", res.CycleID, err)
	}
	return nil
}

// #endregion cycle-log
