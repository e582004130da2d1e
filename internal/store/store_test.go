package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/danielpatrickdp/agent-governor/internal/cycle"
	"github.com/danielpatrickdp/agent-governor/internal/drift"
	"github.com/danielpatrickdp/agent-governor/internal/dynamics"
	"github.com/danielpatrickdp/agent-governor/internal/objective"
	"github.com/danielpatrickdp/agent-governor/internal/oscillation"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "governor.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStateRoundTripAndParentChain(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, presence, err := s.LoadState(ctx, "agent-1"); err != nil || presence != cycle.PresenceMissing {
		t.Fatalf("fresh agent: presence=%v err=%v, want missing", presence, err)
	}

	first := dynamics.State{E: 0.6, I: 0.7, S: 0.3, V: -0.1}
	if err := s.SaveState(ctx, "agent-1", "v1", first); err != nil {
		t.Fatalf("save v1: %v", err)
	}
	second := dynamics.State{E: 0.61, I: 0.69, S: 0.31, V: -0.09}
	if err := s.SaveState(ctx, "agent-1", "v2", second); err != nil {
		t.Fatalf("save v2: %v", err)
	}

	got, presence, err := s.LoadState(ctx, "agent-1")
	if err != nil || presence != cycle.PresenceFound {
		t.Fatalf("load: presence=%v err=%v", presence, err)
	}
	if got != second {
		t.Fatalf("state = %+v, want %+v", got, second)
	}

	versions, err := s.ListVersions(ctx, "agent-1", 10)
	if err != nil {
		t.Fatalf("list versions: %v", err)
	}
	if len(versions) != 2 {
		t.Fatalf("version count = %d, want 2", len(versions))
	}
	byID := map[string]VersionInfo{}
	for _, v := range versions {
		byID[v.VersionID] = v
	}
	if byID["v1"].ParentID != "" {
		t.Fatalf("v1 parent = %q, want root", byID["v1"].ParentID)
	}
	if byID["v2"].ParentID != "v1" {
		t.Fatalf("v2 parent = %q, want v1", byID["v2"].ParentID)
	}
}

func TestStateIsolationBetweenAgents(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	a := dynamics.State{E: 0.1, I: 0.2, S: 0.3, V: 0.4}
	b := dynamics.State{E: 0.9, I: 0.8, S: 0.7, V: -0.4}
	if err := s.SaveState(ctx, "agent-a", "va", a); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.SaveState(ctx, "agent-b", "vb", b); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, _, _ := s.LoadState(ctx, "agent-a")
	if got != a {
		t.Fatalf("agent-a state = %+v, want %+v", got, a)
	}

	agents, err := s.Agents(ctx)
	if err != nil || len(agents) != 2 {
		t.Fatalf("agents = %v err=%v, want 2 entries", agents, err)
	}
}

func TestCorruptStateBlobReportsCorrupt(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.SaveState(ctx, "agent-1", "v1", dynamics.DefaultState()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := s.DB().Exec(
		`UPDATE agent_states SET state_vec = ? WHERE version_id = 'v1'`, []byte{1, 2, 3},
	); err != nil {
		t.Fatalf("truncate blob: %v", err)
	}

	_, presence, err := s.LoadState(ctx, "agent-1")
	if err != nil {
		t.Fatalf("corrupt blob must not error: %v", err)
	}
	if presence != cycle.PresenceCorrupt {
		t.Fatalf("presence = %v, want corrupt", presence)
	}
}

func TestBaselineRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	b := drift.NewBaseline("agent-1", drift.DefaultConfig())
	b.Update(0.5, 0.8, 0.4)
	b.ObserveVerdict("proceed", drift.DefaultConfig())
	b.RetuneCount = 7
	b.RetuneIntegral = 0.12
	b.Lambda1Scale = 1.3

	if err := s.SaveBaseline(ctx, b); err != nil {
		t.Fatalf("save baseline: %v", err)
	}

	got, presence, err := s.LoadBaseline(ctx, "agent-1")
	if err != nil || presence != cycle.PresenceFound {
		t.Fatalf("load: presence=%v err=%v", presence, err)
	}
	if got.UpdateCount != 1 || got.CoherenceEMA != 0.5 {
		t.Fatalf("baseline stats lost: %+v", got)
	}
	if got.RetuneCount != 7 || got.RetuneIntegral != 0.12 || got.Lambda1Scale != 1.3 {
		t.Fatalf("controller state lost: %+v", got)
	}
	if len(got.RecentVerdicts) != 1 || got.RecentVerdicts[0] != "proceed" {
		t.Fatalf("verdict window lost: %v", got.RecentVerdicts)
	}

	// Saving again overwrites in place.
	b.UpdateCount = 2
	if err := s.SaveBaseline(ctx, b); err != nil {
		t.Fatalf("resave: %v", err)
	}
	got, _, _ = s.LoadBaseline(ctx, "agent-1")
	if got.UpdateCount != 2 {
		t.Fatalf("upsert failed: count=%d", got.UpdateCount)
	}
}

func TestCorruptBaselineReportsCorrupt(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.SaveBaseline(ctx, drift.NewBaseline("agent-1", drift.DefaultConfig())); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := s.DB().Exec(
		`UPDATE agent_baselines SET recent_verdicts = 'not json' WHERE agent_id = 'agent-1'`,
	); err != nil {
		t.Fatalf("corrupt row: %v", err)
	}

	_, presence, err := s.LoadBaseline(ctx, "agent-1")
	if err != nil || presence != cycle.PresenceCorrupt {
		t.Fatalf("presence=%v err=%v, want corrupt", presence, err)
	}
}

func TestOscillationRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	st := oscillation.NewState("agent-1", cycle.MetricPhi)
	st.EMA = 0.42
	st.FlipCount = 6
	st.LastSide = -1
	st.LastValue = -0.2
	st.ThresholdBias = 0.1

	if err := s.SaveOscillation(ctx, st); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, presence, err := s.LoadOscillation(ctx, "agent-1", cycle.MetricPhi)
	if err != nil || presence != cycle.PresenceFound {
		t.Fatalf("load: presence=%v err=%v", presence, err)
	}
	if got != st {
		t.Fatalf("oscillation = %+v, want %+v", got, st)
	}
}

func TestCycleLogAndRecentCycles(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i, verdict := range []objective.Verdict{objective.VerdictProceed, objective.VerdictContinue} {
		res := cycle.Result{
			AgentID:    "agent-1",
			CycleID:    string(rune('a' + i)),
			Verdict:    verdict,
			RawVerdict: verdict,
			Tier:       oscillation.TierProceed,
			Phi:        0.1 - float64(i)*0.2,
		}
		if err := s.LogCycle(ctx, res); err != nil {
			t.Fatalf("log cycle %d: %v", i, err)
		}
	}

	results, err := s.RecentCycles(ctx, "agent-1", 10)
	if err != nil {
		t.Fatalf("recent cycles: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("count = %d, want 2", len(results))
	}
	if results[0].Verdict != objective.VerdictContinue {
		t.Fatalf("newest first: got %s", results[0].Verdict)
	}
}

func TestRollbackMovesActivePointer(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first := dynamics.State{E: 0.6, I: 0.7, S: 0.3, V: 0}
	if err := s.SaveState(ctx, "agent-1", "v1", first); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.SaveState(ctx, "agent-1", "v2", dynamics.State{E: 0.2, I: 0.3, S: 0.9, V: 0.5}); err != nil {
		t.Fatalf("save: %v", err)
	}

	if err := s.Rollback(ctx, "agent-1", "v1"); err != nil {
		t.Fatalf("rollback: %v", err)
	}
	got, _, _ := s.LoadState(ctx, "agent-1")
	if got != first {
		t.Fatalf("state after rollback = %+v, want %+v", got, first)
	}

	if err := s.Rollback(ctx, "agent-1", "missing"); err == nil {
		t.Fatal("rollback to unknown version should fail")
	}
	if err := s.Rollback(ctx, "other-agent", "v1"); err == nil {
		t.Fatal("rollback across agents should fail")
	}
}

func TestResetBaseline(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	b := drift.NewBaseline("agent-1", drift.DefaultConfig())
	b.Update(0.9, 0.9, 0.9)
	b.Lambda1Scale = 2.5
	if err := s.SaveBaseline(ctx, b); err != nil {
		t.Fatalf("save: %v", err)
	}

	if err := s.ResetBaseline(ctx, "agent-1", drift.DefaultConfig()); err != nil {
		t.Fatalf("reset: %v", err)
	}
	got, _, _ := s.LoadBaseline(ctx, "agent-1")
	if got.UpdateCount != 0 || got.Lambda1Scale != 1.0 {
		t.Fatalf("reset incomplete: %+v", got)
	}
}

func TestStoreSatisfiesPersistence(t *testing.T) {
	var _ cycle.Persistence = (*Store)(nil)
}
