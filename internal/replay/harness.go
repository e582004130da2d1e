// Package replay re-runs recorded governance cycles through the full
// decision pipeline in memory, for regression fixtures and offline
// what-if analysis against alternative profiles.
package replay

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/danielpatrickdp/agent-governor/internal/config"
	"github.com/danielpatrickdp/agent-governor/internal/cycle"
	"github.com/danielpatrickdp/agent-governor/internal/dynamics"
	"github.com/danielpatrickdp/agent-governor/internal/objective"
	"github.com/danielpatrickdp/agent-governor/internal/oscillation"
)

// #region types

// Mismatch records one divergence between a replay and its expectations.
type Mismatch struct {
	Cycle     int
	Field     string
	Want, Got string
}

// Summary aggregates one replay run.
type Summary struct {
	TotalCycles int
	Verdicts    map[objective.Verdict]int
	Tiers       map[oscillation.ResponseTier]int
	Retunes     int
	FinalState  dynamics.State
	Mismatches  []Mismatch
}

// #endregion types

// #region replay

// Replay runs every fixture cycle through a fresh in-memory runner and
// compares the outcomes against the fixture's expectations. The replay is
// fully deterministic: identical fixtures and profiles produce identical
// results.
func Replay(f *Fixture, profile config.Profile) ([]cycle.Result, Summary, error) {
	store := cycle.NewMemoryPersistence()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	runner := cycle.NewRunner(store, profile, log)
	ctx := context.Background()

	if f.StartState != nil {
		st := f.StartState.toState()
		for _, agentID := range f.agentIDs() {
			if err := store.SaveState(ctx, agentID, "fixture-seed", st); err != nil {
				return nil, Summary{}, fmt.Errorf("seed state: %w", err)
			}
		}
	}

	results := make([]cycle.Result, 0, len(f.Cycles))
	for i, fc := range f.Cycles {
		res, err := runner.RunCycle(ctx, fc.toInput())
		if err != nil {
			return nil, Summary{}, fmt.Errorf("cycle %d: %w", i, err)
		}
		results = append(results, res)
	}

	return results, summarize(f, results), nil
}

func summarize(f *Fixture, results []cycle.Result) Summary {
	s := Summary{
		TotalCycles: len(results),
		Verdicts:    make(map[objective.Verdict]int),
		Tiers:       make(map[oscillation.ResponseTier]int),
	}
	for _, r := range results {
		s.Verdicts[r.Verdict]++
		s.Tiers[r.Tier]++
		if r.Retuned {
			s.Retunes++
		}
	}
	if len(results) > 0 {
		s.FinalState = results[len(results)-1].State
	}
	s.Mismatches = compare(f.Expected, results)
	return s
}

func compare(expected []FixtureExpected, results []cycle.Result) []Mismatch {
	var mismatches []Mismatch
	for _, exp := range expected {
		if exp.Cycle < 0 || exp.Cycle >= len(results) {
			mismatches = append(mismatches, Mismatch{
				Cycle: exp.Cycle, Field: "cycle", Want: "present", Got: "out of range",
			})
			continue
		}
		got := results[exp.Cycle]
		if exp.Verdict != "" && exp.Verdict != string(got.Verdict) {
			mismatches = append(mismatches, Mismatch{
				Cycle: exp.Cycle, Field: "verdict", Want: exp.Verdict, Got: string(got.Verdict),
			})
		}
		if exp.Tier != "" && exp.Tier != string(got.Tier) {
			mismatches = append(mismatches, Mismatch{
				Cycle: exp.Cycle, Field: "tier", Want: exp.Tier, Got: string(got.Tier),
			})
		}
	}
	return mismatches
}

// #endregion replay
