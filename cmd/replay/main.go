package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/agent-governor/internal/config"
	"github.com/danielpatrickdp/agent-governor/internal/cycle"
	"github.com/danielpatrickdp/agent-governor/internal/replay"
	"github.com/danielpatrickdp/agent-governor/internal/store"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "re-run recorded cycles from governor.db (DB mode)")
	agentID := flag.String("agent", "", "agent to replay (DB mode)")
	last := flag.Int("last", 100, "replay at most N most recent cycles (DB mode)")
	fixturePath := flag.String("fixture", "", "path to fixture JSON (fixture mode)")
	configPath := flag.String("config", "", "optional profile YAML")
	profileName := flag.String("profile", "", "profile name within the config file")
	flag.Parse()

	if (*dbPath == "" && *fixturePath == "") || (*dbPath != "" && *fixturePath != "") {
		fmt.Fprintln(os.Stderr, "usage: replay --fixture path/to/fixture.json")
		fmt.Fprintln(os.Stderr, "       replay --db path/to/governor.db --agent <id> [--last N]")
		os.Exit(2)
	}

	profile := config.Default()
	if *configPath != "" {
		var err error
		profile, err = config.Load(*configPath, *profileName)
		if err != nil {
			fmt.Fprintf(os.Stderr, "load config: %v\n", err)
			os.Exit(2)
		}
	}

	var exitCode int
	if *fixturePath != "" {
		exitCode = runFixtureMode(*fixturePath, profile)
	} else {
		exitCode = runDBMode(*dbPath, *agentID, *last, profile)
	}
	os.Exit(exitCode)
}

// #endregion main

// #region fixture-mode

func runFixtureMode(path string, profile config.Profile) int {
	fixture, err := replay.LoadFixture(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load fixture: %v\n", err)
		return 2
	}

	results, summary, err := replay.Replay(fixture, profile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "replay: %v\n", err)
		return 2
	}

	if fixture.Description != "" {
		fmt.Printf("# %s\n", fixture.Description)
	}
	printResults(results)
	printSummary(summary)

	if len(summary.Mismatches) > 0 {
		printMismatches(summary.Mismatches)
		return 1
	}
	fmt.Println("OK")
	return 0
}

// #endregion fixture-mode

// #region db-mode

// runDBMode rebuilds a fixture from an agent's recorded cycles and re-runs
// it through a fresh pipeline. Any divergence between the recorded and the
// replayed verdicts means the recorded history was produced by a different
// profile (or a behavior change) and is reported cycle by cycle.
func runDBMode(dbPath, agentID string, last int, profile config.Profile) int {
	if agentID == "" {
		fmt.Fprintln(os.Stderr, "--agent is required in DB mode")
		return 2
	}

	db, err := store.Open(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		return 2
	}
	defer db.Close()

	ctx := context.Background()
	recorded, err := db.RecentCycles(ctx, agentID, last)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read cycles: %v\n", err)
		return 2
	}
	if len(recorded) == 0 {
		fmt.Fprintf(os.Stderr, "no recorded cycles for agent %s\n", agentID)
		return 2
	}

	// RecentCycles is newest first; replay wants chronological order.
	for i, j := 0, len(recorded)-1; i < j; i, j = i+1, j-1 {
		recorded[i], recorded[j] = recorded[j], recorded[i]
	}

	fixture, err := fixtureFromRecords(ctx, db, agentID, recorded)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rebuild fixture: %v\n", err)
		return 2
	}

	results, summary, err := replay.Replay(fixture, profile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "replay: %v\n", err)
		return 2
	}

	fmt.Printf("# replayed %d recorded cycles for agent %s\n", len(results), agentID)
	printResults(results)
	printSummary(summary)

	if len(summary.Mismatches) > 0 {
		printMismatches(summary.Mismatches)
		return 1
	}
	fmt.Println("OK: replay matches the recorded history")
	return 0
}

// fixtureFromRecords turns recorded results back into replayable inputs.
// The start state is the parent of the oldest recorded cycle's version.
func fixtureFromRecords(ctx context.Context, db *store.Store, agentID string, recorded []cycle.Result) (*replay.Fixture, error) {
	f := &replay.Fixture{}

	versions, err := db.ListVersions(ctx, agentID, 10000)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]store.VersionInfo, len(versions))
	for _, v := range versions {
		byID[v.VersionID] = v
	}
	if first, ok := byID[recorded[0].CycleID]; ok && first.ParentID != "" {
		if parent, ok := byID[first.ParentID]; ok {
			f.StartState = &replay.FixtureState{
				E: parent.State.E, I: parent.State.I, S: parent.State.S, V: parent.State.V,
			}
		}
	}

	for i, rec := range recorded {
		confidence := rec.Confidence
		dv := [4]float64(rec.Drift)
		f.Cycles = append(f.Cycles, replay.FixtureCycle{
			AgentID:    agentID,
			Complexity: rec.Complexity,
			Confidence: &confidence,
			Drift:      &dv,
		})
		f.Expected = append(f.Expected, replay.FixtureExpected{
			Cycle:   i,
			Verdict: string(rec.Verdict),
			Tier:    string(rec.Tier),
		})
	}
	return f, nil
}

// #endregion db-mode

// #region output

func printResults(results []cycle.Result) {
	fmt.Printf("%-6s %-10s %-12s %9s %9s %6s\n", "cycle", "verdict", "tier", "phi", "OI", "basin")
	for i, r := range results {
		fmt.Printf("%-6d %-10s %-12s %9.4f %9.4f %6s\n",
			i, r.Verdict, r.Tier, r.Phi, r.OscillationIndex, r.Basin.Regime)
	}
}

func printSummary(s replay.Summary) {
	fmt.Printf("\ncycles=%d retunes=%d final E=%.4f I=%.4f S=%.4f V=%.4f\n",
		s.TotalCycles, s.Retunes,
		s.FinalState.E, s.FinalState.I, s.FinalState.S, s.FinalState.V)
	for verdict, n := range s.Verdicts {
		fmt.Printf("  %s: %d\n", verdict, n)
	}
}

func printMismatches(mismatches []replay.Mismatch) {
	fmt.Printf("\n%d mismatches:\n", len(mismatches))
	for _, m := range mismatches {
		fmt.Printf("  cycle %d: %s want=%s got=%s\n", m.Cycle, m.Field, m.Want, m.Got)
	}
}

// #endregion output
