package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/agent-governor/internal/store"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to governor.db")
	agentID := flag.String("agent", "", "show a single agent's history")
	last := flag.Int("last", 20, "show N most recent entries")
	cycles := flag.Bool("cycles", false, "show decision records instead of state versions")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/governor.db [--agent id] [--last N] [--cycles] [--json]")
		os.Exit(2)
	}

	db, err := store.Open(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx := context.Background()
	switch {
	case *agentID == "":
		err = runAgentsMode(ctx, db, *jsonOut)
	case *cycles:
		err = runCyclesMode(ctx, db, *agentID, *last, *jsonOut)
	default:
		err = runVersionsMode(ctx, db, *agentID, *last, *jsonOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region agents-mode

type agentRow struct {
	AgentID string  `json:"agent_id"`
	E       float64 `json:"e"`
	I       float64 `json:"i"`
	S       float64 `json:"s"`
	V       float64 `json:"v"`
}

func runAgentsMode(ctx context.Context, db *store.Store, jsonOut bool) error {
	agents, err := db.Agents(ctx)
	if err != nil {
		return err
	}

	var rows []agentRow
	for _, id := range agents {
		st, _, err := db.LoadState(ctx, id)
		if err != nil {
			return err
		}
		rows = append(rows, agentRow{AgentID: id, E: st.E, I: st.I, S: st.S, V: st.V})
	}

	if jsonOut {
		return json.NewEncoder(os.Stdout).Encode(rows)
	}
	fmt.Printf("%-24s %8s %8s %8s %8s\n", "agent", "E", "I", "S", "V")
	for _, r := range rows {
		fmt.Printf("%-24s %8.4f %8.4f %8.4f %8.4f\n", r.AgentID, r.E, r.I, r.S, r.V)
	}
	return nil
}

// #endregion agents-mode

// #region versions-mode

func runVersionsMode(ctx context.Context, db *store.Store, agentID string, last int, jsonOut bool) error {
	versions, err := db.ListVersions(ctx, agentID, last)
	if err != nil {
		return err
	}
	if len(versions) == 0 {
		return fmt.Errorf("no versions for agent %s", agentID)
	}

	if jsonOut {
		return json.NewEncoder(os.Stdout).Encode(versions)
	}
	fmt.Printf("%-36s %8s %8s %8s %8s  %s\n", "version", "E", "I", "S", "V", "created")
	for _, v := range versions {
		fmt.Printf("%-36s %8.4f %8.4f %8.4f %8.4f  %s\n",
			v.VersionID, v.State.E, v.State.I, v.State.S, v.State.V,
			v.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}

// #endregion versions-mode

// #region cycles-mode

func runCyclesMode(ctx context.Context, db *store.Store, agentID string, last int, jsonOut bool) error {
	results, err := db.RecentCycles(ctx, agentID, last)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		return fmt.Errorf("no recorded cycles for agent %s", agentID)
	}

	if jsonOut {
		return json.NewEncoder(os.Stdout).Encode(results)
	}
	fmt.Printf("%-36s %-10s %-12s %9s %9s %7s %6s\n",
		"cycle", "verdict", "tier", "phi", "OI", "conf", "basin")
	for _, r := range results {
		fmt.Printf("%-36s %-10s %-12s %9.4f %9.4f %7.4f %6s\n",
			r.CycleID, r.Verdict, r.Tier, r.Phi, r.OscillationIndex, r.Confidence, r.Basin.Regime)
	}
	return nil
}

// #endregion cycles-mode
