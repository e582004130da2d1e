// Package store persists per-agent governance state in SQLite: versioned
// state snapshots with a parent chain, agent baselines, oscillation
// records, and an append-only cycle log. It implements cycle.Persistence.
package store

import (
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"

	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/agent-governor/internal/dynamics"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS agent_states (
	version_id  TEXT PRIMARY KEY,
	agent_id    TEXT NOT NULL,
	parent_id   TEXT,
	state_vec   BLOB NOT NULL,
	created_at  TEXT NOT NULL,
	FOREIGN KEY (parent_id) REFERENCES agent_states(version_id)
);

CREATE INDEX IF NOT EXISTS idx_agent_states_agent
	ON agent_states(agent_id, created_at);

CREATE TABLE IF NOT EXISTS active_states (
	agent_id    TEXT PRIMARY KEY,
	version_id  TEXT NOT NULL,
	FOREIGN KEY (version_id) REFERENCES agent_states(version_id)
);

CREATE TABLE IF NOT EXISTS agent_baselines (
	agent_id         TEXT PRIMARY KEY,
	coherence_ema    REAL NOT NULL,
	confidence_ema   REAL NOT NULL,
	complexity_ema   REAL NOT NULL,
	prev_coherence   REAL NOT NULL,
	prev_confidence  REAL NOT NULL,
	prev_complexity  REAL NOT NULL,
	recent_verdicts  TEXT NOT NULL,
	consistency      REAL NOT NULL,
	update_count     INTEGER NOT NULL,
	ema_rate         REAL NOT NULL,
	retune_count     INTEGER NOT NULL,
	retune_integral  REAL NOT NULL,
	lambda1_scale    REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS oscillation_states (
	agent_id        TEXT NOT NULL,
	metric          TEXT NOT NULL,
	ema             REAL NOT NULL,
	flip_count      INTEGER NOT NULL,
	last_side       INTEGER NOT NULL,
	last_value      REAL NOT NULL,
	threshold_bias  REAL NOT NULL,
	PRIMARY KEY (agent_id, metric)
);

CREATE TABLE IF NOT EXISTS cycle_log (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	cycle_id     TEXT NOT NULL,
	agent_id     TEXT NOT NULL,
	verdict      TEXT NOT NULL,
	raw_verdict  TEXT NOT NULL,
	tier         TEXT NOT NULL,
	phi          REAL NOT NULL,
	record_json  TEXT NOT NULL,
	created_at   TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_cycle_log_agent
	ON cycle_log(agent_id, id);
`

// #endregion schema

// #region store-struct
// Store manages governance state in SQLite. Safe for concurrent use; the
// runner serializes per-agent writes above this layer.
type Store struct {
	db *sql.DB
}

// #endregion store-struct

// #region constructor
// Open opens a SQLite database and runs migrations.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for inspection tooling.
func (s *Store) DB() *sql.DB {
	return s.db
}

// #endregion constructor

// #region state-encoding
const stateBlobLen = 4 * 8

func encodeState(st dynamics.State) []byte {
	buf := make([]byte, stateBlobLen)
	for i, f := range [4]float64{st.E, st.I, st.S, st.V} {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(f))
	}
	return buf
}

func decodeState(b []byte) (dynamics.State, bool) {
	if len(b) != stateBlobLen {
		return dynamics.State{}, false
	}
	var v [4]float64
	for i := range v {
		v[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[i*8:]))
	}
	for _, f := range v {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return dynamics.State{}, false
		}
	}
	return dynamics.State{E: v[0], I: v[1], S: v[2], V: v[3]}, true
}

// #endregion state-encoding
