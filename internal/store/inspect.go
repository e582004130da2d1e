package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/danielpatrickdp/agent-governor/internal/cycle"
	"github.com/danielpatrickdp/agent-governor/internal/drift"
	"github.com/danielpatrickdp/agent-governor/internal/dynamics"
)

// #region version-info
// VersionInfo is one entry in an agent's state history.
type VersionInfo struct {
	VersionID string
	ParentID  string
	State     dynamics.State
	CreatedAt time.Time
}

// #endregion version-info

// #region inspect

// Agents lists every agent with stored state, sorted by ID.
func (s *Store) Agents(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT agent_id FROM active_states ORDER BY agent_id`)
	if err != nil {
		return nil, fmt.Errorf("list agents: %w", err)
	}
	defer rows.Close()

	var agents []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan agent: %w", err)
		}
		agents = append(agents, id)
	}
	return agents, rows.Err()
}

// ListVersions returns an agent's most recent state versions, newest first.
func (s *Store) ListVersions(ctx context.Context, agentID string, limit int) ([]VersionInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT version_id, parent_id, state_vec, created_at
		 FROM agent_states WHERE agent_id = ?
		 ORDER BY created_at DESC LIMIT ?`, agentID, limit)
	if err != nil {
		return nil, fmt.Errorf("list versions %s: %w", agentID, err)
	}
	defer rows.Close()

	var infos []VersionInfo
	for rows.Next() {
		var info VersionInfo
		var parent sql.NullString
		var blob []byte
		var createdStr string
		if err := rows.Scan(&info.VersionID, &parent, &blob, &createdStr); err != nil {
			return nil, fmt.Errorf("scan version: %w", err)
		}
		if parent.Valid {
			info.ParentID = parent.String
		}
		if st, ok := decodeState(blob); ok {
			info.State = st
		}
		info.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

// RecentCycles returns an agent's most recent decision records, newest
// first. Rows whose stored record no longer parses are skipped.
func (s *Store) RecentCycles(ctx context.Context, agentID string, limit int) ([]cycle.Result, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT record_json FROM cycle_log WHERE agent_id = ?
		 ORDER BY id DESC LIMIT ?`, agentID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent cycles %s: %w", agentID, err)
	}
	defer rows.Close()

	var results []cycle.Result
	for rows.Next() {
		var record string
		if err := rows.Scan(&record); err != nil {
			return nil, fmt.Errorf("scan cycle: %w", err)
		}
		var res cycle.Result
		if err := json.Unmarshal([]byte(record), &res); err != nil {
			continue
		}
		results = append(results, res)
	}
	return results, rows.Err()
}

// #endregion inspect

// #region rollback

// Rollback moves an agent's active pointer to a previous version. The next
// cycle resumes from that snapshot; newer versions remain in the history.
func (s *Store) Rollback(ctx context.Context, agentID, versionID string) error {
	var exists int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM agent_states WHERE version_id = ? AND agent_id = ?`,
		versionID, agentID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check version: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("version %s not found for agent %s", versionID, agentID)
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE active_states SET version_id = ? WHERE agent_id = ?`, versionID, agentID)
	if err != nil {
		return fmt.Errorf("rollback %s: %w", agentID, err)
	}
	return nil
}

// ResetBaseline drops an agent's learned statistics back to a fresh
// baseline while keeping its state history intact.
func (s *Store) ResetBaseline(ctx context.Context, agentID string, cfg drift.Config) error {
	return s.SaveBaseline(ctx, drift.NewBaseline(agentID, cfg))
}

// #endregion rollback
