package cycle

import (
	"context"
	"sync"

	"github.com/danielpatrickdp/agent-governor/internal/drift"
	"github.com/danielpatrickdp/agent-governor/internal/dynamics"
	"github.com/danielpatrickdp/agent-governor/internal/oscillation"
)

// #region memory

// MemoryPersistence is an in-process Persistence backend. Used by the
// replay harness and tests; production runs use the SQLite store.
type MemoryPersistence struct {
	mu           sync.Mutex
	states       map[string]dynamics.State
	baselines    map[string]drift.AgentBaseline
	oscillations map[string]oscillation.State
	log          []Result
}

// NewMemoryPersistence returns an empty in-memory backend.
func NewMemoryPersistence() *MemoryPersistence {
	return &MemoryPersistence{
		states:       make(map[string]dynamics.State),
		baselines:    make(map[string]drift.AgentBaseline),
		oscillations: make(map[string]oscillation.State),
	}
}

func (m *MemoryPersistence) LoadState(_ context.Context, agentID string) (dynamics.State, Presence, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.states[agentID]
	if !ok {
		return dynamics.State{}, PresenceMissing, nil
	}
	return s, PresenceFound, nil
}

func (m *MemoryPersistence) SaveState(_ context.Context, agentID, _ string, s dynamics.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[agentID] = s
	return nil
}

func (m *MemoryPersistence) LoadBaseline(_ context.Context, agentID string) (drift.AgentBaseline, Presence, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.baselines[agentID]
	if !ok {
		return drift.AgentBaseline{}, PresenceMissing, nil
	}
	return b, PresenceFound, nil
}

func (m *MemoryPersistence) SaveBaseline(_ context.Context, b drift.AgentBaseline) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.baselines[b.AgentID] = b
	return nil
}

func (m *MemoryPersistence) LoadOscillation(_ context.Context, agentID, metric string) (oscillation.State, Presence, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.oscillations[agentID+"/"+metric]
	if !ok {
		return oscillation.State{}, PresenceMissing, nil
	}
	return st, PresenceFound, nil
}

func (m *MemoryPersistence) SaveOscillation(_ context.Context, st oscillation.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.oscillations[st.AgentID+"/"+st.Metric] = st
	return nil
}

func (m *MemoryPersistence) LogCycle(_ context.Context, res Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.log = append(m.log, res)
	return nil
}

// CycleLog returns a copy of the provenance log in append order.
func (m *MemoryPersistence) CycleLog() []Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Result, len(m.log))
	copy(out, m.log)
	return out
}

// #endregion memory
