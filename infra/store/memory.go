package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/platotv/plato/core/engine"
	"github.com/platotv/plato/core/model"
)

// MemoryStore is an in-process store for tests and one-shot CLI runs.
type MemoryStore struct {
	mu        sync.RWMutex
	snapshots map[string]*model.Snapshot
	transport model.TransportSettings
}

// NewMemoryStore creates an empty store with default transport settings.
func NewMemoryStore() *MemoryStore {
	var t model.TransportSettings
	t.SetDefaults()
	return &MemoryStore{
		snapshots: make(map[string]*model.Snapshot),
		transport: t,
	}
}

// Put registers the snapshot under its plan id.
func (m *MemoryStore) Put(snap *model.Snapshot) {
	m.mu.Lock()
	m.snapshots[snap.Plan.ID] = snap
	m.mu.Unlock()
}

// LoadSnapshot returns a copy of the stored snapshot with the current
// transport settings attached.
func (m *MemoryStore) LoadSnapshot(_ context.Context, planID string) (*model.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap, ok := m.snapshots[planID]
	if !ok {
		return nil, fmt.Errorf("plan %s: not found", planID)
	}
	cp := *snap
	cp.Tasks = append([]model.DailyTask(nil), snap.Tasks...)
	cp.Transport = m.transport
	return &cp, nil
}

// CommitTasks replaces matching tasks by id, appending unknown ones.
func (m *MemoryStore) CommitTasks(_ context.Context, planID string, tasks []model.DailyTask) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap, ok := m.snapshots[planID]
	if !ok {
		return fmt.Errorf("plan %s: not found", planID)
	}
	for _, t := range tasks {
		replaced := false
		for i := range snap.Tasks {
			if snap.Tasks[i].ID == t.ID {
				snap.Tasks[i] = t
				replaced = true
				break
			}
		}
		if !replaced {
			snap.Tasks = append(snap.Tasks, t)
		}
	}
	return nil
}

// TransportSettings returns the current defaults.
func (m *MemoryStore) TransportSettings(context.Context) (model.TransportSettings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.transport, nil
}

// PatchTransportSettings applies the non-nil patch fields.
func (m *MemoryStore) PatchTransportSettings(_ context.Context, patch engine.TransportPatch) (model.TransportSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	applyPatch(&m.transport, patch)
	m.transport.SetDefaults()
	return m.transport, nil
}
