package undo

import "github.com/beccaroth/muse/internal/types"

// Overlay methods apply in-flight optimistic state to listings fetched from
// the backend, so callers see pending deletes as already gone and pending
// promotions as already projects.

// OverlayProjects removes projects with a pending delete and prepends
// optimistic placeholders for pending promotions (projects list newest
// first, so placeholders go to the front).
func (m *Manager) OverlayProjects(projects []types.Project) []types.Project {
	m.mu.Lock()
	defer m.mu.Unlock()

	var promoted []types.Project
	deleted := make(map[string]bool)
	for _, tx := range m.byToken {
		if tx.state != StatePending {
			continue
		}
		switch {
		case tx.op == OpDelete && tx.kind == KindProject:
			deleted[tx.entityID] = true
		case tx.op == OpPromote:
			promoted = append(promoted, *tx.optimistic)
		}
	}

	out := make([]types.Project, 0, len(projects)+len(promoted))
	out = append(out, promoted...)
	for _, p := range projects {
		if !deleted[p.ID] {
			out = append(out, p)
		}
	}
	return out
}

// OverlayTasks removes tasks with a pending delete.
func (m *Manager) OverlayTasks(tasks []types.Task) []types.Task {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]types.Task, 0, len(tasks))
	for _, t := range tasks {
		if tx, ok := m.byEntity[string(KindTask)+":"+t.ID]; ok && tx.state == StatePending && tx.op == OpDelete {
			continue
		}
		out = append(out, t)
	}
	return out
}

// OverlaySeeds removes seeds with a pending promotion.
func (m *Manager) OverlaySeeds(seeds []types.Seed) []types.Seed {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]types.Seed, 0, len(seeds))
	for _, s := range seeds {
		if tx, ok := m.byEntity[string(KindSeed)+":"+s.ID]; ok && tx.state == StatePending {
			continue
		}
		out = append(out, s)
	}
	return out
}

// IsPendingDelete reports whether the entity has an in-flight delete.
func (m *Manager) IsPendingDelete(kind Kind, id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	tx, ok := m.byEntity[string(kind)+":"+id]
	return ok && tx.state == StatePending && tx.op == OpDelete
}
